package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shelfmark/internal/application/editor"
)

var suggestAssignmentsPath string

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Flag likely taxonomy problems in an assignments file",
	Long: `Analyze the categories of an assignments file and flag likely
problems: near-duplicate names, single-item categories, and category
bloat.

Example:
  shelfmark suggest --assignments suggested.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if suggestAssignmentsPath == "" {
			return fmt.Errorf("--assignments is required")
		}
		assignments, err := readAssignments(suggestAssignmentsPath)
		if err != nil {
			return err
		}

		suggestions := editor.New().EditSuggestions(assignments)
		if len(suggestions) == 0 {
			fmt.Println(successStyle.Render("No taxonomy problems found."))
			return nil
		}

		for _, s := range suggestions {
			severity := mutedStyle
			switch s.Severity {
			case editor.SeverityMedium:
				severity = warnStyle
			case editor.SeverityHigh:
				severity = errorStyle
			}
			fmt.Printf("%s %s  %s\n",
				severity.Render(strings.ToUpper(s.Severity)),
				mutedStyle.Render(s.Type),
				s.Message)
		}
		return nil
	},
}

func init() {
	suggestCmd.Flags().StringVarP(&suggestAssignmentsPath, "assignments", "a", "", "path to the assignments JSON file")
	rootCmd.AddCommand(suggestCmd)
}
