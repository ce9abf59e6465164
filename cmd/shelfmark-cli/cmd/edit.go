package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"shelfmark/internal/application/editor"
)

var (
	editAssignmentsPath string
	editOutPath         string
	editSplitMapPath    string
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Restructure the category taxonomy of an assignments file",
	Long: `Apply a taxonomy edit (rename, merge, split) to an assignments file
and write the resolved assignments back out. The tree itself is not
touched; run sync with the resolved file to move bookmarks.`,
}

var editRenameCmd = &cobra.Command{
	Use:   "rename OLD NEW",
	Short: "Rename a category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(func(ed *editor.Editor) error {
			rec, err := ed.Rename(args[0], args[1], nil)
			if err != nil {
				return err
			}
			fmt.Println(successStyle.Render(fmt.Sprintf("Renamed %q to %q", rec.OldName, rec.NewName)))
			return nil
		})
	},
}

var editMergeCmd = &cobra.Command{
	Use:   "merge TARGET SOURCE...",
	Short: "Merge one or more categories into a target",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(func(ed *editor.Editor) error {
			rec, err := ed.Merge(args[1:], args[0], nil)
			if err != nil {
				return err
			}
			fmt.Println(successStyle.Render(fmt.Sprintf("Merged %s into %q",
				strings.Join(rec.SourceCategories, ", "), rec.TargetCategory)))
			return nil
		})
	},
}

var editSplitCmd = &cobra.Command{
	Use:   "split SOURCE NEW...",
	Short: "Split a category into two or more new ones",
	Long: `Split a category. The --map file assigns items to the new categories:
a JSON object from item ID to category name. Splits cannot be undone.`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		reassignments := map[string]string{}
		if editSplitMapPath != "" {
			raw, err := os.ReadFile(editSplitMapPath)
			if err != nil {
				return fmt.Errorf("reading map: %w", err)
			}
			if err := json.Unmarshal(raw, &reassignments); err != nil {
				return fmt.Errorf("parsing map: %w", err)
			}
		}
		return runEdit(func(ed *editor.Editor) error {
			rec, err := ed.Split(args[0], args[1:], reassignments)
			if err != nil {
				return err
			}
			fmt.Println(successStyle.Render(fmt.Sprintf("Split %q into %s (%d items reassigned)",
				rec.SourceCategory, strings.Join(rec.NewCategories, ", "), rec.AffectedCount)))
			return nil
		})
	},
}

// runEdit performs one edit, resolves the assignments file through it, and
// writes the result to --out (or back to --assignments).
func runEdit(apply func(*editor.Editor) error) error {
	if editAssignmentsPath == "" {
		return fmt.Errorf("--assignments is required")
	}
	assignments, err := readAssignments(editAssignmentsPath)
	if err != nil {
		return err
	}

	ed := editor.New()
	if err := apply(ed); err != nil {
		return err
	}

	resolved := ed.ApplyEdits(assignments)
	edited := 0
	for _, r := range resolved {
		if r.Edited {
			edited++
		}
	}

	out := editOutPath
	if out == "" {
		out = editAssignmentsPath
	}
	raw, err := json.MarshalIndent(resolved, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding assignments: %w", err)
	}
	if err := os.WriteFile(out, append(raw, '\n'), 0644); err != nil {
		return fmt.Errorf("writing assignments: %w", err)
	}

	fmt.Println(mutedStyle.Render(fmt.Sprintf("%d of %d assignments updated → %s", edited, len(resolved), out)))
	return nil
}

func init() {
	editCmd.PersistentFlags().StringVarP(&editAssignmentsPath, "assignments", "a", "", "path to the assignments JSON file")
	editCmd.PersistentFlags().StringVarP(&editOutPath, "out", "o", "", "write resolved assignments here instead of in place")
	editSplitCmd.Flags().StringVar(&editSplitMapPath, "map", "", "JSON file mapping item IDs to their new category")

	editCmd.AddCommand(editRenameCmd)
	editCmd.AddCommand(editMergeCmd)
	editCmd.AddCommand(editSplitCmd)
	rootCmd.AddCommand(editCmd)
}
