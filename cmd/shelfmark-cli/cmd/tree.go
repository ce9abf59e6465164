package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shelfmark/internal/domain"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Display the bookmark tree",
	Long: `Display the bookmark tree from the JSON export.

Example:
  shelfmark --tree bookmarks.json tree`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStore()
		if err != nil {
			return err
		}
		root, err := store.GetTree(context.Background())
		if err != nil {
			return err
		}
		printTree(root, 0)
		return nil
	},
}

func printTree(node *domain.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	if node.IsFolder() {
		fmt.Printf("%s%s %s\n", indent, mutedStyle.Render("["+node.ID+"]"), folderStyle.Render(node.Title+"/"))
	} else {
		fmt.Printf("%s%s %s  %s\n", indent, mutedStyle.Render("["+node.ID+"]"), node.Title, urlStyle.Render(node.URL))
	}
	for _, child := range node.Children {
		printTree(child, depth+1)
	}
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
