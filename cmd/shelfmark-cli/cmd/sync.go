package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"shelfmark/internal/application/editor"
	"shelfmark/internal/application/syncer"
	"shelfmark/internal/domain"
)

var (
	syncAssignmentsPath string
	syncEditsPath       string
	syncParentID        string
	syncDryRun          bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Apply category assignments to the bookmark tree",
	Long: `Apply a batch of category assignments: one folder per category under
the root folder, one move per bookmark. Per-item failures never stop the
batch. The tree export is rewritten in place.

An optional edits file is applied to the taxonomy first, so assignments
naming renamed or merged categories land in the right folder.

Example:
  shelfmark --tree bookmarks.json sync --assignments suggested.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if syncAssignmentsPath == "" {
			return fmt.Errorf("--assignments is required")
		}
		assignments, err := readAssignments(syncAssignmentsPath)
		if err != nil {
			return err
		}

		ed := editor.New()
		if syncEditsPath != "" {
			if err := applyEditsFile(ed, syncEditsPath); err != nil {
				return err
			}
		}
		resolved := ed.ApplyEdits(assignments)
		flat := make([]domain.CategoryAssignment, len(resolved))
		for i, r := range resolved {
			flat[i] = r.CategoryAssignment
		}

		if syncDryRun {
			printResolved(resolved)
			return nil
		}

		store, err := loadStore()
		if err != nil {
			return err
		}

		var opts []syncer.Option
		if rootFolder != "" {
			opts = append(opts, syncer.WithRootFolderName(rootFolder))
		}
		opts = append(opts, syncer.WithProgress(func(done, total int) {
			fmt.Printf("\r%s", mutedStyle.Render(fmt.Sprintf("syncing %d/%d", done, total)))
			if done == total {
				fmt.Println()
			}
		}))

		engine := syncer.New(store, opts...)
		outcome, err := engine.Sync(ctx, flat, syncer.Options{ParentFolderID: syncParentID})
		if err != nil {
			return err
		}

		printOutcome(outcome)
		return saveStore(ctx, store)
	},
}

func applyEditsFile(ed *editor.Editor, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading edits: %w", err)
	}
	var ops []editor.BatchOperation
	if err := json.Unmarshal(raw, &ops); err != nil {
		return fmt.Errorf("parsing edits: %w", err)
	}

	result := ed.BatchEdit(ops)
	if result.Failed > 0 {
		for _, r := range result.Results {
			if r.Error != "" {
				fmt.Println(warnStyle.Render(fmt.Sprintf("edit %s failed: %s", r.Type, r.Error)))
			}
		}
	}
	fmt.Println(mutedStyle.Render(fmt.Sprintf("edits: %d applied, %d failed", result.Succeeded, result.Failed)))
	return nil
}

func printResolved(resolved []editor.ResolvedAssignment) {
	for _, r := range resolved {
		if r.Edited {
			fmt.Printf("%s  %s %s\n", r.Title,
				mutedStyle.Render(r.OriginalCategory+" →"),
				folderStyle.Render(r.SuggestedCategory))
			continue
		}
		fmt.Printf("%s  %s\n", r.Title, folderStyle.Render(r.SuggestedCategory))
	}
}

func printOutcome(outcome *domain.SyncOutcome) {
	fmt.Println(successStyle.Render(fmt.Sprintf("Moved %d of %d bookmarks in %s",
		len(outcome.Success), outcome.Total(), outcome.Duration.Round(time.Millisecond))))

	for _, f := range outcome.Failed {
		fmt.Println(errorStyle.Render("failed: ") + fmt.Sprintf("%s (%s): %s", f.Title, f.ItemID, f.Reason))
	}
	for _, s := range outcome.Skipped {
		fmt.Println(warnStyle.Render("skipped: ") + fmt.Sprintf("%s: %s", s.ItemID, s.Reason))
	}
}

func init() {
	syncCmd.Flags().StringVarP(&syncAssignmentsPath, "assignments", "a", "", "path to the assignments JSON file")
	syncCmd.Flags().StringVarP(&syncEditsPath, "edits", "e", "", "path to a batch-edits JSON file applied before syncing")
	syncCmd.Flags().StringVarP(&syncParentID, "parent", "p", "", "folder ID to sync under (overrides --root-folder)")
	syncCmd.Flags().BoolVarP(&syncDryRun, "dry-run", "n", false, "print resolved assignments without moving anything")
	rootCmd.AddCommand(syncCmd)
}
