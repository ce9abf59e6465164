package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"shelfmark/internal/adapters/memtree"
	"shelfmark/internal/adapters/sqlitekv"
	"shelfmark/internal/application/learner"
	"shelfmark/internal/config"
	"shelfmark/internal/domain"
)

var (
	treePath   string
	dbPath     string
	rootFolder string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "shelfmark",
	Short: "Organize bookmarks into category folders",
	Long: `shelfmark applies AI-suggested category assignments to a bookmark tree:
one folder per category, one move per bookmark. It can restructure the
category taxonomy (rename, merge, split) before applying, and it learns
from accept/reject feedback to improve future suggestions.

The bookmark tree is a JSON export; sync rewrites it in place.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if dbPath == "" {
			dbPath = cfg.DBPath
		}
		if rootFolder == "" {
			rootFolder = cfg.RootFolder
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&treePath, "tree", "t", "", "path to the bookmark tree JSON export")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the learning state database (default from config)")
	rootCmd.PersistentFlags().StringVar(&rootFolder, "root-folder", "", "folder to sync under (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// loadStore reads the bookmark tree export into an in-memory store.
func loadStore() (*memtree.Store, error) {
	if treePath == "" {
		return nil, fmt.Errorf("--tree is required")
	}
	raw, err := os.ReadFile(treePath)
	if err != nil {
		return nil, fmt.Errorf("reading tree: %w", err)
	}
	var root domain.Node
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("parsing tree: %w", err)
	}
	return memtree.FromTree(&root)
}

// saveStore writes the store back to the tree export.
func saveStore(ctx context.Context, store *memtree.Store) error {
	tree, err := store.GetTree(ctx)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tree: %w", err)
	}
	if err := os.WriteFile(treePath, append(raw, '\n'), 0644); err != nil {
		return fmt.Errorf("writing tree: %w", err)
	}
	return nil
}

// openLearner builds a learner over the configured state database. The
// returned close function is a no-op when persistence is disabled.
func openLearner(ctx context.Context) (*learner.Learner, func(), error) {
	if dbPath == "" {
		return learner.New(ctx, nil), func() {}, nil
	}
	kv, err := sqlitekv.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening state database: %w", err)
	}
	return learner.New(ctx, kv), func() { kv.Close() }, nil
}

func readAssignments(path string) ([]domain.CategoryAssignment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading assignments: %w", err)
	}
	var assignments []domain.CategoryAssignment
	if err := json.Unmarshal(raw, &assignments); err != nil {
		return nil, fmt.Errorf("parsing assignments: %w", err)
	}
	return assignments, nil
}
