package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"shelfmark/internal/application/learner"
)

var (
	learnItemID    string
	learnChose     string
	reportCopyFlag bool
)

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Record feedback and inspect what has been learned",
}

var learnAcceptCmd = &cobra.Command{
	Use:   "accept TITLE URL CATEGORY",
	Short: "Record that a suggested category was accepted",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		l, closeFn, err := openLearner(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		l.RecordAcceptance(ctx, learner.Item{ID: learnItemID, Title: args[0], URL: args[1]}, args[2])
		fmt.Println(successStyle.Render("Recorded acceptance."))
		return nil
	},
}

var learnRejectCmd = &cobra.Command{
	Use:   "reject TITLE URL SUGGESTED",
	Short: "Record that a suggested category was rejected",
	Long: `Record a rejection. Pass --chose to name the category the user picked
instead; corrections teach the learner faster than bare rejections.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		l, closeFn, err := openLearner(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		l.RecordRejection(ctx, learner.Item{ID: learnItemID, Title: args[0], URL: args[1]}, args[2], learnChose)
		fmt.Println(successStyle.Render("Recorded rejection."))
		return nil
	},
}

var learnOptimizeCmd = &cobra.Command{
	Use:   "optimize TITLE URL CATEGORY",
	Short: "Re-score a category suggestion against learned patterns",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		l, closeFn, err := openLearner(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		got := l.OptimizeCategory(learner.Item{Title: args[0], URL: args[1]}, args[2])
		fmt.Printf("%s  %s\n",
			folderStyle.Render(got.Category),
			mutedStyle.Render(fmt.Sprintf("confidence %.2f, from %s", got.Confidence, got.LearnedFrom)))
		return nil
	},
}

var learnStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show feedback totals and learning progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		l, closeFn, err := openLearner(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		stats := l.FeedbackStats()
		progress := l.LearningProgress()

		fmt.Println(titleStyle.Render("Learning"))
		fmt.Printf("feedback:    %d (%d accepted, %d rejected)\n", stats.Total, stats.Accepts, stats.Rejects)
		if stats.Total > 0 {
			fmt.Printf("accept rate: %.0f%%\n", stats.AcceptRate*100)
			fmt.Printf("last:        %s\n", stats.LastFeedback.Format("2006-01-02 15:04"))
		}
		fmt.Printf("level:       %s\n", progress.Level)
		if progress.NextMilestone > 0 {
			fmt.Printf("next:        %d records\n", progress.NextMilestone)
		}
		return nil
	},
}

var learnReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the full learning report as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		l, closeFn, err := openLearner(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		raw, err := json.MarshalIndent(l.LearningReport(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(raw))

		if reportCopyFlag {
			if err := clipboard.WriteAll(string(raw)); err != nil {
				return fmt.Errorf("copying report: %w", err)
			}
			fmt.Println(mutedStyle.Render("Copied to clipboard."))
		}
		return nil
	},
}

var learnResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard all learned feedback and patterns",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		l, closeFn, err := openLearner(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := l.Reset(ctx); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Learning state reset."))
		return nil
	},
}

func init() {
	learnCmd.PersistentFlags().StringVar(&learnItemID, "id", "", "bookmark ID, if known")
	learnRejectCmd.Flags().StringVar(&learnChose, "chose", "", "category the user picked instead")
	learnReportCmd.Flags().BoolVar(&reportCopyFlag, "copy", false, "also copy the report to the clipboard")

	learnCmd.AddCommand(learnAcceptCmd)
	learnCmd.AddCommand(learnRejectCmd)
	learnCmd.AddCommand(learnOptimizeCmd)
	learnCmd.AddCommand(learnStatsCmd)
	learnCmd.AddCommand(learnReportCmd)
	learnCmd.AddCommand(learnResetCmd)
	rootCmd.AddCommand(learnCmd)
}
