package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/drillz/internal/llm"
	"github.com/abhisek/drillz/internal/studio"
)

var studioCmd = &cobra.Command{
	Use:   "studio",
	Short: "Authoring tools backed by an LLM",
}

var studioExplainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Generate explanations for questions that have none",
	RunE: func(cmd *cobra.Command, args []string) error {
		courseID, _ := cmd.Flags().GetInt("course")
		limit, _ := cmd.Flags().GetInt("limit")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()
		ctx := cmd.Context()

		if dryRun {
			qs, err := e.store.ContentRepo().MissingExplanations(ctx, courseID, limit)
			if err != nil {
				return fmt.Errorf("list questions: %w", err)
			}
			for _, q := range qs {
				fmt.Printf("%5d  drill %-4d  %s\n", q.ID, q.DrillID, truncate(q.Prompt, 60))
			}
			fmt.Printf("%d questions without an explanation\n", len(qs))
			return nil
		}

		cfg := llm.ConfigFromEnv()
		if cfg.APIKey == "" {
			found, ok := llm.DiscoverConfig()
			if !ok {
				return fmt.Errorf("no LLM API key: set DRILLZ_LLM_API_KEY or a vendor key")
			}
			cfg = found
		}
		provider, err := llm.NewProvider(ctx, cfg, e.store.EventRepo(), e.log)
		if err != nil {
			return fmt.Errorf("create llm provider: %w", err)
		}

		ex := studio.NewExplainer(provider, e.store.ContentRepo(), studio.DefaultConfig(), e.log)
		rep, err := ex.Fill(llm.WithPurpose(ctx, llm.PurposeExplanation), courseID, limit)
		if err != nil {
			return err
		}
		e.log.Info("explanations generated", zap.Int("filled", rep.Filled), zap.Int("failed", rep.Failed))
		fmt.Printf("Considered %d, filled %d, failed %d\n", rep.Considered, rep.Filled, rep.Failed)
		return nil
	},
}

func init() {
	studioExplainCmd.Flags().Int("course", 0, "Course id (0 searches every course)")
	studioExplainCmd.Flags().IntP("limit", "n", 20, "Maximum questions to process")
	studioExplainCmd.Flags().Bool("dry-run", false, "List the questions without calling the LLM")

	studioCmd.AddCommand(studioExplainCmd)
}
