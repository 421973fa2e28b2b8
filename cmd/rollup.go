package cmd

import (
	"context"

	"github.com/Rana718/fixturegen/internal/fixture"
	"github.com/Rana718/fixturegen/internal/generators"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rollupOnly []string

var rollupCmd = &cobra.Command{
	Use:   "rollup",
	Short: "Recompute denormalized counters",
	Long: `Recompute like_count, comment_count, article_count, resource_count and the
cumulative statistics from their source tables without generating rows.
Running it repeatedly yields the same values.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		color.Cyan("🔄 Recomputing counters...")
		gc := fixture.NewGenContext(s.adapter, s.cfg, s.log)
		if err := generators.NewPipeline(gc, generators.All()).Rollup(ctx, rollupOnly); err != nil {
			return err
		}
		color.Green("✅ Counters are up to date")
		return nil
	},
}

func init() {
	rollupCmd.Flags().StringSliceVar(&rollupOnly, "only", nil, "Recompute only the counters fed by these generators")
}
