package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Rana718/fixturegen/internal/fixture"
	"github.com/Rana718/fixturegen/internal/generators"
	"github.com/Rana718/fixturegen/internal/progress"
	"github.com/Rana718/fixturegen/internal/schema"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	runOnly     []string
	runTruncate bool
	runBatch    int
	runQuiet    bool
	runSchema   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate fixture data",
	Long: `Run the generators in dependency order:

  users, categories → articles, resources → comments, likes, chat,
  login_history → statistics

Each generator commits in batches (batch_size rows per transaction). The
first failure rolls back the open batch and stops the run; batches already
committed stay in place. Counters such as like_count and comment_count are
recomputed from their source tables after each generator.`,
	Example: `  fixturegen run
  fixturegen run --truncate
  fixturegen run --only users,chat --batch 500`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if cmd.Flags().Changed("batch") {
			if runBatch <= 0 {
				return fmt.Errorf("--batch must be positive, got %d", runBatch)
			}
			s.cfg.BatchSize = runBatch
		}

		if runSchema {
			n, err := schema.Apply(ctx, s.adapter)
			if err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
			color.Green("✅ Applied %d schema statements", n)
		}

		gc := fixture.NewGenContext(s.adapter, s.cfg, s.log)
		if runQuiet {
			gc.Progress = progress.NewConsole(os.Stdout)
		} else {
			gc.Progress = progress.NewBars(os.Stderr)
		}

		p := generators.NewPipeline(gc, generators.All())
		results, err := p.Run(ctx, generators.Options{Only: runOnly, Truncate: runTruncate})
		generators.PrintSummary(os.Stdout, results)
		return err
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&runOnly, "only", nil, "Run only these generators (comma separated)")
	runCmd.Flags().BoolVar(&runTruncate, "truncate", false, "Empty all fixture tables first")
	runCmd.Flags().IntVar(&runBatch, "batch", 0, "Rows per committed batch (overrides batch_size)")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Print one line per generator instead of progress bars")
	runCmd.Flags().BoolVar(&runSchema, "schema", false, "Create missing tables from the bundled schema first")
}
