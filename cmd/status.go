package cmd

import (
	"context"
	"fmt"

	"github.com/Rana718/fixturegen/internal/schema"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show row counts of the fixture tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		counts, err := schema.Counts(ctx, s.adapter)
		if err != nil {
			return err
		}

		color.Cyan("📊 Fixture tables (%s)", s.adapter.Provider())
		fmt.Println()
		var total int64
		missing := 0
		for _, tc := range counts {
			if tc.Missing {
				missing++
				fmt.Printf("  %-28s %s\n", tc.Table, color.RedString("missing"))
				continue
			}
			total += tc.Rows
			fmt.Printf("  %-28s %10d\n", tc.Table, tc.Rows)
		}
		fmt.Println()
		fmt.Printf("  %-28s %10d\n", "total", total)
		if missing > 0 {
			color.Yellow("\n⚠️  %d table(s) missing; run 'fixturegen schema' first", missing)
		}
		return nil
	},
}
