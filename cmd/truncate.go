package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Rana718/fixturegen/internal/schema"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var truncateForce bool

var truncateCmd = &cobra.Command{
	Use:   "truncate",
	Short: "Delete all fixture rows",
	Long:  `Empty every fixture table, children first, and reset the key sequences.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !truncateForce {
			color.Yellow("⚠️  This deletes every row in %d fixture tables.", len(schema.Tables))
			fmt.Print("Continue? [y/N]: ")
			answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				color.Cyan("Aborted")
				return nil
			}
		}

		ctx := context.Background()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := schema.Truncate(ctx, s.adapter, schema.Tables); err != nil {
			return err
		}
		color.Green("✅ Truncated %d tables", len(schema.Tables))
		return nil
	},
}

func init() {
	truncateCmd.Flags().BoolVarP(&truncateForce, "force", "f", false, "Skip confirmation")
}
