package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rana718/fixturegen/internal/schema"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var schemaPrint bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create the fixture tables",
	Long: `Create every fixture table that does not exist yet, using the DDL bundled
for the configured provider. Existing tables are left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if schemaPrint {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			statements, err := schema.DDL(cfg.Database.Provider)
			if err != nil {
				return err
			}
			fmt.Println(strings.Join(statements, ";\n\n") + ";")
			return nil
		}

		ctx := context.Background()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		color.Cyan("🏗️  Applying %s schema...", s.adapter.Provider())
		n, err := schema.Apply(ctx, s.adapter)
		if err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
		color.Green("✅ Applied %d statements (%d tables)", n, len(schema.Tables))
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaPrint, "print", false, "Print the DDL instead of executing it")
}
