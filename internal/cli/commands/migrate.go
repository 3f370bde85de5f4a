package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/storefront/internal/database"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [up|status]",
		Short: "Apply or inspect database migrations",
		Long: `Apply the embedded schema migrations, or report the current version.

Migrations run over a direct session even when the serving strategy is
serverless, so DDL never goes through the HTTP endpoint.`,
		Example: `  # Apply pending migrations
  storefront migrate

  # Show the current and latest versions
  storefront migrate status`,
		ValidArgs: []string{"up", "status"},
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}
			return runMigrate(cmd, action)
		},
	}

	return cmd
}

func runMigrate(cmd *cobra.Command, action string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	db := cmdCtx.DB

	if action == "up" {
		if err := migrateUp(cmd, cmdCtx); err != nil {
			return err
		}
	}

	current, err := database.MigrationVersion(ctx, db)
	if err != nil {
		return err
	}
	latest, err := database.LatestMigrationVersion(db.Dialect())
	if err != nil {
		return err
	}

	state := "up to date"
	if current < latest {
		state = fmt.Sprintf("%d pending", latest-current)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d of %d (%s, %s)\n", current, latest, db.Dialect().Name, state)
	return nil
}

func migrateUp(cmd *cobra.Command, cmdCtx *CommandContext) error {
	return database.Migrate(cmd.Context(), cmdCtx.DB, cmdCtx.Logger)
}
