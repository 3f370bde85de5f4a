package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/storefront/internal/store"
)

// SeedOptions holds options for the seed command.
type SeedOptions struct {
	File    string
	Migrate bool
}

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	opts := &SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load authors, quotes and orders from a YAML file",
		Long: `Load fixture data from a YAML file into the database.

The file lists authors, each with optional quotes, and orders. Records
without an id get a generated one.`,
		Example: `  # Load fixtures
  storefront seed --file testdata/seed.yaml

  # Create the schema first
  storefront seed --file testdata/seed.yaml --migrate

  # Report counts as JSON
  storefront seed --file testdata/seed.yaml --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Seed file to load (required)")
	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "Run pending migrations first")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runSeed(cmd *cobra.Command, opts *SeedOptions) error {
	data, err := store.LoadSeedFile(opts.File)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.Migrate {
		if err := migrateUp(cmd, cmdCtx); err != nil {
			return err
		}
	}

	result, err := store.New(cmdCtx.DB, cmdCtx.Logger).Seed(cmd.Context(), data)
	if err != nil {
		return err
	}

	if cmdCtx.Cfg.Output == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d authors, %d quotes, %d orders from %s\n",
		result.Authors, result.Quotes, result.Orders, opts.File)
	return nil
}
