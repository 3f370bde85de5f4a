package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/storefront/internal/cli/config"
	"github.com/leapstack-labs/storefront/internal/database"
)

// Check statuses.
const (
	StatusPass  = "pass"
	StatusWarn  = "warn"
	StatusError = "error"
	StatusSkip  = "skip"
)

const doctorPingTimeout = 5 * time.Second

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: table, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, connectivity and schema",
		Long: `Check that this instance is ready to serve traffic.

The doctor validates the configuration, reports which connection strategy
the environment selects, pings the database through that strategy, and
compares the schema version with the embedded migrations. It exits
non-zero when any check fails.`,
		Example: `  # Run all checks
  storefront doctor

  # Output as JSON
  storefront doctor --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Environment     string        `json:"environment"`
	Strategy        string        `json:"strategy"`
	HealthChecks    []HealthCheck `json:"health_checks"`
	Score           int           `json:"score"`
	Recommendations []string      `json:"recommendations"`
	IssueCount      int           `json:"issue_count"`
}

// HealthCheck represents a single check result.
type HealthCheck struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Status  string   `json:"status"`
	Details []string `json:"details,omitempty"`
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cmdCtx, err := NewCommandContextWithoutDB(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := diagnose(ctx, cmdCtx.Cfg, cmdCtx.Logger)

	format := outputFormat(cmd, opts.Format, cmdCtx.Cfg)
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		renderDoctor(cmd.OutOrStdout(), out)
	}

	if out.IssueCount > 0 {
		return fmt.Errorf("doctor found %d problem(s)", out.IssueCount)
	}
	return nil
}

// diagnose runs every check. Checks that depend on a working connection
// are skipped when an earlier one fails.
func diagnose(ctx context.Context, cfg *config.Config, logger *slog.Logger) *DoctorOutput {
	strategy := database.SelectStrategy(cfg.Environment)
	out := &DoctorOutput{
		Environment: cfg.Environment,
		Strategy:    string(strategy),
	}

	configCheck := HealthCheck{ID: "config", Name: "Configuration", Status: StatusPass}
	if err := cfg.Validate(); err != nil {
		configCheck.Status = StatusError
		configCheck.Details = strings.Split(err.Error(), "\n")
	}
	out.HealthChecks = append(out.HealthChecks,
		configCheck,
		HealthCheck{
			ID:      "strategy",
			Name:    "Connection strategy",
			Status:  StatusPass,
			Details: []string{fmt.Sprintf("%s (environment %q)", strategy, cfg.Environment)},
		},
		paymentsCheck(cfg),
	)

	connCheck := HealthCheck{ID: "connection", Name: "Database connection", Status: StatusSkip}
	migCheck := HealthCheck{ID: "migrations", Name: "Schema migrations", Status: StatusSkip}

	if configCheck.Status == StatusPass {
		db, err := database.Open(ctx, cfg.DatabaseOptions(logger, nil))
		if err != nil {
			connCheck.Status = StatusError
			connCheck.Details = []string{err.Error()}
		} else {
			defer func() { _ = db.Close() }()
			connCheck, migCheck = checkDatabase(ctx, db)
		}
	}
	out.HealthChecks = append(out.HealthChecks, connCheck, migCheck)

	for _, check := range out.HealthChecks {
		if check.Status == StatusError {
			out.IssueCount++
		}
	}
	out.Score = calculateHealthScore(out.HealthChecks)
	out.Recommendations = generateRecommendations(out.HealthChecks)
	return out
}

func paymentsCheck(cfg *config.Config) HealthCheck {
	check := HealthCheck{ID: "payments", Name: "Payment provider", Status: StatusPass}
	if cfg.Payments.PublishableKey == "" {
		check.Status = StatusWarn
		check.Details = []string{"no publishable key; checkout is disabled outside production"}
	}
	return check
}

func checkDatabase(ctx context.Context, db database.DB) (HealthCheck, HealthCheck) {
	conn := HealthCheck{ID: "connection", Name: "Database connection", Status: StatusPass}
	mig := HealthCheck{ID: "migrations", Name: "Schema migrations", Status: StatusSkip}

	pingCtx, cancel := context.WithTimeout(ctx, doctorPingTimeout)
	defer cancel()

	start := time.Now()
	if err := db.Ping(pingCtx); err != nil {
		conn.Status = StatusError
		conn.Details = []string{err.Error()}
		return conn, mig
	}
	conn.Details = []string{fmt.Sprintf("%s via %s in %s", db.Dialect().Name, db.Strategy(), time.Since(start).Round(time.Millisecond))}

	mig.Status = StatusPass
	current, err := database.MigrationVersion(ctx, db)
	if err != nil {
		mig.Status = StatusError
		mig.Details = []string{err.Error()}
		return conn, mig
	}
	latest, err := database.LatestMigrationVersion(db.Dialect())
	if err != nil {
		mig.Status = StatusError
		mig.Details = []string{err.Error()}
		return conn, mig
	}
	mig.Details = []string{fmt.Sprintf("version %d of %d", current, latest)}
	if current < latest {
		mig.Status = StatusWarn
	}
	return conn, mig
}

// calculateHealthScore starts at 100 and deducts 10 per warning and 30
// per error, never going below 0. Skipped checks cost nothing.
func calculateHealthScore(checks []HealthCheck) int {
	score := 100
	for _, check := range checks {
		switch check.Status {
		case StatusWarn:
			score -= 10
		case StatusError:
			score -= 30
		}
	}
	if score < 0 {
		return 0
	}
	return score
}

func generateRecommendations(checks []HealthCheck) []string {
	var recommendations []string
	for _, check := range checks {
		if check.Status != StatusWarn && check.Status != StatusError {
			continue
		}
		if rec := getRecommendation(check.ID); rec != "" {
			recommendations = append(recommendations, rec)
		}
	}
	return recommendations
}

func getRecommendation(id string) string {
	switch id {
	case "config":
		return "Fix the configuration errors above; see storefront.yaml or STOREFRONT_* variables"
	case "payments":
		return "Set payments.publishable_key to enable checkout"
	case "connection":
		return "Check database.url and that the database accepts connections from this host"
	case "migrations":
		return "Run 'storefront migrate' to apply pending migrations"
	default:
		return ""
	}
}

func renderDoctor(w io.Writer, out *DoctorOutput) {
	titleCaser := cases.Title(language.English)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Check", "Status", "Details"})
	for _, check := range out.HealthChecks {
		t.AppendRow(table.Row{check.Name, titleCaser.String(check.Status), strings.Join(check.Details, "\n")})
	}
	t.Render()

	_, _ = fmt.Fprintf(w, "Health score: %d/100\n", out.Score)
	if len(out.Recommendations) > 0 {
		_, _ = fmt.Fprintln(w, "\nRecommendations:")
		for _, rec := range out.Recommendations {
			_, _ = fmt.Fprintf(w, "  - %s\n", rec)
		}
	}
}
