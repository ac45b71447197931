package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/vcube/internal/engine"
	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/restriction"
	"github.com/roach88/vcube/internal/store"
)

// DeriveOptions holds flags for the derive command.
type DeriveOptions struct {
	*RootOptions
	Database string
	Restrict []string // KEY=VALUE

	// IDGenerator allows overriding the evaluation id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator engine.IDGenerator
}

// DeriveResult is the JSON payload of the derive command.
type DeriveResult struct {
	Plan    string     `json:"plan"`
	Filters []string   `json:"filters,omitempty"`
	Bundle  *ir.Bundle `json:"bundle"`
}

// NewDeriveCommand creates the derive command.
func NewDeriveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeriveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "derive <plans-dir> <plan>",
		Short: "Derive the metadata a plan exposes",
		Long: `Evaluate a named plan against the base cubes stored in a database and
print the six metadata relations visible at its root.

Restrictions narrow what every base cube fetches. Keys are CATALOG_NAME,
SCHEMA_NAME, CUBE_NAME, DIMENSION_UNIQUE_NAME, HIERARCHY_UNIQUE_NAME,
LEVEL_UNIQUE_NAME, MEMBER_UNIQUE_NAME and TREE_OP; unknown keys are ignored.

Examples:
  vcube derive --db ./cubes.db ./plans sales
  vcube derive --db ./cubes.db ./plans sales --restrict DIMENSION_UNIQUE_NAME=ex:Geo
  vcube derive --db ./cubes.db ./plans sales --restrict MEMBER_UNIQUE_NAME=ex:DE --restrict TREE_OP=1`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDerive(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringArrayVar(&opts.Restrict, "restrict", nil, "restriction as KEY=VALUE (repeatable)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runDerive(opts *DeriveOptions, plansDir, name string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	prefixes, err := opts.prefixMap()
	if err != nil {
		return formatter.Fail(err)
	}

	slog.Debug("loading plans", "dir", plansDir)
	doc, op, err := LoadPlan(plansDir, name, prefixes)
	if err != nil {
		return formatter.Fail(err)
	}

	kv, err := restriction.Assignments(opts.Restrict)
	if err != nil {
		return formatter.Fail(err)
	}
	r, err := restriction.Build(kv, doc.Resolver)
	if err != nil {
		return formatter.Fail(err)
	}

	slog.Debug("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(&LoadError{Code: ErrCodeStoreFailed, Message: fmt.Sprintf("failed to open database: %v", err)})
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ids := opts.IDGenerator
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}
	evaluator := engine.NewEvaluator(st,
		engine.WithIDGenerator(ids),
		engine.WithLogger(slog.Default()),
	)

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := evaluator.Evaluate(ctx, op, r)
	if err != nil {
		return formatter.Fail(err)
	}

	filters := make([]string, len(res.Filters))
	for i, f := range res.Filters {
		filters[i] = f.String()
	}

	if opts.Format == "json" {
		return json.NewEncoder(formatter.Writer).Encode(CLIResponse{
			Status:       "ok",
			Data:         DeriveResult{Plan: res.Plan, Filters: filters, Bundle: res.Bundle},
			EvaluationID: res.ID,
		})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "plan: %s\n", res.Plan)
	for _, f := range filters {
		fmt.Fprintf(w, "filter: %s\n", f)
	}
	for _, k := range ir.Kinds {
		rel := res.Bundle.Relation(k)
		fmt.Fprintf(w, "\n%s (%d)\n%s\n", k, rel.Len(), rel.String())
	}
	return nil
}
