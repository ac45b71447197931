package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/vcube/internal/store"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	Database string
}

// ImportedCube is one row of the load command's output.
type ImportedCube struct {
	Cube   string `json:"cube"`
	Hash   string `json:"hash"`
	Source string `json:"source"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <fixture.yaml>...",
		Short: "Import base cube metadata into a database",
		Long: `Import the cubes described by one or more YAML fixtures into a SQLite
database, creating it if it doesn't exist. A cube that is already stored
is replaced. Prints every cube the database holds afterwards.

Example:
  vcube load --db ./cubes.db ./fixtures/sales.yaml ./fixtures/stock.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runLoad(opts *LoadOptions, fixtures []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(&LoadError{Code: ErrCodeStoreFailed, Message: fmt.Sprintf("failed to open database: %v", err)})
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	for _, path := range fixtures {
		cubes, err := st.ImportFile(ctx, path)
		if err != nil {
			return formatter.Fail(&LoadError{Code: ErrCodeStoreFailed, Message: fmt.Sprintf("failed to import %s: %v", path, err)})
		}
		formatter.VerboseLog("Imported %d cube(s) from %s", len(cubes), path)
	}

	imports, err := st.Imports(ctx)
	if err != nil {
		return formatter.Fail(&LoadError{Code: ErrCodeStoreFailed, Message: fmt.Sprintf("failed to list imports: %v", err)})
	}

	out := make([]ImportedCube, len(imports))
	for i, imp := range imports {
		out[i] = ImportedCube{Cube: imp.Cube.Value(), Hash: imp.Hash, Source: imp.Source}
	}

	if opts.Format == "json" {
		return formatter.Success(out)
	}

	for _, c := range out {
		fmt.Fprintf(formatter.Writer, "✓ %s %s (%s)\n", c.Cube, shortHash(c.Hash), c.Source)
	}
	return nil
}

// shortHash abbreviates a content hash for text output.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
