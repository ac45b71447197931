package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/vcube/internal/plan"
	"github.com/roach88/vcube/internal/render"
)

// RenderOptions holds flags shared by the render, markup, dot and walk
// commands.
type RenderOptions struct {
	*RootOptions
	Mode   string
	Output string // dot only: write to file instead of stdout
}

// RenderResult is the JSON payload of the rendering commands.
type RenderResult struct {
	Plan   string `json:"plan"`
	Mode   string `json:"mode,omitempty"`
	Output string `json:"output"`
}

// WalkStep is one operator visited by the walk command.
type WalkStep struct {
	Operator  string `json:"operator"`
	Args      string `json:"args,omitempty"`
	Rendering string `json:"rendering"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	return &cobra.Command{
		Use:   "render <plans-dir> <plan>",
		Short: "Print a plan's one-line rendering",
		Long: `Print the one-line rendering of a named plan, e.g.

  Projection (Slice (BaseCube (ex:Sales), {ex:Time}), {ex:Revenue})

Example:
  vcube render ./plans sales`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], args[1], cmd, func(op plan.Operator, _ plan.Mode) (string, error) {
				if err := plan.Validate(op); err != nil {
					return "", err
				}
				return op.String(), nil
			})
		},
	}
}

// NewMarkupCommand creates the markup command.
func NewMarkupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "markup <plans-dir> <plan>",
		Short: "Print a plan as nested markup",
		Long: `Print a named plan as one element per visited operator.

In derived mode the traversal does not descend below Slice and
Drill-across, so only operators whose metadata is derived from
their input appear nested.

Examples:
  vcube markup ./plans sales
  vcube markup ./plans sales --mode structural`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], args[1], cmd, render.Markup)
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", "derived", "traversal mode (structural|derived)")
	return cmd
}

// NewDotCommand creates the dot command.
func NewDotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dot <plans-dir> <plan>",
		Short: "Export a plan as a Graphviz graph",
		Long: `Export a named plan as Graphviz DOT source.

Examples:
  vcube dot ./plans sales | dot -Tsvg > sales.svg
  vcube dot ./plans sales --mode structural -o sales.dot`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], args[1], cmd, render.DOT)
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", "derived", "traversal mode (structural|derived)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

// NewWalkCommand creates the walk command.
func NewWalkCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "walk <plans-dir> <plan>",
		Short: "List the operators a traversal visits",
		Long: `List, in pre-order, the operators a traversal of the named plan visits.

Examples:
  vcube walk ./plans sales
  vcube walk ./plans sales --mode structural --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWalk(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", "derived", "traversal mode (structural|derived)")
	return cmd
}

// loadForRender loads the plan and parses the mode flag.
func loadForRender(opts *RenderOptions, plansDir, name string) (plan.Operator, plan.Mode, error) {
	prefixes, err := opts.prefixMap()
	if err != nil {
		return nil, 0, err
	}
	_, op, err := LoadPlan(plansDir, name, prefixes)
	if err != nil {
		return nil, 0, err
	}

	mode := plan.ModeDerived
	if opts.Mode != "" {
		if mode, err = plan.ParseMode(opts.Mode); err != nil {
			return nil, 0, err
		}
	}
	return op, mode, nil
}

func runRender(opts *RenderOptions, plansDir, name string, cmd *cobra.Command, fn func(plan.Operator, plan.Mode) (string, error)) error {
	formatter := opts.formatter(cmd)

	op, mode, err := loadForRender(opts, plansDir, name)
	if err != nil {
		return formatter.Fail(err)
	}

	out, err := fn(op, mode)
	if err != nil {
		return formatter.Fail(err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(out), 0644); err != nil {
			return formatter.Fail(&LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("failed to write %s: %v", opts.Output, err)})
		}
		formatter.VerboseLog("Wrote %s", opts.Output)
		if opts.Format != "json" {
			fmt.Fprintf(formatter.Writer, "✓ Wrote %s\n", opts.Output)
			return nil
		}
	}

	if opts.Format == "json" {
		result := RenderResult{Plan: name, Output: out}
		if opts.Mode != "" {
			result.Mode = mode.String()
		}
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, strings.TrimRight(out, "\n"))
	return nil
}

func runWalk(opts *RenderOptions, plansDir, name string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	op, mode, err := loadForRender(opts, plansDir, name)
	if err != nil {
		return formatter.Fail(err)
	}
	if err := plan.Validate(op); err != nil {
		return formatter.Fail(err)
	}

	steps := []WalkStep{}
	err = plan.Walk(op, mode, func(o plan.Operator) error {
		steps = append(steps, WalkStep{
			Operator:  plan.Name(o),
			Args:      plan.Args(o),
			Rendering: o.String(),
		})
		return nil
	})
	if err != nil {
		return formatter.Fail(err)
	}

	if opts.Format == "json" {
		return formatter.Success(steps)
	}

	for i, step := range steps {
		fmt.Fprintf(formatter.Writer, "%d. %s", i+1, step.Operator)
		if step.Args != "" {
			fmt.Fprintf(formatter.Writer, " %s", step.Args)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}
