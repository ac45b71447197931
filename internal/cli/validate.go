package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/vcube/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Plans  []string                   `json:"plans,omitempty"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <plans-dir>",
		Short: "Validate a plan document",
		Long: `Compile the CUE plan document in a directory and check every plan
and correspondence without touching a database.

All semantic problems are reported, not just the first: positional
operands of different lengths, converts without a correspondence,
correspondences with no inputs or outputs and correspondences no plan
uses.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, plansDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	prefixes, err := opts.prefixMap()
	if err != nil {
		return formatter.Fail(err)
	}

	loadResult, err := LoadPlans(plansDir, prefixes)
	if err != nil {
		code := loadErrorCode(err)
		_ = formatter.Error(code, err.Error(), nil)
		// Unreadable plans are command-level errors (exit code 2)
		return WrapExitError(ExitCommandError, code, err)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, plansDir)
	for _, name := range loadResult.Document.PlanNames {
		formatter.VerboseLog("Validating plan: %s", name)
	}

	validationErrors := compiler.Validate(loadResult.Document)
	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	return outputValidateSuccess(formatter, loadResult.Document.PlanNames)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, plans []string) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Plans: plans})
	}

	fmt.Fprintf(formatter.Writer, "✓ All plans valid (%d)\n", len(plans))
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

// ValidatePlansDir validates the plan document in a directory.
// This is a helper function for external callers.
func ValidatePlansDir(plansDir string, prefixes map[string]string) ([]compiler.ValidationError, error) {
	loadResult, err := LoadPlans(plansDir, prefixes)
	if err != nil {
		return nil, err
	}
	return compiler.Validate(loadResult.Document), nil
}
