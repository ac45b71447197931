package harness

import "github.com/roach88/vcube/internal/ir"

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion holds.
	Pass bool `json:"pass"`

	// Imported lists the cubes the fixture contributed, in file order.
	Imported []string `json:"imported"`

	// Plan is the one-line rendering of the evaluated plan.
	Plan string `json:"plan"`

	// Bundle is the derived root bundle. Nil when evaluation failed.
	Bundle *ir.Bundle `json:"bundle,omitempty"`

	// ErrorCode is the planning error code when evaluation failed.
	ErrorCode string `json:"error_code,omitempty"`

	// ErrorMessage is the full planning error text when evaluation failed.
	ErrorMessage string `json:"error_message,omitempty"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Imported: []string{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Failed reports whether evaluation ended in a planning error.
func (r *Result) Failed() bool {
	return r.ErrorCode != ""
}
