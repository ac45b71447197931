package compiler

import (
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/plan"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedType = "E100" // unsupported type for validation

	// Plan errors (E101-E109), one per planning error code
	ErrInvalidOperator       = "E101" // operator without cube, input or domain
	ErrMissingField          = "E102" // operand relation lacks its key field
	ErrInvalidPairing        = "E103" // dice/rollup/convert arity mismatch
	ErrMissingCorrespondence = "E104" // convert without correspondence
	ErrDepthExceeded         = "E105" // plan deeper than plan.MaxDepth
	ErrInvalidPlan           = "E109" // any other planning error

	// Correspondence errors (E110-E119)
	ErrCorrespondenceNoOutputs = "E110" // outputs list is empty
	ErrCorrespondenceUnused    = "E111" // no plan refers to the correspondence
	ErrCorrespondenceNoInputs  = "E112" // inputs1 list is empty
)

// ValidationError represents a plan document validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled plans and correspondences.
// Returns all errors found (does not fail-fast across plans).
// Supports *Document, plan.Operator and *plan.Correspondence.
func Validate(v any) []ValidationError {
	switch x := v.(type) {
	case *Document:
		return validateDocument(x)
	case *plan.Correspondence:
		return validateCorrespondence(x)
	case plan.Operator:
		return validatePlan("plan", x)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type: %T", v),
			Code:    ErrUnsupportedType,
		}}
	}
}

func validateDocument(doc *Document) []ValidationError {
	var errs []ValidationError

	used := make(map[string]bool)
	for _, name := range doc.PlanNames {
		op := doc.Plans[name]
		errs = append(errs, validatePlan("plan."+name, op)...)
		markCorrespondences(op, used)
	}

	names := make([]string, 0, len(doc.Correspondences))
	for name := range doc.Correspondences {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		errs = append(errs, validateCorrespondence(doc.Correspondences[name])...)
		if !used[name] {
			errs = append(errs, ValidationError{
				Field:   "correspondence." + name,
				Message: "correspondence is not used by any plan",
				Code:    ErrCorrespondenceUnused,
			})
		}
	}
	return errs
}

// markCorrespondences records the correspondences op refers to. Plans that
// fail traversal are already reported by validatePlan.
func markCorrespondences(op plan.Operator, used map[string]bool) {
	_ = plan.Walk(op, plan.ModeStructural, func(n plan.Operator) error {
		if c, ok := n.(*plan.ConvertCube); ok && c.Correspondence != nil {
			used[c.Correspondence.Name()] = true
		}
		return nil
	})
}

func validatePlan(field string, op plan.Operator) []ValidationError {
	err := plan.Validate(op)
	if err == nil {
		return nil
	}
	var pe *ir.PlanningError
	if !errors.As(err, &pe) {
		return []ValidationError{{Field: field, Message: err.Error(), Code: ErrInvalidPlan}}
	}
	return []ValidationError{{Field: field, Message: pe.Error(), Code: planningCode(pe.Code)}}
}

func planningCode(code ir.PlanningErrorCode) string {
	switch code {
	case ir.ErrCodeInvalidOperator:
		return ErrInvalidOperator
	case ir.ErrCodeMissingField:
		return ErrMissingField
	case ir.ErrCodeInvalidPairing:
		return ErrInvalidPairing
	case ir.ErrCodeMissingCorrespondence:
		return ErrMissingCorrespondence
	case ir.ErrCodeDepthExceeded:
		return ErrDepthExceeded
	default:
		return ErrInvalidPlan
	}
}

func validateCorrespondence(c *plan.Correspondence) []ValidationError {
	var errs []ValidationError
	field := "correspondence." + c.Name()

	if c.Inputs1().Len() == 0 {
		errs = append(errs, ValidationError{
			Field:   field + ".inputs1",
			Message: "at least one input mapping is required",
			Code:    ErrCorrespondenceNoInputs,
		})
	}
	if c.Outputs().Len() == 0 {
		errs = append(errs, ValidationError{
			Field:   field + ".outputs",
			Message: "at least one output member is required",
			Code:    ErrCorrespondenceNoOutputs,
		})
	}
	return errs
}
