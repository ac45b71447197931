package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/plan"
	"github.com/roach88/vcube/internal/render"
	"github.com/roach88/vcube/internal/restriction"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Plan     string // Rendering of the evaluated plan
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Plan != "" {
		fmt.Fprintf(&buf, "  Plan: %s\n", e.Plan)
	}

	return buf.String()
}

// AssertionContext carries what assertions need beyond the result.
type AssertionContext struct {
	Op       plan.Operator
	Mode     plan.Mode
	Resolver restriction.NameResolver
}

// EvaluateAssertions checks every assertion and returns one message per
// failure. A planning error with no error assertion expecting it is a
// failure of its own.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string

	expectsError := false
	for _, a := range assertions {
		if a.Type == AssertError {
			expectsError = true
		}
		if err := evaluateAssertion(result, a, actx); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if result.Failed() && !expectsError {
		errs = append(errs, (&AssertionError{
			Type:     "evaluation",
			Expected: "evaluation to succeed",
			Actual:   result.ErrorMessage,
			Plan:     result.Plan,
		}).Error())
	}

	return errs
}

func evaluateAssertion(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertRendering:
		return assertRendering(result, a)
	case AssertMarkup:
		return assertMarkup(result, a, actx)
	case AssertKeys:
		return assertKeys(result, a, actx)
	case AssertCount:
		return assertCount(result, a)
	case AssertError:
		return assertError(result, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func assertRendering(result *Result, a Assertion) error {
	if result.Plan == a.Value {
		return nil
	}
	return &AssertionError{Type: AssertRendering, Expected: a.Value, Actual: result.Plan}
}

func assertMarkup(result *Result, a Assertion, actx *AssertionContext) error {
	if actx == nil || actx.Op == nil {
		return fmt.Errorf("markup assertion needs the evaluated plan")
	}
	got, err := render.Markup(actx.Op, actx.Mode)
	if err != nil {
		return &AssertionError{Type: AssertMarkup, Expected: "markup", Actual: err.Error(), Plan: result.Plan}
	}
	if strings.TrimSpace(got) == strings.TrimSpace(a.Value) {
		return nil
	}
	return &AssertionError{
		Type:     AssertMarkup,
		Expected: "\n" + strings.TrimSpace(a.Value),
		Actual:   "\n" + strings.TrimSpace(got),
		Plan:     result.Plan,
	}
}

func assertKeys(result *Result, a Assertion, actx *AssertionContext) error {
	rel, err := relationOf(result, a)
	if err != nil {
		return err
	}
	kind, _ := ir.ParseKind(a.Relation)

	var resolver restriction.NameResolver = (*restriction.PrefixResolver)(nil)
	if actx != nil && actx.Resolver != nil {
		resolver = actx.Resolver
	}
	want := make([]string, len(a.Keys))
	for i, k := range a.Keys {
		t, err := resolver.Resolve(k)
		if err != nil {
			return fmt.Errorf("assertion %s: resolve %q: %w", AssertKeys, k, err)
		}
		want[i] = t.Value()
	}

	got := KeyValues(rel, kind)
	if slices.Equal(want, got) {
		return nil
	}
	return &AssertionError{
		Type:     AssertKeys + " " + a.Relation,
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", got),
		Plan:     result.Plan,
	}
}

func assertCount(result *Result, a Assertion) error {
	rel, err := relationOf(result, a)
	if err != nil {
		return err
	}
	if rel.Len() == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertCount + " " + a.Relation,
		Expected: fmt.Sprintf("%d rows", a.Count),
		Actual:   fmt.Sprintf("%d rows", rel.Len()),
		Plan:     result.Plan,
	}
}

func assertError(result *Result, a Assertion) error {
	if result.ErrorCode == a.Code {
		return nil
	}
	actual := "evaluation succeeded"
	if result.Failed() {
		actual = result.ErrorMessage
	}
	return &AssertionError{Type: AssertError, Expected: a.Code, Actual: actual, Plan: result.Plan}
}

func relationOf(result *Result, a Assertion) (ir.Relation, error) {
	kind, ok := ir.ParseKind(a.Relation)
	if !ok {
		return ir.Relation{}, fmt.Errorf("assertion %s: unknown relation %q", a.Type, a.Relation)
	}
	if result.Bundle == nil {
		return ir.Relation{}, &AssertionError{
			Type:     a.Type + " " + a.Relation,
			Expected: "a derived bundle",
			Actual:   "evaluation failed: " + result.ErrorMessage,
			Plan:     result.Plan,
		}
	}
	return result.Bundle.Relation(kind), nil
}

// KeyValues returns the key column of rel for its kind, as raw values in
// row order. A relation without the key field yields nil.
func KeyValues(rel ir.Relation, kind ir.Kind) []string {
	col, err := rel.Column(kind.KeyField())
	if err != nil {
		return nil
	}
	out := make([]string, len(col))
	for i, t := range col {
		out[i] = t.Value()
	}
	return out
}
