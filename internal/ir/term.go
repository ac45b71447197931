package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// TermKind classifies a Term.
type TermKind int

const (
	// KindNone is the zero Term.
	KindNone TermKind = iota
	KindIRI
	KindLiteral
	KindBlank
)

func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindLiteral:
		return "literal"
	case KindBlank:
		return "blank"
	default:
		return "none"
	}
}

// Term is an atomic RDF value: an IRI, a literal (plain, typed or
// language-tagged) or a blank node.
//
// Term wraps a quad.Value whose dynamic types are all comparable, so two
// Terms are equal under == exactly when they denote the same value.
type Term struct {
	v quad.Value
}

// IRI creates an IRI term. Compact names such as "ex:Sales" are kept as
// given; expansion is the job of a name resolver.
func IRI(iri string) Term {
	return Term{v: quad.IRI(norm.NFC.String(iri))}
}

// Literal creates a plain string literal.
func Literal(lex string) Term {
	return Term{v: quad.String(norm.NFC.String(lex))}
}

// TypedLiteral creates a literal with a datatype IRI.
func TypedLiteral(lex, datatype string) Term {
	return Term{v: quad.TypedString{
		Value: quad.String(norm.NFC.String(lex)),
		Type:  quad.IRI(norm.NFC.String(datatype)),
	}}
}

// LangLiteral creates a language-tagged literal.
func LangLiteral(lex, lang string) Term {
	return Term{v: quad.LangString{
		Value: quad.String(norm.NFC.String(lex)),
		Lang:  strings.ToLower(lang),
	}}
}

// Blank creates a blank node term with the given identifier.
func Blank(id string) Term {
	return Term{v: quad.BNode(id)}
}

// NewBlank creates a blank node with a fresh identifier.
func NewBlank() Term {
	return Blank("b" + strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", ""))
}

// IntLiteral creates an xsd:integer literal.
func IntLiteral(n int64) Term {
	return TypedLiteral(strconv.FormatInt(n, 10), XSDInteger)
}

// XSDInteger is the datatype used by IntLiteral.
const XSDInteger = "http://www.w3.org/2001/XMLSchema#integer"

// Kind reports what sort of term t is.
func (t Term) Kind() TermKind {
	switch t.v.(type) {
	case quad.IRI:
		return KindIRI
	case quad.String, quad.TypedString, quad.LangString:
		return KindLiteral
	case quad.BNode:
		return KindBlank
	default:
		return KindNone
	}
}

// IsZero reports whether t is the zero Term.
func (t Term) IsZero() bool {
	return t.v == nil
}

// Quad returns the underlying quad value (nil for the zero Term).
func (t Term) Quad() quad.Value {
	return t.v
}

// Value returns the raw text of the term: the IRI without brackets, the
// lexical form of a literal, or "_:id" for a blank node. This is the form
// used in operator renderings.
func (t Term) Value() string {
	switch v := t.v.(type) {
	case quad.IRI:
		return string(v)
	case quad.String:
		return string(v)
	case quad.TypedString:
		return string(v.Value)
	case quad.LangString:
		return string(v.Value)
	case quad.BNode:
		return "_:" + string(v)
	default:
		return ""
	}
}

// Datatype returns the datatype IRI of a typed literal, or "".
func (t Term) Datatype() string {
	if ts, ok := t.v.(quad.TypedString); ok {
		return string(ts.Type)
	}
	return ""
}

// String returns the N-Triples style encoding of t. ParseTerm inverts it.
func (t Term) String() string {
	switch v := t.v.(type) {
	case quad.IRI:
		return "<" + string(v) + ">"
	case quad.String:
		return quoteLexical(string(v))
	case quad.TypedString:
		return quoteLexical(string(v.Value)) + "^^<" + string(v.Type) + ">"
	case quad.LangString:
		return quoteLexical(string(v.Value)) + "@" + v.Lang
	case quad.BNode:
		return "_:" + string(v)
	default:
		return ""
	}
}

// Int returns the integer value of a literal term.
func (t Term) Int() (int64, error) {
	if t.Kind() != KindLiteral {
		return 0, fmt.Errorf("term %s is not a literal", t)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(t.Value()), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("term %s is not an integer: %w", t, err)
	}
	return n, nil
}

// ParseTerm decodes a term from its N-Triples style encoding.
//
// Accepted forms:
//
//	<http://example.org/Sales>   IRI
//	_:b0                         blank node
//	"Germany"                    plain literal
//	"1"^^<xsd:int>               typed literal
//	"Deutschland"@de             language-tagged literal
//	ex:Sales                     anything else is taken as a compact IRI
//
// The empty string decodes to the zero Term.
func ParseTerm(s string) (Term, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Term{}, nil
	case strings.HasPrefix(s, "<"):
		if !strings.HasSuffix(s, ">") {
			return Term{}, fmt.Errorf("unterminated IRI %q", s)
		}
		return IRI(s[1 : len(s)-1]), nil
	case strings.HasPrefix(s, "_:"):
		if len(s) == 2 {
			return Term{}, fmt.Errorf("empty blank node label")
		}
		return Blank(s[2:]), nil
	case strings.HasPrefix(s, `"`):
		return parseLiteral(s)
	default:
		return IRI(s), nil
	}
}

// MustParseTerm is ParseTerm that panics on error. Intended for tests and
// static tables.
func MustParseTerm(s string) Term {
	t, err := ParseTerm(s)
	if err != nil {
		panic(err)
	}
	return t
}

func parseLiteral(s string) (Term, error) {
	end := closingQuote(s)
	if end < 0 {
		return Term{}, fmt.Errorf("unterminated literal %q", s)
	}
	lex, err := unquoteLexical(s[1:end])
	if err != nil {
		return Term{}, fmt.Errorf("literal %q: %w", s, err)
	}
	rest := s[end+1:]
	switch {
	case rest == "":
		return Literal(lex), nil
	case strings.HasPrefix(rest, "^^"):
		dt := rest[2:]
		if strings.HasPrefix(dt, "<") && strings.HasSuffix(dt, ">") {
			dt = dt[1 : len(dt)-1]
		}
		if dt == "" {
			return Term{}, fmt.Errorf("literal %q: empty datatype", s)
		}
		return TypedLiteral(lex, dt), nil
	case strings.HasPrefix(rest, "@") && len(rest) > 1:
		return LangLiteral(lex, rest[1:]), nil
	default:
		return Term{}, fmt.Errorf("literal %q: unexpected suffix %q", s, rest)
	}
}

// closingQuote returns the index of the quote closing the literal that
// starts at s[0], skipping escaped characters.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

var lexicalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func quoteLexical(s string) string {
	return `"` + lexicalEscaper.Replace(s) + `"`
}

func unquoteLexical(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("dangling escape")
		}
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			return "", fmt.Errorf("unknown escape \\%c", s[i])
		}
	}
	return b.String(), nil
}
