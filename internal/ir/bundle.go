package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Kind identifies one of the six metadata relations of a Bundle.
type Kind int

const (
	KindCubes Kind = iota
	KindMeasures
	KindDimensions
	KindHierarchies
	KindLevels
	KindMembers
)

// Kinds lists every Kind in bundle order.
var Kinds = []Kind{KindCubes, KindMeasures, KindDimensions, KindHierarchies, KindLevels, KindMembers}

// String returns the relation name, which is also its table name in the store.
func (k Kind) String() string {
	switch k {
	case KindCubes:
		return "cubes"
	case KindMeasures:
		return "measures"
	case KindDimensions:
		return "dimensions"
	case KindHierarchies:
		return "hierarchies"
	case KindLevels:
		return "levels"
	case KindMembers:
		return "members"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Header returns the canonical header for the kind.
func (k Kind) Header() Header {
	switch k {
	case KindCubes:
		return CubesHeader
	case KindMeasures:
		return MeasuresHeader
	case KindDimensions:
		return DimensionsHeader
	case KindHierarchies:
		return HierarchiesHeader
	case KindLevels:
		return LevelsHeader
	case KindMembers:
		return MembersHeader
	default:
		return nil
	}
}

// KeyField returns the unique-name field rows of this kind are keyed by.
func (k Kind) KeyField() string {
	switch k {
	case KindCubes:
		return FieldCubeName
	case KindMeasures:
		return FieldMeasureUnique
	case KindDimensions:
		return FieldDimensionUnique
	case KindHierarchies:
		return FieldHierarchyUnique
	case KindLevels:
		return FieldLevelUnique
	case KindMembers:
		return FieldMemberUnique
	default:
		return ""
	}
}

// ParseKind maps a relation name back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for _, k := range Kinds {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// Bundle is the six-relation metadata snapshot visible at one node of a plan.
type Bundle struct {
	Cubes       Relation `json:"cubes"`
	Measures    Relation `json:"measures"`
	Dimensions  Relation `json:"dimensions"`
	Hierarchies Relation `json:"hierarchies"`
	Levels      Relation `json:"levels"`
	Members     Relation `json:"members"`
}

// EmptyBundle returns a bundle of header-only relations.
func EmptyBundle() *Bundle {
	b := &Bundle{}
	for _, k := range Kinds {
		b.Set(k, EmptyRelation(k.Header()))
	}
	return b
}

// Relation returns the relation of the given kind.
func (b *Bundle) Relation(k Kind) Relation {
	switch k {
	case KindCubes:
		return b.Cubes
	case KindMeasures:
		return b.Measures
	case KindDimensions:
		return b.Dimensions
	case KindHierarchies:
		return b.Hierarchies
	case KindLevels:
		return b.Levels
	case KindMembers:
		return b.Members
	default:
		return Relation{}
	}
}

// Set replaces the relation of the given kind.
func (b *Bundle) Set(k Kind, r Relation) {
	switch k {
	case KindCubes:
		b.Cubes = r
	case KindMeasures:
		b.Measures = r
	case KindDimensions:
		b.Dimensions = r
	case KindHierarchies:
		b.Hierarchies = r
	case KindLevels:
		b.Levels = r
	case KindMembers:
		b.Members = r
	}
}

// With returns a shallow copy of b with the relation of kind k replaced.
// Relations are immutable values, so sharing them between bundles is safe.
func (b *Bundle) With(k Kind, r Relation) *Bundle {
	out := *b
	out.Set(k, r)
	return &out
}

// Validate checks that every relation carries the key field of its kind.
func (b *Bundle) Validate() error {
	for _, k := range Kinds {
		if !b.Relation(k).Has(k.KeyField()) {
			return NewPlanningError(ErrCodeMissingField, "%s relation has no field %s", k, k.KeyField())
		}
	}
	return nil
}

// Domain prefix for bundle content hashes. The version suffix allows the
// encoding to change without colliding with older hashes.
const DomainBundle = "vcube/bundle/v1"

// Hash computes a content hash of the bundle:
// SHA256(domain + 0x00 + JSON wire encoding).
func (b *Bundle) Hash() (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("marshal bundle: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(DomainBundle))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
