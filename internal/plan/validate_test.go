package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vcube/internal/ir"
)

func TestValidate(t *testing.T) {
	conv := NewConversion("c", "ex:f", outputs("ex:a"), outputs("ex:b"))
	merge := NewMerge("m", "ex:f", outputs("ex:a"), outputs("ex:b"), outputs("ex:c"))
	noMembers := NewConversion("bad", "ex:f", outputs("ex:a"), keys(ir.FieldLevelUnique, "ex:l"))

	tests := []struct {
		name string
		op   Operator
		code ir.PlanningErrorCode
	}{
		{"valid convert", NewConvertCube(base("ex:A"), conv, ir.IRI("ex:D")), ""},
		{"valid merge", NewMergeCubes(base("ex:A"), base("ex:B"), merge, ir.IRI("ex:D")), ""},
		{"valid empty projection", NewProjection(base("ex:A"), ir.Relation{}), ""},
		{"nil plan", nil, ir.ErrCodeInvalidOperator},
		{"base cube without cube", &BaseCube{}, ir.ErrCodeInvalidOperator},
		{"projection without input", &Projection{}, ir.ErrCodeInvalidOperator},
		{"projection wrong field", NewProjection(base("ex:A"), keys(ir.FieldDimensionUnique, "ex:x")), ir.ErrCodeMissingField},
		{"slice wrong field", NewSlice(base("ex:A"), keys(ir.FieldMeasureUnique, "ex:x")), ir.ErrCodeMissingField},
		{"missing correspondence", NewConvertCube(base("ex:A"), nil, ir.IRI("ex:D")), ir.ErrCodeMissingCorrespondence},
		{"missing domain", NewConvertCube(base("ex:A"), conv, ir.Term{}), ir.ErrCodeInvalidOperator},
		{"merge with conversion", NewMergeCubes(base("ex:A"), base("ex:B"), conv, ir.IRI("ex:D")), ir.ErrCodeInvalidPairing},
		{"outputs without members", NewConvertCube(base("ex:A"), noMembers, ir.IRI("ex:D")), ir.ErrCodeMissingField},
		{"drill across one input", &DrillAcross{Input1: base("ex:A")}, ir.ErrCodeInvalidOperator},
		{
			"rollup mismatch",
			NewRollup(base("ex:A"), keys(ir.FieldHierarchyUnique, "ex:h1", "ex:h2"), keys(ir.FieldLevelUnique, "ex:l1")),
			ir.ErrCodeInvalidPairing,
		},
		{
			"dice mismatch",
			NewDice(base("ex:A"), keys(ir.FieldHierarchyUnique, "ex:h1"), keys(ir.FieldMemberUnique, "ex:m1", "ex:m2")),
			ir.ErrCodeInvalidPairing,
		},
		{"invalid child", NewSlice(&BaseCube{}, ir.Relation{}), ir.ErrCodeInvalidOperator},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.op)
			if tc.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, ir.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func TestValidateRecordsFailingOperator(t *testing.T) {
	bad := NewConvertCube(base("ex:A"), nil, ir.IRI("ex:D"))
	root := NewDrillAcross(base("ex:B"), bad)

	err := Validate(root)
	var pe *ir.PlanningError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, bad.String(), pe.Op)
}
