package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vcube/internal/ir"
)

func TestCompileCorrespondenceConversion(t *testing.T) {
	v := compileString(t, `
		correspondence: toEuro: {
			function: "fx"
			inputs1: [{dimension: "ex:Geo", member: "ex:DE"}]
			outputs: [{
				dimension_unique_name: "ex:Geo"
				hierarchy_unique_name: "ex:GeoH"
				level_unique_name: "ex:Country"
				level_number: 1
				member_unique_name: "ex:DE"
				member_name: "DE"
				parent_unique_name: "ex:Europe"
				parent_level: 0
			}]
		}
	`)

	c, err := CompileCorrespondence(v.LookupPath(cue.ParsePath("correspondence.toEuro")), nil)
	require.NoError(t, err)

	assert.Equal(t, "toEuro", c.Name())
	assert.Equal(t, "fx", c.Function())
	assert.False(t, c.IsMerge())
	assert.Equal(t, inputHeader, c.Inputs1().Header())
	assert.Equal(t, 1, c.Inputs1().Len())

	out := c.Outputs()
	assert.Equal(t, ir.MembersHeader, out.Header())
	require.Equal(t, 1, out.Len())
	row := out.Row(0)
	assert.Equal(t, ir.IRI("ex:DE"), out.Get(row, ir.FieldMemberUnique))
	assert.Equal(t, ir.Literal("DE"), out.Get(row, ir.FieldMemberName))
	assert.Equal(t, ir.IntLiteral(1), out.Get(row, ir.FieldLevelNumber))
	assert.Equal(t, ir.IntLiteral(0), out.Get(row, ir.FieldParentLevel))
	assert.Equal(t, ir.Literal(""), out.Get(row, ir.FieldMemberCaption))
}

func TestCompileCorrespondenceMerge(t *testing.T) {
	v := compileString(t, `
		correspondence: union: {
			function: "merge"
			inputs1: [{dimension: "ex:Geo", member: "ex:DE"}]
			inputs2: [{dimension: "ex:Geo", member: "ex:DE"}, {dimension: "ex:Geo", member: "ex:FR"}]
			outputs: [{member_unique_name: "ex:DE"}, {member_unique_name: "ex:FR"}]
		}
	`)

	c, err := CompileCorrespondence(v.LookupPath(cue.ParsePath("correspondence.union")), nil)
	require.NoError(t, err)
	assert.True(t, c.IsMerge())
	in2, ok := c.Inputs2()
	require.True(t, ok)
	assert.Equal(t, 2, in2.Len())
	assert.Equal(t, 2, c.Outputs().Len())
}

func TestCompileCorrespondenceErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing function",
			body: `{inputs1: [], outputs: []}`,
			want: "function is required",
		},
		{
			name: "missing inputs1",
			body: `{function: "f", outputs: []}`,
			want: "inputs1 is required",
		},
		{
			name: "missing outputs",
			body: `{function: "f", inputs1: []}`,
			want: "outputs are required",
		},
		{
			name: "input without member",
			body: `{function: "f", inputs1: [{dimension: "ex:Geo"}], outputs: []}`,
			want: "correspondence.c.inputs1[0].member: member is required",
		},
		{
			name: "unknown output field",
			body: `{function: "f", inputs1: [], outputs: [{member_unique_name: "ex:a", colour: "red"}]}`,
			want: `unknown member field "colour"`,
		},
		{
			name: "output without unique name",
			body: `{function: "f", inputs1: [], outputs: [{member_name: "a"}]}`,
			want: "member_unique_name is required",
		},
		{
			name: "level number not an int",
			body: `{function: "f", inputs1: [], outputs: [{member_unique_name: "ex:a", level_number: "one"}]}`,
			want: "cue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := compileString(t, "correspondence: c: "+tt.body)
			_, err := CompileCorrespondence(v.LookupPath(cue.ParsePath("correspondence.c")), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
