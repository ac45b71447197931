package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vcube/internal/ir"
)

func TestDiceFilter(t *testing.T) {
	d := NewDice(base("ex:Sales"),
		keys(ir.FieldHierarchyUnique, "ex:GeoH", "ex:TimeH"),
		keys(ir.FieldMemberUnique, "ex:DE", "ex:Y2020"),
		keys(ir.FieldMemberUnique, "ex:FR", "ex:Y2020"),
	)

	f, err := d.Filter()
	require.NoError(t, err)
	require.Len(t, f, 2)

	assert.Equal(t, []ir.Term{ir.IRI("ex:GeoH"), ir.IRI("ex:TimeH")}, f.Hierarchies())
	assert.Equal(t, []ir.Term{ir.IRI("ex:DE"), ir.IRI("ex:FR")}, f.Members(ir.IRI("ex:GeoH")))
	assert.Equal(t, []ir.Term{ir.IRI("ex:Y2020")}, f.Members(ir.IRI("ex:TimeH")))

	assert.True(t, f.Matches(map[ir.Term]ir.Term{
		ir.IRI("ex:GeoH"):  ir.IRI("ex:FR"),
		ir.IRI("ex:TimeH"): ir.IRI("ex:Y2020"),
	}))
	assert.False(t, f.Matches(map[ir.Term]ir.Term{
		ir.IRI("ex:GeoH"):  ir.IRI("ex:FR"),
		ir.IRI("ex:TimeH"): ir.IRI("ex:Y2021"),
	}))
	assert.False(t, f.Matches(map[ir.Term]ir.Term{ir.IRI("ex:GeoH"): ir.IRI("ex:DE")}))
}

func TestDiceFilterArityMismatch(t *testing.T) {
	d := NewDice(base("ex:Sales"),
		keys(ir.FieldHierarchyUnique, "ex:GeoH", "ex:TimeH"),
		keys(ir.FieldMemberUnique, "ex:DE"),
	)
	_, err := d.Filter()
	assert.True(t, ir.HasCode(err, ir.ErrCodeInvalidPairing))
	assert.Equal(t, "Dice (BaseCube (ex:Sales), <invalid filter>)", d.String())
}

func TestEmptyFilter(t *testing.T) {
	var f Filter
	assert.Equal(t, "", f.String())
	assert.False(t, f.Matches(nil))
}
