package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyBundle(t *testing.T) {
	b := EmptyBundle()
	for _, k := range Kinds {
		rel := b.Relation(k)
		assert.Equal(t, k.Header(), rel.Header(), k.String())
		assert.Zero(t, rel.Len())
		assert.True(t, rel.Has(k.KeyField()))
	}
	require.NoError(t, b.Validate())
}

func TestBundleWithDoesNotAlias(t *testing.T) {
	b := EmptyBundle()
	dimsRel := MustRelation(DimensionsHeader, Tuple{
		Literal(""), Literal(""), IRI("ex:Sales"),
		Literal("Time"), IRI("ex:Time"), Literal("Time"),
		IntLiteral(1), Literal(""), Literal(""),
	})
	c := b.With(KindDimensions, dimsRel)
	assert.Zero(t, b.Dimensions.Len())
	assert.Equal(t, 1, c.Dimensions.Len())
}

func TestBundleValidateMissingKey(t *testing.T) {
	b := EmptyBundle().With(KindLevels, MustRelation(Header{"?OTHER"}))
	err := b.Validate()
	assert.True(t, HasCode(err, ErrCodeMissingField))
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, ok := ParseKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("facts")
	assert.False(t, ok)
}

func TestBundleJSONAndHash(t *testing.T) {
	b := EmptyBundle()
	data, err := json.Marshal(b)
	require.NoError(t, err)

	var back Bundle
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, b.Members.Equal(back.Members))

	h1, err := b.Hash()
	require.NoError(t, err)
	h2, err := back.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	changed := b.With(KindMeasures, KeyRelation(FieldMeasureUnique, IRI("ex:Revenue")))
	h3, err := changed.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}
