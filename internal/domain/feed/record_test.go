package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord_AllFieldsNotApplicable(t *testing.T) {
	rec := NewRecord(AdCatalogSchema)

	values := rec.Values()
	require.Len(t, values, len(AdCatalogSchema.Fields))
	for _, v := range values {
		assert.Equal(t, "", v)
	}

	fv, ok := rec.Get(AdFieldTitle)
	require.True(t, ok)
	assert.False(t, fv.IsApplicable())
}

func TestRecord_Set(t *testing.T) {
	rec := NewRecord(AdCatalogSchema)

	require.NoError(t, rec.Set(AdFieldTitle, Value("Test Album")))
	fv, ok := rec.Get(AdFieldTitle)
	require.True(t, ok)
	assert.True(t, fv.IsApplicable())
	assert.Equal(t, "Test Album", fv.String())

	err := rec.Set("no_such_column", Value("x"))
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestRecord_ValuesInSchemaOrder(t *testing.T) {
	rec := NewRecord(AdCatalogSchema)
	require.NoError(t, rec.Set(AdFieldID, Value("42")))
	require.NoError(t, rec.Set(AdFieldBrand, Value("Example Records")))

	values := rec.Values()
	assert.Equal(t, "42", values[AdCatalogSchema.FieldIndex(AdFieldID)])
	assert.Equal(t, "Example Records", values[AdCatalogSchema.FieldIndex(AdFieldBrand)])
	assert.Equal(t, AdCatalogSchema.Fields, rec.Fields())
}

func TestFieldValue_NotApplicableVsEmpty(t *testing.T) {
	na := NotApplicable()
	empty := Value("")

	assert.Equal(t, "", na.String())
	assert.Equal(t, "", empty.String())
	assert.False(t, na.IsApplicable())
	assert.True(t, empty.IsApplicable())
}

func TestSchema_FieldIndex(t *testing.T) {
	assert.Equal(t, 0, AdCatalogSchema.FieldIndex(AdFieldID))
	assert.Equal(t, -1, AdCatalogSchema.FieldIndex("missing"))
	assert.Equal(t, 0, CommerceSchema.FieldIndex(ComFieldHandle))
	assert.Equal(t, len(CommerceSchema.Fields)-1, CommerceSchema.FieldIndex(ComFieldReleaseDate))
}
