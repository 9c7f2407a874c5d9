package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	base := stderrors.New("record not found")

	err := New(base).
		Component("datastore").
		Category(CategoryNotFound).
		Context("pokemon_id", 42).
		Build()

	assert.Equal(t, "record not found", err.Error())
	assert.Equal(t, "datastore", err.GetComponent())
	assert.Equal(t, string(CategoryNotFound), err.GetCategory())
	assert.Equal(t, 42, err.GetContext()["pokemon_id"])
	assert.True(t, Is(err, base))
}

func TestNewfWrapsFormattedMessage(t *testing.T) {
	err := Newf("type with id %d does not exist", 7).
		Category(CategoryNotFound).
		Build()

	assert.Equal(t, "type with id 7 does not exist", err.Error())
}

func TestCategoryOf(t *testing.T) {
	enhanced := Newf("bad input").Category(CategoryValidation).Build()
	assert.Equal(t, CategoryValidation, CategoryOf(enhanced))

	plain := stderrors.New("plain")
	assert.Equal(t, CategoryGeneric, CategoryOf(plain))

	wrapped := stderrors.Join(stderrors.New("outer"), enhanced)
	assert.Equal(t, CategoryValidation, CategoryOf(wrapped))
}

func TestIsMatchesByCategory(t *testing.T) {
	a := Newf("one").Category(CategoryUpload).Build()
	b := Newf("two").Category(CategoryUpload).Build()
	c := Newf("three").Category(CategoryDatabase).Build()

	require.True(t, a.Is(b))
	require.False(t, a.Is(c))
}

func TestGetContextReturnsCopy(t *testing.T) {
	err := Newf("x").Context("k", "v").Build()
	ctx := err.GetContext()
	ctx["k"] = "mutated"
	assert.Equal(t, "v", err.GetContext()["k"])
}
