package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	ID      string  `db:"id"`
	Name    *string `db:"name"`
	Skipped string  `db:"-"`
	Plain   string
	hidden  string `db:"hidden"`
}

func TestStructTagValues(t *testing.T) {
	assert.Equal(t, []string{"id", "name"}, StructTagValues(row{}))
	assert.Equal(t, []string{"id", "name"}, StructTagValues(&row{}))
	assert.Panics(t, func() { StructTagValues("not a struct") })
}

func TestStructToMap(t *testing.T) {
	name := "Ana"
	got := StructToMap(&row{ID: "acct_1", Name: &name, Skipped: "x", Plain: "y", hidden: "z"})

	assert.Equal(t, map[string]any{"id": "acct_1", "name": &name}, got)
}

func TestErrorWrapOrNil(t *testing.T) {
	base := errors.New("boom")

	assert.NoError(t, ErrorWrapOrNil(nil, "context"))
	assert.Equal(t, base, ErrorWrapOrNil(base, ""))

	wrapped := ErrorWrapOrNil(base, "failed to fetch")
	assert.EqualError(t, wrapped, "failed to fetch: boom")
	assert.ErrorIs(t, wrapped, base)
}

func TestNanoID(t *testing.T) {
	assert.Len(t, NanoID(), NanoidSize)
	assert.Len(t, NanoIDSize(12), 12)
	assert.NotEqual(t, NanoID(), NanoID())
}
