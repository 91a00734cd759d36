package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_UniqueAndSortable(t *testing.T) {
	g := UUIDv7Generator{}

	prev := ""
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := g.Generate()
		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		assert.True(t, prev < id, "ids not time-sortable: %s then %s", prev, id)
		prev = id
	}
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("a", "b")

	assert.Equal(t, "a", g.Generate())
	assert.Equal(t, "b", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestSequenceGenerator(t *testing.T) {
	g := NewSequenceGenerator("tx")

	assert.Equal(t, "tx-000001", g.Generate())
	assert.Equal(t, "tx-000002", g.Generate())
}
