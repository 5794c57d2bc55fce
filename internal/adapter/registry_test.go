package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Names(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "sqlite")
	assert.Contains(t, names, "duckdb")
	assert.Contains(t, names, "postgres")
}

func TestRegistry_New(t *testing.T) {
	a, err := New("sqlite")
	require.NoError(t, err)
	assert.IsType(t, &SQLiteAdapter{}, a)

	_, err = New("oracle")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown adapter")
}
