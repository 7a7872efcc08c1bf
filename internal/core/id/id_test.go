package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsTimeOrdered(t *testing.T) {
	a := New()
	b := New()
	assert.Equal(t, 7, int(a.Version()))
	assert.Less(t, a.String(), b.String())
}

func TestParseList(t *testing.T) {
	a, b := New(), New()

	ids, err := ParseList(a.String() + ", " + b.String() + ",")
	require.NoError(t, err)
	assert.Equal(t, []ID{a, b}, ids)

	_, err = ParseList("not-a-uuid")
	assert.Error(t, err)

	_, err = ParseList(" , ")
	assert.Error(t, err)
}
