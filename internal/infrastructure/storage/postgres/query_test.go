package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khaata/internal/core/apperror"
)

func TestParseOrderBy(t *testing.T) {
	cols := []string{"id", "title", "created_at"}

	got, err := ParseOrderBy("title", cols)
	require.NoError(t, err)
	assert.Equal(t, "title ASC", got)

	got, err = ParseOrderBy("-created_at", cols)
	require.NoError(t, err)
	assert.Equal(t, "created_at DESC", got)

	got, err = ParseOrderBy("", cols)
	require.NoError(t, err)
	assert.Equal(t, "created_at DESC", got)

	_, err = ParseOrderBy("title; DROP TABLE cat_units", cols)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
