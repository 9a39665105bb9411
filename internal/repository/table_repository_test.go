package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTableFollowsServedCollections(t *testing.T) {
	for _, table := range []string{"profiles", "teams", "stadiums", "matches", "bookings"} {
		assert.NoError(t, checkTable(table), table)
	}
	assert.ErrorIs(t, checkTable("users"), ErrUnknownTable, "auth tables are not reachable through the table API")
	assert.ErrorIs(t, checkTable("bookings; DROP TABLE users"), ErrUnknownTable)
}

func TestCheckIdentRejectsUnsafeNames(t *testing.T) {
	assert.NoError(t, checkIdent("created_at"))
	assert.Error(t, checkIdent("created_at DESC; --"))
	assert.Error(t, checkIdent(""))
}

func TestBuildWherePlaceholdersOnly(t *testing.T) {
	where, args, err := buildWhere(map[string]any{"user_id": "u-1"})
	require.NoError(t, err)
	assert.Equal(t, " WHERE user_id=?", where)
	assert.Equal(t, []any{"u-1"}, args)

	_, _, err = buildWhere(map[string]any{"id=1 OR 1": "x"})
	assert.Error(t, err, "column names are validated, never spliced raw")
}
