package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB_CreatesTables(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "")
	require.NoError(t, err, "InitDB should not return an error")
	defer teardown()

	for _, table := range []string{"players", "matches", "rating_history", "seasons"} {
		var name string
		err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "Querying for %s table should not produce an error", table)
		assert.Equal(t, table, name)
	}
}

func TestInitDB_OpensFirstSeason(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer teardown()

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM seasons WHERE ended_at IS NULL"))
	assert.Equal(t, 1, count)
}

func TestInitDB_EnforcesForeignKeys(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer teardown()

	_, err = db.Exec(`INSERT INTO rating_history (player_id, match_id, rating_before, rating_after, rating_change, created_at)
		VALUES (42, 42, 1000, 1050, 50, 0)`)
	assert.Error(t, err, "history rows must reference an existing player and match")
}
