package migrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestApplyRunsEachFileOnce(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	migrations := fstest.MapFS{
		"002_seed.sql":   {Data: []byte("INSERT INTO things (name) VALUES ('first');")},
		"001_schema.sql": {Data: []byte("CREATE TABLE things (name TEXT NOT NULL);\nCREATE INDEX idx_things_name ON things (name);")},
		"README.md":      {Data: []byte("ignored")},
	}

	require.NoError(t, Apply(ctx, db, migrations, Question))
	require.NoError(t, Apply(ctx, db, migrations, Question))

	var things int
	require.NoError(t, db.QueryRow("SELECT COUNT(1) FROM things").Scan(&things))
	assert.Equal(t, 1, things)

	var applied int
	require.NoError(t, db.QueryRow("SELECT COUNT(1) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, 2, applied)
}

func TestApplyRollsBackFailedMigration(t *testing.T) {
	db := openDB(t)
	migrations := fstest.MapFS{
		"001_broken.sql": {Data: []byte("CREATE TABLE ok (id INTEGER); NOT SQL AT ALL;")},
	}

	err := Apply(context.Background(), db, migrations, Question)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001_broken.sql")

	var applied int
	require.NoError(t, db.QueryRow("SELECT COUNT(1) FROM schema_migrations").Scan(&applied))
	assert.Zero(t, applied)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", Question(3))
	assert.Equal(t, "$3", Dollar(3))
}

func TestSplitStatements(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, splitStatements(" A;\n\n B ;  ;"))
}
