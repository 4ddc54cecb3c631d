package configlibsql

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const testSchema = `
create table if not exists notes (
    id integer primary key,
    body text not null
);
`

func TestOpenDBUnconfigured(t *testing.T) {
	_, err := Struct{}.OpenDB(testSchema)
	require.Error(t, err)
}

func TestOpenDBFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "manifest.db")
	db, err := Struct{File: file}.OpenDB(testSchema)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	err = db.QueryRow("PRAGMA journal_mode").Scan(&mode)
	require.NoError(t, err)
	require.Equal(t, "wal", mode)

	_, err = db.Exec("insert into notes (body) values (?)", "clip the dem")
	require.NoError(t, err)
}

func TestOpenDBMemory(t *testing.T) {
	db, err := Struct{File: ":memory:"}.OpenDB(testSchema)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("insert into notes (body) values (?)", "union the basins")
	require.NoError(t, err)
}
