package sqlitedb

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/otakuverse/ovchain/ovdb"
	"github.com/otakuverse/ovchain/ovdb/dbtest"
)

func TestSQLiteDB(t *testing.T) {
	dir := t.TempDir()
	n := 0
	t.Run("DatabaseSuite", func(t *testing.T) {
		dbtest.TestDatabaseSuite(t, func() ovdb.KeyValueStore {
			n++
			db, err := Open(filepath.Join(dir, fmt.Sprintf("kv-%d.sqlite", n)))
			if err != nil {
				t.Fatal(err)
			}
			return db
		})
	})
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("expected empty path to be rejected")
	}
}
