package leveldb

import (
	"testing"

	"github.com/otakuverse/ovchain/ovdb"
	"github.com/otakuverse/ovchain/ovdb/dbtest"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

func TestLevelDB(t *testing.T) {
	t.Run("DatabaseSuite", func(t *testing.T) {
		dbtest.TestDatabaseSuite(t, func() ovdb.KeyValueStore {
			db, err := leveldb.Open(storage.NewMemStorage(), nil)
			if err != nil {
				t.Fatal(err)
			}
			return &Database{
				db: db,
			}
		})
	})
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	db, err := New(dir, 0, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Put([]byte("key"), []byte("value")); err != nil {
		t.Fatal(err)
	}
	if db.Path() != dir {
		t.Fatalf("path mismatch: have %s want %s", db.Path(), dir)
	}
	db.Close()

	db, err = New(dir, 0, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	got, err := db.Get([]byte("key"))
	if err != nil || string(got) != "value" {
		t.Fatalf("reopened value mismatch: %q, %v", got, err)
	}
}
