// Package sqlitedb implements the key-value database layer on a single SQLite
// table.
package sqlitedb

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/otakuverse/ovchain/ovdb"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	k BLOB PRIMARY KEY,
	v BLOB NOT NULL
) WITHOUT ROWID`

// Database is a key-value store persisted in SQLite.
type Database struct {
	sqlDB *sql.DB
	path  string
}

// Open opens (creating if needed) the SQLite file at path.
func Open(path string) (*Database, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := "file:" + cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time; SQLite serializes anyway.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Database{sqlDB: sqlDB, path: cleanPath}, nil
}

// Close closes the SQLite handle.
func (db *Database) Close() error {
	if db == nil || db.sqlDB == nil {
		return nil
	}
	return db.sqlDB.Close()
}

// Path returns the database file.
func (db *Database) Path() string { return db.path }

// Has retrieves if a key is present in the key-value store.
func (db *Database) Has(key []byte) (bool, error) {
	var n int
	err := db.sqlDB.QueryRow(`SELECT COUNT(1) FROM kv WHERE k = ?`, key).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Get retrieves the given key if it's present in the key-value store.
func (db *Database) Get(key []byte) ([]byte, error) {
	var v []byte
	err := db.sqlDB.QueryRow(`SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ovdb.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Put inserts the given value into the key-value store.
func (db *Database) Put(key []byte, value []byte) error {
	_, err := db.sqlDB.Exec(`INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`, key, nonNil(value))
	return err
}

// Delete removes the key from the key-value store.
func (db *Database) Delete(key []byte) error {
	_, err := db.sqlDB.Exec(`DELETE FROM kv WHERE k = ?`, key)
	return err
}

// NewBatch creates a batch that is applied in a single transaction.
func (db *Database) NewBatch() ovdb.Batch {
	return &batch{db: db}
}

// NewIterator snapshots the matching rows in key order.
func (db *Database) NewIterator(prefix []byte, start []byte) ovdb.Iterator {
	from := append(append([]byte{}, prefix...), start...)
	rows, err := db.sqlDB.Query(`SELECT k, v FROM kv WHERE k >= ? ORDER BY k`, nonNil(from))
	if err != nil {
		return &iterator{index: -1, err: err}
	}
	defer rows.Close()

	it := &iterator{index: -1}
	for rows.Next() {
		var k, v []byte
		if err := rows.Scan(&k, &v); err != nil {
			it.err = err
			break
		}
		if !bytes.HasPrefix(k, prefix) {
			break
		}
		it.keys = append(it.keys, k)
		it.values = append(it.values, v)
	}
	if it.err == nil {
		it.err = rows.Err()
	}
	return it
}

type keyvalue struct {
	key    []byte
	value  []byte
	delete bool
}

type batch struct {
	db     *Database
	writes []keyvalue
	size   int
}

func (b *batch) Put(key, value []byte) error {
	b.writes = append(b.writes, keyvalue{copyBytes(key), copyBytes(value), false})
	b.size += len(key) + len(value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.writes = append(b.writes, keyvalue{copyBytes(key), nil, true})
	b.size += len(key)
	return nil
}

func (b *batch) ValueSize() int { return b.size }

func (b *batch) Write() error {
	tx, err := b.db.sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	for _, kv := range b.writes {
		if kv.delete {
			_, err = tx.Exec(`DELETE FROM kv WHERE k = ?`, kv.key)
		} else {
			_, err = tx.Exec(`INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`, kv.key, nonNil(kv.value))
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("write batch: %w", err)
		}
	}
	return tx.Commit()
}

func (b *batch) Reset() {
	b.writes = b.writes[:0]
	b.size = 0
}

type iterator struct {
	index  int
	keys   [][]byte
	values [][]byte
	err    error
}

func (it *iterator) Next() bool {
	if it.index >= len(it.keys) {
		return false
	}
	it.index++
	return it.index < len(it.keys)
}

func (it *iterator) Error() error { return it.err }

func (it *iterator) Key() []byte {
	if it.index < 0 || it.index >= len(it.keys) {
		return nil
	}
	return it.keys[it.index]
}

func (it *iterator) Value() []byte {
	if it.index < 0 || it.index >= len(it.keys) {
		return nil
	}
	return it.values[it.index]
}

func (it *iterator) Release() {
	it.index, it.keys, it.values = -1, nil, nil
}

func copyBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// SQLite stores a nil []byte as NULL.
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
