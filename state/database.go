// Package state is the record store: every piece of ledger state lives in a
// record addressed by a derived 32-byte address.
package state

import (
	"errors"
	"fmt"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/record"
)

var (
	// ErrNotFound is returned when a record is required but absent.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when creating a record at an occupied
	// address.
	ErrAlreadyExists = errors.New("record already exists")
)

// RecordDB is the record store capability consumed by every engine.
// Implementations are the committed StateDB and the per-operation write
// buffers layered on top of it.
type RecordDB interface {
	// GetRecord returns the encoded record at addr, or nil if absent.
	GetRecord(addr common.Address) []byte
	// SetRecord stores the encoded record at addr.
	SetRecord(addr common.Address, data []byte)
	// HasRecord reports whether a record exists at addr.
	HasRecord(addr common.Address) bool
}

// Create encodes v and stores it at addr. It fails if addr already holds a
// record.
func Create(db RecordDB, addr common.Address, v record.Value) error {
	if db.HasRecord(addr) {
		return fmt.Errorf("%w: %s at %s", ErrAlreadyExists, v.RecordKind(), addr)
	}
	return put(db, addr, v)
}

// Read decodes the record at addr into v.
func Read(db RecordDB, addr common.Address, v record.Value) error {
	data := db.GetRecord(addr)
	if data == nil {
		return fmt.Errorf("%w: %s at %s", ErrNotFound, v.RecordKind(), addr)
	}
	return record.Decode(data, v)
}

// Mutate overwrites the existing record at addr with v.
func Mutate(db RecordDB, addr common.Address, v record.Value) error {
	if !db.HasRecord(addr) {
		return fmt.Errorf("%w: %s at %s", ErrNotFound, v.RecordKind(), addr)
	}
	return put(db, addr, v)
}

// Put stores v at addr whether or not a record exists there already.
func Put(db RecordDB, addr common.Address, v record.Value) error {
	return put(db, addr, v)
}

func put(db RecordDB, addr common.Address, v record.Value) error {
	data, err := record.Encode(v)
	if err != nil {
		return err
	}
	db.SetRecord(addr, data)
	return nil
}
