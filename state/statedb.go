package state

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/log"
	"github.com/otakuverse/ovchain/ovdb"
)

// DefaultCacheSize is the number of clean records kept in memory.
const DefaultCacheSize = 4096

var recordPrefix = []byte("r")

func recordKey(addr common.Address) []byte {
	return append(append(make([]byte, 0, len(recordPrefix)+common.AddressLength), recordPrefix...), addr[:]...)
}

// StateDB holds uncommitted record writes over a key/value store.
//
// Reads are served from the dirty set, then the clean cache, then disk.
// Concurrent readers are safe; writers must be serialized by the caller.
type StateDB struct {
	db    ovdb.KeyValueStore
	clean *lru.Cache

	lock  sync.RWMutex
	dirty map[common.Address][]byte

	// First failed disk read. GetRecord has no error return, so the
	// failure is kept here and Commit refuses to run while it is set.
	dbErr error
}

// New creates a StateDB over db with a clean cache of cacheSize records.
func New(db ovdb.KeyValueStore, cacheSize int) (*StateDB, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &StateDB{
		db:    db,
		clean: cache,
		dirty: make(map[common.Address][]byte),
	}, nil
}

// setError remembers the first non-nil error it is called with.
func (s *StateDB) setError(err error) {
	s.lock.Lock()
	if s.dbErr == nil {
		s.dbErr = err
	}
	s.lock.Unlock()
}

// Error returns the memoized database failure, if any.
func (s *StateDB) Error() error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.dbErr
}

// GetRecord returns a copy of the record stored at addr, or nil.
func (s *StateDB) GetRecord(addr common.Address) []byte {
	s.lock.RLock()
	data, ok := s.dirty[addr]
	s.lock.RUnlock()
	if ok {
		return common.CopyBytes(data)
	}
	if cached, ok := s.clean.Get(addr); ok {
		return common.CopyBytes(cached.([]byte))
	}
	enc, err := s.db.Get(recordKey(addr))
	if err == ovdb.ErrNotFound {
		return nil
	}
	if err != nil {
		s.setError(fmt.Errorf("get record %s: %w", addr, err))
		return nil
	}
	s.clean.Add(addr, enc)
	return common.CopyBytes(enc)
}

// HasRecord reports whether a record exists at addr.
func (s *StateDB) HasRecord(addr common.Address) bool {
	return s.GetRecord(addr) != nil
}

// SetRecord stages data at addr until Commit.
func (s *StateDB) SetRecord(addr common.Address, data []byte) {
	s.lock.Lock()
	s.dirty[addr] = common.CopyBytes(data)
	s.lock.Unlock()
}

// Dirty returns the number of uncommitted records.
func (s *StateDB) Dirty() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.dirty)
}

// Discard drops every uncommitted write.
func (s *StateDB) Discard() {
	s.lock.Lock()
	s.dirty = make(map[common.Address][]byte)
	s.lock.Unlock()
}

// Commit flushes the dirty records to disk in one atomic batch and returns
// how many records were written. On failure nothing is written and the dirty
// set is kept.
func (s *StateDB) Commit() (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.dbErr != nil {
		return 0, fmt.Errorf("commit aborted due to earlier error: %v", s.dbErr)
	}
	if len(s.dirty) == 0 {
		return 0, nil
	}
	addrs := make([]common.Address, 0, len(s.dirty))
	for addr := range s.dirty {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })

	// The whole dirty set goes out in a single batch so a failed write
	// leaves disk untouched and the records staged for a retry.
	batch := s.db.NewBatch()
	for _, addr := range addrs {
		if err := batch.Put(recordKey(addr), s.dirty[addr]); err != nil {
			return 0, err
		}
	}
	if err := batch.Write(); err != nil {
		return 0, fmt.Errorf("commit %d records: %w", len(addrs), err)
	}
	for _, addr := range addrs {
		s.clean.Add(addr, s.dirty[addr])
	}
	n := len(s.dirty)
	s.dirty = make(map[common.Address][]byte)
	log.Debug("Committed records", "count", n)
	return n, nil
}

// ForEachRecord calls fn for every record in address order, committed and
// staged alike. Iteration stops when fn returns false.
func (s *StateDB) ForEachRecord(fn func(addr common.Address, data []byte) bool) error {
	s.lock.RLock()
	staged := make(map[common.Address][]byte, len(s.dirty))
	for addr, data := range s.dirty {
		staged[addr] = data
	}
	s.lock.RUnlock()

	merged := make(map[common.Address][]byte)
	it := s.db.NewIterator(recordPrefix, nil)
	for it.Next() {
		key := it.Key()
		if len(key) != len(recordPrefix)+common.AddressLength || !bytes.HasPrefix(key, recordPrefix) {
			continue
		}
		merged[common.BytesToAddress(key[len(recordPrefix):])] = common.CopyBytes(it.Value())
	}
	err := it.Error()
	it.Release()
	if err != nil {
		return err
	}
	for addr, data := range staged {
		merged[addr] = data
	}
	addrs := make([]common.Address, 0, len(merged))
	for addr := range merged {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })
	for _, addr := range addrs {
		if !fn(addr, merged[addr]) {
			break
		}
	}
	return nil
}

var _ RecordDB = (*StateDB)(nil)
