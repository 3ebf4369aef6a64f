package parallel

import (
	"sort"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/state"
)

// WriteBuf implements state.RecordDB, wrapping a read-only parent.
// Reads are served from a local overlay first, then the parent.
// Writes go to the local overlay only.
//
// Every message runs on its own WriteBuf. After execution the overlay of a
// successful message is merged into the real state; a failed message's
// overlay is dropped, which makes each operation all-or-nothing.
type WriteBuf struct {
	parent state.RecordDB // read-only while the buffer is live

	writes  map[common.Address][]byte
	touched map[common.Address]struct{}
}

// NewWriteBuf creates a new overlay backed by parent.
func NewWriteBuf(parent state.RecordDB) *WriteBuf {
	return &WriteBuf{
		parent:  parent,
		writes:  make(map[common.Address][]byte),
		touched: make(map[common.Address]struct{}),
	}
}

func (b *WriteBuf) GetRecord(addr common.Address) []byte {
	if data, ok := b.writes[addr]; ok {
		return common.CopyBytes(data)
	}
	b.touched[addr] = struct{}{}
	return b.parent.GetRecord(addr)
}

func (b *WriteBuf) HasRecord(addr common.Address) bool {
	if _, ok := b.writes[addr]; ok {
		return true
	}
	b.touched[addr] = struct{}{}
	return b.parent.HasRecord(addr)
}

func (b *WriteBuf) SetRecord(addr common.Address, data []byte) {
	b.writes[addr] = common.CopyBytes(data)
}

// Len returns the number of buffered writes.
func (b *WriteBuf) Len() int { return len(b.writes) }

// Written returns the buffered addresses in ascending order.
func (b *WriteBuf) Written() []common.Address {
	return sortedAddrs(b.writes)
}

// Touched returns the addresses read through to the parent, in ascending
// order.
func (b *WriteBuf) Touched() []common.Address {
	return sortedAddrs(b.touched)
}

// Merge applies the overlay writes to dst in address order.
func (b *WriteBuf) Merge(dst state.RecordDB) {
	for _, addr := range b.Written() {
		dst.SetRecord(addr, b.writes[addr])
	}
}

func sortedAddrs[V any](m map[common.Address]V) []common.Address {
	out := make([]common.Address, 0, len(m))
	for addr := range m {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

var _ state.RecordDB = (*WriteBuf)(nil)
