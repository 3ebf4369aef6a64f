package parallel

import (
	mapset "github.com/deckarep/golang-set"
	"github.com/otakuverse/ovchain/common"
)

// AccessSet describes the records a message reads and writes. A barrier set
// conflicts with every other set.
type AccessSet struct {
	Reads   mapset.Set
	Writes  mapset.Set
	Barrier bool
}

// NewAccessSet builds an access set from address lists.
func NewAccessSet(reads, writes []common.Address) AccessSet {
	as := AccessSet{
		Reads:  mapset.NewThreadUnsafeSet(),
		Writes: mapset.NewThreadUnsafeSet(),
	}
	for _, addr := range reads {
		as.Reads.Add(addr)
	}
	for _, addr := range writes {
		as.Writes.Add(addr)
	}
	return as
}

// BarrierSet returns a set that conflicts with everything.
func BarrierSet() AccessSet {
	as := NewAccessSet(nil, nil)
	as.Barrier = true
	return as
}

// Conflicts returns true if a's writes overlap b's reads or writes (or vice versa).
func (a *AccessSet) Conflicts(b *AccessSet) bool {
	if a.Barrier || b.Barrier {
		return true
	}
	return overlaps(a.Writes, b.Reads) || overlaps(a.Writes, b.Writes) || overlaps(b.Writes, a.Reads)
}

// absorb adds b's accesses to a in place.
func (a *AccessSet) absorb(b *AccessSet) {
	a.Barrier = a.Barrier || b.Barrier
	addAll(a.Reads, b.Reads)
	addAll(a.Writes, b.Writes)
}

func addAll(dst, src mapset.Set) {
	if src == nil {
		return
	}
	src.Each(func(elem interface{}) bool {
		dst.Add(elem)
		return false
	})
}

func overlaps(x, y mapset.Set) bool {
	if x == nil || y == nil || x.Cardinality() == 0 || y.Cardinality() == 0 {
		return false
	}
	return x.Intersect(y).Cardinality() > 0
}
