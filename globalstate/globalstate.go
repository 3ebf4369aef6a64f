// Package globalstate owns the singleton GlobalState record: the ledger
// authority and the monotonically increasing counters every engine draws
// identifiers from.
package globalstate

import (
	"fmt"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/state"
	"github.com/otakuverse/ovchain/sysaction"
)

var (
	// ErrNotInitialized is returned when the GlobalState record is missing.
	ErrNotInitialized = fmt.Errorf("global state not initialized: %w", state.ErrNotFound)
	// ErrNotAuthority is returned when an authority-only operation is called
	// by someone else.
	ErrNotAuthority = fmt.Errorf("caller is not the ledger authority: %w", sysaction.ErrUnauthorized)
	// ErrCounterOverflow is returned if a counter would wrap.
	ErrCounterOverflow = fmt.Errorf("counter overflow: %w", sysaction.ErrInvalidState)
)

// GlobalState is the singleton counters record.
type GlobalState struct {
	Authority      common.Address `json:"authority"`
	TotalMinted    uint64         `json:"total_minted"`
	TotalStaked    uint64         `json:"total_staked"`
	TotalProposals uint64         `json:"total_proposals"`
	TotalEvents    uint64         `json:"total_events"`
}

func (*GlobalState) RecordKind() string { return "global_state" }

// Read loads the GlobalState record.
func Read(db state.RecordDB) (*GlobalState, error) {
	if !db.HasRecord(derive.GlobalState()) {
		return nil, ErrNotInitialized
	}
	gs := new(GlobalState)
	if err := state.Read(db, derive.GlobalState(), gs); err != nil {
		return nil, err
	}
	return gs, nil
}

// Initialize creates the GlobalState with authority and all counters at zero.
func Initialize(db state.RecordDB, authority common.Address) error {
	return state.Create(db, derive.GlobalState(), &GlobalState{Authority: authority})
}

// RequireAuthority fails unless from is the ledger authority.
func RequireAuthority(db state.RecordDB, from common.Address) error {
	gs, err := Read(db)
	if err != nil {
		return err
	}
	if gs.Authority != from {
		return ErrNotAuthority
	}
	return nil
}

// update applies fn to the freshly read record and writes it back. The
// counter is never cached across calls.
func update(db state.RecordDB, fn func(gs *GlobalState) error) (*GlobalState, error) {
	gs, err := Read(db)
	if err != nil {
		return nil, err
	}
	if err := fn(gs); err != nil {
		return nil, err
	}
	if err := state.Mutate(db, derive.GlobalState(), gs); err != nil {
		return nil, err
	}
	return gs, nil
}

func incr(n *uint64) error {
	if *n == ^uint64(0) {
		return ErrCounterOverflow
	}
	*n++
	return nil
}

// NextProposalID returns the current proposal counter and increments it.
func NextProposalID(db state.RecordDB) (uint64, error) {
	var id uint64
	_, err := update(db, func(gs *GlobalState) error {
		id = gs.TotalProposals
		return incr(&gs.TotalProposals)
	})
	return id, err
}

// IncrementEvents bumps total_events.
func IncrementEvents(db state.RecordDB) error {
	_, err := update(db, func(gs *GlobalState) error { return incr(&gs.TotalEvents) })
	return err
}

// IncrementMinted bumps total_minted.
func IncrementMinted(db state.RecordDB) error {
	_, err := update(db, func(gs *GlobalState) error { return incr(&gs.TotalMinted) })
	return err
}

// IncrementStaked bumps total_staked. It counts stake operations and is
// never decremented.
func IncrementStaked(db state.RecordDB) error {
	_, err := update(db, func(gs *GlobalState) error { return incr(&gs.TotalStaked) })
	return err
}
