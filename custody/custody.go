// Package custody holds and moves asset balances between custodial accounts.
//
// Engines consume the Custody interface. Ledger is the reference
// implementation, keeping every balance and delegation in the record store
// so custody effects share the all-or-nothing fate of the operation that
// caused them.
package custody

import (
	"errors"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/state"
)

var (
	ErrInsufficientBalance = errors.New("custody: insufficient balance")
	ErrUnauthorizedSigner  = errors.New("custody: signer may not move these units")
	ErrAssetExists         = errors.New("custody: unique asset already minted")
	ErrBalanceOverflow     = errors.New("custody: balance overflow")
	ErrZeroAmount          = errors.New("custody: zero amount")
)

// NativeAsset identifies the native currency, denominated in lamports.
var NativeAsset = common.Address{}

// Signer authorizes a custody call. It is either the caller whose signature
// accompanied the operation or the program-controlled signer.
type Signer struct {
	Address common.Address
	Program bool
}

// CallerSigner returns the signer for a user signature by addr.
func CallerSigner(addr common.Address) Signer { return Signer{Address: addr} }

// ProgramSigner returns the program-controlled signer.
func ProgramSigner() Signer {
	return Signer{Address: derive.ProgramAuthority(), Program: true}
}

// Valid reports whether the signer is internally consistent: only the program
// signer may act as the program authority.
func (s Signer) Valid() bool {
	return s.Program == (s.Address == derive.ProgramAuthority())
}

// Custody is the token custody collaborator.
type Custody interface {
	// Transfer moves amount units of asset from one account to another.
	// signer must own from or be its approved delegate for asset.
	Transfer(db state.RecordDB, from, to, asset common.Address, amount uint64, signer Signer) error
	// MintUnique creates a single unit of a new unique asset owned by owner.
	MintUnique(db state.RecordDB, asset, owner common.Address) error
	// Approve lets delegate move owner's units of asset.
	Approve(db state.RecordDB, owner, asset, delegate common.Address, signer Signer) error
	// Revoke clears the delegate of owner's units of asset.
	Revoke(db state.RecordDB, owner, asset common.Address, signer Signer) error
	// Balance returns owner's units of asset.
	Balance(db state.RecordDB, owner, asset common.Address) uint64
	// Minted reports whether asset was created by MintUnique.
	Minted(db state.RecordDB, asset common.Address) bool
}
