package custody

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/log"
	"github.com/otakuverse/ovchain/state"
)

// Account is the custodial balance of one owner in one asset.
type Account struct {
	Owner   common.Address
	Asset   common.Address
	Balance uint256.Int
}

func (*Account) RecordKind() string { return "custody_account" }

// Delegation names the account allowed to move an owner's units.
type Delegation struct {
	Owner    common.Address
	Asset    common.Address
	Delegate common.Address
}

func (*Delegation) RecordKind() string { return "custody_delegate" }

// UniqueAsset marks a unique asset as minted.
type UniqueAsset struct {
	Asset  common.Address
	Minter common.Address
}

func (*UniqueAsset) RecordKind() string { return "custody_asset" }

// Ledger is the record-backed reference Custody.
type Ledger struct{}

// NewLedger returns a Ledger.
func NewLedger() *Ledger { return &Ledger{} }

func readAccount(db state.RecordDB, owner, asset common.Address) (*Account, error) {
	acc := &Account{Owner: owner, Asset: asset}
	addr := derive.CustodyAccount(owner, asset)
	if !db.HasRecord(addr) {
		return acc, nil
	}
	if err := state.Read(db, addr, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func writeAccount(db state.RecordDB, acc *Account) error {
	return state.Put(db, derive.CustodyAccount(acc.Owner, acc.Asset), acc)
}

func readDelegate(db state.RecordDB, owner, asset common.Address) (common.Address, error) {
	addr := derive.CustodyDelegate(owner, asset)
	if !db.HasRecord(addr) {
		return common.Address{}, nil
	}
	var d Delegation
	if err := state.Read(db, addr, &d); err != nil {
		return common.Address{}, err
	}
	return d.Delegate, nil
}

func (l *Ledger) authorize(db state.RecordDB, owner, asset common.Address, signer Signer) error {
	if !signer.Valid() {
		return fmt.Errorf("%w: forged program signer %s", ErrUnauthorizedSigner, signer.Address)
	}
	if signer.Address == owner {
		return nil
	}
	delegate, err := readDelegate(db, owner, asset)
	if err != nil {
		return err
	}
	if delegate.IsZero() || delegate != signer.Address {
		return fmt.Errorf("%w: %s for %s", ErrUnauthorizedSigner, signer.Address, owner)
	}
	return nil
}

// Transfer implements Custody.
func (l *Ledger) Transfer(db state.RecordDB, from, to, asset common.Address, amount uint64, signer Signer) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	if err := l.authorize(db, from, asset, signer); err != nil {
		return err
	}
	src, err := readAccount(db, from, asset)
	if err != nil {
		return err
	}
	delta := uint256.NewInt(amount)
	if src.Balance.Lt(delta) {
		return fmt.Errorf("%w: %s holds %s of %s, need %d", ErrInsufficientBalance, from, src.Balance.ToBig(), asset, amount)
	}
	if from == to {
		return nil
	}
	dst, err := readAccount(db, to, asset)
	if err != nil {
		return err
	}
	sum, ok := addChecked(&dst.Balance, delta)
	if !ok {
		return ErrBalanceOverflow
	}
	src.Balance.Sub(&src.Balance, delta)
	dst.Balance = *sum
	if err := writeAccount(db, src); err != nil {
		return err
	}
	if err := writeAccount(db, dst); err != nil {
		return err
	}
	log.Trace("Custody transfer", "asset", asset, "from", from, "to", to, "amount", amount)
	return nil
}

// MintUnique implements Custody.
func (l *Ledger) MintUnique(db state.RecordDB, asset, owner common.Address) error {
	err := state.Create(db, derive.CustodyAsset(asset), &UniqueAsset{Asset: asset, Minter: owner})
	if err != nil {
		return fmt.Errorf("%w: %s", ErrAssetExists, asset)
	}
	return Credit(db, owner, asset, 1)
}

// Minted implements Custody.
func (l *Ledger) Minted(db state.RecordDB, asset common.Address) bool {
	return db.HasRecord(derive.CustodyAsset(asset))
}

// Approve implements Custody.
func (l *Ledger) Approve(db state.RecordDB, owner, asset, delegate common.Address, signer Signer) error {
	if !signer.Valid() || signer.Address != owner {
		return fmt.Errorf("%w: only %s may approve", ErrUnauthorizedSigner, owner)
	}
	return state.Put(db, derive.CustodyDelegate(owner, asset), &Delegation{Owner: owner, Asset: asset, Delegate: delegate})
}

// Revoke implements Custody. The owner or the current delegate may revoke.
func (l *Ledger) Revoke(db state.RecordDB, owner, asset common.Address, signer Signer) error {
	if err := l.authorize(db, owner, asset, signer); err != nil {
		return err
	}
	if !db.HasRecord(derive.CustodyDelegate(owner, asset)) {
		return nil
	}
	return state.Put(db, derive.CustodyDelegate(owner, asset), &Delegation{Owner: owner, Asset: asset})
}

// Balance implements Custody. Balances beyond uint64 saturate.
func (l *Ledger) Balance(db state.RecordDB, owner, asset common.Address) uint64 {
	acc, err := readAccount(db, owner, asset)
	if err != nil {
		return 0
	}
	if !acc.Balance.IsUint64() {
		return ^uint64(0)
	}
	return acc.Balance.Uint64()
}

// Delegate returns the approved delegate of owner's units of asset, or the
// zero address.
func Delegate(db state.RecordDB, owner, asset common.Address) common.Address {
	d, _ := readDelegate(db, owner, asset)
	return d
}

// Credit adds units to owner without authorization. It is used to fund
// accounts at genesis and by MintUnique.
func Credit(db state.RecordDB, owner, asset common.Address, amount uint64) error {
	acc, err := readAccount(db, owner, asset)
	if err != nil {
		return err
	}
	sum, ok := addChecked(&acc.Balance, uint256.NewInt(amount))
	if !ok {
		return ErrBalanceOverflow
	}
	acc.Balance = *sum
	return writeAccount(db, acc)
}

func addChecked(a, b *uint256.Int) (*uint256.Int, bool) {
	sum := new(uint256.Int).Add(a, b)
	return sum, !sum.Lt(a)
}

var _ Custody = (*Ledger)(nil)
