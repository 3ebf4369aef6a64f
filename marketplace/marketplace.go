package marketplace

import (
	"fmt"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/custody"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/globalstate"
	"github.com/otakuverse/ovchain/params"
	"github.com/otakuverse/ovchain/state"
	"github.com/otakuverse/ovchain/sysaction"
)

// ReadNFT loads the record of mint.
func ReadNFT(db state.RecordDB, mint common.Address) (*NFTRecord, error) {
	n := new(NFTRecord)
	if err := state.Read(db, derive.NFT(mint), n); err != nil {
		return nil, err
	}
	return n, nil
}

func checkBasic(p *sysaction.MintNFTPayload) error {
	checks := []struct {
		field, value string
		max          int
	}{
		{"name", p.Name, params.MaxNFTNameLen},
		{"symbol", p.Symbol, params.MaxNFTSymbolLen},
		{"uri", p.URI, params.MaxNFTURILen},
		{"anime_title", p.AnimeTitle, params.MaxNFTTitleLen},
	}
	for _, c := range checks {
		if err := sysaction.CheckLen(c.field, c.value, c.max); err != nil {
			return err
		}
	}
	return nil
}

func newRecord(creator common.Address, p *sysaction.MintNFTPayload, now int64) *NFTRecord {
	return &NFTRecord{
		Mint:       p.Mint,
		Owner:      creator,
		Creator:    creator,
		Name:       p.Name,
		Symbol:     p.Symbol,
		URI:        p.URI,
		AnimeTitle: p.AnimeTitle,
		Rarity:     ParseRarity(p.Rarity),
		CreatedAt:  now,
	}
}

// mint issues the unit in custody, stores n and bumps the minted counter.
func mint(db state.RecordDB, c custody.Custody, n *NFTRecord) error {
	if _, err := globalstate.Read(db); err != nil {
		return err
	}
	if db.HasRecord(derive.NFT(n.Mint)) {
		return fmt.Errorf("%w: nft %s", state.ErrAlreadyExists, n.Mint)
	}
	if err := c.MintUnique(db, n.Mint, n.Owner); err != nil {
		return err
	}
	if err := state.Create(db, derive.NFT(n.Mint), n); err != nil {
		return err
	}
	return globalstate.IncrementMinted(db)
}

// MintNFT mints a basic NFT owned by caller.
func MintNFT(db state.RecordDB, c custody.Custody, caller common.Address, p *sysaction.MintNFTPayload, now int64) (*NFTRecord, error) {
	if err := checkBasic(p); err != nil {
		return nil, err
	}
	n := newRecord(caller, p, now)
	if err := mint(db, c, n); err != nil {
		return nil, err
	}
	return n, nil
}

// MintEnhancedNFT mints an NFT carrying a description, optional collection,
// attributes and a royalty.
func MintEnhancedNFT(db state.RecordDB, c custody.Custody, caller common.Address, p *sysaction.MintEnhancedNFTPayload, now int64, cfg *params.ChainConfig) (*NFTRecord, error) {
	if err := checkBasic(&p.MintNFTPayload); err != nil {
		return nil, err
	}
	if err := sysaction.CheckLen("description", p.Description, params.MaxNFTDescriptionLen); err != nil {
		return nil, err
	}
	n := newRecord(caller, &p.MintNFTPayload, now)
	n.Description = p.Description
	if p.Collection != nil {
		n.Collection = *p.Collection
	}
	if err := n.AddAttributes(toAttributes(p.Attributes)); err != nil {
		return nil, err
	}
	if err := n.SetRoyalty(p.RoyaltyBasisPoints, cfg.IgnoreRoyaltyOverflow()); err != nil {
		return nil, err
	}
	if err := mint(db, c, n); err != nil {
		return nil, err
	}
	return n, nil
}

// readOwned loads mint and checks that caller owns it.
func readOwned(db state.RecordDB, caller, mint common.Address) (*NFTRecord, error) {
	n, err := ReadNFT(db, mint)
	if err != nil {
		return nil, err
	}
	if n.Owner != caller {
		return nil, fmt.Errorf("%w: %s owned by %s", ErrNotOwner, mint, n.Owner)
	}
	return n, nil
}

// List puts the caller's NFT up for sale and approves the program to move
// it on purchase.
func List(db state.RecordDB, c custody.Custody, caller, mint common.Address, price uint64) (*NFTRecord, error) {
	if price == 0 {
		return nil, ErrZeroPrice
	}
	n, err := readOwned(db, caller, mint)
	if err != nil {
		return nil, err
	}
	if err := c.Approve(db, caller, mint, derive.ProgramAuthority(), custody.CallerSigner(caller)); err != nil {
		return nil, err
	}
	n.SetForSale(price)
	if err := state.Mutate(db, derive.NFT(mint), n); err != nil {
		return nil, err
	}
	return n, nil
}

// CancelListing withdraws the caller's NFT from sale.
func CancelListing(db state.RecordDB, c custody.Custody, caller, mint common.Address) (*NFTRecord, error) {
	n, err := readOwned(db, caller, mint)
	if err != nil {
		return nil, err
	}
	if !n.IsForSale {
		return nil, fmt.Errorf("%w: %s", ErrNotListed, mint)
	}
	if err := c.Revoke(db, caller, mint, custody.CallerSigner(caller)); err != nil {
		return nil, err
	}
	n.RemoveFromSale()
	if err := state.Mutate(db, derive.NFT(mint), n); err != nil {
		return nil, err
	}
	return n, nil
}

// Purchase buys a listed NFT at its listing price. The price moves from
// buyer to seller and the NFT moves from seller to buyer under the program's
// delegation.
func Purchase(db state.RecordDB, c custody.Custody, buyer common.Address, p *sysaction.PurchaseNFTPayload) (*NFTRecord, error) {
	n, err := ReadNFT(db, p.Mint)
	if err != nil {
		return nil, err
	}
	switch {
	case !n.IsForSale:
		return nil, fmt.Errorf("%w: %s", ErrNotListed, p.Mint)
	case n.Owner != p.Seller:
		return nil, fmt.Errorf("%w: %s owned by %s", ErrSellerNotOwner, p.Mint, n.Owner)
	case n.Price != p.Price:
		return nil, fmt.Errorf("%w: listed at %d, offered %d", ErrPriceMismatch, n.Price, p.Price)
	case buyer == p.Seller:
		return nil, ErrSelfPurchase
	}

	if err := c.Transfer(db, buyer, p.Seller, custody.NativeAsset, p.Price, custody.CallerSigner(buyer)); err != nil {
		return nil, fmt.Errorf("payment: %w", err)
	}
	program := custody.ProgramSigner()
	if err := c.Transfer(db, p.Seller, buyer, p.Mint, params.NFTUnits, program); err != nil {
		return nil, fmt.Errorf("nft transfer: %w", err)
	}
	if err := c.Revoke(db, p.Seller, p.Mint, program); err != nil {
		return nil, err
	}
	n.TransferTo(buyer)
	if err := state.Mutate(db, derive.NFT(p.Mint), n); err != nil {
		return nil, err
	}
	return n, nil
}

// UpdateMetadata applies the set fields of p to the caller's NFT.
func UpdateMetadata(db state.RecordDB, caller common.Address, p *sysaction.UpdateNFTMetadataPayload, cfg *params.ChainConfig) (*NFTRecord, error) {
	n, err := readOwned(db, caller, p.Mint)
	if err != nil {
		return nil, err
	}
	if p.URI != nil {
		if err := sysaction.CheckLen("uri", *p.URI, params.MaxNFTURILen); err != nil {
			return nil, err
		}
		n.URI = *p.URI
	}
	if p.Name != nil {
		if err := sysaction.CheckLen("name", *p.Name, params.MaxNFTNameLen); err != nil {
			return nil, err
		}
		n.Name = *p.Name
	}
	if p.Description != nil {
		if err := sysaction.CheckLen("description", *p.Description, params.MaxNFTDescriptionLen); err != nil {
			return nil, err
		}
		n.Description = *p.Description
	}
	if err := n.AddAttributes(toAttributes(p.AttributesToAdd)); err != nil {
		return nil, err
	}
	if p.RoyaltyBasisPoints != nil {
		if err := n.SetRoyalty(*p.RoyaltyBasisPoints, cfg.IgnoreRoyaltyOverflow()); err != nil {
			return nil, err
		}
	}
	if err := state.Mutate(db, derive.NFT(p.Mint), n); err != nil {
		return nil, err
	}
	return n, nil
}

// VerifyNFT marks mint verified. Only the ledger authority may verify;
// verifying twice succeeds without a write.
func VerifyNFT(db state.RecordDB, caller, mint common.Address) (*NFTRecord, error) {
	if err := globalstate.RequireAuthority(db, caller); err != nil {
		return nil, err
	}
	n, err := ReadNFT(db, mint)
	if err != nil {
		return nil, err
	}
	if n.IsVerified {
		return n, nil
	}
	n.Verify()
	if err := state.Mutate(db, derive.NFT(mint), n); err != nil {
		return nil, err
	}
	return n, nil
}
