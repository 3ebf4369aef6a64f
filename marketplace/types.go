// Package marketplace mints NFTs and runs their fixed-price listings.
package marketplace

import (
	"fmt"
	"strings"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/params"
	"github.com/otakuverse/ovchain/sysaction"
)

var (
	ErrNotOwner          = fmt.Errorf("marketplace: caller does not own the nft: %w", sysaction.ErrUnauthorized)
	ErrNotListed         = fmt.Errorf("marketplace: nft not for sale: %w", sysaction.ErrInvalidState)
	ErrZeroPrice         = fmt.Errorf("marketplace: price must be positive: %w", sysaction.ErrValidation)
	ErrPriceMismatch     = fmt.Errorf("marketplace: price differs from listing: %w", sysaction.ErrValidation)
	ErrSellerNotOwner    = fmt.Errorf("marketplace: seller does not own the nft: %w", sysaction.ErrValidation)
	ErrSelfPurchase      = fmt.Errorf("marketplace: buyer is the seller: %w", sysaction.ErrValidation)
	ErrRoyaltyTooHigh    = fmt.Errorf("marketplace: royalty exceeds 10000 basis points: %w", sysaction.ErrValidation)
	ErrTooManyAttributes = fmt.Errorf("marketplace: too many attributes: %w", sysaction.ErrValidation)
)

// Rarity grades an NFT.
type Rarity uint8

const (
	RarityCommon Rarity = iota
	RarityRare
	RarityEpic
	RarityLegendary
)

// ParseRarity maps a rarity name to its grade. Matching ignores case and
// unknown names grade as Common.
func ParseRarity(s string) Rarity {
	switch strings.ToLower(s) {
	case "rare":
		return RarityRare
	case "epic":
		return RarityEpic
	case "legendary":
		return RarityLegendary
	}
	return RarityCommon
}

func (r Rarity) String() string {
	switch r {
	case RarityRare:
		return "Rare"
	case RarityEpic:
		return "Epic"
	case RarityLegendary:
		return "Legendary"
	}
	return "Common"
}

// MarshalText implements encoding.TextMarshaler.
func (r Rarity) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Attribute is one trait/value pair.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// NFTRecord is the marketplace view of a unique asset.
type NFTRecord struct {
	Mint               common.Address `json:"mint"`
	Owner              common.Address `json:"owner"`
	Name               string         `json:"name"`
	Symbol             string         `json:"symbol"`
	URI                string         `json:"uri"`
	AnimeTitle         string         `json:"anime_title"`
	Rarity             Rarity         `json:"rarity"`
	IsForSale          bool           `json:"is_for_sale"`
	Price              uint64         `json:"price"`
	CreatedAt          int64          `json:"created_at"`
	Creator            common.Address `json:"creator"`
	Description        string         `json:"description"`
	Collection         common.Address `json:"collection"` // zero when not in a collection
	Attributes         []Attribute    `json:"attributes"`
	RoyaltyBasisPoints uint16         `json:"royalty_basis_points"`
	IsVerified         bool           `json:"is_verified"`
}

func (*NFTRecord) RecordKind() string { return "nft" }

// InCollection reports whether the NFT belongs to a collection.
func (n *NFTRecord) InCollection() bool { return !n.Collection.IsZero() }

// SetForSale lists the NFT at price.
func (n *NFTRecord) SetForSale(price uint64) {
	n.IsForSale = true
	n.Price = price
}

// RemoveFromSale clears the listing.
func (n *NFTRecord) RemoveFromSale() {
	n.IsForSale = false
	n.Price = 0
}

// TransferTo hands the NFT to a new owner and ends any listing.
func (n *NFTRecord) TransferTo(owner common.Address) {
	n.Owner = owner
	n.RemoveFromSale()
}

// Verify marks the NFT verified. Verification cannot be undone.
func (n *NFTRecord) Verify() { n.IsVerified = true }

// AddAttributes appends attrs after checking the caps.
func (n *NFTRecord) AddAttributes(attrs []Attribute) error {
	if len(n.Attributes)+len(attrs) > params.MaxNFTAttributes {
		return fmt.Errorf("%w: %d + %d > %d", ErrTooManyAttributes, len(n.Attributes), len(attrs), params.MaxNFTAttributes)
	}
	for _, a := range attrs {
		if err := sysaction.CheckLen("trait_type", a.TraitType, params.MaxNFTTraitTypeLen); err != nil {
			return err
		}
		if err := sysaction.CheckLen("value", a.Value, params.MaxNFTTraitValueLen); err != nil {
			return err
		}
	}
	n.Attributes = append(n.Attributes, attrs...)
	return nil
}

// SetRoyalty sets the royalty in basis points. Values above 10000 fail with
// ErrRoyaltyTooHigh, or leave the royalty unchanged when ignoreOverflow is
// set.
func (n *NFTRecord) SetRoyalty(bps uint16, ignoreOverflow bool) error {
	if bps > params.MaxRoyaltyBasisPoints {
		if ignoreOverflow {
			return nil
		}
		return fmt.Errorf("%w: %d", ErrRoyaltyTooHigh, bps)
	}
	n.RoyaltyBasisPoints = bps
	return nil
}

// CalculateRoyalty returns the royalty owed on a sale at salePrice.
func (n *NFTRecord) CalculateRoyalty(salePrice uint64) uint64 {
	return CalculateRoyalty(salePrice, n.RoyaltyBasisPoints)
}

func toAttributes(in []sysaction.NFTAttribute) []Attribute {
	if len(in) == 0 {
		return nil
	}
	out := make([]Attribute, len(in))
	for i, a := range in {
		out[i] = Attribute{TraitType: a.TraitType, Value: a.Value}
	}
	return out
}
