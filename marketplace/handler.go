package marketplace

import (
	"fmt"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/custody"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/log"
	"github.com/otakuverse/ovchain/sysaction"
)

func init() {
	sysaction.DefaultRegistry.Register(&marketHandler{})
}

// marketHandler implements sysaction.Handler for the NFT actions.
type marketHandler struct{}

func (h *marketHandler) CanHandle(kind sysaction.ActionKind) bool {
	switch kind {
	case sysaction.ActionMintNFT,
		sysaction.ActionMintEnhancedNFT,
		sysaction.ActionPurchaseNFT,
		sysaction.ActionUpdateNFTMetadata,
		sysaction.ActionVerifyNFT,
		sysaction.ActionListNFTForSale,
		sysaction.ActionCancelNFTListing:
		return true
	}
	return false
}

func (h *marketHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	db := ctx.StateDB
	switch sa.Action {
	case sysaction.ActionMintNFT:
		var p sysaction.MintNFTPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		n, err := MintNFT(db, ctx.Custody, ctx.From, &p, ctx.Time)
		if err != nil {
			return err
		}
		log.Debug("NFT minted", "mint", n.Mint, "owner", n.Owner, "rarity", n.Rarity)
		return nil

	case sysaction.ActionMintEnhancedNFT:
		var p sysaction.MintEnhancedNFTPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		n, err := MintEnhancedNFT(db, ctx.Custody, ctx.From, &p, ctx.Time, ctx.ChainConfig())
		if err != nil {
			return err
		}
		log.Debug("Enhanced NFT minted", "mint", n.Mint, "owner", n.Owner, "attributes", len(n.Attributes), "royalty", n.RoyaltyBasisPoints)
		return nil

	case sysaction.ActionPurchaseNFT:
		var p sysaction.PurchaseNFTPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		if _, err := Purchase(db, ctx.Custody, ctx.From, &p); err != nil {
			return err
		}
		log.Debug("NFT purchased", "mint", p.Mint, "seller", p.Seller, "buyer", ctx.From, "price", p.Price)
		return nil

	case sysaction.ActionUpdateNFTMetadata:
		var p sysaction.UpdateNFTMetadataPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		_, err := UpdateMetadata(db, ctx.From, &p, ctx.ChainConfig())
		return err

	case sysaction.ActionVerifyNFT:
		var p sysaction.NFTPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		_, err := VerifyNFT(db, ctx.From, p.Mint)
		return err

	case sysaction.ActionListNFTForSale:
		var p sysaction.ListNFTPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		if _, err := List(db, ctx.Custody, ctx.From, p.Mint, p.Price); err != nil {
			return err
		}
		log.Debug("NFT listed", "mint", p.Mint, "price", p.Price)
		return nil

	case sysaction.ActionCancelNFTListing:
		var p sysaction.NFTPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		_, err := CancelListing(db, ctx.Custody, ctx.From, p.Mint)
		return err
	}
	return fmt.Errorf("marketplace handler: unsupported action %q", sa.Action)
}

func (h *marketHandler) Accesses(from common.Address, sa *sysaction.SysAction) (sysaction.Access, error) {
	switch sa.Action {
	case sysaction.ActionMintNFT, sysaction.ActionMintEnhancedNFT:
		var p sysaction.MintNFTPayload
		if sa.Action == sysaction.ActionMintEnhancedNFT {
			var ep sysaction.MintEnhancedNFTPayload
			if err := sysaction.DecodePayload(sa, &ep); err != nil {
				return sysaction.Access{}, err
			}
			p = ep.MintNFTPayload
		} else if err := sysaction.DecodePayload(sa, &p); err != nil {
			return sysaction.Access{}, err
		}
		return sysaction.Access{Writes: []common.Address{
			derive.GlobalState(),
			derive.NFT(p.Mint),
			derive.CustodyAsset(p.Mint),
			derive.CustodyAccount(from, p.Mint),
		}}, nil

	case sysaction.ActionPurchaseNFT:
		var p sysaction.PurchaseNFTPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return sysaction.Access{}, err
		}
		return sysaction.Access{
			Reads: []common.Address{derive.CustodyDelegate(from, custody.NativeAsset)},
			Writes: []common.Address{
				derive.NFT(p.Mint),
				derive.CustodyAccount(from, custody.NativeAsset),
				derive.CustodyAccount(p.Seller, custody.NativeAsset),
				derive.CustodyAccount(p.Seller, p.Mint),
				derive.CustodyAccount(from, p.Mint),
				derive.CustodyDelegate(p.Seller, p.Mint),
			},
		}, nil

	case sysaction.ActionUpdateNFTMetadata:
		var p sysaction.UpdateNFTMetadataPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return sysaction.Access{}, err
		}
		return sysaction.Access{Writes: []common.Address{derive.NFT(p.Mint)}}, nil

	case sysaction.ActionVerifyNFT:
		var p sysaction.NFTPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return sysaction.Access{}, err
		}
		return sysaction.Access{
			Reads:  []common.Address{derive.GlobalState()},
			Writes: []common.Address{derive.NFT(p.Mint)},
		}, nil

	case sysaction.ActionListNFTForSale, sysaction.ActionCancelNFTListing:
		var p sysaction.NFTPayload
		if sa.Action == sysaction.ActionListNFTForSale {
			var lp sysaction.ListNFTPayload
			if err := sysaction.DecodePayload(sa, &lp); err != nil {
				return sysaction.Access{}, err
			}
			p.Mint = lp.Mint
		} else if err := sysaction.DecodePayload(sa, &p); err != nil {
			return sysaction.Access{}, err
		}
		return sysaction.Access{Writes: []common.Address{
			derive.NFT(p.Mint),
			derive.CustodyDelegate(from, p.Mint),
		}}, nil
	}
	return sysaction.Access{}, fmt.Errorf("marketplace: no access list for %q", sa.Action)
}
