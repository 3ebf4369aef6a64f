package membership

import (
	"fmt"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/log"
	"github.com/otakuverse/ovchain/sysaction"
)

func init() {
	sysaction.DefaultRegistry.Register(&membershipHandler{})
}

type membershipHandler struct{}

func (h *membershipHandler) CanHandle(kind sysaction.ActionKind) bool {
	return kind == sysaction.ActionMintBadge || kind == sysaction.ActionVerifyAccess
}

func (h *membershipHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	switch sa.Action {
	case sysaction.ActionMintBadge:
		var p sysaction.MintBadgePayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		b, err := MintBadge(ctx.StateDB, ctx.From, &p, ctx.Time)
		if err != nil {
			return err
		}
		log.Debug("Badge minted", "id", b.ID, "name", b.Name)
		return nil

	case sysaction.ActionVerifyAccess:
		var p sysaction.VerifyAccessPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		g, err := GrantAccess(ctx.StateDB, ctx.Custody, ctx.From, p.Asset, p.ExpirationTime, ctx.Time)
		if err != nil {
			return err
		}
		log.Debug("Access granted", "user", g.User, "asset", g.Asset, "expires", g.ExpirationTime)
		return nil
	}
	return fmt.Errorf("membership handler: unsupported action %q", sa.Action)
}

func (h *membershipHandler) Accesses(from common.Address, sa *sysaction.SysAction) (sysaction.Access, error) {
	switch sa.Action {
	case sysaction.ActionMintBadge:
		var p sysaction.MintBadgePayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return sysaction.Access{}, err
		}
		return sysaction.Access{
			Reads:  []common.Address{derive.GlobalState()},
			Writes: []common.Address{derive.Badge(p.BadgeID)},
		}, nil

	case sysaction.ActionVerifyAccess:
		var p sysaction.VerifyAccessPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return sysaction.Access{}, err
		}
		return sysaction.Access{
			Reads:  []common.Address{derive.CustodyAsset(p.Asset)},
			Writes: []common.Address{derive.Access(from, p.Asset)},
		}, nil
	}
	return sysaction.Access{}, fmt.Errorf("membership: no access list for %q", sa.Action)
}
