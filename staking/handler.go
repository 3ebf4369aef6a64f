package staking

import (
	"fmt"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/custody"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/globalstate"
	"github.com/otakuverse/ovchain/log"
	"github.com/otakuverse/ovchain/params"
	"github.com/otakuverse/ovchain/sysaction"
)

func init() {
	sysaction.DefaultRegistry.Register(&stakingHandler{})
}

// stakingHandler implements sysaction.Handler for STAKE_NFT and UNSTAKE_NFT.
type stakingHandler struct{}

func (h *stakingHandler) CanHandle(kind sysaction.ActionKind) bool {
	switch kind {
	case sysaction.ActionStakeNFT, sysaction.ActionUnstakeNFT:
		return true
	}
	return false
}

func (h *stakingHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	var p sysaction.StakePayload
	if err := sysaction.DecodePayload(sa, &p); err != nil {
		return err
	}
	switch sa.Action {
	case sysaction.ActionStakeNFT:
		return h.handleStake(ctx, p.Asset)
	case sysaction.ActionUnstakeNFT:
		return h.handleUnstake(ctx, p.Asset)
	}
	return fmt.Errorf("staking handler: unsupported action %q", sa.Action)
}

func (h *stakingHandler) handleStake(ctx *sysaction.Context, asset common.Address) error {
	db := ctx.StateDB

	// Validation phase: no writes.
	if _, err := globalstate.Read(db); err != nil {
		return err
	}
	if pos, err := ReadPosition(db, ctx.From, asset); err == nil && pos.IsActive {
		return ErrAlreadyStaked
	}

	// Mutation phase.
	vault := derive.ProgramAuthority()
	if err := ctx.Custody.Transfer(db, ctx.From, vault, asset, params.StakedAssetUnits, custody.CallerSigner(ctx.From)); err != nil {
		return fmt.Errorf("stake: %w", err)
	}
	pos, err := Stake(db, ctx.From, asset, ctx.Time)
	if err != nil {
		return err
	}
	if err := globalstate.IncrementStaked(db); err != nil {
		return err
	}
	log.Debug("Asset staked", "staker", ctx.From, "asset", asset, "at", pos.StakedAt, "accrued", pos.RewardAccrued)
	return nil
}

func (h *stakingHandler) handleUnstake(ctx *sysaction.Context, asset common.Address) error {
	db := ctx.StateDB

	pos, err := Unstake(db, ctx.From, asset, ctx.Time)
	if err != nil {
		return err
	}
	vault := derive.ProgramAuthority()
	if err := ctx.Custody.Transfer(db, vault, ctx.From, asset, params.StakedAssetUnits, custody.ProgramSigner()); err != nil {
		return fmt.Errorf("unstake: %w", err)
	}
	log.Debug("Asset unstaked", "staker", ctx.From, "asset", asset, "reward", pos.RewardAccrued)
	return nil
}

func (h *stakingHandler) Accesses(from common.Address, sa *sysaction.SysAction) (sysaction.Access, error) {
	var p sysaction.StakePayload
	if err := sysaction.DecodePayload(sa, &p); err != nil {
		return sysaction.Access{}, err
	}
	vault := derive.ProgramAuthority()
	acc := sysaction.Access{
		Reads: []common.Address{derive.CustodyDelegate(from, p.Asset)},
		Writes: []common.Address{
			derive.StakePosition(from, p.Asset),
			derive.CustodyAccount(from, p.Asset),
			derive.CustodyAccount(vault, p.Asset),
		},
	}
	if sa.Action == sysaction.ActionStakeNFT {
		acc.Writes = append(acc.Writes, derive.GlobalState())
	}
	return acc, nil
}
