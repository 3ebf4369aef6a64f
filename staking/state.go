package staking

import (
	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/state"
)

// ReadPosition loads the stake position of staker on asset.
func ReadPosition(db state.RecordDB, staker, asset common.Address) (*StakePosition, error) {
	pos := new(StakePosition)
	if err := state.Read(db, derive.StakePosition(staker, asset), pos); err != nil {
		return nil, err
	}
	return pos, nil
}

// Stake opens (or reopens) the position of staker on asset at now.
func Stake(db state.RecordDB, staker, asset common.Address, now int64) (*StakePosition, error) {
	addr := derive.StakePosition(staker, asset)
	if !db.HasRecord(addr) {
		pos := &StakePosition{Staker: staker, Asset: asset, StakedAt: now, IsActive: true}
		return pos, state.Create(db, addr, pos)
	}
	pos, err := ReadPosition(db, staker, asset)
	if err != nil {
		return nil, err
	}
	if pos.IsActive {
		return nil, ErrAlreadyStaked
	}
	// Reopening keeps the accrued reward.
	pos.StakedAt = now
	pos.IsActive = true
	return pos, state.Mutate(db, addr, pos)
}

// Unstake closes the active position of staker on asset and credits the
// reward earned since it was opened.
func Unstake(db state.RecordDB, staker, asset common.Address, now int64) (*StakePosition, error) {
	pos, err := ReadPosition(db, staker, asset)
	if err != nil {
		return nil, err
	}
	if pos.Staker != staker {
		return nil, ErrNotStaker
	}
	if !pos.IsActive {
		return nil, ErrNotStaked
	}
	accrued, ok := addReward(pos.RewardAccrued, PendingReward(pos, now))
	if !ok {
		return nil, ErrRewardOverflow
	}
	pos.RewardAccrued = accrued
	pos.IsActive = false
	return pos, state.Mutate(db, derive.StakePosition(staker, asset), pos)
}
