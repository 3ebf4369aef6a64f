// Package staking locks assets into program custody and accrues a fixed
// per-day reward for as long as they stay locked.
package staking

import (
	"fmt"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/state"
	"github.com/otakuverse/ovchain/sysaction"
)

var (
	ErrAlreadyStaked  = fmt.Errorf("staking: asset already staked: %w", state.ErrAlreadyExists)
	ErrNotStaked      = fmt.Errorf("staking: nft not staked: %w", sysaction.ErrInvalidState)
	ErrNotStaker      = fmt.Errorf("staking: caller is not the staker: %w", sysaction.ErrUnauthorized)
	ErrRewardOverflow = fmt.Errorf("staking: reward overflow: %w", sysaction.ErrInvalidState)
)

// StakePosition records one staker's lock on one asset. The record survives
// unstaking as an audit trail.
type StakePosition struct {
	Staker        common.Address `json:"staker"`
	Asset         common.Address `json:"asset"`
	StakedAt      int64          `json:"staked_at"`
	RewardAccrued uint64         `json:"reward_accrued"`
	IsActive      bool           `json:"is_active"`
}

func (*StakePosition) RecordKind() string { return "stake_position" }
