package staking

import "github.com/otakuverse/ovchain/params"

// ElapsedDays returns the whole days between stakedAt and now. Partial days
// are dropped and a clock behind stakedAt yields zero.
func ElapsedDays(stakedAt, now int64) uint64 {
	if now <= stakedAt {
		return 0
	}
	return uint64(now-stakedAt) / uint64(params.SecondsPerDay)
}

// PendingReward returns what unstaking pos at now would add to its accrued
// reward. Inactive positions accrue nothing.
func PendingReward(pos *StakePosition, now int64) uint64 {
	if !pos.IsActive {
		return 0
	}
	return ElapsedDays(pos.StakedAt, now) * params.RewardPerDay
}

func addReward(accrued, reward uint64) (uint64, bool) {
	sum := accrued + reward
	return sum, sum >= accrued
}
