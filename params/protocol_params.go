// Copyright 2024 The ovchain Authors
// This file is part of the ovchain library.
//
// The ovchain library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ovchain library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ovchain library. If not, see <http://www.gnu.org/licenses/>.

package params

// Staking.
const (
	SecondsPerDay    int64  = 86_400 // Reward accrual granularity.
	RewardPerDay     uint64 = 1      // Reward units credited per whole staked day.
	StakedAssetUnits uint64 = 1      // Units moved into custody per stake.
)

// Events.
const (
	MaxEventParticipants uint32 = 100 // Fixed attendance cap of every event.
)

// Marketplace.
const (
	MaxRoyaltyBasisPoints uint16 = 10_000 // 100%.
	BasisPointsDenom      uint64 = 10_000
	NFTUnits              uint64 = 1 // Supply of every unique asset.
)

// String caps, in bytes, enforced before any record is allocated.
const (
	MaxProposalTitleLen       = 100
	MaxProposalDescriptionLen = 1000

	MaxEventCommunityIDLen = 50
	MaxEventTitleLen       = 100
	MaxEventDescriptionLen = 1000

	MaxBadgeNameLen        = 50
	MaxBadgeDescriptionLen = 200

	MaxNFTNameLen        = 32
	MaxNFTSymbolLen      = 10
	MaxNFTURILen         = 200
	MaxNFTTitleLen       = 100
	MaxNFTDescriptionLen = 1000
	MaxNFTAttributes     = 16
	MaxNFTTraitTypeLen   = 32
	MaxNFTTraitValueLen  = 64

	MaxCommunityIDLen    = 50
	MaxMessageContentLen = 500
)
