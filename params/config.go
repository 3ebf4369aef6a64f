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

import (
	"fmt"
	"strings"
)

// Finalize policies.
const (
	// FinalizeAuthorityOrCreator lets the global authority or the proposal
	// creator finalize a proposal.
	FinalizeAuthorityOrCreator = "authority-or-creator"
	// FinalizeOpen lets any signer finalize a proposal.
	FinalizeOpen = "open"
)

// Royalty overflow policies.
const (
	// RoyaltyOverflowReject fails the operation with a validation error.
	RoyaltyOverflowReject = "reject"
	// RoyaltyOverflowIgnore keeps the previous royalty and succeeds.
	RoyaltyOverflowIgnore = "ignore"
)

var (
	// DefaultChainConfig is the policy set used when none is configured.
	DefaultChainConfig = &ChainConfig{
		FinalizePolicy:        FinalizeAuthorityOrCreator,
		RoyaltyOverflowPolicy: RoyaltyOverflowReject,
	}

	// TestChainConfig lets anyone finalize, which keeps governance tests short.
	TestChainConfig = &ChainConfig{
		FinalizePolicy:        FinalizeOpen,
		RoyaltyOverflowPolicy: RoyaltyOverflowReject,
	}
)

// ChainConfig is the set of protocol policies every node must agree on.
type ChainConfig struct {
	FinalizePolicy        string `json:"finalizePolicy" toml:",omitempty" env:"FINALIZE_POLICY"`
	RoyaltyOverflowPolicy string `json:"royaltyOverflowPolicy" toml:",omitempty" env:"ROYALTY_OVERFLOW_POLICY"`
}

// NormalizeFinalizePolicy canonicalizes a finalize policy name.
func NormalizeFinalizePolicy(policy string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case "", FinalizeAuthorityOrCreator:
		return FinalizeAuthorityOrCreator, nil
	case FinalizeOpen:
		return FinalizeOpen, nil
	default:
		return "", fmt.Errorf("unsupported finalize policy: %s", strings.TrimSpace(policy))
	}
}

// NormalizeRoyaltyOverflowPolicy canonicalizes a royalty overflow policy name.
func NormalizeRoyaltyOverflowPolicy(policy string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case "", RoyaltyOverflowReject:
		return RoyaltyOverflowReject, nil
	case RoyaltyOverflowIgnore, "clamp":
		return RoyaltyOverflowIgnore, nil
	default:
		return "", fmt.Errorf("unsupported royalty overflow policy: %s", strings.TrimSpace(policy))
	}
}

// Normalize canonicalizes every policy field in place.
func (c *ChainConfig) Normalize() error {
	fp, err := NormalizeFinalizePolicy(c.FinalizePolicy)
	if err != nil {
		return err
	}
	rp, err := NormalizeRoyaltyOverflowPolicy(c.RoyaltyOverflowPolicy)
	if err != nil {
		return err
	}
	c.FinalizePolicy, c.RoyaltyOverflowPolicy = fp, rp
	return nil
}

// OpenFinalize reports whether any signer may finalize proposals.
func (c *ChainConfig) OpenFinalize() bool {
	return c != nil && c.FinalizePolicy == FinalizeOpen
}

// IgnoreRoyaltyOverflow reports whether out-of-range royalties are dropped
// silently instead of rejected.
func (c *ChainConfig) IgnoreRoyaltyOverflow() bool {
	return c != nil && c.RoyaltyOverflowPolicy == RoyaltyOverflowIgnore
}

// String implements the fmt.Stringer interface.
func (c *ChainConfig) String() string {
	return fmt.Sprintf("{finalize: %s, royaltyOverflow: %s}", c.FinalizePolicy, c.RoyaltyOverflowPolicy)
}
