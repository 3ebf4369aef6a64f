// Package governance runs the proposal lifecycle: creation, one vote per
// voter, and majority resolution.
package governance

import (
	"fmt"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/state"
	"github.com/otakuverse/ovchain/sysaction"
)

var (
	ErrProposalNotActive = fmt.Errorf("governance: proposal not active: %w", sysaction.ErrInvalidState)
	ErrDuplicateVote     = fmt.Errorf("governance: duplicate vote: %w", state.ErrAlreadyExists)
	ErrNotFinalizer      = fmt.Errorf("governance: only the authority or the creator may finalize: %w", sysaction.ErrUnauthorized)
)

// ProposalStatus is the lifecycle state of a proposal.
type ProposalStatus uint8

const (
	ProposalActive ProposalStatus = iota
	ProposalPassed
	ProposalRejected
)

func (s ProposalStatus) String() string {
	switch s {
	case ProposalActive:
		return "Active"
	case ProposalPassed:
		return "Passed"
	case ProposalRejected:
		return "Rejected"
	}
	return fmt.Sprintf("ProposalStatus(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s ProposalStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Proposal is a governance proposal.
type Proposal struct {
	ID           uint64         `json:"id"`
	Creator      common.Address `json:"creator"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	CreatedAt    int64          `json:"created_at"`
	ForVotes     uint64         `json:"for_votes"`
	AgainstVotes uint64         `json:"against_votes"`
	Status       ProposalStatus `json:"status"`
}

func (*Proposal) RecordKind() string { return "proposal" }

// Vote is one voter's ballot on one proposal.
type Vote struct {
	ProposalID uint64         `json:"proposal_id"`
	Voter      common.Address `json:"voter"`
	Support    bool           `json:"support"`
	Timestamp  int64          `json:"timestamp"`
}

func (*Vote) RecordKind() string { return "vote" }

// Resolve applies the majority rule. Ties and empty ballots are rejected.
func Resolve(forVotes, againstVotes uint64) ProposalStatus {
	if forVotes > againstVotes {
		return ProposalPassed
	}
	return ProposalRejected
}
