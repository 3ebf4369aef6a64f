package governance

import (
	"errors"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/globalstate"
	"github.com/otakuverse/ovchain/params"
	"github.com/otakuverse/ovchain/state"
	"github.com/otakuverse/ovchain/sysaction"
)

// ReadProposal loads proposal id.
func ReadProposal(db state.RecordDB, id uint64) (*Proposal, error) {
	p := new(Proposal)
	if err := state.Read(db, derive.Proposal(id), p); err != nil {
		return nil, err
	}
	return p, nil
}

// ReadVote loads voter's ballot on proposal id.
func ReadVote(db state.RecordDB, voter common.Address, id uint64) (*Vote, error) {
	v := new(Vote)
	if err := state.Read(db, derive.Vote(voter, id), v); err != nil {
		return nil, err
	}
	return v, nil
}

// CreateProposal assigns the next proposal id and stores an active proposal.
func CreateProposal(db state.RecordDB, creator common.Address, title, description string, now int64) (*Proposal, error) {
	if err := sysaction.CheckLen("title", title, params.MaxProposalTitleLen); err != nil {
		return nil, err
	}
	if err := sysaction.CheckLen("description", description, params.MaxProposalDescriptionLen); err != nil {
		return nil, err
	}
	id, err := globalstate.NextProposalID(db)
	if err != nil {
		return nil, err
	}
	p := &Proposal{
		ID:          id,
		Creator:     creator,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		Status:      ProposalActive,
	}
	if err := state.Create(db, derive.Proposal(id), p); err != nil {
		return nil, err
	}
	return p, nil
}

// CastVote records voter's ballot and adds one unit to the matching tally.
func CastVote(db state.RecordDB, voter common.Address, id uint64, support bool, now int64) (*Proposal, error) {
	p, err := ReadProposal(db, id)
	if err != nil {
		return nil, err
	}
	if p.Status != ProposalActive {
		return nil, ErrProposalNotActive
	}
	voteAddr := derive.Vote(voter, id)
	if db.HasRecord(voteAddr) {
		return nil, ErrDuplicateVote
	}
	if err := state.Create(db, voteAddr, &Vote{ProposalID: id, Voter: voter, Support: support, Timestamp: now}); err != nil {
		return nil, err
	}
	if support {
		p.ForVotes++
	} else {
		p.AgainstVotes++
	}
	return p, state.Mutate(db, derive.Proposal(id), p)
}

// Finalize resolves an active proposal. Unless open is set, only the ledger
// authority or the proposal creator may finalize.
func Finalize(db state.RecordDB, caller common.Address, id uint64, open bool) (*Proposal, error) {
	p, err := ReadProposal(db, id)
	if err != nil {
		return nil, err
	}
	if !open && caller != p.Creator {
		if err := globalstate.RequireAuthority(db, caller); err != nil {
			if errors.Is(err, globalstate.ErrNotAuthority) {
				return nil, ErrNotFinalizer
			}
			return nil, err
		}
	}
	if p.Status != ProposalActive {
		return nil, ErrProposalNotActive
	}
	p.Status = Resolve(p.ForVotes, p.AgainstVotes)
	return p, state.Mutate(db, derive.Proposal(id), p)
}
