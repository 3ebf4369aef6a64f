package governance

import (
	"fmt"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/log"
	"github.com/otakuverse/ovchain/sysaction"
)

func init() {
	sysaction.DefaultRegistry.Register(&governanceHandler{})
}

// governanceHandler implements sysaction.Handler for proposal actions.
type governanceHandler struct{}

func (h *governanceHandler) CanHandle(kind sysaction.ActionKind) bool {
	switch kind {
	case sysaction.ActionCreateProposal,
		sysaction.ActionVoteOnProposal,
		sysaction.ActionFinalizeProposal:
		return true
	}
	return false
}

func (h *governanceHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	db := ctx.StateDB
	switch sa.Action {
	case sysaction.ActionCreateProposal:
		var p sysaction.CreateProposalPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		prop, err := CreateProposal(db, ctx.From, p.Title, p.Description, ctx.Time)
		if err != nil {
			return err
		}
		log.Debug("Proposal created", "id", prop.ID, "creator", ctx.From)
		return nil

	case sysaction.ActionVoteOnProposal:
		var p sysaction.VotePayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		prop, err := CastVote(db, ctx.From, p.ProposalID, p.Support, ctx.Time)
		if err != nil {
			return err
		}
		log.Trace("Vote cast", "id", prop.ID, "voter", ctx.From, "support", p.Support, "for", prop.ForVotes, "against", prop.AgainstVotes)
		return nil

	case sysaction.ActionFinalizeProposal:
		var p sysaction.FinalizeProposalPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		prop, err := Finalize(db, ctx.From, p.ProposalID, ctx.ChainConfig().OpenFinalize())
		if err != nil {
			return err
		}
		log.Debug("Proposal finalized", "id", prop.ID, "status", prop.Status, "for", prop.ForVotes, "against", prop.AgainstVotes)
		return nil
	}
	return fmt.Errorf("governance handler: unsupported action %q", sa.Action)
}

// Proposal addresses come from the global counter, so every proposal action
// also touches the proposal namespace: creation writes it, the rest read it.
func (h *governanceHandler) Accesses(from common.Address, sa *sysaction.SysAction) (sysaction.Access, error) {
	ns := derive.Namespace(derive.TagProposal)
	switch sa.Action {
	case sysaction.ActionCreateProposal:
		return sysaction.Access{Writes: []common.Address{derive.GlobalState(), ns}}, nil

	case sysaction.ActionVoteOnProposal:
		var p sysaction.VotePayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return sysaction.Access{}, err
		}
		return sysaction.Access{
			Reads:  []common.Address{ns},
			Writes: []common.Address{derive.Proposal(p.ProposalID), derive.Vote(from, p.ProposalID)},
		}, nil

	case sysaction.ActionFinalizeProposal:
		var p sysaction.FinalizeProposalPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return sysaction.Access{}, err
		}
		return sysaction.Access{
			Reads:  []common.Address{ns, derive.GlobalState()},
			Writes: []common.Address{derive.Proposal(p.ProposalID)},
		}, nil
	}
	return sysaction.Access{}, fmt.Errorf("governance: no access list for %q", sa.Action)
}
