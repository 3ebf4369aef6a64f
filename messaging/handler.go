package messaging

import (
	"fmt"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/log"
	"github.com/otakuverse/ovchain/sysaction"
)

func init() {
	sysaction.DefaultRegistry.Register(&messagingHandler{})
}

type messagingHandler struct{}

func (h *messagingHandler) CanHandle(kind sysaction.ActionKind) bool {
	return kind == sysaction.ActionSendCommunityMessage
}

func (h *messagingHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	if sa.Action != sysaction.ActionSendCommunityMessage {
		return fmt.Errorf("messaging handler: unsupported action %q", sa.Action)
	}
	var p sysaction.SendMessagePayload
	if err := sysaction.DecodePayload(sa, &p); err != nil {
		return err
	}
	seq, err := Send(ctx.StateDB, ctx.From, &p, ctx.Time)
	if err != nil {
		return err
	}
	log.Debug("Community message sent", "community", p.CommunityID, "seq", seq, "sender", ctx.From)
	return nil
}

// Accesses locks the stats record of the community since the message
// address depends on its counter.
func (h *messagingHandler) Accesses(from common.Address, sa *sysaction.SysAction) (sysaction.Access, error) {
	var p sysaction.SendMessagePayload
	if err := sysaction.DecodePayload(sa, &p); err != nil {
		return sysaction.Access{}, err
	}
	community := CommunityAddress(&p)
	return sysaction.Access{
		Reads:  []common.Address{community},
		Writes: []common.Address{derive.CommunityStats(community)},
	}, nil
}
