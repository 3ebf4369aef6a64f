package events

import (
	"fmt"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/log"
	"github.com/otakuverse/ovchain/sysaction"
)

func init() {
	sysaction.DefaultRegistry.Register(&eventsHandler{})
}

type eventsHandler struct{}

func (h *eventsHandler) CanHandle(kind sysaction.ActionKind) bool {
	return kind == sysaction.ActionCreateEvent || kind == sysaction.ActionRSVPEvent
}

func (h *eventsHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	switch sa.Action {
	case sysaction.ActionCreateEvent:
		var p sysaction.CreateEventPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		e, err := CreateEvent(ctx.StateDB, ctx.From, &p)
		if err != nil {
			return err
		}
		log.Debug("Event created", "id", e.ID, "community", e.CommunityID, "creator", ctx.From)
		return nil

	case sysaction.ActionRSVPEvent:
		var p sysaction.RSVPPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		e, err := Register(ctx.StateDB, ctx.From, p.EventID, ctx.Time)
		if err != nil {
			return err
		}
		log.Trace("RSVP recorded", "event", e.ID, "user", ctx.From, "participants", e.CurrentParticipants)
		return nil
	}
	return fmt.Errorf("events handler: unsupported action %q", sa.Action)
}

func (h *eventsHandler) Accesses(from common.Address, sa *sysaction.SysAction) (sysaction.Access, error) {
	switch sa.Action {
	case sysaction.ActionCreateEvent:
		var p sysaction.CreateEventPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return sysaction.Access{}, err
		}
		return sysaction.Access{Writes: []common.Address{derive.Event(p.EventID), derive.GlobalState()}}, nil

	case sysaction.ActionRSVPEvent:
		var p sysaction.RSVPPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return sysaction.Access{}, err
		}
		return sysaction.Access{Writes: []common.Address{derive.Event(p.EventID), derive.RSVP(from, p.EventID)}}, nil
	}
	return sysaction.Access{}, fmt.Errorf("events: no access list for %q", sa.Action)
}
