package events

import (
	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/globalstate"
	"github.com/otakuverse/ovchain/params"
	"github.com/otakuverse/ovchain/state"
	"github.com/otakuverse/ovchain/sysaction"
)

// ReadEvent loads event id.
func ReadEvent(db state.RecordDB, id uint64) (*Event, error) {
	e := new(Event)
	if err := state.Read(db, derive.Event(id), e); err != nil {
		return nil, err
	}
	return e, nil
}

// ReadRSVP loads user's registration for event id.
func ReadRSVP(db state.RecordDB, user common.Address, id uint64) (*RSVP, error) {
	r := new(RSVP)
	if err := state.Read(db, derive.RSVP(user, id), r); err != nil {
		return nil, err
	}
	return r, nil
}

func validateEvent(p *sysaction.CreateEventPayload) error {
	if err := sysaction.CheckLen("community_id", p.CommunityID, params.MaxEventCommunityIDLen); err != nil {
		return err
	}
	if err := sysaction.CheckLen("title", p.Title, params.MaxEventTitleLen); err != nil {
		return err
	}
	return sysaction.CheckLen("description", p.Description, params.MaxEventDescriptionLen)
}

// CreateEvent stores a new active event under the caller-chosen id.
func CreateEvent(db state.RecordDB, creator common.Address, p *sysaction.CreateEventPayload) (*Event, error) {
	if err := validateEvent(p); err != nil {
		return nil, err
	}
	if _, err := globalstate.Read(db); err != nil {
		return nil, err
	}
	e := &Event{
		ID:              p.EventID,
		CommunityID:     p.CommunityID,
		Creator:         creator,
		Title:           p.Title,
		Description:     p.Description,
		Timestamp:       p.Timestamp,
		Status:          EventActive,
		MaxParticipants: params.MaxEventParticipants,
	}
	if err := state.Create(db, derive.Event(p.EventID), e); err != nil {
		return nil, err
	}
	if err := globalstate.IncrementEvents(db); err != nil {
		return nil, err
	}
	return e, nil
}

// Register records user's attendance and takes one seat.
func Register(db state.RecordDB, user common.Address, id uint64, now int64) (*Event, error) {
	e, err := ReadEvent(db, id)
	if err != nil {
		return nil, err
	}
	if e.Status != EventActive {
		return nil, ErrEventNotActive
	}
	if e.Full() {
		return nil, ErrEventFull
	}
	addr := derive.RSVP(user, id)
	if db.HasRecord(addr) {
		return nil, ErrDuplicateRSVP
	}
	if err := state.Create(db, addr, &RSVP{EventID: id, User: user, Timestamp: now}); err != nil {
		return nil, err
	}
	e.CurrentParticipants++
	return e, state.Mutate(db, derive.Event(id), e)
}
