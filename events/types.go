// Package events manages community events and capacity-bounded RSVPs.
package events

import (
	"fmt"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/state"
	"github.com/otakuverse/ovchain/sysaction"
)

var (
	ErrEventNotActive = fmt.Errorf("events: event not active: %w", sysaction.ErrInvalidState)
	ErrEventFull      = fmt.Errorf("events: event full: %w", sysaction.ErrCapacityExceeded)
	ErrDuplicateRSVP  = fmt.Errorf("events: already registered: %w", state.ErrAlreadyExists)
)

// EventStatus is the lifecycle state of an event.
type EventStatus uint8

const (
	EventActive EventStatus = iota
	EventCompleted
	EventCancelled
)

func (s EventStatus) String() string {
	switch s {
	case EventActive:
		return "Active"
	case EventCompleted:
		return "Completed"
	case EventCancelled:
		return "Cancelled"
	}
	return fmt.Sprintf("EventStatus(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s EventStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Event is a community event.
type Event struct {
	ID                  uint64         `json:"id"`
	CommunityID         string         `json:"community_id"`
	Creator             common.Address `json:"creator"`
	Title               string         `json:"title"`
	Description         string         `json:"description"`
	Timestamp           int64          `json:"timestamp"`
	Status              EventStatus    `json:"status"`
	MaxParticipants     uint32         `json:"max_participants"`
	CurrentParticipants uint32         `json:"current_participants"`
}

func (*Event) RecordKind() string { return "event" }

// Full reports whether the event has no seats left.
func (e *Event) Full() bool { return e.CurrentParticipants >= e.MaxParticipants }

// RSVP is one user's registration for one event.
type RSVP struct {
	EventID   uint64         `json:"event_id"`
	User      common.Address `json:"user"`
	Timestamp int64          `json:"timestamp"`
}

func (*RSVP) RecordKind() string { return "rsvp" }
