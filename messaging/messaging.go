// Package messaging posts messages to provisioned communities.
package messaging

import (
	"errors"
	"fmt"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/params"
	"github.com/otakuverse/ovchain/record"
	"github.com/otakuverse/ovchain/state"
	"github.com/otakuverse/ovchain/sysaction"
)

var (
	ErrCommunityNotFound = fmt.Errorf("messaging: community not found: %w", state.ErrNotFound)
	ErrSequenceOverflow  = fmt.Errorf("messaging: message sequence overflow: %w", sysaction.ErrInvalidState)
)

// CommunityRecord describes a community. Communities are provisioned at
// genesis and read-only afterwards.
type CommunityRecord struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Creator     common.Address `json:"creator"`
	CreatedAt   int64          `json:"created_at"`
}

func (*CommunityRecord) RecordKind() string { return "community" }

// CommunityStats counts the messages posted to a community. MessageCount is
// the sequence number of the next message.
type CommunityStats struct {
	Community    common.Address `json:"community"`
	MessageCount uint64         `json:"message_count"`
}

func (*CommunityStats) RecordKind() string { return "community_stats" }

// Message is one community post.
type Message struct {
	CommunityID string         `json:"community_id"`
	Sender      common.Address `json:"sender"`
	Content     string         `json:"content"`
	SentAt      int64          `json:"sent_at"`
}

func (*Message) RecordKind() string { return "message" }

// ProvisionCommunity stores rec at its derived address.
func ProvisionCommunity(db state.RecordDB, rec *CommunityRecord) (common.Address, error) {
	if err := sysaction.CheckLen("community_id", rec.ID, params.MaxCommunityIDLen); err != nil {
		return common.Address{}, err
	}
	addr := derive.Community(rec.ID)
	if err := state.Create(db, addr, rec); err != nil {
		return common.Address{}, err
	}
	return addr, nil
}

// ReadCommunity loads the community stored at addr.
func ReadCommunity(db state.RecordDB, addr common.Address) (*CommunityRecord, error) {
	c := new(CommunityRecord)
	if err := state.Read(db, addr, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ReadStats returns the message counter of community. A community without
// messages has a zero counter.
func ReadStats(db state.RecordDB, community common.Address) (*CommunityStats, error) {
	st := &CommunityStats{Community: community}
	addr := derive.CommunityStats(community)
	if !db.HasRecord(addr) {
		return st, nil
	}
	if err := state.Read(db, addr, st); err != nil {
		return nil, err
	}
	return st, nil
}

// ReadMessage loads message seq of community.
func ReadMessage(db state.RecordDB, community common.Address, seq uint64) (*Message, error) {
	m := new(Message)
	if err := state.Read(db, derive.Message(community, seq), m); err != nil {
		return nil, err
	}
	return m, nil
}

// CommunityAddress resolves the record address a message targets.
func CommunityAddress(p *sysaction.SendMessagePayload) common.Address {
	if p.Community != nil {
		return *p.Community
	}
	return derive.Community(p.CommunityID)
}

// Send stores a message from sender and returns its sequence number.
func Send(db state.RecordDB, sender common.Address, p *sysaction.SendMessagePayload, now int64) (uint64, error) {
	if err := sysaction.CheckLen("community_id", p.CommunityID, params.MaxCommunityIDLen); err != nil {
		return 0, err
	}
	if err := sysaction.CheckLen("content", p.Content, params.MaxMessageContentLen); err != nil {
		return 0, err
	}
	addr := CommunityAddress(p)
	c, err := ReadCommunity(db, addr)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) || errors.Is(err, record.ErrKindMismatch) {
			return 0, fmt.Errorf("%w: %s", ErrCommunityNotFound, p.CommunityID)
		}
		return 0, err
	}
	if c.ID != p.CommunityID {
		return 0, fmt.Errorf("%w: record at %s is %q, not %q", ErrCommunityNotFound, addr, c.ID, p.CommunityID)
	}
	st, err := ReadStats(db, addr)
	if err != nil {
		return 0, err
	}
	seq := st.MessageCount
	if seq == ^uint64(0) {
		return 0, ErrSequenceOverflow
	}
	msg := &Message{CommunityID: p.CommunityID, Sender: sender, Content: p.Content, SentAt: now}
	if err := state.Create(db, derive.Message(addr, seq), msg); err != nil {
		return 0, err
	}
	st.MessageCount++
	if err := state.Put(db, derive.CommunityStats(addr), st); err != nil {
		return 0, err
	}
	return seq, nil
}
