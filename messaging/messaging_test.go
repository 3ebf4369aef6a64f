package messaging

import (
	"errors"
	"strings"
	"testing"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/ovdb/memorydb"
	"github.com/otakuverse/ovchain/params"
	"github.com/otakuverse/ovchain/state"
	"github.com/otakuverse/ovchain/sysaction"
)

var (
	founder = common.HexToAddress("0xf0")
	member  = common.HexToAddress("0x3e")
	h       = &messagingHandler{}
)

const now = int64(1_700_000_000)

func newTestState(t *testing.T) (*state.StateDB, common.Address) {
	t.Helper()
	db, err := state.New(memorydb.New(), 0)
	if err != nil {
		t.Fatalf("state.New: %v", err)
	}
	addr, err := ProvisionCommunity(db, &CommunityRecord{ID: "mecha-club", Name: "Mecha Club", Creator: founder, CreatedAt: now - 100})
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	return db, addr
}

func send(t *testing.T, db *state.StateDB, from common.Address, p sysaction.SendMessagePayload) error {
	t.Helper()
	data, err := sysaction.MakeSysAction(sysaction.ActionSendCommunityMessage, p)
	if err != nil {
		t.Fatal(err)
	}
	sa, err := sysaction.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	return h.Handle(&sysaction.Context{From: from, Time: now, StateDB: db}, sa)
}

func TestSendMessage(t *testing.T) {
	db, addr := newTestState(t)
	for i, content := range []string{"first!", "episode 12 tonight"} {
		if err := send(t, db, member, sysaction.SendMessagePayload{CommunityID: "mecha-club", Content: content}); err != nil {
			t.Fatalf("send #%d: %v", i, err)
		}
	}
	st, err := ReadStats(db, addr)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.MessageCount != 2 {
		t.Fatalf("message count %d, want 2", st.MessageCount)
	}
	m, err := ReadMessage(db, addr, 1)
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	if m.Content != "episode 12 tonight" || m.Sender != member || m.SentAt != now || m.CommunityID != "mecha-club" {
		t.Fatalf("unexpected message %+v", m)
	}
}

func TestSendUnknownCommunity(t *testing.T) {
	db, _ := newTestState(t)
	err := send(t, db, member, sysaction.SendMessagePayload{CommunityID: "ghost-town", Content: "hello?"})
	if !errors.Is(err, ErrCommunityNotFound) {
		t.Fatalf("want ErrCommunityNotFound, got %v", err)
	}
	if sysaction.Category(err) != sysaction.CategoryNotFound {
		t.Fatalf("category %q", sysaction.Category(err))
	}
}

func TestSendCommunityMismatch(t *testing.T) {
	db, addr := newTestState(t)
	if _, err := ProvisionCommunity(db, &CommunityRecord{ID: "idol-fans", Creator: founder}); err != nil {
		t.Fatalf("provision: %v", err)
	}
	// Address of mecha-club, id of idol-fans.
	err := send(t, db, member, sysaction.SendMessagePayload{CommunityID: "idol-fans", Content: "hi", Community: &addr})
	if !errors.Is(err, ErrCommunityNotFound) {
		t.Fatalf("want ErrCommunityNotFound, got %v", err)
	}
	// An address holding some other record kind.
	other := derive.GlobalState()
	db.SetRecord(other, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	err = send(t, db, member, sysaction.SendMessagePayload{CommunityID: "idol-fans", Content: "hi", Community: &other})
	if !errors.Is(err, ErrCommunityNotFound) {
		t.Fatalf("foreign record: want ErrCommunityNotFound, got %v", err)
	}
}

func TestSendCaps(t *testing.T) {
	db, addr := newTestState(t)
	tests := []sysaction.SendMessagePayload{
		{CommunityID: strings.Repeat("c", params.MaxCommunityIDLen+1), Content: "x"},
		{CommunityID: "mecha-club", Content: strings.Repeat("x", params.MaxMessageContentLen+1)},
	}
	for i, p := range tests {
		if err := send(t, db, member, p); !errors.Is(err, sysaction.ErrValidation) {
			t.Errorf("case %d: want ErrValidation, got %v", i, err)
		}
	}
	if st, _ := ReadStats(db, addr); st.MessageCount != 0 {
		t.Fatalf("rejected sends advanced the counter to %d", st.MessageCount)
	}
	ok := sysaction.SendMessagePayload{CommunityID: "mecha-club", Content: strings.Repeat("x", params.MaxMessageContentLen)}
	if err := send(t, db, member, ok); err != nil {
		t.Fatalf("content at cap: %v", err)
	}
}

func TestProvisionCommunityTwice(t *testing.T) {
	db, _ := newTestState(t)
	if _, err := ProvisionCommunity(db, &CommunityRecord{ID: "mecha-club"}); !errors.Is(err, state.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists, got %v", err)
	}
}
