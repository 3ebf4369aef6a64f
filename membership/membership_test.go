package membership

import (
	"errors"
	"strings"
	"testing"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/custody"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/globalstate"
	"github.com/otakuverse/ovchain/ovdb/memorydb"
	"github.com/otakuverse/ovchain/params"
	"github.com/otakuverse/ovchain/state"
	"github.com/otakuverse/ovchain/sysaction"
)

var (
	authority = common.HexToAddress("0xa0")
	member    = common.HexToAddress("0x3e")
	pass      = common.HexToAddress("0x9a55")
	h         = &membershipHandler{}
	ledger    = custody.NewLedger()
)

const now = int64(1_700_000_000)

func newTestState(t *testing.T) *state.StateDB {
	t.Helper()
	db, err := state.New(memorydb.New(), 0)
	if err != nil {
		t.Fatalf("state.New: %v", err)
	}
	if err := globalstate.Initialize(db, authority); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := ledger.MintUnique(db, pass, authority); err != nil {
		t.Fatalf("mint pass: %v", err)
	}
	return db
}

func mustAction(t *testing.T, kind sysaction.ActionKind, payload interface{}) *sysaction.SysAction {
	t.Helper()
	data, err := sysaction.MakeSysAction(kind, payload)
	if err != nil {
		t.Fatal(err)
	}
	sa, err := sysaction.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	return sa
}

func handle(t *testing.T, db *state.StateDB, from common.Address, kind sysaction.ActionKind, payload interface{}) error {
	t.Helper()
	sa := mustAction(t, kind, payload)
	return h.Handle(&sysaction.Context{From: from, Time: now, StateDB: db, Custody: ledger}, sa)
}

func TestMintBadge(t *testing.T) {
	db := newTestState(t)
	p := sysaction.MintBadgePayload{BadgeID: 7, Name: "Early Adopter", Description: "Joined in season one"}
	if err := handle(t, db, authority, sysaction.ActionMintBadge, p); err != nil {
		t.Fatalf("mint badge: %v", err)
	}
	b, err := ReadBadge(db, 7)
	if err != nil {
		t.Fatalf("read badge: %v", err)
	}
	if b.Name != p.Name || b.Description != p.Description || b.MintedAt != now {
		t.Fatalf("unexpected badge %+v", b)
	}
	if err := handle(t, db, authority, sysaction.ActionMintBadge, p); !errors.Is(err, state.ErrAlreadyExists) {
		t.Fatalf("reused badge id: want ErrAlreadyExists, got %v", err)
	}
}

func TestMintBadgeRequiresAuthority(t *testing.T) {
	db := newTestState(t)
	p := sysaction.MintBadgePayload{BadgeID: 1, Name: "Self-awarded"}
	if err := handle(t, db, member, sysaction.ActionMintBadge, p); !errors.Is(err, sysaction.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}

func TestMintBadgeCaps(t *testing.T) {
	db := newTestState(t)
	tests := []sysaction.MintBadgePayload{
		{BadgeID: 1, Name: strings.Repeat("n", params.MaxBadgeNameLen+1)},
		{BadgeID: 2, Name: "ok", Description: strings.Repeat("d", params.MaxBadgeDescriptionLen+1)},
	}
	for _, p := range tests {
		if err := handle(t, db, authority, sysaction.ActionMintBadge, p); !errors.Is(err, sysaction.ErrValidation) {
			t.Errorf("badge %d: want ErrValidation, got %v", p.BadgeID, err)
		}
	}
}

func TestVerifyAccess(t *testing.T) {
	db := newTestState(t)
	p := sysaction.VerifyAccessPayload{Asset: pass, ExpirationTime: now + 3600}
	if err := handle(t, db, member, sysaction.ActionVerifyAccess, p); err != nil {
		t.Fatalf("verify access: %v", err)
	}
	g, err := ReadAccess(db, member, pass)
	if err != nil {
		t.Fatalf("read access: %v", err)
	}
	if g.GrantedAt != now || g.ExpirationTime != now+3600 {
		t.Fatalf("unexpected grant %+v", g)
	}
	if !IsAccessLive(g, now+3599) || IsAccessLive(g, now+3600) {
		t.Fatalf("expiry boundary wrong")
	}
	if err := handle(t, db, member, sysaction.ActionVerifyAccess, p); !errors.Is(err, state.ErrAlreadyExists) {
		t.Fatalf("second grant: want ErrAlreadyExists, got %v", err)
	}
}

func TestVerifyAccessStoresExpiredGrant(t *testing.T) {
	db := newTestState(t)
	p := sysaction.VerifyAccessPayload{Asset: pass, ExpirationTime: now - 1}
	if err := handle(t, db, member, sysaction.ActionVerifyAccess, p); err != nil {
		t.Fatalf("expired grant rejected: %v", err)
	}
}

func TestVerifyAccessRequiresMintedAsset(t *testing.T) {
	db := newTestState(t)
	unknown := common.HexToAddress("0xbad")
	p := sysaction.VerifyAccessPayload{Asset: unknown, ExpirationTime: now + 3600}
	err := handle(t, db, member, sysaction.ActionVerifyAccess, p)
	if !errors.Is(err, ErrUnknownAsset) || sysaction.Category(err) != sysaction.CategoryNotFound {
		t.Fatalf("unminted asset: want ErrUnknownAsset, got %v", err)
	}
	if db.HasRecord(derive.Access(member, unknown)) {
		t.Fatalf("rejected grant left a record")
	}

	acc, err := h.Accesses(member, mustAction(t, sysaction.ActionVerifyAccess, p))
	if err != nil {
		t.Fatal(err)
	}
	if len(acc.Reads) != 1 || acc.Reads[0] != derive.CustodyAsset(unknown) {
		t.Fatalf("access list misses the asset read: %+v", acc)
	}
}
