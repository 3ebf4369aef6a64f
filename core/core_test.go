package core

import (
	"bytes"
	"testing"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/core/parallel"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/ovdb/memorydb"
	"github.com/otakuverse/ovchain/params"
	"github.com/otakuverse/ovchain/state"
	"github.com/otakuverse/ovchain/sysaction"
)

var (
	authority = common.HexToAddress("0xa0")
	alice     = common.HexToAddress("0xa11ce")
	bob       = common.HexToAddress("0xb0b")
	carol     = common.HexToAddress("0xca401")
	asset1    = common.HexToAddress("0x0a55e7")
	mint1     = common.HexToAddress("0x4d14")
)

const batchTime = int64(1_700_000_000)

func newTestState(t *testing.T) *state.StateDB {
	t.Helper()
	db, err := state.New(memorydb.New(), 0)
	if err != nil {
		t.Fatalf("state.New: %v", err)
	}
	return db
}

func testGenesis() *Genesis {
	return &Genesis{
		Authority: authority,
		Timestamp: batchTime - 3600,
		Balances: []GenesisBalance{
			{Owner: bob, Amount: 50 * params.LamportsPerOV},
			{Owner: carol, Amount: 5 * params.LamportsPerOV},
		},
		Assets:      []GenesisAsset{{Asset: asset1, Owner: alice}},
		Communities: []GenesisCommunity{{ID: "mecha-club", Name: "Mecha Club", Creator: alice}},
	}
}

func newGenesisState(t *testing.T) *state.StateDB {
	t.Helper()
	db := newTestState(t)
	if err := testGenesis().Commit(db); err != nil {
		t.Fatalf("genesis: %v", err)
	}
	return db
}

func msg(t *testing.T, from common.Address, kind sysaction.ActionKind, payload interface{}) Message {
	t.Helper()
	m, err := NewMessage(from, kind, payload)
	if err != nil {
		t.Fatalf("encode %s: %v", kind, err)
	}
	return m
}

// dump collects every record of db.
func dump(t *testing.T, db *state.StateDB) map[common.Address][]byte {
	t.Helper()
	out := make(map[common.Address][]byte)
	err := db.ForEachRecord(func(addr common.Address, data []byte) bool {
		out[addr] = common.CopyBytes(data)
		return true
	})
	if err != nil {
		t.Fatalf("iterate: %v", err)
	}
	return out
}

func sameState(t *testing.T, a, b *state.StateDB) {
	t.Helper()
	da, db := dump(t, a), dump(t, b)
	if len(da) != len(db) {
		t.Fatalf("record count differs: %d vs %d", len(da), len(db))
	}
	for addr, v := range da {
		if !bytes.Equal(v, db[addr]) {
			t.Fatalf("record %s differs", addr)
		}
	}
}

// mixedBatch touches every engine, including rejected operations.
func mixedBatch(t *testing.T) []Message {
	community := derive.Community("mecha-club")
	return []Message{
		msg(t, alice, sysaction.ActionCreateProposal, sysaction.CreateProposalPayload{Title: "T", Description: "D"}),
		msg(t, bob, sysaction.ActionCreateProposal, sysaction.CreateProposalPayload{Title: "Second", Description: "More"}),
		msg(t, bob, sysaction.ActionVoteOnProposal, sysaction.VotePayload{ProposalID: 0, Support: true}),
		msg(t, carol, sysaction.ActionVoteOnProposal, sysaction.VotePayload{ProposalID: 0, Support: true}),
		msg(t, bob, sysaction.ActionVoteOnProposal, sysaction.VotePayload{ProposalID: 0, Support: false}),
		msg(t, bob, sysaction.ActionCreateEvent, sysaction.CreateEventPayload{EventID: 9, CommunityID: "mecha-club", Title: "Watch party", Timestamp: batchTime + 86400}),
		msg(t, carol, sysaction.ActionRSVPEvent, sysaction.RSVPPayload{EventID: 9}),
		msg(t, alice, sysaction.ActionStakeNFT, sysaction.StakePayload{Asset: asset1}),
		msg(t, alice, sysaction.ActionMintNFT, sysaction.MintNFTPayload{Mint: mint1, Name: "Spirit Blade", Symbol: "SPRT", Rarity: "epic"}),
		msg(t, alice, sysaction.ActionListNFTForSale, sysaction.ListNFTPayload{Mint: mint1, Price: 3 * params.LamportsPerOV}),
		msg(t, bob, sysaction.ActionPurchaseNFT, sysaction.PurchaseNFTPayload{Mint: mint1, Seller: alice, Price: 3 * params.LamportsPerOV}),
		msg(t, carol, sysaction.ActionSendCommunityMessage, sysaction.SendMessagePayload{CommunityID: "mecha-club", Content: "see you there", Community: &community}),
		msg(t, alice, sysaction.ActionFinalizeProposal, sysaction.FinalizeProposalPayload{ProposalID: 0}),
		msg(t, authority, sysaction.ActionMintBadge, sysaction.MintBadgePayload{BadgeID: 1, Name: "Founder"}),
		msg(t, carol, sysaction.ActionVerifyAccess, sysaction.VerifyAccessPayload{Asset: asset1, ExpirationTime: batchTime + 60}),
		{From: carol, Data: []byte(`{"action":`)},
		msg(t, alice, sysaction.ActionUnstakeNFT, sysaction.StakePayload{Asset: asset1}),
		msg(t, authority, sysaction.ActionVerifyNFT, sysaction.NFTPayload{Mint: mint1}),
	}
}

// wantFailed lists the messages of mixedBatch that must be rejected.
var wantFailed = map[int]string{
	4:  sysaction.CategoryAlreadyExists,
	15: sysaction.CategoryValidation,
}

func newBuf(db state.RecordDB) *parallel.WriteBuf { return parallel.NewWriteBuf(db) }
