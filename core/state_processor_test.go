package core

import (
	"errors"
	"testing"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/custody"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/globalstate"
	"github.com/otakuverse/ovchain/governance"
	"github.com/otakuverse/ovchain/marketplace"
	"github.com/otakuverse/ovchain/params"
	"github.com/otakuverse/ovchain/state"
	"github.com/otakuverse/ovchain/sysaction"
)

func checkReceipts(t *testing.T, receipts []*Receipt, n int) {
	t.Helper()
	if len(receipts) != n {
		t.Fatalf("got %d receipts, want %d", len(receipts), n)
	}
	for i, r := range receipts {
		if r.Index != i {
			t.Fatalf("receipt %d carries index %d", i, r.Index)
		}
		want, fail := wantFailed[i]
		if r.Failed() != fail {
			t.Fatalf("receipt %d (%s): failed=%v err=%q", i, r.Action, r.Failed(), r.Error)
		}
		if fail && r.Category != want {
			t.Fatalf("receipt %d: category %q, want %q", i, r.Category, want)
		}
	}
}

func TestProcessMixedBatch(t *testing.T) {
	db := newGenesisState(t)
	p := NewStateProcessor(nil, FixedClock(batchTime))
	batch := mixedBatch(t)
	receipts, err := p.Process(db, batch)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	checkReceipts(t, receipts, len(batch))

	gs, err := globalstate.Read(db)
	if err != nil {
		t.Fatalf("global state: %v", err)
	}
	if gs.TotalProposals != 2 || gs.TotalEvents != 1 || gs.TotalMinted != 1 || gs.TotalStaked != 1 {
		t.Fatalf("unexpected counters %+v", gs)
	}
	prop, err := governance.ReadProposal(db, 0)
	if err != nil {
		t.Fatalf("proposal: %v", err)
	}
	if prop.Status != governance.ProposalPassed || prop.ForVotes != 2 || prop.AgainstVotes != 0 {
		t.Fatalf("unexpected proposal %+v", prop)
	}
	nft, err := marketplace.ReadNFT(db, mint1)
	if err != nil {
		t.Fatalf("nft: %v", err)
	}
	if nft.Owner != bob || !nft.IsVerified {
		t.Fatalf("unexpected nft %+v", nft)
	}
	ledger := custody.NewLedger()
	if got := ledger.Balance(db, alice, asset1); got != 1 {
		t.Fatalf("unstaked asset not returned, balance %d", got)
	}
}

func TestProcessFailedOperationLeavesNoTrace(t *testing.T) {
	db := newGenesisState(t)
	p := NewStateProcessor(nil, FixedClock(batchTime))
	price := 3 * params.LamportsPerOV
	setup := []Message{
		msg(t, alice, sysaction.ActionMintNFT, sysaction.MintNFTPayload{Mint: mint1, Name: "Spirit Blade"}),
		msg(t, alice, sysaction.ActionListNFTForSale, sysaction.ListNFTPayload{Mint: mint1, Price: price}),
	}
	if _, err := p.Process(db, setup); err != nil {
		t.Fatalf("setup: %v", err)
	}
	// Pull the program's delegation: payment succeeds, the NFT transfer
	// does not, and the payment must be rolled back.
	if err := custody.NewLedger().Revoke(db, alice, mint1, custody.CallerSigner(alice)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	before := dump(t, db)

	receipts, err := p.Process(db, []Message{
		msg(t, bob, sysaction.ActionPurchaseNFT, sysaction.PurchaseNFTPayload{Mint: mint1, Seller: alice, Price: price}),
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	r := receipts[0]
	if !r.Failed() || r.Category != sysaction.CategoryUnauthorized {
		t.Fatalf("unexpected receipt %+v", r)
	}
	after := dump(t, db)
	if len(before) != len(after) {
		t.Fatalf("failed purchase added records")
	}
	for addr, v := range before {
		if string(after[addr]) != string(v) {
			t.Fatalf("failed purchase modified %s", addr)
		}
	}
}

func TestProcessParallelMatchesSerial(t *testing.T) {
	serialDB, parallelDB := newGenesisState(t), newGenesisState(t)
	batch := mixedBatch(t)

	serial, err := NewStateProcessor(nil, FixedClock(batchTime)).Process(serialDB, batch)
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	par, err := NewStateProcessor(nil, FixedClock(batchTime), WithParallel(4)).Process(parallelDB, batch)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	checkReceipts(t, par, len(batch))
	for i := range serial {
		if serial[i].Status != par[i].Status || serial[i].Category != par[i].Category {
			t.Fatalf("receipt %d differs: serial %+v parallel %+v", i, serial[i], par[i])
		}
	}
	sameState(t, serialDB, parallelDB)
}

func TestProcessConcurrentProposalIDs(t *testing.T) {
	db := newGenesisState(t)
	var batch []Message
	for _, from := range []common.Address{alice, bob, carol, authority} {
		batch = append(batch, msg(t, from, sysaction.ActionCreateProposal, sysaction.CreateProposalPayload{Title: "T", Description: "D"}))
	}
	if _, err := NewStateProcessor(nil, FixedClock(batchTime), WithParallel(8)).Process(db, batch); err != nil {
		t.Fatalf("process: %v", err)
	}
	for id, from := range []common.Address{alice, bob, carol, authority} {
		p, err := governance.ReadProposal(db, uint64(id))
		if err != nil {
			t.Fatalf("proposal %d: %v", id, err)
		}
		if p.Creator != from {
			t.Fatalf("proposal %d created by %s, want %s", id, p.Creator, from)
		}
	}
}

// TestAccessListsCoverTouchedRecords runs every message on its own buffer
// and checks that it stayed inside the access list its handler declared.
// Records addressed by a counter are covered by the lock on that counter.
func TestAccessListsCoverTouchedRecords(t *testing.T) {
	db := newGenesisState(t)
	p := NewStateProcessor(nil, FixedClock(batchTime))
	counterKeyed := map[common.Address]bool{
		derive.Proposal(0): true,
		derive.Proposal(1): true,
		derive.Message(derive.Community("mecha-club"), 0): true,
	}
	for i, m := range mixedBatch(t) {
		sa, err := sysaction.Decode(m.Data)
		if err != nil {
			continue
		}
		acc, ok := sysaction.DefaultRegistry.Analyze(m.From, sa)
		if !ok {
			t.Fatalf("message %d (%s) has no access list", i, sa.Action)
		}
		declared := make(map[common.Address]bool)
		writes := make(map[common.Address]bool)
		for _, a := range acc.Reads {
			declared[a] = true
		}
		for _, a := range acc.Writes {
			declared[a] = true
			writes[a] = true
		}

		buf := newBuf(db)
		_, applyErr := p.applyMessage(buf, &m, batchTime)
		for _, a := range buf.Written() {
			if !writes[a] && !counterKeyed[a] {
				t.Errorf("message %d (%s) wrote undeclared %s", i, sa.Action, a)
			}
		}
		for _, a := range buf.Touched() {
			if !declared[a] && !counterKeyed[a] {
				t.Errorf("message %d (%s) read undeclared %s", i, sa.Action, a)
			}
		}
		if applyErr == nil {
			buf.Merge(db)
		}
	}
}

func TestProcessReportsStorageFailure(t *testing.T) {
	p := NewStateProcessor(nil, FixedClock(batchTime))
	db := &failingDB{StateDB: newGenesisState(t), err: errors.New("disk on fire")}
	_, err := p.Process(db, []Message{msg(t, alice, sysaction.ActionMintBadge, sysaction.MintBadgePayload{BadgeID: 1})})
	if err == nil {
		t.Fatal("expected storage failure to abort the batch")
	}
}

type failingDB struct {
	*state.StateDB
	err error
}

func (f *failingDB) Error() error { return f.err }
