package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/core"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/params"
	"github.com/otakuverse/ovchain/sysaction"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0xa11ce")
	bob   = common.HexToAddress("0xb0b")
	mint1 = common.HexToAddress("0x4d14")
)

const (
	batchTime   = int64(1_700_000_000)
	genesisYAML = `
authority: "0x00000000000000000000000000000000000000000000000000000000000000a0"
timestamp: 1699990000
balances:
  - owner: "0x0000000000000000000000000000000000000000000000000000000000000b0b"
    amount: 50000000000
communities:
  - id: mecha-club
    name: Mecha Club
    creator: "0x00000000000000000000000000000000000000000000000000000000000a11ce"
`
)

type testLedger struct {
	t       *testing.T
	datadir string
	genesis string
}

func newTestLedger(t *testing.T) *testLedger {
	dir := t.TempDir()
	genesis := filepath.Join(dir, "genesis.yaml")
	require.NoError(t, os.WriteFile(genesis, []byte(genesisYAML), 0o600))
	return &testLedger{t: t, datadir: filepath.Join(dir, "data"), genesis: genesis}
}

// run executes the app in-process against the ledger's data directory.
func (l *testLedger) run(args ...string) (string, error) {
	l.t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out
	base := []string{"ovchain", "--dotenv", "", "--datadir", l.datadir, "--verbosity", "error"}
	err := app.Run(append(base, args...))
	return out.String(), err
}

func (l *testLedger) mustRun(args ...string) string {
	l.t.Helper()
	out, err := l.run(args...)
	require.NoError(l.t, err, "output: %s", out)
	return out
}

func (l *testLedger) writeActions(msgs ...core.Message) string {
	l.t.Helper()
	data, err := json.Marshal(msgs)
	require.NoError(l.t, err)
	path := filepath.Join(l.t.TempDir(), "actions.json")
	require.NoError(l.t, os.WriteFile(path, data, 0o600))
	return path
}

func action(t *testing.T, from common.Address, kind sysaction.ActionKind, payload interface{}) core.Message {
	t.Helper()
	m, err := core.NewMessage(from, kind, payload)
	require.NoError(t, err)
	return m
}

func TestInitTwiceFails(t *testing.T) {
	l := newTestLedger(t)
	out := l.mustRun("init", "--genesis", l.genesis)
	require.Contains(t, out, "Initialized ledger")

	_, err := l.run("init", "--genesis", l.genesis)
	require.Error(t, err)
	require.Equal(t, sysaction.CategoryAlreadyExists, sysaction.Category(err))
}

func TestApplyAndInspect(t *testing.T) {
	l := newTestLedger(t)
	l.mustRun("init", "--genesis", l.genesis)

	actions := l.writeActions(
		action(t, alice, sysaction.ActionCreateProposal, sysaction.CreateProposalPayload{Title: "Season 2", Description: "Vote"}),
		action(t, bob, sysaction.ActionVoteOnProposal, sysaction.VotePayload{ProposalID: 0, Support: true}),
		action(t, alice, sysaction.ActionMintNFT, sysaction.MintNFTPayload{Mint: mint1, Name: "Spirit Blade", Symbol: "SPRT", Rarity: "legendary"}),
		action(t, alice, sysaction.ActionListNFTForSale, sysaction.ListNFTPayload{Mint: mint1, Price: 3 * params.LamportsPerOV / 2}),
		action(t, bob, sysaction.ActionVoteOnProposal, sysaction.VotePayload{ProposalID: 0, Support: false}),
	)
	out := l.mustRun("apply", "--actions", actions, "--time", "1700000000", "--json")
	var res batchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotEmpty(t, res.Batch)
	require.Equal(t, batchTime, res.Time)
	require.Len(t, res.Receipts, 5)
	for i, r := range res.Receipts[:4] {
		require.False(t, r.Failed(), "receipt %d: %s", i, r.Error)
	}
	require.True(t, res.Receipts[4].Failed())
	require.Equal(t, sysaction.CategoryAlreadyExists, res.Receipts[4].Category)

	out = l.mustRun("inspect", "proposal", "0", "--json")
	var proposal map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &proposal))
	require.Equal(t, "Season 2", proposal["title"])
	require.EqualValues(t, 1, proposal["for_votes"])

	require.Equal(t, out, l.mustRun("inspect", "--json", "proposal", "0"))

	out = l.mustRun("inspect", "nft", mint1.Hex())
	require.Contains(t, out, "Legendary")
	require.Contains(t, out, "1500000000 (1.5 OV)")

	out = l.mustRun("inspect", "balance", bob.Hex(), common.Address{}.Hex())
	require.Contains(t, out, "50000000000 (50 OV)")

	out = l.mustRun("inspect", "nft", mint1.Hex(), "--dump")
	require.Contains(t, out, "marketplace.NFTRecord")

	_, err := l.run("inspect", "proposal", "9")
	require.Error(t, err)
	require.Equal(t, sysaction.CategoryNotFound, sysaction.Category(err))

	_, err = l.run("inspect", "nft")
	require.Error(t, err)
	_, err = l.run("inspect", "ledger")
	require.Error(t, err)
}

func TestApplyParallelMatchesSerial(t *testing.T) {
	msgs := func() []core.Message {
		return []core.Message{
			action(t, alice, sysaction.ActionCreateProposal, sysaction.CreateProposalPayload{Title: "A"}),
			action(t, bob, sysaction.ActionCreateProposal, sysaction.CreateProposalPayload{Title: "B"}),
			action(t, bob, sysaction.ActionSendCommunityMessage, sysaction.SendMessagePayload{CommunityID: "mecha-club", Content: "hi"}),
			action(t, alice, sysaction.ActionSendCommunityMessage, sysaction.SendMessagePayload{CommunityID: "mecha-club", Content: "hello"}),
		}
	}
	serial, parallel := newTestLedger(t), newTestLedger(t)
	for _, l := range []*testLedger{serial, parallel} {
		l.mustRun("init", "--genesis", l.genesis)
	}
	serial.mustRun("apply", "--actions", serial.writeActions(msgs()...), "--time", "1700000000")
	parallel.mustRun("apply", "--actions", parallel.writeActions(msgs()...), "--time", "1700000000", "--parallel", "--workers", "4")

	for _, args := range [][]string{
		{"inspect", "proposal", "1", "--json"},
		{"inspect", "message", "mecha-club", "1", "--json"},
		{"inspect", "global", "--json"},
	} {
		require.Equal(t, serial.mustRun(args...), parallel.mustRun(args...), "%v", args)
	}
}

func TestApplyWithMemoryEngine(t *testing.T) {
	l := newTestLedger(t)
	actions := l.writeActions(
		action(t, alice, sysaction.ActionCreateProposal, sysaction.CreateProposalPayload{Title: "A"}),
		action(t, alice, sysaction.ActionFinalizeProposal, sysaction.FinalizeProposalPayload{ProposalID: 3}),
	)
	out := l.mustRun("--db.engine", "memory", "apply", "--genesis", l.genesis, "--actions", actions)
	require.Contains(t, out, "1 applied, 1 rejected")
	require.Contains(t, out, sysaction.CategoryNotFound)
}

func TestDerive(t *testing.T) {
	l := newTestLedger(t)
	out := l.mustRun("derive", derive.TagVote, alice.Hex(), "7")
	require.Equal(t, derive.Vote(alice, 7).Hex(), strings.TrimSpace(out))

	out = l.mustRun("derive", derive.TagVote, alice.Hex(), "7", "--json")
	var res struct {
		Tag     string         `json:"tag"`
		Parts   []string       `json:"parts"`
		Address common.Address `json:"address"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, derive.TagVote, res.Tag)
	require.Equal(t, []string{alice.Hex(), "7"}, res.Parts)
	require.Equal(t, derive.Vote(alice, 7), res.Address)

	_, err := l.run("derive")
	require.Error(t, err)
}

func TestVersionAndDumpConfig(t *testing.T) {
	l := newTestLedger(t)
	out := l.mustRun("version")
	require.Contains(t, out, "Version: "+params.VersionWithMeta)

	out = l.mustRun("--db.engine", "sqlite", "dumpconfig")
	require.Contains(t, out, "[DB]")
	require.Contains(t, out, `Engine = "sqlite"`)
}
