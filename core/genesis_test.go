package core

import (
	"errors"
	"testing"

	"github.com/otakuverse/ovchain/custody"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/globalstate"
	"github.com/otakuverse/ovchain/messaging"
	"github.com/otakuverse/ovchain/params"
	"github.com/otakuverse/ovchain/state"
	"github.com/stretchr/testify/require"
)

const genesisYAML = `
authority: "0x00000000000000000000000000000000000000000000000000000000000000a0"
timestamp: 1699990000
balances:
  - owner: "0x0000000000000000000000000000000000000000000000000000000000000b0b"
    amount: 50000000000
assets:
  - asset: "0x00000000000000000000000000000000000000000000000000000000000a55e7"
    owner: "0x00000000000000000000000000000000000000000000000000000000000a11ce"
communities:
  - id: mecha-club
    name: Mecha Club
    creator: "0x00000000000000000000000000000000000000000000000000000000000a11ce"
`

func TestParseGenesis(t *testing.T) {
	g, err := ParseGenesis([]byte(genesisYAML))
	require.NoError(t, err)
	require.Equal(t, authority, g.Authority)
	require.Len(t, g.Balances, 1)
	require.Equal(t, bob, g.Balances[0].Owner)
	require.Equal(t, 50*params.LamportsPerOV, g.Balances[0].Amount)
	require.Equal(t, asset1, g.Assets[0].Asset)
	require.Equal(t, "mecha-club", g.Communities[0].ID)
}

func TestParseGenesisRejects(t *testing.T) {
	_, err := ParseGenesis([]byte("timestamp: 5\n"))
	require.ErrorIs(t, err, errNoAuthority)

	_, err = ParseGenesis([]byte(genesisYAML + "surprise: true\n"))
	require.Error(t, err)
}

func TestGenesisCommit(t *testing.T) {
	g, err := ParseGenesis([]byte(genesisYAML))
	require.NoError(t, err)
	db := newTestState(t)
	require.NoError(t, g.Commit(db))

	gs, err := globalstate.Read(db)
	require.NoError(t, err)
	require.Equal(t, authority, gs.Authority)

	ledger := custody.NewLedger()
	require.Equal(t, 50*params.LamportsPerOV, ledger.Balance(db, bob, custody.NativeAsset))
	require.Equal(t, uint64(1), ledger.Balance(db, alice, asset1))

	c, err := messaging.ReadCommunity(db, derive.Community("mecha-club"))
	require.NoError(t, err)
	require.Equal(t, int64(1699990000), c.CreatedAt)

	// A second commit fails without staging anything.
	dirty := db.Dirty()
	err = g.Commit(db)
	require.ErrorIs(t, err, state.ErrAlreadyExists)
	require.Equal(t, dirty, db.Dirty())
}

func TestGenesisCommitIsAtomic(t *testing.T) {
	g := testGenesis()
	g.Assets = append(g.Assets, g.Assets[0])
	db := newTestState(t)
	err := g.Commit(db)
	require.Error(t, err)
	require.True(t, errors.Is(err, custody.ErrAssetExists))
	require.Zero(t, db.Dirty())
}
