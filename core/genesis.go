package core

import (
	"errors"
	"fmt"
	"os"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/core/parallel"
	"github.com/otakuverse/ovchain/custody"
	"github.com/otakuverse/ovchain/globalstate"
	"github.com/otakuverse/ovchain/log"
	"github.com/otakuverse/ovchain/messaging"
	"github.com/otakuverse/ovchain/state"
	"gopkg.in/yaml.v2"
)

var errNoAuthority = errors.New("genesis: authority not set")

// GenesisBalance funds an account with native lamports.
type GenesisBalance struct {
	Owner  common.Address `yaml:"owner"`
	Amount uint64         `yaml:"amount"`
}

// GenesisAsset is a unique asset minted to Owner before the first batch.
type GenesisAsset struct {
	Asset common.Address `yaml:"asset"`
	Owner common.Address `yaml:"owner"`
}

// GenesisCommunity provisions a community record.
type GenesisCommunity struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Creator     common.Address `yaml:"creator"`
}

// Genesis specifies the initial ledger state.
type Genesis struct {
	Authority   common.Address     `yaml:"authority"`
	Timestamp   int64              `yaml:"timestamp"`
	Balances    []GenesisBalance   `yaml:"balances"`
	Assets      []GenesisAsset     `yaml:"assets"`
	Communities []GenesisCommunity `yaml:"communities"`
}

// LoadGenesis reads a YAML genesis file.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseGenesis(data)
}

// ParseGenesis decodes a YAML genesis document. Unknown keys are rejected.
func ParseGenesis(data []byte) (*Genesis, error) {
	g := new(Genesis)
	if err := yaml.UnmarshalStrict(data, g); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	if g.Authority.IsZero() {
		return nil, errNoAuthority
	}
	return g, nil
}

// Commit stages the genesis records into db: the global state, the funded
// accounts, the pre-minted assets and the communities. Either every record is
// staged or none is.
func (g *Genesis) Commit(db state.RecordDB) error {
	if g.Authority.IsZero() {
		return errNoAuthority
	}
	buf := parallel.NewWriteBuf(db)
	if err := globalstate.Initialize(buf, g.Authority); err != nil {
		return fmt.Errorf("genesis: %w", err)
	}
	for _, b := range g.Balances {
		if err := custody.Credit(buf, b.Owner, custody.NativeAsset, b.Amount); err != nil {
			return fmt.Errorf("genesis: fund %s: %w", b.Owner, err)
		}
	}
	ledger := custody.NewLedger()
	for _, a := range g.Assets {
		if err := ledger.MintUnique(buf, a.Asset, a.Owner); err != nil {
			return fmt.Errorf("genesis: mint %s: %w", a.Asset, err)
		}
	}
	for _, c := range g.Communities {
		rec := &messaging.CommunityRecord{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Creator:     c.Creator,
			CreatedAt:   g.Timestamp,
		}
		if _, err := messaging.ProvisionCommunity(buf, rec); err != nil {
			return fmt.Errorf("genesis: community %q: %w", c.ID, err)
		}
	}
	buf.Merge(db)
	log.Info("Committed genesis", "authority", g.Authority, "balances", len(g.Balances),
		"assets", len(g.Assets), "communities", len(g.Communities), "records", buf.Len())
	return nil
}
