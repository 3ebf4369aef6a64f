// Package membership issues community badges and records access grants.
package membership

import (
	"fmt"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/custody"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/globalstate"
	"github.com/otakuverse/ovchain/params"
	"github.com/otakuverse/ovchain/state"
	"github.com/otakuverse/ovchain/sysaction"
)

// ErrUnknownAsset is returned when an access grant names an asset that was
// never minted.
var ErrUnknownAsset = fmt.Errorf("membership: asset is not a minted unique asset: %w", state.ErrNotFound)

// Badge is an authority-issued community badge. Badges are immutable.
type Badge struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MintedAt    int64  `json:"minted_at"`
}

func (*Badge) RecordKind() string { return "badge" }

// AccessGrant records that user requested access through asset.
// ExpirationTime is advisory; verifiers enforce it with IsAccessLive.
type AccessGrant struct {
	User           common.Address `json:"user"`
	Asset          common.Address `json:"asset"`
	GrantedAt      int64          `json:"granted_at"`
	ExpirationTime int64          `json:"expiration_time"`
}

func (*AccessGrant) RecordKind() string { return "access_grant" }

// IsAccessLive reports whether g is unexpired at now.
func IsAccessLive(g *AccessGrant, now int64) bool {
	return now < g.ExpirationTime
}

// MintBadge stores badge id. Only the ledger authority may mint.
func MintBadge(db state.RecordDB, caller common.Address, p *sysaction.MintBadgePayload, now int64) (*Badge, error) {
	if err := sysaction.CheckLen("name", p.Name, params.MaxBadgeNameLen); err != nil {
		return nil, err
	}
	if err := sysaction.CheckLen("description", p.Description, params.MaxBadgeDescriptionLen); err != nil {
		return nil, err
	}
	if err := globalstate.RequireAuthority(db, caller); err != nil {
		return nil, err
	}
	b := &Badge{ID: p.BadgeID, Name: p.Name, Description: p.Description, MintedAt: now}
	if err := state.Create(db, derive.Badge(p.BadgeID), b); err != nil {
		return nil, err
	}
	return b, nil
}

// GrantAccess stores the grant of user for asset, which must be a minted
// unique asset.
func GrantAccess(db state.RecordDB, c custody.Custody, user, asset common.Address, expiration, now int64) (*AccessGrant, error) {
	if !c.Minted(db, asset) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, asset)
	}
	g := &AccessGrant{User: user, Asset: asset, GrantedAt: now, ExpirationTime: expiration}
	if err := state.Create(db, derive.Access(user, asset), g); err != nil {
		return nil, err
	}
	return g, nil
}

// ReadBadge loads badge id.
func ReadBadge(db state.RecordDB, id uint64) (*Badge, error) {
	b := new(Badge)
	if err := state.Read(db, derive.Badge(id), b); err != nil {
		return nil, err
	}
	return b, nil
}

// ReadAccess loads the grant of user for asset.
func ReadAccess(db state.RecordDB, user, asset common.Address) (*AccessGrant, error) {
	g := new(AccessGrant)
	if err := state.Read(db, derive.Access(user, asset), g); err != nil {
		return nil, err
	}
	return g, nil
}
