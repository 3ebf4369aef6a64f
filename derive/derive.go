// Package derive computes the deterministic storage address of every record.
//
// An address is the Keccak256 hash of a domain prefix, a namespace tag and a
// tuple of key parts. Every variable-length component is prefixed with its
// big-endian uint64 length so distinct tuples never share a preimage.
package derive

import (
	"encoding/binary"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/crypto"
)

const domain = "ovchain.derive"

// Namespace tags.
const (
	TagGlobalState      = "global_state"
	TagProgramAuthority = "program_authority"
	TagStaking          = "staking"
	TagProposal         = "proposal"
	TagVote             = "vote"
	TagEvent            = "event"
	TagRSVP             = "rsvp"
	TagBadge            = "badge"
	TagAccess           = "access"
	TagNFT              = "nft"
	TagCommunity        = "community"
	TagCommunityStats   = "community_stats"
	TagMessage          = "message"
	TagCustodyAccount   = "custody_account"
	TagCustodyDelegate  = "custody_delegate"
	TagCustodyAsset     = "custody_asset"
	TagNamespace        = "namespace"
)

// Address derives the address for tag and parts.
func Address(tag string, parts ...[]byte) common.Address {
	size := len(domain) + 8 + len(tag)
	for _, p := range parts {
		size += 8 + len(p)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, domain...)
	buf = appendLen(buf, len(tag))
	buf = append(buf, tag...)
	for _, p := range parts {
		buf = appendLen(buf, len(p))
		buf = append(buf, p...)
	}
	return common.BytesToAddress(crypto.Keccak256(buf))
}

func appendLen(buf []byte, n int) []byte {
	var l [8]byte
	binary.BigEndian.PutUint64(l[:], uint64(n))
	return append(buf, l[:]...)
}

// U64 encodes a numeric key part as 8 little-endian bytes.
func U64(n uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], n)
	return b[:]
}

func GlobalState() common.Address { return Address(TagGlobalState) }

// ProgramAuthority is the program-controlled signer that moves assets out of
// engine custody.
func ProgramAuthority() common.Address { return Address(TagProgramAuthority) }

func StakePosition(staker, asset common.Address) common.Address {
	return Address(TagStaking, staker.Bytes(), asset.Bytes())
}

func Proposal(id uint64) common.Address { return Address(TagProposal, U64(id)) }

func Vote(voter common.Address, proposalID uint64) common.Address {
	return Address(TagVote, voter.Bytes(), U64(proposalID))
}

func Event(id uint64) common.Address { return Address(TagEvent, U64(id)) }

func RSVP(user common.Address, eventID uint64) common.Address {
	return Address(TagRSVP, user.Bytes(), U64(eventID))
}

func Badge(id uint64) common.Address { return Address(TagBadge, U64(id)) }

func Access(user, asset common.Address) common.Address {
	return Address(TagAccess, user.Bytes(), asset.Bytes())
}

func NFT(mint common.Address) common.Address { return Address(TagNFT, mint.Bytes()) }

// Community derives the record address of a community from its string id.
func Community(id string) common.Address { return Address(TagCommunity, []byte(id)) }

// CommunityStats holds the message sequence counter of a community record.
func CommunityStats(community common.Address) common.Address {
	return Address(TagCommunityStats, community.Bytes())
}

func Message(community common.Address, seq uint64) common.Address {
	return Address(TagMessage, community.Bytes(), U64(seq))
}

func CustodyAccount(owner, asset common.Address) common.Address {
	return Address(TagCustodyAccount, owner.Bytes(), asset.Bytes())
}

func CustodyDelegate(owner, asset common.Address) common.Address {
	return Address(TagCustodyDelegate, owner.Bytes(), asset.Bytes())
}

// CustodyAsset registers a unique asset so it can be minted once.
func CustodyAsset(asset common.Address) common.Address {
	return Address(TagCustodyAsset, asset.Bytes())
}

// Namespace is a synthetic address standing for every record under tag. It
// never holds a record; schedulers use it to order operations whose record
// addresses depend on a counter.
func Namespace(tag string) common.Address {
	return Address(TagNamespace, []byte(tag))
}
