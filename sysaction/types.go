// Package sysaction implements the ovchain operation protocol.
//
// Every operation is a JSON-encoded SysAction envelope signed by its caller.
// The processor decodes the envelope and dispatches it to the handler
// registered for its kind (staking, governance, marketplace and so on).
package sysaction

import (
	"encoding/json"

	"github.com/otakuverse/ovchain/common"
)

// ActionKind identifies the type of operation.
type ActionKind string

const (
	// Global counters
	ActionInitialize ActionKind = "INITIALIZE"

	// Staking
	ActionStakeNFT   ActionKind = "STAKE_NFT"
	ActionUnstakeNFT ActionKind = "UNSTAKE_NFT"

	// Governance
	ActionCreateProposal   ActionKind = "CREATE_PROPOSAL"
	ActionVoteOnProposal   ActionKind = "VOTE_ON_PROPOSAL"
	ActionFinalizeProposal ActionKind = "FINALIZE_PROPOSAL"

	// Events
	ActionCreateEvent ActionKind = "CREATE_EVENT"
	ActionRSVPEvent   ActionKind = "RSVP_EVENT"

	// Membership
	ActionMintBadge    ActionKind = "MINT_BADGE"
	ActionVerifyAccess ActionKind = "VERIFY_ACCESS"

	// Marketplace
	ActionMintNFT           ActionKind = "MINT_NFT"
	ActionMintEnhancedNFT   ActionKind = "MINT_ENHANCED_NFT"
	ActionPurchaseNFT       ActionKind = "PURCHASE_NFT"
	ActionUpdateNFTMetadata ActionKind = "UPDATE_NFT_METADATA"
	ActionVerifyNFT         ActionKind = "VERIFY_NFT"
	ActionListNFTForSale    ActionKind = "LIST_NFT_FOR_SALE"
	ActionCancelNFTListing  ActionKind = "CANCEL_NFT_LISTING"

	// Messaging
	ActionSendCommunityMessage ActionKind = "SEND_COMMUNITY_MESSAGE"
)

// SysAction is the top-level envelope of an operation.
type SysAction struct {
	Action  ActionKind      `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// StakePayload is the payload for STAKE_NFT and UNSTAKE_NFT.
type StakePayload struct {
	Asset common.Address `json:"asset"`
}

// CreateProposalPayload is the payload for CREATE_PROPOSAL.
type CreateProposalPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// VotePayload is the payload for VOTE_ON_PROPOSAL.
type VotePayload struct {
	ProposalID uint64 `json:"proposal_id"`
	Support    bool   `json:"support"`
}

// FinalizeProposalPayload is the payload for FINALIZE_PROPOSAL.
type FinalizeProposalPayload struct {
	ProposalID uint64 `json:"proposal_id"`
}

// CreateEventPayload is the payload for CREATE_EVENT.
type CreateEventPayload struct {
	EventID     uint64 `json:"event_id"`
	CommunityID string `json:"community_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Timestamp   int64  `json:"timestamp"`
}

// RSVPPayload is the payload for RSVP_EVENT.
type RSVPPayload struct {
	EventID uint64 `json:"event_id"`
}

// MintBadgePayload is the payload for MINT_BADGE.
type MintBadgePayload struct {
	BadgeID     uint64 `json:"badge_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// VerifyAccessPayload is the payload for VERIFY_ACCESS.
type VerifyAccessPayload struct {
	Asset          common.Address `json:"asset"`
	ExpirationTime int64          `json:"expiration_time"`
}

// NFTAttribute is one trait/value pair of an NFT.
type NFTAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// MintNFTPayload is the payload for MINT_NFT.
type MintNFTPayload struct {
	Mint       common.Address `json:"mint"`
	Name       string         `json:"name"`
	Symbol     string         `json:"symbol"`
	URI        string         `json:"uri"`
	AnimeTitle string         `json:"anime_title"`
	Rarity     string         `json:"rarity"`
}

// MintEnhancedNFTPayload is the payload for MINT_ENHANCED_NFT.
type MintEnhancedNFTPayload struct {
	MintNFTPayload
	Description        string          `json:"description"`
	Collection         *common.Address `json:"collection,omitempty"`
	Attributes         []NFTAttribute  `json:"attributes"`
	RoyaltyBasisPoints uint16          `json:"royalty_basis_points"`
}

// PurchaseNFTPayload is the payload for PURCHASE_NFT.
type PurchaseNFTPayload struct {
	Mint   common.Address `json:"mint"`
	Seller common.Address `json:"seller"`
	Price  uint64         `json:"price"`
}

// UpdateNFTMetadataPayload is the payload for UPDATE_NFT_METADATA. Nil
// fields are left unchanged.
type UpdateNFTMetadataPayload struct {
	Mint               common.Address `json:"mint"`
	URI                *string        `json:"uri,omitempty"`
	Name               *string        `json:"name,omitempty"`
	Description        *string        `json:"description,omitempty"`
	AttributesToAdd    []NFTAttribute `json:"attributes_to_add,omitempty"`
	RoyaltyBasisPoints *uint16        `json:"royalty_basis_points,omitempty"`
}

// NFTPayload is the payload for VERIFY_NFT and CANCEL_NFT_LISTING.
type NFTPayload struct {
	Mint common.Address `json:"mint"`
}

// ListNFTPayload is the payload for LIST_NFT_FOR_SALE.
type ListNFTPayload struct {
	Mint  common.Address `json:"mint"`
	Price uint64         `json:"price"`
}

// SendMessagePayload is the payload for SEND_COMMUNITY_MESSAGE. Community
// overrides the record address derived from CommunityID.
type SendMessagePayload struct {
	CommunityID string          `json:"community_id"`
	Content     string          `json:"content"`
	Community   *common.Address `json:"community,omitempty"`
}
