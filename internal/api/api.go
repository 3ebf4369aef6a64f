// Package api serves read-only JSON views of ledger records over HTTP.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/core/parallel"
	"github.com/otakuverse/ovchain/custody"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/events"
	"github.com/otakuverse/ovchain/globalstate"
	"github.com/otakuverse/ovchain/governance"
	"github.com/otakuverse/ovchain/marketplace"
	"github.com/otakuverse/ovchain/membership"
	"github.com/otakuverse/ovchain/messaging"
	"github.com/otakuverse/ovchain/record"
	"github.com/otakuverse/ovchain/staking"
	"github.com/otakuverse/ovchain/state"
	"github.com/otakuverse/ovchain/sysaction"
)

// Handler answers record queries against DB.
type Handler struct {
	DB      state.RecordDB
	Custody custody.Custody
	// Now returns the unix time used for reward and expiry views.
	Now func() int64
}

func respond(c *gin.Context, v interface{}, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, state.ErrNotFound), errors.Is(err, record.ErrKindMismatch):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error(), "category": sysaction.Category(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "category": sysaction.CategoryValidation})
}

func uintParam(c *gin.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return n, true
}

func addrParam(c *gin.Context, name string) (common.Address, bool) {
	var a common.Address
	if err := a.UnmarshalText([]byte(c.Param(name))); err != nil {
		badRequest(c, "invalid "+name+": "+err.Error())
		return a, false
	}
	return a, true
}

func (h *Handler) GetGlobal(c *gin.Context) {
	gs, err := globalstate.Read(h.DB)
	respond(c, gs, err)
}

func (h *Handler) GetProposal(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	p, err := governance.ReadProposal(h.DB, id)
	respond(c, p, err)
}

func (h *Handler) GetVote(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	voter, ok := addrParam(c, "voter")
	if !ok {
		return
	}
	v, err := governance.ReadVote(h.DB, voter, id)
	respond(c, v, err)
}

func (h *Handler) GetEvent(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	e, err := events.ReadEvent(h.DB, id)
	respond(c, e, err)
}

func (h *Handler) GetRSVP(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	user, ok := addrParam(c, "user")
	if !ok {
		return
	}
	r, err := events.ReadRSVP(h.DB, user, id)
	respond(c, r, err)
}

// GetStake returns a stake position along with the reward it would pay out
// if unstaked now.
func (h *Handler) GetStake(c *gin.Context) {
	staker, ok := addrParam(c, "staker")
	if !ok {
		return
	}
	asset, ok := addrParam(c, "asset")
	if !ok {
		return
	}
	pos, err := staking.ReadPosition(h.DB, staker, asset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"position": pos, "pending_reward": staking.PendingReward(pos, h.Now())})
}

func (h *Handler) GetBadge(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	b, err := membership.ReadBadge(h.DB, id)
	respond(c, b, err)
}

func (h *Handler) GetAccess(c *gin.Context) {
	user, ok := addrParam(c, "user")
	if !ok {
		return
	}
	asset, ok := addrParam(c, "asset")
	if !ok {
		return
	}
	g, err := membership.ReadAccess(h.DB, user, asset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"grant": g, "live": membership.IsAccessLive(g, h.Now())})
}

func (h *Handler) GetNFT(c *gin.Context) {
	mint, ok := addrParam(c, "mint")
	if !ok {
		return
	}
	n, err := marketplace.ReadNFT(h.DB, mint)
	respond(c, n, err)
}

// GetRoyalty quotes the creator royalty on a sale at ?price= lamports.
func (h *Handler) GetRoyalty(c *gin.Context) {
	mint, ok := addrParam(c, "mint")
	if !ok {
		return
	}
	price, err := strconv.ParseUint(c.Query("price"), 10, 64)
	if err != nil {
		badRequest(c, "invalid price")
		return
	}
	n, err := marketplace.ReadNFT(h.DB, mint)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mint":                 mint,
		"price":                price,
		"royalty_basis_points": n.RoyaltyBasisPoints,
		"royalty":              n.CalculateRoyalty(price),
		"creator":              n.Creator,
	})
}

// GetCommunity looks a community up by its string id.
func (h *Handler) GetCommunity(c *gin.Context) {
	addr := derive.Community(c.Param("id"))
	rec, err := messaging.ReadCommunity(h.DB, addr)
	if err != nil {
		fail(c, err)
		return
	}
	stats, err := messaging.ReadStats(h.DB, addr)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": addr, "community": rec, "message_count": stats.MessageCount})
}

func (h *Handler) GetMessage(c *gin.Context) {
	seq, ok := uintParam(c, "seq")
	if !ok {
		return
	}
	m, err := messaging.ReadMessage(h.DB, derive.Community(c.Param("id")), seq)
	respond(c, m, err)
}

func (h *Handler) GetBalance(c *gin.Context) {
	owner, ok := addrParam(c, "owner")
	if !ok {
		return
	}
	asset, ok := addrParam(c, "asset")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"owner":    owner,
		"asset":    asset,
		"balance":  h.Custody.Balance(h.DB, owner, asset),
		"delegate": custody.Delegate(h.DB, owner, asset),
	})
}

// GetDerive computes the address for :tag from repeated ?part= values.
func (h *Handler) GetDerive(c *gin.Context) {
	tag := c.Param("tag")
	addr, err := derive.ParseAddress(tag, c.QueryArray("part"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": tag, "address": addr, "exists": h.DB.HasRecord(addr)})
}

func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, parallel.ReadStats())
}
