package globalstate

import (
	"fmt"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/log"
	"github.com/otakuverse/ovchain/sysaction"
)

func init() {
	sysaction.DefaultRegistry.Register(&globalHandler{})
}

type globalHandler struct{}

func (h *globalHandler) CanHandle(kind sysaction.ActionKind) bool {
	return kind == sysaction.ActionInitialize
}

func (h *globalHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	if sa.Action != sysaction.ActionInitialize {
		return fmt.Errorf("globalstate handler: unsupported action %q", sa.Action)
	}
	if err := Initialize(ctx.StateDB, ctx.From); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	log.Debug("Global state initialized", "authority", ctx.From)
	return nil
}

func (h *globalHandler) Accesses(from common.Address, sa *sysaction.SysAction) (sysaction.Access, error) {
	return sysaction.Access{Writes: []common.Address{derive.GlobalState()}}, nil
}
