package sysaction

import (
	"fmt"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/custody"
	"github.com/otakuverse/ovchain/params"
	"github.com/otakuverse/ovchain/state"
)

// ErrUnknownAction is returned when no handler accepts an action kind.
var ErrUnknownAction = fmt.Errorf("unknown operation: %w", ErrValidation)

// Context carries information available to an operation handler.
type Context struct {
	From    common.Address // verified signer of the operation
	Time    int64          // Unix seconds, fixed for the whole batch
	StateDB state.RecordDB
	Custody custody.Custody
	Config  *params.ChainConfig
}

// ChainConfig returns the configured policies, falling back to the defaults.
func (ctx *Context) ChainConfig() *params.ChainConfig {
	if ctx.Config == nil {
		return params.DefaultChainConfig
	}
	return ctx.Config
}

// Handler is implemented by every engine.
type Handler interface {
	CanHandle(kind ActionKind) bool
	Handle(ctx *Context, sa *SysAction) error
}

// Access lists the record addresses an operation may read or write.
type Access struct {
	Reads  []common.Address
	Writes []common.Address
}

// AccessAnalyzer is implemented by handlers that can report an operation's
// record accesses without executing it. The parallel scheduler uses it to
// group non-conflicting operations.
type AccessAnalyzer interface {
	Accesses(from common.Address, sa *SysAction) (Access, error)
}

// Registry holds registered handlers.
type Registry struct{ handlers []Handler }

// DefaultRegistry is the process-wide handler registry.
var DefaultRegistry = &Registry{}

// Register adds a handler to the registry.
func (r *Registry) Register(h Handler) { r.handlers = append(r.handlers, h) }

// Lookup returns the handler for kind.
func (r *Registry) Lookup(kind ActionKind) (Handler, bool) {
	for _, h := range r.handlers {
		if h.CanHandle(kind) {
			return h, true
		}
	}
	return nil, false
}

// Execute dispatches sa to its handler.
func (r *Registry) Execute(ctx *Context, sa *SysAction) error {
	h, ok := r.Lookup(sa.Action)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, sa.Action)
	}
	return h.Handle(ctx, sa)
}

// Analyze returns the access list of sa. ok is false when the handler cannot
// predict its accesses, in which case the operation must run alone.
func (r *Registry) Analyze(from common.Address, sa *SysAction) (Access, bool) {
	h, ok := r.Lookup(sa.Action)
	if !ok {
		return Access{}, false
	}
	an, ok := h.(AccessAnalyzer)
	if !ok {
		return Access{}, false
	}
	acc, err := an.Accesses(from, sa)
	if err != nil {
		return Access{}, false
	}
	return acc, true
}

// ExecuteWithContext decodes data and dispatches it through DefaultRegistry.
func ExecuteWithContext(ctx *Context, data []byte) error {
	sa, err := Decode(data)
	if err != nil {
		return err
	}
	return DefaultRegistry.Execute(ctx, sa)
}
