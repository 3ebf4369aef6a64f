package core

import (
	"fmt"

	"github.com/otakuverse/ovchain/core/parallel"
	"github.com/otakuverse/ovchain/custody"
	"github.com/otakuverse/ovchain/log"
	"github.com/otakuverse/ovchain/params"
	"github.com/otakuverse/ovchain/state"
	"github.com/otakuverse/ovchain/sysaction"
)

// StateProcessor applies batches of messages to a record store.
//
// Each message runs on its own write buffer which is merged only when the
// message succeeds, so a rejected operation leaves no trace.
type StateProcessor struct {
	config   *params.ChainConfig // Protocol policies
	clock    Clock               // Source of batch timestamps
	registry *sysaction.Registry
	custody  custody.Custody

	parallel bool
	workers  int
}

// ProcessorOption configures a StateProcessor.
type ProcessorOption func(*StateProcessor)

// WithParallel enables level-based parallel execution with at most workers
// goroutines per level.
func WithParallel(workers int) ProcessorOption {
	return func(p *StateProcessor) {
		p.parallel = true
		p.workers = workers
	}
}

// WithRegistry replaces the handler registry.
func WithRegistry(r *sysaction.Registry) ProcessorOption {
	return func(p *StateProcessor) { p.registry = r }
}

// WithCustody replaces the custody collaborator.
func WithCustody(c custody.Custody) ProcessorOption {
	return func(p *StateProcessor) { p.custody = c }
}

// NewStateProcessor initialises a new StateProcessor.
func NewStateProcessor(config *params.ChainConfig, clock Clock, opts ...ProcessorOption) *StateProcessor {
	if config == nil {
		config = params.DefaultChainConfig
	}
	if clock == nil {
		clock = new(SystemClock)
	}
	p := &StateProcessor{
		config:   config,
		clock:    clock,
		registry: sysaction.DefaultRegistry,
		custody:  custody.NewLedger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs msgs against statedb and returns one receipt per message.
// All messages of the batch observe the same timestamp.
//
// Rejected operations are reported in their receipts. The returned error is
// reserved for storage failures, which invalidate the whole batch.
func (p *StateProcessor) Process(statedb state.RecordDB, msgs []Message) ([]*Receipt, error) {
	now := p.clock.Now()
	receipts := make([]*Receipt, len(msgs))
	for i := range msgs {
		receipts[i] = &Receipt{Index: i, From: msgs[i].From}
	}
	apply := func(idx int, db state.RecordDB) error {
		kind, err := p.applyMessage(db, &msgs[idx], now)
		receipts[idx].Action = kind
		if buf, ok := db.(*parallel.WriteBuf); ok && err == nil {
			receipts[idx].Writes = buf.Len()
		}
		return err
	}

	var errs []error
	if p.parallel {
		sets := make([]parallel.AccessSet, len(msgs))
		for i := range msgs {
			sets[i] = parallel.AnalyzeMessage(p.registry, msgs[i].From, msgs[i].Data)
		}
		errs = parallel.Execute(statedb, sets, p.workers, apply)
	} else {
		errs = make([]error, len(msgs))
		for i := range msgs {
			buf := parallel.NewWriteBuf(statedb)
			if errs[i] = apply(i, buf); errs[i] == nil {
				buf.Merge(statedb)
			}
		}
	}

	failed := 0
	for i, err := range errs {
		r := receipts[i]
		if err != nil {
			failed++
			r.Status = ReceiptStatusFailed
			r.Category = sysaction.Category(err)
			r.Error = err.Error()
			log.Debug("Operation rejected", "index", i, "from", r.From, "action", r.Action, "category", r.Category, "err", err)
			continue
		}
		r.Status = ReceiptStatusSuccessful
	}
	if e, ok := statedb.(interface{ Error() error }); ok {
		if err := e.Error(); err != nil {
			return nil, fmt.Errorf("state failure: %w", err)
		}
	}
	log.Info("Processed batch", "messages", len(msgs), "failed", failed, "time", now, "parallel", p.parallel)
	return receipts, nil
}

func (p *StateProcessor) applyMessage(db state.RecordDB, msg *Message, now int64) (sysaction.ActionKind, error) {
	sa, err := sysaction.Decode(msg.Data)
	if err != nil {
		return "", err
	}
	ctx := &sysaction.Context{
		From:    msg.From,
		Time:    now,
		StateDB: db,
		Custody: p.custody,
		Config:  p.config,
	}
	return sa.Action, p.registry.Execute(ctx, sa)
}
