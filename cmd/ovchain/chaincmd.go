// Copyright 2024 The ovchain Authors
// This file is part of ovchain.
//
// ovchain is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ovchain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ovchain. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/otakuverse/ovchain/cmd/utils"
	"github.com/otakuverse/ovchain/core"
	"github.com/otakuverse/ovchain/internal/flags"
	"github.com/otakuverse/ovchain/log"
	"github.com/otakuverse/ovchain/state"
	"github.com/urfave/cli/v2"
)

var (
	timeFlag = &cli.Int64Flag{
		Name:     "time",
		Usage:    "Fixed unix timestamp for the batch (0 = wall clock)",
		Category: flags.ExecCategory,
	}

	initCommand = &cli.Command{
		Action:    initLedger,
		Name:      "init",
		Usage:     "Bootstrap and initialize a new ledger",
		ArgsUsage: " ",
		Flags:     []cli.Flag{utils.GenesisFlag},
		Description: `
The init command writes the genesis state described by --genesis: the ledger
authority, native balances, pre-minted assets and communities.

It fails if the data directory already holds an initialized ledger.`,
	}
	applyCommand = &cli.Command{
		Action:    applyActions,
		Name:      "apply",
		Usage:     "Execute a batch of signed operations",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			utils.ActionsFlag,
			utils.ParallelFlag,
			utils.WorkersFlag,
			utils.GenesisFlag,
			utils.JSONFlag,
			timeFlag,
		},
		Description: `
The apply command reads a JSON array of operations from --actions,

    [{"from": "0x…", "action": {"action": "STAKE_NFT", "payload": {…}}}, …]

executes them as one batch sharing a single timestamp and commits the result.
Rejected operations leave no trace and are reported in their receipt.

With --genesis the genesis state is written first, which is useful with the
in-memory database engine.`,
	}
)

func initLedger(ctx *cli.Context) error {
	cfg, err := prepare(ctx)
	if err != nil {
		return err
	}
	path := ctx.String(utils.GenesisFlag.Name)
	if path == "" {
		return errors.New("must supply path to genesis YAML file")
	}
	genesis, err := core.LoadGenesis(path)
	if err != nil {
		return err
	}
	statedb, db, err := utils.OpenState(cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := commitGenesis(statedb, genesis)
	if err != nil {
		return err
	}
	log.Info("Successfully wrote genesis state", "authority", genesis.Authority, "records", n)
	fmt.Fprintf(ctx.App.Writer, "Initialized ledger (%s engine), %d records, authority %s\n",
		cfg.DB.Engine, n, genesis.Authority)
	return nil
}

func commitGenesis(statedb *state.StateDB, genesis *core.Genesis) (int, error) {
	if err := genesis.Commit(statedb); err != nil {
		return 0, fmt.Errorf("failed to write genesis: %w", err)
	}
	return statedb.Commit()
}

func loadActions(path string) ([]core.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var msgs []core.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("invalid actions file %s: %w", path, err)
	}
	return msgs, nil
}

type batchResult struct {
	Batch    string          `json:"batch"`
	Time     int64           `json:"time"`
	Records  int             `json:"records"`
	Receipts []*core.Receipt `json:"receipts"`
}

func applyActions(ctx *cli.Context) error {
	cfg, err := prepare(ctx)
	if err != nil {
		return err
	}
	path := ctx.String(utils.ActionsFlag.Name)
	if path == "" {
		return errors.New("must supply path to actions JSON file")
	}
	msgs, err := loadActions(path)
	if err != nil {
		return err
	}
	statedb, db, err := utils.OpenState(cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	if g := ctx.String(utils.GenesisFlag.Name); g != "" {
		genesis, err := core.LoadGenesis(g)
		if err != nil {
			return err
		}
		if _, err := commitGenesis(statedb, genesis); err != nil {
			return err
		}
	}

	var clock core.Clock = new(core.SystemClock)
	if t := ctx.Int64(timeFlag.Name); t != 0 {
		clock = core.FixedClock(t)
	}
	var opts []core.ProcessorOption
	if cfg.Exec.Parallel {
		opts = append(opts, core.WithParallel(cfg.Exec.Workers))
	}
	res := batchResult{Batch: uuid.New().String(), Time: clock.Now()}
	logger := log.New("batch", res.Batch)
	logger.Debug("Applying batch", "messages", len(msgs), "parallel", cfg.Exec.Parallel)

	start := time.Now()
	processor := core.NewStateProcessor(&cfg.Chain, core.FixedClock(res.Time), opts...)
	if res.Receipts, err = processor.Process(statedb, msgs); err != nil {
		statedb.Discard()
		return err
	}
	if res.Records, err = statedb.Commit(); err != nil {
		return err
	}
	logger.Info("Committed batch", "messages", len(msgs), "records", res.Records, "elapsed", time.Since(start))

	if ctx.Bool(utils.JSONFlag.Name) {
		return printJSON(ctx.App.Writer, res)
	}
	printReceipts(ctx.App.Writer, &res)
	return nil
}

func printReceipts(w io.Writer, res *batchResult) {
	var (
		good   = color.New(color.FgGreen)
		bad    = color.New(color.FgRed)
		failed int
	)
	fmt.Fprintf(w, "Batch %s at %d\n", res.Batch, res.Time)
	for _, r := range res.Receipts {
		action := string(r.Action)
		if action == "" {
			action = "?"
		}
		if r.Failed() {
			failed++
			bad.Fprintf(w, "  #%-3d %-24s %-16s %s\n", r.Index, action, r.Category, r.Error)
			continue
		}
		good.Fprintf(w, "  #%-3d %-24s ok (%d writes)\n", r.Index, action, r.Writes)
	}
	fmt.Fprintf(w, "%d applied, %d rejected, %d records committed\n", len(res.Receipts)-failed, failed, res.Records)
}
