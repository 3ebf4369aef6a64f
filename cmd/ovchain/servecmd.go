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
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/otakuverse/ovchain/cmd/utils"
	"github.com/otakuverse/ovchain/core"
	"github.com/otakuverse/ovchain/custody"
	"github.com/otakuverse/ovchain/internal/api"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Action:    serve,
	Name:      "serve",
	Usage:     "Serve read-only ledger queries over HTTP",
	ArgsUsage: " ",
	Flags: []cli.Flag{
		utils.HTTPAddrFlag,
		utils.HTTPCORSFlag,
		utils.GenesisFlag,
	},
	Description: `
The serve command exposes the records of the ledger as JSON under /v1 until
interrupted. With --genesis the genesis state is written first, which is
useful with the in-memory database engine.`,
}

func serve(ctx *cli.Context) error {
	cfg, err := prepare(ctx)
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
	gin.SetMode(gin.ReleaseMode)
	handler := api.NewRouter(&api.Handler{
		DB:      statedb,
		Custody: custody.NewLedger(),
		Now:     func() int64 { return time.Now().Unix() },
	}, cfg.HTTP)

	sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return api.Serve(sigctx, cfg.HTTP.Addr, handler)
}
