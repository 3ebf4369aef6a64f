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

// Package utils contains internal helper functions for ovchain commands.
package utils

import (
	"github.com/otakuverse/ovchain/internal/flags"
	"github.com/otakuverse/ovchain/ovconfig"
	"github.com/urfave/cli/v2"
)

// These are all the command line flags we support.
// If you add to this list, please remember to include the
// flag in the appropriate command definition.
//
// The flags are defined here so their names and help texts
// are the same for all commands.

var (
	// General settings
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.LedgerCategory,
	}
	DotenvFlag = &cli.StringFlag{
		Name:     "dotenv",
		Usage:    "File of OV_* environment overrides, ignored when absent",
		Value:    ".env",
		Category: flags.LedgerCategory,
	}
	DataDirFlag = &cli.StringFlag{
		Name:     "datadir",
		Usage:    "Data directory for the record store",
		Value:    ovconfig.Defaults().DataDir,
		Category: flags.LedgerCategory,
	}
	GenesisFlag = &cli.StringFlag{
		Name:     "genesis",
		Usage:    "Genesis YAML file",
		Category: flags.LedgerCategory,
	}

	// Database
	DBEngineFlag = &cli.StringFlag{
		Name:     "db.engine",
		Usage:    "Record store backend (leveldb, sqlite, memory)",
		Value:    ovconfig.Defaults().DB.Engine,
		Category: flags.DatabaseCategory,
	}
	CacheFlag = &cli.IntFlag{
		Name:     "cache",
		Usage:    "Megabytes of memory allocated to the leveldb block cache",
		Value:    ovconfig.Defaults().DB.Cache,
		Category: flags.DatabaseCategory,
	}

	// Execution
	ActionsFlag = &cli.StringFlag{
		Name:     "actions",
		Usage:    "JSON file holding the batch of signed operations",
		Category: flags.ExecCategory,
	}
	ParallelFlag = &cli.BoolFlag{
		Name:     "parallel",
		Usage:    "Execute non-conflicting operations concurrently",
		Category: flags.ExecCategory,
	}
	WorkersFlag = &cli.IntFlag{
		Name:     "workers",
		Usage:    "Maximum goroutines per parallel level (0 = GOMAXPROCS)",
		Category: flags.ExecCategory,
	}

	// HTTP API
	HTTPAddrFlag = &cli.StringFlag{
		Name:     "http",
		Usage:    "HTTP query server listening address",
		Value:    ovconfig.Defaults().HTTP.Addr,
		Category: flags.APICategory,
	}
	HTTPCORSFlag = &cli.StringSliceFlag{
		Name:     "http.corsdomain",
		Usage:    "Comma separated list of domains from which to accept cross origin requests",
		Category: flags.APICategory,
	}

	// Logging and debug settings
	VerbosityFlag = &cli.StringFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: error, warn, info, debug, trace",
		Value:    ovconfig.Defaults().Log.Level,
		Category: flags.LoggingCategory,
	}
	LogJSONFlag = &cli.BoolFlag{
		Name:     "log.json",
		Usage:    "Format logs with JSON",
		Category: flags.LoggingCategory,
	}

	// Output
	JSONFlag = &cli.BoolFlag{
		Name:     "json",
		Usage:    "Output JSON instead of human-readable format",
		Category: flags.MiscCategory,
	}
	DumpFlag = &cli.BoolFlag{
		Name:     "dump",
		Usage:    "Output a Go-syntax dump of the decoded record",
		Category: flags.MiscCategory,
	}
)

// GlobalFlags are accepted by every command.
var GlobalFlags = []cli.Flag{
	ConfigFileFlag,
	DotenvFlag,
	DataDirFlag,
	DBEngineFlag,
	CacheFlag,
	VerbosityFlag,
	LogJSONFlag,
}

// MakeDataDir retrieves the currently requested data directory, terminating
// if none (or the empty string) is specified.
func MakeDataDir(ctx *cli.Context) string {
	if path := ctx.String(DataDirFlag.Name); path != "" {
		return path
	}
	Fatalf("Cannot determine default data directory, please set manually (--datadir)")
	return ""
}

// MakeConfig loads the configuration file and environment, then applies the
// command line flags that were explicitly set.
func MakeConfig(ctx *cli.Context) (*ovconfig.Config, error) {
	cfg, err := ovconfig.Load(ctx.String(ConfigFileFlag.Name), ctx.String(DotenvFlag.Name))
	if err != nil {
		return nil, err
	}
	SetConfig(ctx, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetConfig applies explicitly set flags to cfg.
func SetConfig(ctx *cli.Context, cfg *ovconfig.Config) {
	if ctx.IsSet(DataDirFlag.Name) {
		cfg.DataDir = MakeDataDir(ctx)
	}
	if ctx.IsSet(DBEngineFlag.Name) {
		cfg.DB.Engine = ctx.String(DBEngineFlag.Name)
	}
	if ctx.IsSet(CacheFlag.Name) {
		cfg.DB.Cache = ctx.Int(CacheFlag.Name)
	}
	if ctx.IsSet(VerbosityFlag.Name) {
		cfg.Log.Level = ctx.String(VerbosityFlag.Name)
	}
	if ctx.IsSet(LogJSONFlag.Name) {
		cfg.Log.JSON = ctx.Bool(LogJSONFlag.Name)
	}
	if ctx.IsSet(ParallelFlag.Name) {
		cfg.Exec.Parallel = ctx.Bool(ParallelFlag.Name)
	}
	if ctx.IsSet(WorkersFlag.Name) {
		cfg.Exec.Workers = ctx.Int(WorkersFlag.Name)
	}
	if ctx.IsSet(HTTPAddrFlag.Name) {
		cfg.HTTP.Addr = ctx.String(HTTPAddrFlag.Name)
	}
	if ctx.IsSet(HTTPCORSFlag.Name) {
		cfg.HTTP.CORSOrigins = ctx.StringSlice(HTTPCORSFlag.Name)
	}
}
