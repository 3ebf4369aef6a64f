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

package utils

import (
	"flag"
	"path/filepath"
	"testing"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/ovconfig"
	"github.com/otakuverse/ovchain/ovdb/memorydb"
	"github.com/otakuverse/ovchain/ovdb/sqlitedb"
	"github.com/urfave/cli/v2"
)

func newContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	app := cli.NewApp()
	app.Flags = append(append([]cli.Flag{}, GlobalFlags...), ParallelFlag, WorkersFlag, HTTPAddrFlag, HTTPCORSFlag)

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range app.Flags {
		if err := f.Apply(set); err != nil {
			t.Fatalf("apply flag: %v", err)
		}
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cli.NewContext(app, set, nil)
}

func TestMakeConfigDefaults(t *testing.T) {
	ctx := newContext(t, "--dotenv", "")
	cfg, err := MakeConfig(ctx)
	if err != nil {
		t.Fatalf("MakeConfig: %v", err)
	}
	want := ovconfig.Defaults()
	if cfg.DB.Engine != want.DB.Engine || cfg.DataDir != want.DataDir || cfg.Exec.Parallel {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestMakeConfigFlagsOverride(t *testing.T) {
	dir := t.TempDir()
	ctx := newContext(t,
		"--dotenv", "",
		"--datadir", dir,
		"--db.engine", "sqlite",
		"--parallel",
		"--workers", "3",
		"--verbosity", "debug",
		"--http.corsdomain", "https://a.example,https://b.example",
	)
	cfg, err := MakeConfig(ctx)
	if err != nil {
		t.Fatalf("MakeConfig: %v", err)
	}
	if cfg.DataDir != dir || cfg.DB.Engine != ovconfig.EngineSQLite {
		t.Fatalf("storage flags not applied: %+v", cfg)
	}
	if !cfg.Exec.Parallel || cfg.Exec.Workers != 3 {
		t.Fatalf("exec flags not applied: %+v", cfg.Exec)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("verbosity = %q", cfg.Log.Level)
	}
	if len(cfg.HTTP.CORSOrigins) != 2 {
		t.Fatalf("cors origins = %v", cfg.HTTP.CORSOrigins)
	}
}

func TestMakeConfigRejectsEngine(t *testing.T) {
	ctx := newContext(t, "--dotenv", "", "--db.engine", "rocksdb")
	if _, err := MakeConfig(ctx); err == nil {
		t.Fatal("expected unknown engine error")
	}
}

func TestOpenDatabase(t *testing.T) {
	cfg := ovconfig.Defaults()
	cfg.DataDir = filepath.Join(t.TempDir(), "nested")

	cfg.DB.Engine = ovconfig.EngineMemory
	db, err := OpenDatabase(cfg, false)
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := db.(*memorydb.Database); !ok {
		t.Fatalf("memory engine opened %T", db)
	}
	db.Close()

	cfg.DB.Engine = ovconfig.EngineSQLite
	db, err = OpenDatabase(cfg, false)
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if _, ok := db.(*sqlitedb.Database); !ok {
		t.Fatalf("sqlite engine opened %T", db)
	}
	db.Close()
}

func TestOpenStatePersists(t *testing.T) {
	cfg := ovconfig.Defaults()
	cfg.DataDir = t.TempDir()

	statedb, db, err := OpenState(cfg, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	addr := common.Address{1}
	statedb.SetRecord(addr, []byte("record"))
	if _, err := statedb.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	db.Close()

	statedb, db, err = OpenState(cfg, true)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	if got := statedb.GetRecord(addr); string(got) != "record" {
		t.Fatalf("record = %q", got)
	}
}
