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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/otakuverse/ovchain/log"
	"github.com/otakuverse/ovchain/ovconfig"
	"github.com/otakuverse/ovchain/ovdb"
	"github.com/otakuverse/ovchain/ovdb/leveldb"
	"github.com/otakuverse/ovchain/ovdb/memorydb"
	"github.com/otakuverse/ovchain/ovdb/sqlitedb"
	"github.com/otakuverse/ovchain/state"
)

// Fatalf formats a message to standard error and exits the program.
// The message is also printed to standard output if standard error
// is redirected to a different file.
func Fatalf(format string, args ...interface{}) {
	w := io.MultiWriter(os.Stdout, os.Stderr)
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		}
	}
	fmt.Fprintf(w, "Fatal: "+format+"\n", args...)
	os.Exit(1)
}

// SetupLogging installs the root logger described by cfg.
func SetupLogging(cfg *ovconfig.Config) error {
	return log.Setup(cfg.Log.Level, cfg.Log.JSON)
}

// OpenDatabase opens the key/value store selected by cfg.
func OpenDatabase(cfg *ovconfig.Config, readonly bool) (ovdb.KeyValueStore, error) {
	switch cfg.DB.Engine {
	case ovconfig.EngineMemory:
		return memorydb.New(), nil
	case ovconfig.EngineLevelDB:
		db, err := leveldb.New(filepath.Join(cfg.DataDir, "records"), cfg.DB.Cache, cfg.DB.Handles, readonly)
		if err != nil {
			return nil, err
		}
		return db, nil
	case ovconfig.EngineSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return nil, err
		}
		db, err := sqlitedb.Open(filepath.Join(cfg.DataDir, "records.sqlite"))
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	return nil, fmt.Errorf("unknown database engine %q", cfg.DB.Engine)
}

// OpenState opens the record store over the configured database. The
// returned database must be closed by the caller.
func OpenState(cfg *ovconfig.Config, readonly bool) (*state.StateDB, ovdb.KeyValueStore, error) {
	db, err := OpenDatabase(cfg, readonly)
	if err != nil {
		return nil, nil, err
	}
	statedb, err := state.New(db, cfg.DB.StateCache)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Debug("Opened record store", "engine", cfg.DB.Engine, "datadir", cfg.DataDir)
	return statedb, db, nil
}
