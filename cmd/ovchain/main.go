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

// ovchain is the command line interface of the community ledger.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/otakuverse/ovchain/cmd/utils"
	"github.com/otakuverse/ovchain/internal/flags"
	"github.com/otakuverse/ovchain/ovconfig"
	"github.com/urfave/cli/v2"
)

const clientIdentifier = "ovchain"

// Git SHA1 commit hash of the release (set via linker flags)
var (
	gitCommit = ""
	gitDate   = ""
)

func newApp() *cli.App {
	app := flags.NewApp(gitCommit, gitDate, "the ovchain community ledger command line interface")
	app.Flags = utils.GlobalFlags
	app.Commands = []*cli.Command{
		initCommand,
		applyCommand,
		inspectCommand,
		deriveCommand,
		serveCommand,
		versionCommand,
		dumpConfigCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// prepare loads the configuration and installs the logger for a command.
func prepare(ctx *cli.Context) (*ovconfig.Config, error) {
	cfg, err := utils.MakeConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.SetupLogging(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
