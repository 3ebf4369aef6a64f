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
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
	"github.com/otakuverse/ovchain/cmd/utils"
	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/custody"
	"github.com/otakuverse/ovchain/derive"
	"github.com/otakuverse/ovchain/events"
	"github.com/otakuverse/ovchain/globalstate"
	"github.com/otakuverse/ovchain/governance"
	"github.com/otakuverse/ovchain/marketplace"
	"github.com/otakuverse/ovchain/membership"
	"github.com/otakuverse/ovchain/messaging"
	"github.com/otakuverse/ovchain/params"
	"github.com/otakuverse/ovchain/staking"
	"github.com/otakuverse/ovchain/state"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

var (
	inspectCommand = &cli.Command{
		Action:    inspectRecord,
		Name:      "inspect",
		Usage:     "Print a ledger record",
		ArgsUsage: "<kind> <key...>",
		Flags:     []cli.Flag{utils.JSONFlag, utils.DumpFlag},
		Description: `
Print the record of the given kind. Kinds and their keys:

` + inspectUsage(),
	}
	deriveCommand = &cli.Command{
		Action:    deriveAddress,
		Name:      "derive",
		Usage:     "Compute the record address for a namespace tag and key parts",
		ArgsUsage: "<tag> <part...>",
		Flags:     []cli.Flag{utils.JSONFlag},
		Description: `
Parts starting with 0x are raw hex, decimal numbers are encoded as 8-byte
little-endian integers and anything else is used as UTF-8 text.`,
	}
)

// inspector reads one record kind. Keys named in lamports are printed with
// their OV equivalent.
type inspector struct {
	keys     []string
	lamports []string
	read     func(db state.RecordDB, args []string) (interface{}, error)
}

var inspectors = map[string]inspector{
	"global": {
		read: func(db state.RecordDB, _ []string) (interface{}, error) { return globalstate.Read(db) },
	},
	"proposal": {
		keys: []string{"id"},
		read: func(db state.RecordDB, args []string) (interface{}, error) {
			id, err := parseID(args[0])
			if err != nil {
				return nil, err
			}
			return governance.ReadProposal(db, id)
		},
	},
	"vote": {
		keys: []string{"voter", "proposal-id"},
		read: func(db state.RecordDB, args []string) (interface{}, error) {
			voter, err := parseAddress(args[0])
			if err != nil {
				return nil, err
			}
			id, err := parseID(args[1])
			if err != nil {
				return nil, err
			}
			return governance.ReadVote(db, voter, id)
		},
	},
	"event": {
		keys: []string{"id"},
		read: func(db state.RecordDB, args []string) (interface{}, error) {
			id, err := parseID(args[0])
			if err != nil {
				return nil, err
			}
			return events.ReadEvent(db, id)
		},
	},
	"rsvp": {
		keys: []string{"user", "event-id"},
		read: func(db state.RecordDB, args []string) (interface{}, error) {
			user, err := parseAddress(args[0])
			if err != nil {
				return nil, err
			}
			id, err := parseID(args[1])
			if err != nil {
				return nil, err
			}
			return events.ReadRSVP(db, user, id)
		},
	},
	"stake": {
		keys: []string{"staker", "asset"},
		read: func(db state.RecordDB, args []string) (interface{}, error) {
			staker, asset, err := parseAddressPair(args)
			if err != nil {
				return nil, err
			}
			pos, err := staking.ReadPosition(db, staker, asset)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"position":       pos,
				"pending_reward": staking.PendingReward(pos, time.Now().Unix()),
			}, nil
		},
	},
	"badge": {
		keys: []string{"id"},
		read: func(db state.RecordDB, args []string) (interface{}, error) {
			id, err := parseID(args[0])
			if err != nil {
				return nil, err
			}
			return membership.ReadBadge(db, id)
		},
	},
	"access": {
		keys: []string{"user", "asset"},
		read: func(db state.RecordDB, args []string) (interface{}, error) {
			user, asset, err := parseAddressPair(args)
			if err != nil {
				return nil, err
			}
			return membership.ReadAccess(db, user, asset)
		},
	},
	"nft": {
		keys:     []string{"mint"},
		lamports: []string{"price"},
		read: func(db state.RecordDB, args []string) (interface{}, error) {
			mint, err := parseAddress(args[0])
			if err != nil {
				return nil, err
			}
			return marketplace.ReadNFT(db, mint)
		},
	},
	"community": {
		keys: []string{"community-id"},
		read: func(db state.RecordDB, args []string) (interface{}, error) {
			addr := derive.Community(args[0])
			rec, err := messaging.ReadCommunity(db, addr)
			if err != nil {
				return nil, err
			}
			stats, err := messaging.ReadStats(db, addr)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"address": addr, "community": rec, "message_count": stats.MessageCount}, nil
		},
	},
	"message": {
		keys: []string{"community-id", "seq"},
		read: func(db state.RecordDB, args []string) (interface{}, error) {
			seq, err := parseID(args[1])
			if err != nil {
				return nil, err
			}
			return messaging.ReadMessage(db, derive.Community(args[0]), seq)
		},
	},
	"balance": {
		keys:     []string{"owner", "asset"},
		lamports: []string{"lamports"},
		read: func(db state.RecordDB, args []string) (interface{}, error) {
			owner, asset, err := parseAddressPair(args)
			if err != nil {
				return nil, err
			}
			view := map[string]interface{}{
				"owner":    owner,
				"asset":    asset,
				"delegate": custody.Delegate(db, owner, asset),
			}
			bal := custody.NewLedger().Balance(db, owner, asset)
			if asset == custody.NativeAsset {
				view["lamports"] = bal
			} else {
				view["units"] = bal
			}
			return view, nil
		},
	},
	"raw": {
		keys: []string{"address"},
		read: func(db state.RecordDB, args []string) (interface{}, error) {
			addr, err := parseAddress(args[0])
			if err != nil {
				return nil, err
			}
			data := db.GetRecord(addr)
			if data == nil {
				return nil, fmt.Errorf("no record at %s: %w", addr, state.ErrNotFound)
			}
			return map[string]interface{}{"address": addr, "size": len(data), "data": hex.EncodeToString(data)}, nil
		},
	},
}

func inspectUsage() string {
	kinds := make([]string, 0, len(inspectors))
	for kind := range inspectors {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	var b strings.Builder
	for _, kind := range kinds {
		fmt.Fprintf(&b, "    %-10s", kind)
		for _, k := range inspectors[kind].keys {
			fmt.Fprintf(&b, " <%s>", k)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func parseID(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return n, nil
}

func parseAddress(s string) (common.Address, error) {
	var a common.Address
	if err := a.UnmarshalText([]byte(s)); err != nil {
		return a, fmt.Errorf("invalid address %q: %v", s, err)
	}
	return a, nil
}

func parseAddressPair(args []string) (common.Address, common.Address, error) {
	a, err := parseAddress(args[0])
	if err != nil {
		return a, a, err
	}
	b, err := parseAddress(args[1])
	return a, b, err
}

// outputMode is the rendering selected by --json or --dump.
type outputMode struct {
	json, dump bool
}

// positionalArgs returns the positional arguments of ctx. Output flags given
// after the first positional argument are left unparsed by the flag set, so
// they are picked out of the argument list here.
func positionalArgs(ctx *cli.Context) ([]string, outputMode) {
	mode := outputMode{
		json: ctx.Bool(utils.JSONFlag.Name),
		dump: ctx.Bool(utils.DumpFlag.Name),
	}
	var args []string
	for _, arg := range ctx.Args().Slice() {
		switch strings.TrimLeft(arg, "-") {
		case utils.JSONFlag.Name:
			if strings.HasPrefix(arg, "-") {
				mode.json = true
				continue
			}
		case utils.DumpFlag.Name:
			if strings.HasPrefix(arg, "-") {
				mode.dump = true
				continue
			}
		}
		args = append(args, arg)
	}
	return args, mode
}

func inspectRecord(ctx *cli.Context) error {
	all, mode := positionalArgs(ctx)
	if len(all) < 1 {
		return fmt.Errorf("missing record kind, one of:\n%s", inspectUsage())
	}
	kind := all[0]
	in, ok := inspectors[kind]
	if !ok {
		return fmt.Errorf("unknown record kind %q, one of:\n%s", kind, inspectUsage())
	}
	args := all[1:]
	if len(args) != len(in.keys) {
		return fmt.Errorf("%s takes %d key(s): %s", kind, len(in.keys), strings.Join(in.keys, " "))
	}
	cfg, err := prepare(ctx)
	if err != nil {
		return err
	}
	statedb, db, err := utils.OpenState(cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()

	view, err := in.read(statedb, args)
	if err != nil {
		return err
	}
	w := ctx.App.Writer
	switch {
	case mode.json:
		return printJSON(w, view)
	case mode.dump:
		spew.Fdump(w, view)
		return nil
	}
	return printTable(w, view, in.lamports)
}

func printTable(w io.Writer, view interface{}, lamports []string) error {
	enc, err := json.Marshal(view)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(enc))
	dec.UseNumber()
	var generic interface{}
	if err := dec.Decode(&generic); err != nil {
		return err
	}
	fields := make(map[string]string)
	flatten("", generic, fields)

	isLamports := make(map[string]bool, len(lamports))
	for _, k := range lamports {
		isLamports[k] = true
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Value"})
	table.SetAutoWrapText(false)
	for _, k := range keys {
		v := fields[k]
		if isLamports[k[strings.LastIndex(k, ".")+1:]] {
			v = formatLamports(v)
		}
		table.Append([]string{k, v})
	}
	table.Render()
	return nil
}

func flatten(prefix string, v interface{}, out map[string]string) {
	switch x := v.(type) {
	case map[string]interface{}:
		for k, val := range x {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, val, out)
		}
	case string:
		out[prefix] = x
	default:
		enc, _ := json.Marshal(x)
		out[prefix] = string(enc)
	}
}

// formatLamports renders a lamport amount with its OV equivalent.
func formatLamports(s string) string {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return s
	}
	return fmt.Sprintf("%s (%s OV)", s, decimal.NewFromBigInt(n, -params.OVDecimals).String())
}

func deriveAddress(ctx *cli.Context) error {
	args, mode := positionalArgs(ctx)
	if len(args) < 1 {
		return fmt.Errorf("missing namespace tag")
	}
	tag := args[0]
	addr, err := derive.ParseAddress(tag, args[1:])
	if err != nil {
		return err
	}
	if mode.json {
		return printJSON(ctx.App.Writer, map[string]interface{}{"tag": tag, "parts": args[1:], "address": addr})
	}
	fmt.Fprintln(ctx.App.Writer, addr.Hex())
	return nil
}
