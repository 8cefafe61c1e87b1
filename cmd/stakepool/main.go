// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	stakeruntime "github.com/vechain/stakepool/runtime"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "stakepool"
	app.Usage = "Token staking pool ledger"
	app.Copyright = "2025 VeChain Foundation <https://vechain.org/>"
	app.Flags = serveFlags
	app.Action = serveAction
	app.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "serve the staking API",
			Flags:  serveFlags,
			Action: serveAction,
		},
		{
			Name:   "keygen",
			Usage:  "generate a private key",
			Flags:  []cli.Flag{outFlag},
			Action: keygenAction,
		},
		{
			Name:   "initialize",
			Usage:  "create the staking pool, the signer becomes its authority",
			Flags:  append([]cli.Flag{keyFlag, rewardRateFlag, lockPeriodFlag}, storeFlags...),
			Action: callAction(stakeruntime.OpInitialize),
		},
		{
			Name:   "stake",
			Usage:  "stake tokens of the signer",
			Flags:  append([]cli.Flag{keyFlag, amountFlag}, storeFlags...),
			Action: callAction(stakeruntime.OpStake),
		},
		{
			Name:   "unstake",
			Usage:  "withdraw the position and rewards of the signer",
			Flags:  append([]cli.Flag{keyFlag}, storeFlags...),
			Action: callAction(stakeruntime.OpUnstake),
		},
		{
			Name:   "claim",
			Usage:  "claim the pending rewards of the signer",
			Flags:  append([]cli.Flag{keyFlag}, storeFlags...),
			Action: callAction(stakeruntime.OpClaim),
		},
		{
			Name:   "mint",
			Usage:  "mint tokens, signed by the treasury",
			Flags:  append([]cli.Flag{keyFlag, toFlag, amountFlag}, storeFlags...),
			Action: callAction(stakeruntime.OpMint),
		},
		{
			Name:   "fund",
			Usage:  "add native balance for record deposits, signed by the treasury",
			Flags:  append([]cli.Flag{keyFlag, toFlag, amountFlag}, storeFlags...),
			Action: callAction(stakeruntime.OpFund),
		},
		{
			Name:   "pool",
			Usage:  "show the staking pool",
			Flags:  storeFlags,
			Action: poolAction,
		},
		{
			Name:   "position",
			Usage:  "show the position and pending rewards of an address",
			Flags:  append([]cli.Flag{addressFlag}, storeFlags...),
			Action: positionAction,
		},
		{
			Name:   "balance",
			Usage:  "show the balances and nonce of an address",
			Flags:  append([]cli.Flag{addressFlag}, storeFlags...),
			Action: balanceAction,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
