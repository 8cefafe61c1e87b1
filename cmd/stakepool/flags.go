// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"time"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:   "config",
		EnvVar: "STAKEPOOL_CONFIG",
		Usage:  "path to a YAML config file, flags override its values",
	}
	dataDirFlag = cli.StringFlag{
		Name:   "data-dir",
		Value:  defaultDataDir(),
		EnvVar: "STAKEPOOL_DATA_DIR",
		Usage:  "directory for the state and transfer log databases",
	}
	dbEngineFlag = cli.StringFlag{
		Name:  "db-engine",
		Value: "leveldb",
		Usage: "state database engine (leveldb|badger)",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 64,
		Usage: "megabytes of ram allocated to the leveldb internal caching",
	}
	depositPerSlotFlag = cli.Uint64Flag{
		Name:  "deposit-per-slot",
		Value: 1_000,
		Usage: "native deposit charged per 32-byte slot of a stored record",
	}
	treasuryFlag = cli.StringFlag{
		Name:   "treasury",
		EnvVar: "STAKEPOOL_TREASURY",
		Usage:  "address allowed to mint tokens and fund native balances",
	}

	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8680",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTransfersLimitFlag = cli.Uint64Flag{
		Name:  "api-transfers-limit",
		Value: 1000,
		Usage: "limit the number of transfers returned by /transfers API",
	}
	apiSlowQueriesThresholdFlag = cli.DurationFlag{
		Name:  "api-slow-queries-threshold",
		Value: 0,
		Usage: "log API requests slower than this duration (0 disables)",
	}
	apiLog5xxErrorsFlag = cli.BoolFlag{
		Name:  "api-log-5xx-errors",
		Usage: "log API requests failing with a server error",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}

	ntpServerFlag = cli.StringFlag{
		Name:  "ntp-server",
		Value: "pool.ntp.org",
		Usage: "NTP server to measure the local clock offset against (empty disables)",
	}
	ntpIntervalFlag = cli.DurationFlag{
		Name:  "ntp-interval",
		Value: 10 * time.Minute,
		Usage: "interval between two clock offset measurements",
	}
	ntpCorrectFlag = cli.BoolFlag{
		Name:  "ntp-correct",
		Usage: "apply the measured offset to the clock",
	}

	verbosityFlag = cli.StringFlag{
		Name:  "verbosity",
		Value: "info",
		Usage: "log verbosity (trace|debug|info|warn|error|crit)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}

	// call arguments
	keyFlag = cli.StringFlag{
		Name:  "key",
		Usage: "file holding the hex encoded private key signing the call",
	}
	amountFlag = cli.Uint64Flag{
		Name:  "amount",
		Usage: "amount of tokens, or native units for fund",
	}
	rewardRateFlag = cli.Uint64Flag{
		Name:  "reward-rate",
		Usage: "reward units per staked unit per second",
	}
	lockPeriodFlag = cli.Int64Flag{
		Name:  "lock-period",
		Usage: "seconds a position stays locked after staking",
	}
	toFlag = cli.StringFlag{
		Name:  "to",
		Usage: "recipient address",
	}
	addressFlag = cli.StringFlag{
		Name:  "address",
		Usage: "account address",
	}
	outFlag = cli.StringFlag{
		Name:  "out",
		Usage: "file to write the generated private key to",
	}
)

// storeFlags are the flags every command opening the data dir accepts.
var storeFlags = []cli.Flag{
	configFlag,
	dataDirFlag,
	dbEngineFlag,
	cacheFlag,
	depositPerSlotFlag,
	treasuryFlag,
	verbosityFlag,
	jsonLogsFlag,
}

var serveFlags = append([]cli.Flag{
	apiAddrFlag,
	apiCorsFlag,
	apiTransfersLimitFlag,
	apiSlowQueriesThresholdFlag,
	apiLog5xxErrorsFlag,
	enableAPILogsFlag,
	pprofFlag,
	enableMetricsFlag,
	metricsAddrFlag,
	enableAdminFlag,
	adminAddrFlag,
	ntpServerFlag,
	ntpIntervalFlag,
	ntpCorrectFlag,
}, storeFlags...)
