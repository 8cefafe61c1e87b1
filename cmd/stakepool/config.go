// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakepool/api/restutil"
	"github.com/vechain/stakepool/ledger"
)

type APIConfig struct {
	Addr                 string        `yaml:"addr" validate:"required,hostname_port"`
	Cors                 string        `yaml:"cors"`
	TransfersLimit       uint64        `yaml:"transfers-limit" validate:"gt=0,lte=1000"`
	SlowQueriesThreshold time.Duration `yaml:"slow-queries-threshold"`
	Log5xxErrors         bool          `yaml:"log-5xx-errors"`
	EnableLogs           bool          `yaml:"enable-logs"`
	Pprof                bool          `yaml:"pprof"`
}

type ServiceConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr" validate:"omitempty,hostname_port"`
}

type NTPConfig struct {
	Server   string        `yaml:"server"`
	Interval time.Duration `yaml:"interval"`
	Correct  bool          `yaml:"correct"`
}

type LogConfig struct {
	Verbosity string `yaml:"verbosity" validate:"oneof=trace debug info warn error crit"`
	JSON      bool   `yaml:"json"`
}

// Config is the full configuration of stakepool.
type Config struct {
	DataDir        string        `yaml:"data-dir" validate:"required"`
	DBEngine       string        `yaml:"db-engine" validate:"oneof=leveldb badger"`
	Cache          int           `yaml:"cache" validate:"gte=0"`
	DepositPerSlot uint64        `yaml:"deposit-per-slot"`
	Treasury       string        `yaml:"treasury" validate:"omitempty,address"`
	API            APIConfig     `yaml:"api"`
	Metrics        ServiceConfig `yaml:"metrics"`
	Admin          ServiceConfig `yaml:"admin"`
	NTP            NTPConfig     `yaml:"ntp"`
	Log            LogConfig     `yaml:"log"`
}

func defaultConfig() *Config {
	return &Config{
		DataDir:        dataDirFlag.Value,
		DBEngine:       dbEngineFlag.Value,
		Cache:          cacheFlag.Value,
		DepositPerSlot: depositPerSlotFlag.Value,
		API: APIConfig{
			Addr:           apiAddrFlag.Value,
			TransfersLimit: apiTransfersLimitFlag.Value,
		},
		Metrics: ServiceConfig{Addr: metricsAddrFlag.Value},
		Admin:   ServiceConfig{Addr: adminAddrFlag.Value},
		NTP: NTPConfig{
			Server:   ntpServerFlag.Value,
			Interval: ntpIntervalFlag.Value,
		},
		Log: LogConfig{Verbosity: verbosityFlag.Value},
	}
}

// decodeConfig overlays the YAML document data onto cfg. Unknown keys are rejected.
func decodeConfig(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return errors.Wrap(err, "decode config")
	}
	return nil
}

func (c *Config) validate() error {
	if err := restutil.NewValidator().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	switch {
	case c.Metrics.Enabled && c.Metrics.Addr == "":
		return errors.New("invalid config: metrics enabled without address")
	case c.Admin.Enabled && c.Admin.Addr == "":
		return errors.New("invalid config: admin enabled without address")
	case c.NTP.Server != "" && c.NTP.Interval < time.Second:
		return errors.New("invalid config: ntp interval must be at least 1s")
	case c.API.SlowQueriesThreshold < 0:
		return errors.New("invalid config: negative slow queries threshold")
	}
	return nil
}

// TreasuryAddress returns the configured treasury, zero if none.
func (c *Config) TreasuryAddress() ledger.Address {
	if c.Treasury == "" {
		return ledger.Address{}
	}
	return ledger.MustParseAddress(c.Treasury)
}

// applyFlags overrides cfg with the flags explicitly set on the command line or by env.
func applyFlags(ctx *cli.Context, cfg *Config) {
	setString := func(flag cli.StringFlag, v *string) {
		if ctx.IsSet(flag.Name) {
			*v = ctx.String(flag.Name)
		}
	}
	setBool := func(flag cli.BoolFlag, v *bool) {
		if ctx.IsSet(flag.Name) {
			*v = ctx.Bool(flag.Name)
		}
	}
	setUint64 := func(flag cli.Uint64Flag, v *uint64) {
		if ctx.IsSet(flag.Name) {
			*v = ctx.Uint64(flag.Name)
		}
	}
	setDuration := func(flag cli.DurationFlag, v *time.Duration) {
		if ctx.IsSet(flag.Name) {
			*v = ctx.Duration(flag.Name)
		}
	}

	setString(dataDirFlag, &cfg.DataDir)
	setString(dbEngineFlag, &cfg.DBEngine)
	if ctx.IsSet(cacheFlag.Name) {
		cfg.Cache = ctx.Int(cacheFlag.Name)
	}
	setUint64(depositPerSlotFlag, &cfg.DepositPerSlot)
	setString(treasuryFlag, &cfg.Treasury)

	setString(apiAddrFlag, &cfg.API.Addr)
	setString(apiCorsFlag, &cfg.API.Cors)
	setUint64(apiTransfersLimitFlag, &cfg.API.TransfersLimit)
	setDuration(apiSlowQueriesThresholdFlag, &cfg.API.SlowQueriesThreshold)
	setBool(apiLog5xxErrorsFlag, &cfg.API.Log5xxErrors)
	setBool(enableAPILogsFlag, &cfg.API.EnableLogs)
	setBool(pprofFlag, &cfg.API.Pprof)

	setBool(enableMetricsFlag, &cfg.Metrics.Enabled)
	setString(metricsAddrFlag, &cfg.Metrics.Addr)
	setBool(enableAdminFlag, &cfg.Admin.Enabled)
	setString(adminAddrFlag, &cfg.Admin.Addr)

	setString(ntpServerFlag, &cfg.NTP.Server)
	setDuration(ntpIntervalFlag, &cfg.NTP.Interval)
	setBool(ntpCorrectFlag, &cfg.NTP.Correct)

	setString(verbosityFlag, &cfg.Log.Verbosity)
	setBool(jsonLogsFlag, &cfg.Log.JSON)
}

// loadConfig builds the config from defaults, the optional config file and the flags, in that order.
func loadConfig(ctx *cli.Context) (*Config, error) {
	cfg := defaultConfig()
	if path := ctx.String(configFlag.Name); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config")
		}
		if err := decodeConfig(data, cfg); err != nil {
			return nil, err
		}
	}
	applyFlags(ctx, cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
