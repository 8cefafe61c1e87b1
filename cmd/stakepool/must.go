// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/badgerdb"
	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/lvldb"
	stakeruntime "github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/transferlog"
)

func initLogger(cfg *LogConfig) *slog.LevelVar {
	level, ok := log.ParseLevel(cfg.Verbosity)
	if !ok {
		level = log.LevelInfo
	}
	logLevel := new(slog.LevelVar)
	logLevel.Set(level)

	var handler slog.Handler
	if cfg.JSON {
		handler = log.JSONHandlerWithLevel(os.Stderr, logLevel)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, logLevel, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return logLevel
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "Application Support", "org.vechain.stakepool")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "org.vechain.stakepool")
		}
		return filepath.Join(home, ".org.vechain.stakepool")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func makeDataDir(cfg *Config) (string, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", cfg.DataDir)
	}
	return cfg.DataDir, nil
}

func openStateDB(cfg *Config, dataDir string) (kv.Store, error) {
	switch cfg.DBEngine {
	case "badger":
		return badgerdb.New(filepath.Join(dataDir, "state.badger"))
	default:
		fdCache := suggestFDCache()
		log.Debug("fd cache", "n", fdCache)
		return lvldb.New(filepath.Join(dataDir, "state.db"), lvldb.Options{
			CacheSize:              normalizeCacheSize(cfg.Cache),
			OpenFilesCacheCapacity: fdCache,
		})
	}
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 16 {
		sizeMB = 16
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		log.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			log.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		log.Warn("failed to get fd limit", "err", err)
		return 64
	}
	if limit <= 1024 {
		log.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

// services are the components opened over the data dir.
type services struct {
	db      kv.Store
	tlog    *transferlog.TransferLog
	runtime *stakeruntime.Runtime
}

func openServices(cfg *Config, clk clock.Clock) (*services, error) {
	dataDir, err := makeDataDir(cfg)
	if err != nil {
		return nil, err
	}
	db, err := openStateDB(cfg, dataDir)
	if err != nil {
		return nil, errors.Wrap(err, "open state database")
	}
	stater, err := state.NewStater(db, state.DefaultCacheSize)
	if err != nil {
		db.Close()
		return nil, err
	}
	tlog, err := transferlog.New(filepath.Join(dataDir, "transfers.db"))
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "open transfer log")
	}
	rt := stakeruntime.New(stater, clk, tlog, stakeruntime.Options{
		Treasury:       cfg.TreasuryAddress(),
		DepositPerSlot: cfg.DepositPerSlot,
	})
	return &services{db, tlog, rt}, nil
}

func (s *services) Close() {
	s.runtime.Close()
	log.Info("closing transfer log...")
	if err := s.tlog.Close(); err != nil {
		log.Warn("failed to close transfer log", "err", err)
	}
	log.Info("closing state database...")
	if err := s.db.Close(); err != nil {
		log.Warn("failed to close state database", "err", err)
	}
}

func loadKey(path string) (*ecdsa.PrivateKey, error) {
	if path == "" {
		return nil, errors.New("missing key file, see --key")
	}
	key, err := crypto.LoadECDSA(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load key [%v]", path)
	}
	return key, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// handleExitSignal returns a context canceled on interrupt or termination.
func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)
		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func printStartupMessage(cfg *Config, apiURL, metricsURL, adminURL string) {
	treasury := "none"
	if cfg.Treasury != "" {
		treasury = cfg.TreasuryAddress().String()
	}
	fmt.Printf(`Starting %v
    Data dir   [ %v ]
    DB engine  [ %v ]
    Treasury   [ %v ]
    API portal [ %v ]
    Metrics    [ %v ]
    Admin      [ %v ]
`,
		fullVersion(),
		cfg.DataDir,
		cfg.DBEngine,
		treasury,
		apiURL,
		orNone(metricsURL),
		orNone(adminURL))
}

func orNone(s string) string {
	if s == "" {
		return "Disabled"
	}
	return s
}
