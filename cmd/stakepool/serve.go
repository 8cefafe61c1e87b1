// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/api"
	"github.com/vechain/stakepool/api/admin/health"
	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/cmd/stakepool/httpserver"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/metrics"
)

func serveAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	logLevel := initLogger(&cfg.Log)

	if cfg.Metrics.Enabled {
		metrics.InitializePrometheusMetrics()
	}

	sysClock := clock.NewSystem()
	svc, err := openServices(cfg, sysClock)
	if err != nil {
		return err
	}
	defer svc.Close()

	apiLogs := &atomic.Bool{}
	apiLogs.Store(cfg.API.EnableLogs)

	handler, closeSubs := api.New(svc.runtime, api.Options{
		AllowedOrigins:       cfg.API.Cors,
		TransfersLimit:       cfg.API.TransfersLimit,
		PprofOn:              cfg.API.Pprof,
		EnableMetrics:        cfg.Metrics.Enabled,
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: cfg.API.SlowQueriesThreshold,
		Log5xxErrors:         cfg.API.Log5xxErrors,
	})

	listener, err := net.Listen("tcp", cfg.API.Addr)
	if err != nil {
		closeSubs()
		return errors.Wrapf(err, "listen API addr [%v]", cfg.API.Addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}

	var metricsURL string
	if cfg.Metrics.Enabled {
		url, stop, err := httpserver.StartMetricsServer(cfg.Metrics.Addr)
		if err != nil {
			listener.Close()
			closeSubs()
			return err
		}
		defer func() { log.Info("stopping metrics server..."); stop() }()
		metricsURL = url
	}

	var adminURL string
	if cfg.Admin.Enabled {
		checks := &health.Checks{
			MaxOffset: clock.MaxOffset,
			Storage: func() error {
				_, err := svc.runtime.Pool()
				return err
			},
		}
		if cfg.NTP.Server != "" {
			checks.Offset = sysClock.Offset
		}
		url, stop, err := httpserver.StartAdminServer(cfg.Admin.Addr, logLevel, apiLogs, checks)
		if err != nil {
			listener.Close()
			closeSubs()
			return err
		}
		defer func() { log.Info("stopping admin server..."); stop() }()
		adminURL = url
	}

	printStartupMessage(cfg, "http://"+listener.Addr().String()+"/", metricsURL, adminURL)

	exitCtx := handleExitSignal()
	g, gctx := errgroup.WithContext(exitCtx)
	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "serve API")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("stopping API server...")
		// hijacked websocket conns are not tracked by the server
		closeSubs()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.NTP.Server != "" {
		g.Go(func() error {
			sysClock.Run(gctx, cfg.NTP.Server, cfg.NTP.Interval, cfg.NTP.Correct)
			return nil
		})
	}
	return g.Wait()
}
