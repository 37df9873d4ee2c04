// Copyright (c) 2026 The Jeju Network developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/jeju-network/jeju-staking/metrics"
	"github.com/jeju-network/jeju-staking/slashdb"
)

func fatal(args ...interface{}) {
	fmt.Fprint(os.Stderr, "Fatal: ")
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}

func initLogger(ctx *cli.Context) {
	level := log.FromLegacyLevel(ctx.Int(verbosityFlag.Name))
	handler := log.NewTerminalHandlerWithLevel(os.Stderr, level, false)
	log.SetDefault(log.NewLogger(handler))
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".jeju-staking")
}

func parseAddressFlag(ctx *cli.Context, flag cli.StringFlag) common.Address {
	raw := ctx.String(flag.Name)
	if !common.IsHexAddress(raw) {
		fatal(fmt.Sprintf("invalid -%s address [%v]", flag.Name, raw))
	}
	return common.HexToAddress(raw)
}

func openSlashDB(ctx *cli.Context) *slashdb.SlashDB {
	if !ctx.Bool(persistFlag.Name) {
		db, err := slashdb.NewMem()
		if err != nil {
			fatal("open slashing database:", err)
		}
		return db
	}

	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", dataDir, err))
	}
	path := filepath.Join(dataDir, "slashings.db")
	db, err := slashdb.New(path)
	if err != nil {
		fatal(fmt.Sprintf("open slashing database [%v]: %v", path, err))
	}
	return db
}

// startHTTPServer serves the handler until stop is called.
func startHTTPServer(addr string, handler http.Handler) (string, func()) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(fmt.Sprintf("listen [%v]: %v", addr, err))
	}
	srv := &http.Server{Handler: handler}
	done := make(chan struct{})
	go func() {
		srv.Serve(listener)
		close(done)
	}()
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		<-done
	}
}

func startMetricsServer(ctx *cli.Context) func() {
	if !ctx.Bool(enableMetricsFlag.Name) {
		return func() {}
	}
	metrics.InitializePrometheusMetrics()
	url, stop := startHTTPServer(ctx.String(metricsAddrFlag.Name), metrics.HTTPHandler())
	logger.Info("metrics endpoint up", "url", url+"metrics")
	return stop
}

func handleExitSignal() {
	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	sig := <-exit
	logger.Info("exit signal received", "signal", sig)
}
