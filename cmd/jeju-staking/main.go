// Copyright (c) 2026 The Jeju Network developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/jeju-network/jeju-staking/api"
	"github.com/jeju-network/jeju-staking/staker"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.New("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "jeju-staking",
		Usage:     "Validator staking engine of the Jeju network",
		Copyright: "2026 Jeju Network",
		Flags: []cli.Flag{
			dataDirFlag,
			persistFlag,
			apiAddrFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			verbosityFlag,
			ownerFlag,
			coordinatorFlag,
			treasuryFlag,
			epochDurationFlag,
		},
		Action: soloAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func soloAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)

	owner := parseAddressFlag(ctx, ownerFlag)
	coordinator := parseAddressFlag(ctx, coordinatorFlag)
	treasury := parseAddressFlag(ctx, treasuryFlag)

	events := openSlashDB(ctx)
	defer func() { logger.Info("closing slashing database..."); events.Close() }()

	cfg := staker.DefaultConfig()
	cfg.EpochDuration = ctx.Duration(epochDurationFlag.Name)

	eng, err := staker.New(cfg, owner, coordinator, treasury, &staker.Externals{
		Identity:   soloIdentity{},
		Reputation: soloReputation{},
		Rail:       newSoloRail(),
		Events:     events,
	})
	if err != nil {
		return err
	}

	stopMetrics := startMetricsServer(ctx)
	defer stopMetrics()

	apiURL, stopAPI := startHTTPServer(ctx.String(apiAddrFlag.Name), api.New(eng, events))
	defer func() { logger.Info("stopping API server..."); stopAPI() }()

	printStartupMessage(ctx, apiURL, owner, coordinator, treasury)

	handleExitSignal()
	return nil
}

func printStartupMessage(ctx *cli.Context, apiURL string, owner, coordinator, treasury common.Address) {
	storage := "Memory"
	if ctx.Bool(persistFlag.Name) {
		storage = ctx.String(dataDirFlag.Name)
	}
	fmt.Printf(`Starting jeju-staking %v
    Owner        [ %v ]
    Coordinator  [ %v ]
    Treasury     [ %v ]
    Storage      [ %v ]
    API portal   [ %v ]
`,
		fullVersion(),
		owner.Hex(),
		coordinator.Hex(),
		treasury.Hex(),
		storage,
		apiURL)
}
