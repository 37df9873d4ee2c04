// Copyright (c) 2026 The Jeju Network developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"time"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the slashing-event database",
	}
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "persist the slashing log to disk (in-memory otherwise)",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8670",
		Usage: "API service listening address",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enable the prometheus metrics endpoint",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}

	ownerFlag = cli.StringFlag{
		Name:  "owner",
		Value: "0x00000000000000000000000000000000000000a0",
		Usage: "address gating administrative operations",
	}
	coordinatorFlag = cli.StringFlag{
		Name:  "coordinator",
		Value: "0x00000000000000000000000000000000000000b0",
		Usage: "address gating block-production reports",
	}
	treasuryFlag = cli.StringFlag{
		Name:  "treasury",
		Value: "0x00000000000000000000000000000000000000c0",
		Usage: "address receiving slashed collateral and the residual revenue share",
	}
	epochDurationFlag = cli.DurationFlag{
		Name:  "epoch-duration",
		Value: 24 * time.Hour,
		Usage: "length of one revenue epoch",
	}
)
