package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:  "solsend",
		Usage: "Solana wallet session and SPL token transfer CLI",
		Description: `A command-line tool for connecting a wallet signer, inspecting token
balances, and sending SPL token transfers with confirmation tracking.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			connectCommand(),
			disconnectCommand(),
			balanceCommand(),
			transferCommand(),
			deriveCommand(),
			awaitCommand(),
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "rpc-url",
				Usage:   "Solana RPC endpoint URL",
				EnvVars: []string{"SOLANA_RPC_URL"},
			},
			&cli.StringFlag{
				Name:    "mint",
				Usage:   "Token mint address",
				EnvVars: []string{"TOKEN_MINT_ADDRESS"},
			},
			&cli.IntFlag{
				Name:    "decimals",
				Usage:   "Token decimal places",
				EnvVars: []string{"TOKEN_DECIMALS"},
				Value:   6,
			},
			&cli.StringFlag{
				Name:    "backend-url",
				Usage:   "Backend persistence service URL",
				EnvVars: []string{"BACKEND_URL"},
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "Address for the Prometheus /metrics listener (disabled if empty)",
				EnvVars: []string{"METRICS_ADDR"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "info",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format",
			},
			&cli.StringFlag{
				Name:    "filter",
				Aliases: []string{"f"},
				Usage:   "jq expression applied to JSON output",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
