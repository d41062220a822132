package main

import (
	"context"
	"fmt"

	"github.com/brojonat/solsend/service/metrics"
	chain "github.com/brojonat/solsend/service/solana"
	"github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v2"
)

func deriveCommand() *cli.Command {
	return &cli.Command{
		Name:      "derive",
		Usage:     "Derive the associated token account address for an owner",
		ArgsUsage: "OWNER_ADDRESS",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "token-program",
				Usage:   "Token program ID",
				Value:   solana.TokenProgramID.String(),
				EnvVars: []string{"TOKEN_PROGRAM_ID"},
			},
			&cli.StringFlag{
				Name:    "associated-program",
				Usage:   "Associated token account program ID",
				Value:   solana.SPLAssociatedTokenAccountProgramID.String(),
				EnvVars: []string{"ASSOCIATED_TOKEN_PROGRAM_ID"},
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("owner address is required")
			}

			owner, err := solana.PublicKeyFromBase58(c.Args().Get(0))
			if err != nil {
				return fmt.Errorf("invalid owner address: %w", err)
			}
			mint, err := solana.PublicKeyFromBase58(c.String("mint"))
			if err != nil {
				return fmt.Errorf("invalid mint address: %w", err)
			}
			tokenProgram, err := solana.PublicKeyFromBase58(c.String("token-program"))
			if err != nil {
				return fmt.Errorf("invalid token program ID: %w", err)
			}
			associatedProgram, err := solana.PublicKeyFromBase58(c.String("associated-program"))
			if err != nil {
				return fmt.Errorf("invalid associated token program ID: %w", err)
			}

			address, bump, err := chain.DeriveTokenAccountAddress(owner, mint, tokenProgram, associatedProgram)
			if err != nil {
				return err
			}

			if !c.Bool("json") && c.String("filter") == "" {
				fmt.Printf("Token account: %s (bump %d)\n", address.String(), bump)
			}
			return printOutput(c, map[string]any{
				"owner":   owner.String(),
				"mint":    mint.String(),
				"address": address.String(),
				"bump":    bump,
			})
		},
	}
}

func awaitCommand() *cli.Command {
	return &cli.Command{
		Name:      "await",
		Usage:     "Track a submitted signature until it reaches a terminal outcome",
		ArgsUsage: "SIGNATURE",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "How long to wait before giving up",
				Value:   0, // 0 means use configured CONFIRM_TIMEOUT
				EnvVars: []string{"CONFIRM_TIMEOUT"},
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("transaction signature is required")
			}
			sig, err := solana.SignatureFromBase58(c.Args().Get(0))
			if err != nil {
				return fmt.Errorf("invalid signature: %w", err)
			}

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger := newLogger(c.String("log-level"))

			var m *metrics.Metrics
			if addr := c.String("metrics-addr"); addr != "" {
				m = metrics.NewMetrics(nil)
				go serveMetrics(addr, logger)
			}

			mint, err := solana.PublicKeyFromBase58(cfg.TokenMintAddress)
			if err != nil {
				return fmt.Errorf("invalid token mint address: %w", err)
			}
			token := chain.DefaultTokenConfig(mint, uint8(cfg.TokenDecimals))
			client := chain.NewClient(chain.NewRPCClient(cfg.SolanaRPCURL), token, cfg.SolanaRPCURL, m, logger)

			timeout := cfg.ConfirmTimeout
			if c.Duration("timeout") > 0 {
				timeout = c.Duration("timeout")
			}

			outcome := client.AwaitConfirmation(context.Background(), sig, timeout, cfg.ConfirmPollInterval)

			if !c.Bool("json") && c.String("filter") == "" {
				fmt.Printf("Signature: %s\n", sig.String())
				fmt.Printf("Outcome: %s\n", outcome.Status)
				if outcome.Reason != "" {
					fmt.Printf("Reason: %s\n", outcome.Reason)
				}
			}
			if err := printOutput(c, map[string]any{
				"signature": sig.String(),
				"outcome":   string(outcome.Status),
				"reason":    outcome.Reason,
			}); err != nil {
				return err
			}

			if outcome.Status == chain.OutcomeFailed {
				return fmt.Errorf("transaction failed: %s", outcome.Reason)
			}
			return nil
		},
	}
}
