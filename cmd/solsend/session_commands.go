package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
)

func connectCommand() *cli.Command {
	return &cli.Command{
		Name:  "connect",
		Usage: "Connect a wallet signer and establish a session",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "silent",
				Usage: "Only reconnect if a previous session is stored; never surface errors",
			},
		},
		Action: func(c *cli.Context) error {
			deps, err := buildSession(c)
			if err != nil {
				return err
			}
			defer deps.cleanup()

			if err := deps.session.Connect(context.Background(), c.Bool("silent")); err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}

			if !deps.session.Connected() {
				if !c.Bool("json") {
					fmt.Println("no wallet connected")
				}
				return printOutput(c, map[string]any{"connected": false})
			}

			owner := deps.session.Owner().String()
			out := map[string]any{
				"connected": true,
				"owner":     owner,
			}
			if b := deps.session.Balance(); b != nil {
				out["balance"] = b.Balance
				out["formatted_balance"] = b.Formatted
			}
			if !c.Bool("json") && c.String("filter") == "" {
				fmt.Printf("✓ Wallet connected\n")
				fmt.Printf("  Owner: %s\n", owner)
				if b := deps.session.Balance(); b != nil {
					fmt.Printf("  Balance: %s\n", b.Formatted)
				}
			}
			return printOutput(c, out)
		},
	}
}

func disconnectCommand() *cli.Command {
	return &cli.Command{
		Name:  "disconnect",
		Usage: "Disconnect the wallet session and clear stored state",
		Action: func(c *cli.Context) error {
			deps, err := buildSession(c)
			if err != nil {
				return err
			}
			defer deps.cleanup()

			ctx := context.Background()
			// Reconnect silently so the signer and backend get notified;
			// local state is cleared either way.
			if err := deps.session.Connect(ctx, true); err != nil {
				deps.logger.Warn("silent reconnect before disconnect failed", "error", err)
			}
			deps.session.Disconnect(ctx)

			if !c.Bool("json") && c.String("filter") == "" {
				fmt.Println("✓ Wallet disconnected")
			}
			return printOutput(c, map[string]any{"connected": false})
		},
	}
}

func balanceCommand() *cli.Command {
	return &cli.Command{
		Name:  "balance",
		Usage: "Refresh and print the connected wallet's token balance",
		Action: func(c *cli.Context) error {
			deps, err := buildSession(c)
			if err != nil {
				return err
			}
			defer deps.cleanup()

			ctx := context.Background()
			if err := deps.session.Connect(ctx, false); err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}

			balance, err := deps.session.RefreshBalance(ctx)
			if err != nil {
				return err
			}

			if !c.Bool("json") && c.String("filter") == "" {
				fmt.Printf("Owner: %s\n", deps.session.Owner().String())
				fmt.Printf("Balance: %s\n", balance.Formatted)
			}
			return printOutput(c, map[string]any{
				"owner":             deps.session.Owner().String(),
				"balance":           balance.Balance,
				"formatted_balance": balance.Formatted,
			})
		},
	}
}

func transferCommand() *cli.Command {
	return &cli.Command{
		Name:      "transfer",
		Aliases:   []string{"send"},
		Usage:     "Send tokens to a recipient wallet address",
		ArgsUsage: "RECIPIENT_ADDRESS AMOUNT",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("recipient address and amount are required")
			}
			recipient := c.Args().Get(0)
			amount := c.Args().Get(1)

			deps, err := buildSession(c)
			if err != nil {
				return err
			}
			defer deps.cleanup()

			ctx := context.Background()
			if err := deps.session.Connect(ctx, false); err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}

			result, err := deps.session.Transfer(ctx, recipient, amount)
			if err != nil {
				return err
			}

			if !c.Bool("json") && c.String("filter") == "" {
				fmt.Printf("✓ Transfer confirmed\n")
				fmt.Printf("  Signature: %s\n", result.Signature.String())
				fmt.Printf("  Recipient: %s\n", result.Recipient.String())
				fmt.Printf("  Base units: %d\n", result.BaseUnits)
			}
			return printOutput(c, map[string]any{
				"signature":  result.Signature.String(),
				"recipient":  result.Recipient.String(),
				"base_units": result.BaseUnits,
				"outcome":    "confirmed",
			})
		},
	}
}
