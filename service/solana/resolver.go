package solana

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ResolveTokenAccount derives the associated token account address for
// owner and checks whether it exists on chain. The result is computed fresh
// on every call; existence is never cached.
func (c *Client) ResolveTokenAccount(ctx context.Context, owner solana.PublicKey) (*TokenAccount, error) {
	if owner.IsZero() {
		return nil, ErrInvalidOwnerAddress
	}
	if c.token.Mint.IsZero() {
		return nil, ErrTokenNotConfigured
	}

	address, bump, err := DeriveTokenAccountAddress(owner, c.token.Mint, c.token.TokenProgram, c.token.AssociatedTokenProgram)
	if err != nil {
		return nil, err
	}

	account := &TokenAccount{
		Owner:   owner,
		Mint:    c.token.Mint,
		Address: address,
		Bump:    bump,
	}

	start := time.Now()
	result, err := c.rpc.GetAccountInfo(ctx, address)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil && !errors.Is(err, rpc.ErrNotFound) {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordRPCCall("GetAccountInfo", status, c.endpoint, duration)
	}

	switch {
	case errors.Is(err, rpc.ErrNotFound):
		account.Exists = false
	case err != nil:
		c.logger.ErrorContext(ctx, "failed to query token account",
			"owner", owner.String(),
			"address", address.String(),
			"error", err,
		)
		return nil, fmt.Errorf("%w: account lookup: %v", ErrChainQuery, err)
	default:
		account.Exists = result != nil && result.Value != nil
	}

	c.logger.DebugContext(ctx, "resolved token account",
		"owner", owner.String(),
		"address", address.String(),
		"bump", bump,
		"exists", account.Exists,
	)

	return account, nil
}

// NewCreateTokenAccountInstruction builds the associated-token-account
// creation instruction for a derived address. The funder pays rent and is
// the only signer. Key order and flags are fixed by the associated token
// program's ABI:
//
//	[funder(signer,writable), derived(writable), owner, mint,
//	 system program, token program, rent sysvar]
//
// The instruction payload is empty.
func NewCreateTokenAccountInstruction(
	funder solana.PublicKey,
	account *TokenAccount,
	tokenProgram solana.PublicKey,
	associatedProgram solana.PublicKey,
) solana.Instruction {
	return solana.NewInstruction(
		associatedProgram,
		solana.AccountMetaSlice{
			solana.Meta(funder).SIGNER().WRITE(),
			solana.Meta(account.Address).WRITE(),
			solana.Meta(account.Owner),
			solana.Meta(account.Mint),
			solana.Meta(solana.SystemProgramID),
			solana.Meta(tokenProgram),
			solana.Meta(solana.SysVarRentPubkey),
		},
		nil,
	)
}
