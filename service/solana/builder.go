package solana

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// SPL Token program instruction tags.
const (
	tokenTransferInstruction = uint8(3)
)

// BuildTransfer assembles an unsigned transfer transaction. Instruction
// order matters and later instructions depend on earlier ones having run:
//
//  1. sender token account creation, if the account does not exist yet
//  2. recipient token account creation, if missing and FundRecipient is set
//  3. the token transfer itself
//
// The sender funds any account creation. Amount validation happens before
// any network call. The attached blockhash is short-lived; a plan that is
// not signed and submitted promptly must be rebuilt.
func (c *Client) BuildTransfer(ctx context.Context, req TransferRequest) (*TransferPlan, error) {
	if c.token.Mint.IsZero() {
		return nil, ErrTokenNotConfigured
	}
	if req.Sender.IsZero() {
		return nil, fmt.Errorf("%w: sender", ErrInvalidOwnerAddress)
	}
	if req.Recipient.IsZero() {
		return nil, fmt.Errorf("%w: recipient", ErrInvalidOwnerAddress)
	}

	units, err := ParseTokenAmount(req.Amount, c.token.Decimals)
	if err != nil {
		return nil, err
	}

	sender, err := c.ResolveTokenAccount(ctx, req.Sender)
	if err != nil {
		return nil, fmt.Errorf("resolve sender token account: %w", err)
	}
	recipient, err := c.ResolveTokenAccount(ctx, req.Recipient)
	if err != nil {
		return nil, fmt.Errorf("resolve recipient token account: %w", err)
	}

	var instructions []solana.Instruction
	if !sender.Exists {
		instructions = append(instructions,
			NewCreateTokenAccountInstruction(req.Sender, sender, c.token.TokenProgram, c.token.AssociatedTokenProgram))
	}
	if !recipient.Exists {
		if !c.token.FundRecipient {
			return nil, fmt.Errorf("%w and rent sponsorship is disabled", ErrRecipientUnfunded)
		}
		// The sender sponsors the recipient's account rent.
		instructions = append(instructions,
			NewCreateTokenAccountInstruction(req.Sender, recipient, c.token.TokenProgram, c.token.AssociatedTokenProgram))
	}
	instructions = append(instructions,
		newTokenTransferInstruction(sender.Address, recipient.Address, req.Sender, units, c.token.TokenProgram))

	blockhash, lastValidBlockHeight, err := c.latestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(req.Sender))
	if err != nil {
		return nil, fmt.Errorf("assemble transaction: %w", err)
	}

	c.logger.DebugContext(ctx, "built transfer transaction",
		"sender", req.Sender.String(),
		"recipient", req.Recipient.String(),
		"base_units", units,
		"instructions", len(instructions),
		"create_sender_account", !sender.Exists,
		"create_recipient_account", !recipient.Exists,
	)

	return &TransferPlan{
		Transaction:          tx,
		SenderAccount:        sender,
		RecipientAccount:     recipient,
		BaseUnits:            units,
		LastValidBlockHeight: lastValidBlockHeight,
	}, nil
}

// newTokenTransferInstruction builds an SPL Transfer instruction moving
// base units from source to destination, authorized by the owner.
func newTokenTransferInstruction(
	source solana.PublicKey,
	destination solana.PublicKey,
	authority solana.PublicKey,
	units uint64,
	tokenProgram solana.PublicKey,
) solana.Instruction {
	data := make([]byte, 9)
	data[0] = tokenTransferInstruction
	binary.LittleEndian.PutUint64(data[1:], units)

	return solana.NewInstruction(
		tokenProgram,
		solana.AccountMetaSlice{
			solana.Meta(source).WRITE(),
			solana.Meta(destination).WRITE(),
			solana.Meta(authority).SIGNER(),
		},
		data,
	)
}
