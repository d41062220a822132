package solana

import (
	"github.com/gagliardetto/solana-go"
)

// TokenAccount describes the associated token account derived for an owner.
// It is produced fresh per operation and never cached: on-chain existence
// can change between invocations.
type TokenAccount struct {
	Owner   solana.PublicKey
	Mint    solana.PublicKey
	Address solana.PublicKey
	Bump    uint8
	Exists  bool
}

// TransferRequest describes a single token transfer. Amount is a decimal
// string (e.g. "1.5"); keeping it in string form until build avoids float
// rounding before the base-unit conversion.
type TransferRequest struct {
	Sender    solana.PublicKey
	Recipient solana.PublicKey
	Amount    string
}

// TransferPlan is the assembled, unsigned transaction envelope plus the
// resolution details that went into it. The Transaction carries the ordered
// instruction list, fee payer, and recent blockhash.
type TransferPlan struct {
	Transaction          *solana.Transaction
	SenderAccount        *TokenAccount
	RecipientAccount     *TokenAccount
	BaseUnits            uint64
	LastValidBlockHeight uint64
}

// TokenConfig identifies the token being transferred and the programs that
// govern its accounts. FundRecipient controls whether the session pays rent
// for a missing recipient account.
type TokenConfig struct {
	Mint                   solana.PublicKey
	Decimals               uint8
	TokenProgram           solana.PublicKey
	AssociatedTokenProgram solana.PublicKey
	FundRecipient          bool
}

// DefaultTokenConfig returns a TokenConfig for the given mint under the
// canonical SPL token and associated-token programs.
func DefaultTokenConfig(mint solana.PublicKey, decimals uint8) TokenConfig {
	return TokenConfig{
		Mint:                   mint,
		Decimals:               decimals,
		TokenProgram:           solana.TokenProgramID,
		AssociatedTokenProgram: solana.SPLAssociatedTokenAccountProgramID,
		FundRecipient:          true,
	}
}
