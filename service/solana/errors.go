package solana

import "errors"

// Sentinel errors for the chain layer. Callers classify with errors.Is;
// wrapped variants carry the underlying RPC error for logging.
var (
	// ErrDerivationExhausted means no bump byte in [0,255] produced an
	// off-curve address for the given seeds. This is effectively
	// unreachable for real inputs but the search is still bounded.
	ErrDerivationExhausted = errors.New("token account derivation exhausted all bump seeds")

	// ErrInvalidOwnerAddress means the supplied owner is not a valid
	// base58 public key (or is the zero key).
	ErrInvalidOwnerAddress = errors.New("invalid owner address")

	// ErrInvalidAmount means the decimal amount is zero, negative, has
	// more fractional digits than the token allows, or overflows uint64.
	ErrInvalidAmount = errors.New("invalid transfer amount")

	// ErrTokenNotConfigured means the client has no token mint configured.
	ErrTokenNotConfigured = errors.New("token mint not configured")

	// ErrChainQuery means an RPC read (account lookup, blockhash fetch)
	// failed. The operation may be retried.
	ErrChainQuery = errors.New("chain query failed")

	// ErrRecipientUnfunded means the recipient has no token account and
	// rent sponsorship is disabled, so the transfer cannot proceed.
	ErrRecipientUnfunded = errors.New("recipient token account does not exist")

	// ErrSubmissionFailed means the signed transaction was rejected at
	// submission time, before reaching a confirmed state.
	ErrSubmissionFailed = errors.New("transaction submission failed")
)
