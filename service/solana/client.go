package solana

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brojonat/solsend/service/metrics"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// RPCClient is an interface for the Solana RPC operations we need.
// This allows us to mock the RPC layer in tests without hitting real
// Solana nodes.
type RPCClient interface {
	GetAccountInfo(
		ctx context.Context,
		account solana.PublicKey,
	) (*rpc.GetAccountInfoResult, error)

	GetLatestBlockhash(
		ctx context.Context,
		commitment rpc.CommitmentType,
	) (*rpc.GetLatestBlockhashResult, error)

	SendRawTransaction(
		ctx context.Context,
		serializedTx []byte,
		opts rpc.TransactionOpts,
	) (solana.Signature, error)

	GetSignatureStatuses(
		ctx context.Context,
		searchTransactionHistory bool,
		signatures ...solana.Signature,
	) (*rpc.GetSignatureStatusesResult, error)
}

// Client provides the token-transfer chain operations: account resolution,
// transaction assembly, submission, and confirmation tracking. It wraps the
// RPC client with domain-specific behavior (retries, metrics, logging).
type Client struct {
	rpc      RPCClient
	token    TokenConfig
	logger   *slog.Logger
	metrics  *metrics.Metrics
	endpoint string // RPC endpoint identifier for metrics (e.g. "mainnet", rpc host)
}

// NewClient creates a new chain client for the given token configuration.
// The endpoint parameter is used for metrics labeling. If m is nil, no
// metrics are recorded.
func NewClient(rpcClient RPCClient, token TokenConfig, endpoint string, m *metrics.Metrics, logger *slog.Logger) *Client {
	return &Client{
		rpc:      rpcClient,
		token:    token,
		logger:   logger,
		metrics:  m,
		endpoint: endpoint,
	}
}

// Token returns the client's token configuration.
func (c *Client) Token() TokenConfig {
	return c.token
}

// Submit serializes a signed transaction and sends it to the chain.
// Submission is retried with exponential backoff on rate limiting; any
// other rejection is surfaced immediately as ErrSubmissionFailed.
func (c *Client) Submit(ctx context.Context, signedTx []byte) (solana.Signature, error) {
	opts := rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	}

	const maxAttempts = 3
	var sig solana.Signature
	var err error
	for attempt := range maxAttempts {
		start := time.Now()
		sig, err = c.rpc.SendRawTransaction(ctx, signedTx, opts)
		duration := time.Since(start).Seconds()

		status := "success"
		if err != nil {
			status = "error"
		}
		if c.metrics != nil {
			c.metrics.RecordRPCCall("SendRawTransaction", status, c.endpoint, duration)
		}

		if err == nil {
			c.logger.InfoContext(ctx, "transaction submitted",
				"signature", sig.String(),
			)
			return sig, nil
		}

		// Rate limiting (429 Too Many Requests) gets a longer backoff;
		// everything else is a hard rejection.
		if !strings.Contains(err.Error(), "429") {
			break
		}
		backoff := time.Duration(2<<uint(attempt)) * time.Second
		c.logger.WarnContext(ctx, "rate limited on submission, sleeping before retry",
			"attempt", attempt+1,
			"backoff_seconds", backoff.Seconds(),
		)
		if c.metrics != nil {
			c.metrics.RecordRateLimitHit(c.endpoint)
			c.metrics.RecordRPCRetry("SendRawTransaction", "rate_limit")
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return solana.Signature{}, fmt.Errorf("%w: %v", ErrSubmissionFailed, ctx.Err())
		}
	}

	c.logger.ErrorContext(ctx, "failed to submit transaction", "error", err)
	return solana.Signature{}, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
}

// latestBlockhash fetches a fresh blockhash at finalized commitment.
// The returned hash expires after a chain-defined window, so callers must
// rebuild (not reuse) a plan that sat around too long.
func (c *Client) latestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	start := time.Now()
	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordRPCCall("GetLatestBlockhash", status, c.endpoint, duration)
	}

	if err != nil {
		return solana.Hash{}, 0, fmt.Errorf("%w: blockhash fetch: %v", ErrChainQuery, err)
	}
	if result == nil || result.Value == nil {
		return solana.Hash{}, 0, fmt.Errorf("%w: blockhash fetch returned empty result", ErrChainQuery)
	}
	return result.Value.Blockhash, result.Value.LastValidBlockHeight, nil
}
