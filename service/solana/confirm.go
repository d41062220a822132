package solana

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// OutcomeStatus classifies the terminal result of tracking a signature.
type OutcomeStatus string

const (
	OutcomeConfirmed OutcomeStatus = "confirmed"
	OutcomeFailed    OutcomeStatus = "failed"
	OutcomeTimedOut  OutcomeStatus = "timed_out"
)

// Outcome is the terminal result of confirmation tracking. TimedOut does
// not mean the transaction failed: it may still land on chain after we stop
// watching, so callers must treat it as "unknown, check later".
type Outcome struct {
	Status    OutcomeStatus
	Signature solana.Signature
	Reason    string
}

// AwaitConfirmation polls the chain for a submitted signature's finality
// until it reaches a terminal state or the timeout elapses. It always
// returns exactly one of Confirmed, Failed, or TimedOut within the timeout
// bound; it never blocks indefinitely. Cancelling the context (e.g. the
// session disconnecting mid-transfer) stops tracking and yields TimedOut.
//
// Transient RPC errors during polling are logged and retried on the next
// tick rather than surfaced; only the timeout ends the wait.
func (c *Client) AwaitConfirmation(ctx context.Context, sig solana.Signature, timeout, pollInterval time.Duration) Outcome {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	polls := 0
	for {
		polls++
		start := time.Now()
		result, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
		duration := time.Since(start).Seconds()

		status := "success"
		if err != nil {
			status = "error"
		}
		if c.metrics != nil {
			c.metrics.RecordRPCCall("GetSignatureStatuses", status, c.endpoint, duration)
		}

		if err != nil {
			c.logger.WarnContext(ctx, "signature status poll failed",
				"signature", sig.String(),
				"poll", polls,
				"error", err,
			)
		} else if outcome, terminal := classifyStatus(sig, result); terminal {
			c.logger.InfoContext(ctx, "confirmation resolved",
				"signature", sig.String(),
				"status", string(outcome.Status),
				"polls", polls,
			)
			if c.metrics != nil {
				c.metrics.RecordConfirmationPolls(c.endpoint, float64(polls))
			}
			return outcome
		}

		select {
		case <-ticker.C:
		case <-deadline.C:
			c.logger.WarnContext(ctx, "confirmation timed out, transaction may still land",
				"signature", sig.String(),
				"timeout", timeout.String(),
				"polls", polls,
			)
			return Outcome{Status: OutcomeTimedOut, Signature: sig}
		case <-ctx.Done():
			c.logger.WarnContext(ctx, "confirmation tracking cancelled",
				"signature", sig.String(),
				"error", ctx.Err(),
			)
			return Outcome{Status: OutcomeTimedOut, Signature: sig, Reason: ctx.Err().Error()}
		}
	}
}

// classifyStatus maps an RPC signature status to a terminal outcome.
// A nil status means the chain has not seen the signature yet; a status
// below confirmed commitment is also non-terminal.
func classifyStatus(sig solana.Signature, result *rpc.GetSignatureStatusesResult) (Outcome, bool) {
	if result == nil || len(result.Value) == 0 || result.Value[0] == nil {
		return Outcome{}, false
	}
	st := result.Value[0]

	if st.Err != nil {
		return Outcome{
			Status:    OutcomeFailed,
			Signature: sig,
			Reason:    fmt.Sprintf("transaction failed on chain: %v", st.Err),
		}, true
	}

	switch st.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		return Outcome{Status: OutcomeConfirmed, Signature: sig}, true
	}
	return Outcome{}, false
}
