package nats

import (
	"time"
)

// TransferEvent is published to "transfers.{owner_address}" in JetStream
// whenever a transfer reaches a terminal outcome. Consumers (UI, backend
// reconcilers) use it to react without polling the session.
type TransferEvent struct {
	// Transfer identifiers
	Signature string `json:"signature"`

	// Participants
	OwnerAddress     string `json:"owner_address"`
	RecipientAddress string `json:"recipient_address"`

	// Transfer details
	Amount    uint64 `json:"amount"`
	TokenMint string `json:"token_mint"`

	// Terminal outcome: confirmed, failed, or timed_out.
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`

	// Timing information
	SubmittedAt time.Time `json:"submitted_at"`
	PublishedAt time.Time `json:"published_at"`
}
