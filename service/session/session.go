package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/brojonat/solsend/service/backend"
	"github.com/brojonat/solsend/service/metrics"
	events "github.com/brojonat/solsend/service/nats"
	chain "github.com/brojonat/solsend/service/solana"
	"github.com/brojonat/solsend/service/store"
	"github.com/gagliardetto/solana-go"
)

// Session is the wallet session state machine. It owns the connection
// identity, the signing capability handle, and the last known balance, and
// orchestrates transfers end to end: build, sign, submit, confirm, record.
//
// Sessions are explicit, constructible objects; all collaborators are
// injected so tests can run against mocks. Invariant: Connected() is true
// iff both the owner address and the signer are set.
type Session struct {
	mu             sync.Mutex
	connected      bool
	connecting     bool
	owner          solana.PublicKey
	signer         Signer
	provider       string
	balance        *backend.Balance
	inFlight       bool
	cancelTransfer context.CancelFunc

	providers []Provider
	chain     *chain.Client
	backend   *backend.Client
	store     *store.Store
	publisher events.Publisher

	confirmTimeout      time.Duration
	confirmPollInterval time.Duration

	metrics *metrics.Metrics
	logger  *slog.Logger
}

// TransferResult is returned when a transfer reaches Confirmed.
type TransferResult struct {
	Signature solana.Signature
	Recipient solana.PublicKey
	BaseUnits uint64
}

// New creates a session wired to its collaborators. The publisher and
// metrics may be nil; the store may be nil when local persistence is not
// wanted (e.g. unit tests).
func New(
	chainClient *chain.Client,
	providers []Provider,
	backendClient *backend.Client,
	localStore *store.Store,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Session {
	return &Session{
		providers:           providers,
		chain:               chainClient,
		backend:             backendClient,
		store:               localStore,
		publisher:           publisher,
		confirmTimeout:      60 * time.Second,
		confirmPollInterval: 2 * time.Second,
		metrics:             m,
		logger:              logger,
	}
}

// WithConfirmation overrides the confirmation timeout and poll interval.
func (s *Session) WithConfirmation(timeout, pollInterval time.Duration) *Session {
	s.confirmTimeout = timeout
	s.confirmPollInterval = pollInterval
	return s
}

// Connected reports whether the session holds an owner and a signer.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Owner returns the connected owner address (zero key when disconnected).
func (s *Session) Owner() solana.PublicKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// Balance returns the last refreshed balance, or nil if never fetched.
func (s *Session) Balance() *backend.Balance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// Connect discovers a signer provider and establishes the session. In
// silent mode (used for reconnecting on startup) it only attempts the
// connection when a previously connected address is stored, and failures
// leave the session disconnected without surfacing an error.
func (s *Session) Connect(ctx context.Context, silent bool) error {
	s.mu.Lock()
	if s.connected {
		s.mu.Unlock()
		return nil
	}
	// Only one connect attempt runs discovery at a time; a concurrent
	// call would race it for the signer slot.
	if s.connecting {
		s.mu.Unlock()
		if silent {
			return nil
		}
		return ErrOperationInProgress
	}
	s.connecting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.connecting = false
		s.mu.Unlock()
	}()

	if silent && s.store != nil {
		last, err := s.store.LastOwner()
		if err != nil || last == "" {
			s.logger.DebugContext(ctx, "no stored session, skipping silent reconnect")
			return nil
		}
	}

	provider, err := Discover(s.providers)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordSessionConnect("none", "unavailable")
		}
		if silent {
			return nil
		}
		return err
	}

	signer := provider.Signer()
	owner, err := signer.Connect(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordSessionConnect(provider.Name(), "error")
		}
		if silent {
			s.logger.DebugContext(ctx, "silent connect failed", "provider", provider.Name(), "error", err)
			return nil
		}
		return fmt.Errorf("wallet connect: %w", err)
	}

	s.mu.Lock()
	s.connected = true
	s.owner = owner
	s.signer = signer
	s.provider = provider.Name()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordSessionConnect(provider.Name(), "success")
	}
	s.logger.InfoContext(ctx, "wallet connected",
		"provider", provider.Name(),
		"owner", owner.String(),
	)

	if s.store != nil {
		if err := s.store.SaveOwner(owner.String()); err != nil {
			s.logger.WarnContext(ctx, "failed to persist owner address", "error", err)
		}
	}

	// Balance refresh failure is not fatal to the connection.
	if _, err := s.RefreshBalance(ctx); err != nil {
		s.logger.WarnContext(ctx, "initial balance refresh failed", "error", err)
	}

	return nil
}

// Disconnect tears the session down. The signer and backend are notified
// best-effort; local state and the stored address are always cleared, even
// when those notifications fail. A transfer still awaiting confirmation is
// told to stop tracking; the transaction itself may still land on chain.
func (s *Session) Disconnect(ctx context.Context) {
	s.mu.Lock()
	if s.cancelTransfer != nil {
		s.cancelTransfer()
	}
	signer := s.signer
	wasConnected := s.connected
	s.connected = false
	s.owner = solana.PublicKey{}
	s.signer = nil
	s.provider = ""
	s.balance = nil
	s.mu.Unlock()

	status := "success"
	if signer != nil {
		if err := signer.Disconnect(ctx); err != nil {
			status = "signer_error"
			s.logger.WarnContext(ctx, "signer disconnect failed", "error", err)
		}
	}
	if s.store != nil {
		if err := s.store.Clear(); err != nil {
			s.logger.WarnContext(ctx, "failed to clear stored session", "error", err)
		}
	}
	if wasConnected && s.backend != nil {
		if err := s.backend.DisconnectNotify(ctx); err != nil {
			s.logger.WarnContext(ctx, "backend disconnect notify failed", "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.RecordSessionDisconnect(status)
	}
	s.logger.InfoContext(ctx, "wallet disconnected")
}

// RefreshBalance fetches the owner's balance from the backend. Failures
// leave the previously known balance unchanged.
func (s *Session) RefreshBalance(ctx context.Context) (*backend.Balance, error) {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return nil, ErrNotConnected
	}
	owner := s.owner
	s.mu.Unlock()

	balance, err := s.backend.GetBalance(ctx, owner.String())
	if err != nil {
		return nil, fmt.Errorf("balance refresh: %w", err)
	}

	s.mu.Lock()
	s.balance = balance
	s.mu.Unlock()
	return balance, nil
}

// Transfer sends the given decimal amount of the configured token to the
// recipient address. Steps run strictly in order: build (account resolution
// and amount validation), sign, submit, confirm, record. At most one
// transfer may be in flight per session; concurrent calls get
// ErrOperationInProgress. A confirmed transfer is recorded with the backend
// and followed by a balance refresh, both best-effort.
func (s *Session) Transfer(ctx context.Context, recipient, amount string) (*TransferResult, error) {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return nil, ErrNotConnected
	}
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrOperationInProgress
	}
	s.inFlight = true
	owner := s.owner
	signer := s.signer
	// Disconnecting mid-transfer cancels this context, which stops
	// confirmation tracking without recalling the transaction.
	ctx, cancel := context.WithCancel(ctx)
	s.cancelTransfer = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.inFlight = false
		s.cancelTransfer = nil
		s.mu.Unlock()
	}()

	to, err := solana.PublicKeyFromBase58(recipient)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", chain.ErrInvalidOwnerAddress, recipient)
	}

	start := time.Now()

	plan, err := s.chain.BuildTransfer(ctx, chain.TransferRequest{
		Sender:    owner,
		Recipient: to,
		Amount:    amount,
	})
	if err != nil {
		return nil, err
	}

	signed, err := signer.SignTransaction(ctx, plan.Transaction)
	if err != nil {
		// A signing rejection aborts this transfer only; the session
		// stays connected.
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := s.chain.Submit(ctx, signed)
	if err != nil {
		return nil, err
	}
	submittedAt := time.Now().UTC()

	outcome := s.chain.AwaitConfirmation(ctx, sig, s.confirmTimeout, s.confirmPollInterval)
	if s.metrics != nil {
		s.metrics.RecordTransfer(string(outcome.Status), time.Since(start).Seconds())
	}
	s.publishOutcome(ctx, owner, to, plan.BaseUnits, submittedAt, outcome)

	switch outcome.Status {
	case chain.OutcomeFailed:
		return nil, fmt.Errorf("%w: %s", ErrTransferFailed, outcome.Reason)
	case chain.OutcomeTimedOut:
		return nil, fmt.Errorf("%w: signature %s may still land, check later", ErrTimeout, sig.String())
	}

	if s.backend != nil {
		record := backend.TransferRecord{
			From:      owner.String(),
			To:        to.String(),
			Amount:    plan.BaseUnits,
			Signature: sig.String(),
			Mint:      s.chain.Token().Mint.String(),
			Timestamp: submittedAt,
		}
		if err := s.backend.RecordTransfer(ctx, record); err != nil {
			s.logger.WarnContext(ctx, "failed to record transfer with backend",
				"signature", sig.String(),
				"error", err,
			)
		}
	}

	if _, err := s.RefreshBalance(ctx); err != nil {
		s.logger.WarnContext(ctx, "post-transfer balance refresh failed", "error", err)
	}

	s.logger.InfoContext(ctx, "transfer confirmed",
		"signature", sig.String(),
		"recipient", to.String(),
		"base_units", plan.BaseUnits,
	)

	return &TransferResult{
		Signature: sig,
		Recipient: to,
		BaseUnits: plan.BaseUnits,
	}, nil
}

// publishOutcome emits a transfer event for external consumers.
// Best-effort: a publish failure never alters the transfer's outcome.
func (s *Session) publishOutcome(
	ctx context.Context,
	owner, recipient solana.PublicKey,
	units uint64,
	submittedAt time.Time,
	outcome chain.Outcome,
) {
	if s.publisher == nil {
		return
	}
	event := &events.TransferEvent{
		Signature:        outcome.Signature.String(),
		OwnerAddress:     owner.String(),
		RecipientAddress: recipient.String(),
		Amount:           units,
		TokenMint:        s.chain.Token().Mint.String(),
		Outcome:          string(outcome.Status),
		Reason:           outcome.Reason,
		SubmittedAt:      submittedAt,
		PublishedAt:      time.Now().UTC(),
	}
	status := "success"
	if err := s.publisher.PublishTransfer(ctx, event); err != nil {
		status = "error"
		s.logger.WarnContext(ctx, "failed to publish transfer event",
			"signature", event.Signature,
			"error", err,
		)
	}
	if s.metrics != nil {
		s.metrics.RecordEventPublished(status)
	}
}
