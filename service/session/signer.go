package session

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
)

// Signer is the signing capability behind a wallet session. It holds (or
// fronts for) private key material and signs transactions on request; the
// key itself is never exposed to the session.
type Signer interface {
	// Connect establishes the capability and returns the owner address.
	Connect(ctx context.Context) (solana.PublicKey, error)

	// Disconnect releases the capability. Best-effort; sessions clear
	// their own state regardless of the outcome.
	Disconnect(ctx context.Context) error

	// SignTransaction signs the assembled transaction and returns the
	// fully signed wire bytes ready for submission.
	SignTransaction(ctx context.Context, tx *solana.Transaction) ([]byte, error)
}

// Provider is a discoverable source of a Signer. Providers are probed once
// at connect time, in precedence order, not re-probed per call.
type Provider interface {
	Name() string
	Available() bool
	Signer() Signer
}

// Discover returns the first available provider from the ordered slice,
// or ErrNoWalletAvailable if none is usable.
func Discover(providers []Provider) (Provider, error) {
	for _, p := range providers {
		if p.Available() {
			return p, nil
		}
	}
	return nil, ErrNoWalletAvailable
}

// --- remote signer (phantom/solflare-style wallet daemon over HTTP) ---

// remoteProvider fronts a wallet daemon reachable over HTTP. It is
// considered available when a base URL is configured.
type remoteProvider struct {
	name   string
	signer *remoteSigner
}

// NewRemoteProvider creates a provider for an HTTP wallet daemon. An empty
// baseURL yields a provider that is never available.
func NewRemoteProvider(name, baseURL string, httpClient *http.Client, logger *slog.Logger) Provider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &remoteProvider{
		name: name,
		signer: &remoteSigner{
			baseURL:    baseURL,
			httpClient: httpClient,
			logger:     logger,
		},
	}
}

func (p *remoteProvider) Name() string    { return p.name }
func (p *remoteProvider) Available() bool { return p.signer.baseURL != "" }
func (p *remoteProvider) Signer() Signer  { return p.signer }

type remoteSigner struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func (s *remoteSigner) Connect(ctx context.Context) (solana.PublicKey, error) {
	var out struct {
		Address string `json:"address"`
	}
	if err := s.post(ctx, "/connect", nil, &out); err != nil {
		return solana.PublicKey{}, err
	}
	owner, err := solana.PublicKeyFromBase58(out.Address)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("wallet returned invalid address %q: %w", out.Address, err)
	}
	return owner, nil
}

func (s *remoteSigner) Disconnect(ctx context.Context) error {
	return s.post(ctx, "/disconnect", nil, nil)
}

func (s *remoteSigner) SignTransaction(ctx context.Context, tx *solana.Transaction) ([]byte, error) {
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction message: %w", err)
	}
	in := map[string]string{"message": base64.StdEncoding.EncodeToString(msg)}
	var out struct {
		SignedTransaction string `json:"signed_transaction"`
	}
	if err := s.post(ctx, "/sign", in, &out); err != nil {
		return nil, err
	}
	signed, err := base64.StdEncoding.DecodeString(out.SignedTransaction)
	if err != nil {
		return nil, fmt.Errorf("wallet returned invalid signed transaction: %w", err)
	}
	return signed, nil
}

func (s *remoteSigner) post(ctx context.Context, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wallet request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return ErrUserRejected
	case resp.StatusCode >= 400:
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("wallet request failed with status %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode wallet response: %w", err)
		}
	}
	return nil
}

// --- local keypair signer (generic fallback) ---

// keypairProvider signs with a local keypair file in the standard
// solana-keygen JSON format. Available when the file exists.
type keypairProvider struct {
	signer *keypairSigner
}

// NewKeypairProvider creates a provider backed by a local keypair file.
func NewKeypairProvider(path string, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &keypairProvider{
		signer: &keypairSigner{path: path, logger: logger},
	}
}

func (p *keypairProvider) Name() string { return "keypair" }

func (p *keypairProvider) Available() bool {
	if p.signer.path == "" {
		return false
	}
	_, err := os.Stat(p.signer.path)
	return err == nil
}

func (p *keypairProvider) Signer() Signer { return p.signer }

type keypairSigner struct {
	path   string
	key    solana.PrivateKey
	logger *slog.Logger
}

func (s *keypairSigner) Connect(ctx context.Context) (solana.PublicKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(s.path)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to load keypair %q: %w", s.path, err)
	}
	s.key = key
	s.logger.Debug("loaded local keypair", "pubkey", key.PublicKey().String())
	return key.PublicKey(), nil
}

func (s *keypairSigner) Disconnect(ctx context.Context) error {
	s.key = nil
	return nil
}

func (s *keypairSigner) SignTransaction(ctx context.Context, tx *solana.Transaction) ([]byte, error) {
	if s.key == nil {
		return nil, ErrNotConnected
	}
	owner := s.key.PublicKey()
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(owner) {
			return &s.key
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return tx.MarshalBinary()
}
