package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/brojonat/solsend/service/backend"
	"github.com/brojonat/solsend/service/config"
	"github.com/brojonat/solsend/service/metrics"
	events "github.com/brojonat/solsend/service/nats"
	"github.com/brojonat/solsend/service/session"
	chain "github.com/brojonat/solsend/service/solana"
	"github.com/brojonat/solsend/service/store"
	"github.com/gagliardetto/solana-go"
	"github.com/itchyny/gojq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

// newLogger builds the CLI logger writing JSON to stderr so stdout stays
// clean for command output.
func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// loadConfig merges environment configuration with command-line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if v := c.String("rpc-url"); v != "" {
		os.Setenv("SOLANA_RPC_URL", v)
	}
	if v := c.String("mint"); v != "" {
		os.Setenv("TOKEN_MINT_ADDRESS", v)
	}
	if c.IsSet("decimals") {
		os.Setenv("TOKEN_DECIMALS", fmt.Sprintf("%d", c.Int("decimals")))
	}
	if v := c.String("backend-url"); v != "" {
		os.Setenv("BACKEND_URL", v)
	}
	return config.Load()
}

// sessionDeps bundles everything a session command needs, plus a cleanup
// function closing the local store and publisher.
type sessionDeps struct {
	cfg     *config.Config
	session *session.Session
	logger  *slog.Logger
	cleanup func()
}

// buildSession wires a Session from configuration: chain client, signer
// providers in precedence order, backend client, local store, and the
// optional NATS publisher and metrics listener.
func buildSession(c *cli.Context) (*sessionDeps, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	logger := newLogger(c.String("log-level"))

	var m *metrics.Metrics
	if addr := c.String("metrics-addr"); addr != "" {
		m = metrics.NewMetrics(nil)
		go serveMetrics(addr, logger)
	}

	mint, err := solana.PublicKeyFromBase58(cfg.TokenMintAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid token mint address %q: %w", cfg.TokenMintAddress, err)
	}
	token := chain.DefaultTokenConfig(mint, uint8(cfg.TokenDecimals))
	token.FundRecipient = cfg.FundRecipient

	chainClient := chain.NewClient(chain.NewRPCClient(cfg.SolanaRPCURL), token, cfg.SolanaRPCURL, m, logger)

	providers := []session.Provider{
		session.NewRemoteProvider("phantom", cfg.PhantomSignerURL, nil, logger),
		session.NewRemoteProvider("solflare", cfg.SolflareSignerURL, nil, logger),
		session.NewKeypairProvider(cfg.KeypairPath, logger),
	}

	backendClient := backend.NewClient(cfg.BackendURL, cfg.SessionToken, nil, m, logger)

	localStore, err := store.Open(cfg.StorePath, m, logger)
	if err != nil {
		return nil, err
	}

	var publisher events.Publisher
	if cfg.NATSURL != "" {
		p, err := events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			localStore.Close()
			return nil, err
		}
		publisher = p
	}

	sess := session.New(chainClient, providers, backendClient, localStore, publisher, m, logger).
		WithConfirmation(cfg.ConfirmTimeout, cfg.ConfirmPollInterval)

	cleanup := func() {
		if publisher != nil {
			publisher.Close()
		}
		localStore.Close()
	}

	return &sessionDeps{cfg: cfg, session: sess, logger: logger, cleanup: cleanup}, nil
}

// serveMetrics exposes the Prometheus registry on addr for long-running
// commands like transfer and await.
func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics listener failed", "error", err)
	}
}

// printOutput renders v to stdout. With --json (or a --filter expression)
// the value is marshaled to JSON; the optional filter is a jq expression
// applied to the marshaled value.
func printOutput(c *cli.Context, v any) error {
	filter := c.String("filter")
	if !c.Bool("json") && filter == "" {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	if filter == "" {
		fmt.Println(string(data))
		return nil
	}

	lines, err := filterJSON(data, filter)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

// filterJSON applies a jq expression to a JSON document and returns one
// rendered line per filter result.
func filterJSON(data []byte, filter string) ([]string, error) {
	query, err := gojq.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jq filter %q: %w", filter, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq filter %q: %w", filter, err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal output for filtering: %w", err)
	}

	var lines []string
	iter := code.Run(doc)
	for {
		out, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := out.(error); isErr {
			return nil, fmt.Errorf("jq filter error: %w", err)
		}
		rendered, err := json.Marshal(out)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal filtered output: %w", err)
		}
		lines = append(lines, string(rendered))
	}
	return lines, nil
}
