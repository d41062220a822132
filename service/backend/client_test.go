package backend

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetBalance(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Session-Token")
		assert.Equal(t, "/api/v1/balance/Abc123", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"balance":           uint64(250000),
			"formatted_balance": "25.00",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "session-token", nil, nil, testLogger())
	balance, err := client.GetBalance(context.Background(), "Abc123")
	require.NoError(t, err)

	assert.Equal(t, uint64(250000), balance.Balance)
	assert.Equal(t, "25.00", balance.Formatted)
	assert.Equal(t, "session-token", gotToken, "anti-forgery token must be attached")
}

func TestGetBalance_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "session expired"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "stale", nil, nil, testLogger())
	_, err := client.GetBalance(context.Background(), "Abc123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session expired")
}

func TestRecordTransfer(t *testing.T) {
	var got TransferRecord
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/transfers", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	record := TransferRecord{
		From:      "Abc123",
		To:        "Xyz789",
		Amount:    200,
		Signature: "sig123",
		Mint:      "Mint111",
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}

	client := NewClient(server.URL, "tok", nil, nil, testLogger())
	require.NoError(t, client.RecordTransfer(context.Background(), record))
	assert.Equal(t, record, got)
}

func TestDisconnectNotify(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, "/api/v1/session/disconnect", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", nil, nil, testLogger())
	require.NoError(t, client.DisconnectNotify(context.Background()))
	assert.True(t, called)
}

func TestParseErrorResponse_NonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", nil, nil, testLogger())
	_, err := client.GetBalance(context.Background(), "Abc123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream exploded")
}
