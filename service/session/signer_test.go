package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover_PrecedenceOrder(t *testing.T) {
	first := &mockProvider{name: "phantom", available: false}
	second := &mockProvider{name: "solflare", available: true}
	third := &mockProvider{name: "keypair", available: true}

	p, err := Discover([]Provider{first, second, third})
	require.NoError(t, err)
	assert.Equal(t, "solflare", p.Name())
}

func TestDiscover_NoneAvailable(t *testing.T) {
	_, err := Discover([]Provider{
		&mockProvider{name: "phantom", available: false},
		&mockProvider{name: "keypair", available: false},
	})
	assert.ErrorIs(t, err, ErrNoWalletAvailable)
}

func TestRemoteProvider_AvailabilityAndConnect(t *testing.T) {
	unavailable := NewRemoteProvider("phantom", "", nil, testLogger())
	assert.False(t, unavailable.Available())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/connect":
			json.NewEncoder(w).Encode(map[string]string{"address": testOwner.String()})
		case "/disconnect":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	p := NewRemoteProvider("phantom", server.URL, nil, testLogger())
	require.True(t, p.Available())

	owner, err := p.Signer().Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testOwner, owner)
	assert.NoError(t, p.Signer().Disconnect(context.Background()))
}

func TestRemoteProvider_RejectionMapsToUserRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	p := NewRemoteProvider("phantom", server.URL, nil, testLogger())
	_, err := p.Signer().Connect(context.Background())
	assert.ErrorIs(t, err, ErrUserRejected)
}

func TestKeypairProvider(t *testing.T) {
	missing := NewKeypairProvider(filepath.Join(t.TempDir(), "nope.json"), testLogger())
	assert.False(t, missing.Available())

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	// solana-keygen files are JSON arrays of byte values.
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	raw, err := json.Marshal(ints)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	p := NewKeypairProvider(path, testLogger())
	require.True(t, p.Available())

	signer := p.Signer()
	owner, err := signer.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), owner)
}
