package solana

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveTokenAccountAddress_Deterministic(t *testing.T) {
	owner := solana.MustPublicKeyFromBase58("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")
	mint := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	addr1, bump1, err := DeriveTokenAccountAddress(owner, mint, solana.TokenProgramID, solana.SPLAssociatedTokenAccountProgramID)
	require.NoError(t, err)
	addr2, bump2, err := DeriveTokenAccountAddress(owner, mint, solana.TokenProgramID, solana.SPLAssociatedTokenAccountProgramID)
	require.NoError(t, err)

	assert.Equal(t, addr1, addr2)
	assert.Equal(t, bump1, bump2)
	assert.False(t, addr1.IsOnCurve(), "derived address must be off-curve")
}

func TestDeriveTokenAccountAddress_MatchesCanonicalDerivation(t *testing.T) {
	// The associated-token derivation must agree with the library's
	// canonical implementation for the standard program IDs.
	for i := 0; i < 16; i++ {
		ownerKey, err := solana.NewRandomPrivateKey()
		require.NoError(t, err)
		mintKey, err := solana.NewRandomPrivateKey()
		require.NoError(t, err)
		owner := ownerKey.PublicKey()
		mint := mintKey.PublicKey()

		want, wantBump, err := solana.FindAssociatedTokenAddress(owner, mint)
		require.NoError(t, err)

		got, gotBump, err := DeriveTokenAccountAddress(owner, mint, solana.TokenProgramID, solana.SPLAssociatedTokenAccountProgramID)
		require.NoError(t, err)

		assert.Equal(t, want, got, "owner=%s mint=%s", owner, mint)
		assert.Equal(t, wantBump, gotBump)
	}
}

func TestDeriveTokenAccountAddress_DistinctInputsDistinctAddresses(t *testing.T) {
	seen := make(map[solana.PublicKey]struct{})
	for i := 0; i < 32; i++ {
		ownerKey, err := solana.NewRandomPrivateKey()
		require.NoError(t, err)
		mintKey, err := solana.NewRandomPrivateKey()
		require.NoError(t, err)

		addr, _, err := DeriveTokenAccountAddress(ownerKey.PublicKey(), mintKey.PublicKey(), solana.TokenProgramID, solana.SPLAssociatedTokenAccountProgramID)
		require.NoError(t, err)

		_, collision := seen[addr]
		require.False(t, collision, "distinct (owner, mint) pairs must derive distinct addresses")
		seen[addr] = struct{}{}
	}
}
