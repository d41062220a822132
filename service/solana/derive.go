package solana

import (
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
)

// pdaMarker is the domain-separation tag appended to every program-derived
// address hash, per the Solana runtime's derivation scheme.
const pdaMarker = "ProgramDerivedAddress"

// DeriveTokenAccountAddress computes the associated token account address
// for owner under the given token and associated-token programs.
//
// The seed sequence is [owner, tokenProgram, mint]. A trailing bump byte is
// appended starting from 255 and counting down; each candidate is
// sha256(seeds || bump || associatedProgram || "ProgramDerivedAddress"),
// and the first candidate that does not decode to a point on the ed25519
// curve is the result. Off-curve is required: it makes the address
// non-spendable as a raw key. The search is pure and deterministic.
func DeriveTokenAccountAddress(
	owner solana.PublicKey,
	mint solana.PublicKey,
	tokenProgram solana.PublicKey,
	associatedProgram solana.PublicKey,
) (solana.PublicKey, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		h.Write(owner[:])
		h.Write(tokenProgram[:])
		h.Write(mint[:])
		h.Write([]byte{byte(bump)})
		h.Write(associatedProgram[:])
		h.Write([]byte(pdaMarker))

		candidate := solana.PublicKeyFromBytes(h.Sum(nil))
		if !candidate.IsOnCurve() {
			return candidate, uint8(bump), nil
		}
	}
	return solana.PublicKey{}, 0, ErrDerivationExhausted
}
