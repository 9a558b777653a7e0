// Package stealth implements StealthDerivation: sender-side
// stealth address computation and recipient-side scanning, built on the
// BN254 pairing in internal/bn254 and the secp256k1 spending key in
// internal/secp.
//
// Grounded on original_source/src/off_chain/{sender,recipient,common}.rs.
package stealth

import (
	"errors"
	"fmt"

	"github.com/luxfi/stealthmpc/internal/bn254"
	"github.com/luxfi/stealthmpc/internal/secp"
)

// Error wraps the category of stealth-derivation failures: viewtag
// mismatch, zero/non-invertible b, or an unsupported viewtag version.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "stealth: " + e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// ErrViewtagMismatch means the recipient is not the intended receiver of an
// entry.
var ErrViewtagMismatch = errors.New("viewtag does not match")

// computeB derives the rebase scalar b from a shared BN254 point:
// b = firstCoordinate(e(sharedPoint, G2)).
func computeB(sharedPoint *bn254.G1) (*secp.Scalar, error) {
	ss, err := bn254.Pairing(sharedPoint, bn254.G2Generator())
	if err != nil {
		return nil, &Error{Op: "pairing", Err: err}
	}
	raw := bn254.FirstCoordinate(ss)
	b, err := secp.ReduceToScalar(raw)
	if err != nil {
		return nil, &Error{Op: "reduce-scalar", Err: fmt.Errorf("b reduced to zero: %w", err)}
	}
	return b, nil
}

// StealthAddress computes Keccak256(uncompressed(K)[1:])[12:32] for a
// secp256k1 public key.
func StealthAddress(k *secp.Point) [20]byte {
	return secp.Address(k)
}
