package stealth

import (
	"fmt"

	"github.com/luxfi/stealthmpc/internal/bn254"
	"github.com/luxfi/stealthmpc/internal/secp"
)

// Entry is one candidate (ephemeral public key, viewtag) pair published by a
// sender, as scanned by a recipient.
type Entry struct {
	EphemeralPK *bn254.G1
	Viewtag     byte
}

// ScanResult is a recovered stealth keypair for an entry the recipient owns.
type ScanResult struct {
	StealthAddress [20]byte
	StealthSK      *secp.Scalar
}

// Scan recovers stealth keys for every entry whose viewtag matches, given
// the recipient's BN254 viewing secret and secp256k1 spending secret. This
// is the no-MPC recipient path, matching
// recipient.rs's scan().
func Scan(entries []Entry, viewingSK *bn254.Scalar, spendingSK *secp.Scalar, version int) ([]ScanResult, error) {
	results := make([]ScanResult, 0, len(entries))
	for i, e := range entries {
		vR := bn254.MulPoint(e.EphemeralPK, viewingSK)

		computed, err := bn254.Viewtag(vR, version)
		if err != nil {
			return nil, &Error{Op: "viewtag", Err: fmt.Errorf("entry %d: %w", i, err)}
		}
		if computed != e.Viewtag {
			continue
		}

		b, err := computeB(vR)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		stealthSK := b.Mul(spendingSK)
		stealthPK := secp.PubFromSecret(stealthSK)

		results = append(results, ScanResult{
			StealthAddress: StealthAddress(stealthPK),
			StealthSK:      stealthSK,
		})
	}
	return results, nil
}

// MPCRebaseScalar computes the rebase scalar b for the MPC recipient
// variant: only the viewing secret is known in plaintext,
// every MPC party computes b locally from it and hands it to ShareRebaser.
// Returns ErrViewtagMismatch if the supplied viewtag does not match.
func MPCRebaseScalar(ephemeralPK *bn254.G1, viewingSK *bn254.Scalar, expectedViewtag byte, version int) (*secp.Scalar, error) {
	vR := bn254.MulPoint(ephemeralPK, viewingSK)

	computed, err := bn254.Viewtag(vR, version)
	if err != nil {
		return nil, &Error{Op: "viewtag", Err: err}
	}
	if computed != expectedViewtag {
		return nil, &Error{Op: "viewtag", Err: ErrViewtagMismatch}
	}

	return computeB(vR)
}
