package keyshare

import (
	"fmt"

	"github.com/luxfi/stealthmpc/internal/bn254"
	"github.com/luxfi/stealthmpc/internal/party"
	"github.com/luxfi/stealthmpc/internal/secp"
)

// ZeroScalarError is returned when the pairing-derived b reduces to zero
// mod the secp256k1 group order.
type ZeroScalarError struct{ Err error }

func (e *ZeroScalarError) Error() string { return "keyshare: rebase scalar is zero: " + e.Err.Error() }
func (e *ZeroScalarError) Unwrap() error { return e.Err }

// Rebase implements the ShareRebaser splice: given an
// incomplete key share, the pairing-derived scalar b, and aux info, it
// multiplies every private and public share by b (reduced mod the
// secp256k1 order), re-validates the result, and binds aux info to produce
// a completed KeyShare for the stealth public key.
func Rebase(incomplete IncompleteKeyShare, b bn254.U256, aux AuxInfo) (*KeyShare, error) {
	bs, err := secp.ReduceToScalar(b)
	if err != nil {
		return nil, &ZeroScalarError{Err: err}
	}
	return RebaseWithScalar(incomplete, bs, aux)
}

// RebaseWithScalar is Rebase for callers that already hold the reduced
// rebase scalar (e.g. the MPC-recipient path in internal/stealth, whose
// MPCRebaseScalar performs the bn254.U256 reduction itself).
func RebaseWithScalar(incomplete IncompleteKeyShare, bs *secp.Scalar, aux AuxInfo) (*KeyShare, error) {
	rebasedShares := make(map[party.ID]*secp.Point, len(incomplete.PublicShares))
	for id, p := range incomplete.PublicShares {
		rebasedShares[id] = secp.MulPubKey(p, bs)
	}

	out := IncompleteKeyShare{
		Self:            incomplete.Self,
		X:               incomplete.X.Mul(bs),
		PublicShares:    rebasedShares,
		SharedPublicKey: secp.MulPubKey(incomplete.SharedPublicKey, bs),
	}

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("keyshare: rebase produced invalid share: %w", err)
	}

	return &KeyShare{Incomplete: out, Aux: aux}, nil
}
