// Package threshold implements ThresholdCore: keygen,
// aux-info-gen and signing, each driven by one (eid, party_index, n,
// [threshold], wire_adapter) over the WireAdapter.
//
// original_source/ (the Rust crate this was distilled from) treats the
// CGGMP21 engine as a black box, vendoring a third-party cggmp21 crate
// rather than implementing the protocol inline. This package plays that
// role with a from-scratch Feldman-VSS distributed keygen and
// Lagrange-aggregated threshold signing, grounded on internal/round's
// round-based vocabulary and the Lagrange machinery in
// internal/polynomial.
package threshold

import (
	"fmt"

	"github.com/luxfi/stealthmpc/internal/party"
	"github.com/luxfi/stealthmpc/internal/round"
)

// ProtocolError wraps a protocol-level failure: culprit misbehavior, an
// inconsistent commitment, or a missing contribution.
type ProtocolError struct {
	Round   round.Number
	Culprit party.ID
	Err     error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("threshold: round %d: party %d: %s", e.Round, e.Culprit, e.Err)
}
func (e *ProtocolError) Unwrap() error { return e.Err }

// Config parameterizes one subprotocol invocation: an execution id, this
// party's index, the full party set, and (for keygen/signing) the
// reconstruction threshold.
type Config struct {
	ExecID    []byte
	Self      party.ID
	Parties   party.IDSlice
	Threshold int
}
