// Package keyshare defines the key-share data model and the
// ShareRebaser splice that couples distributed keygen output
// to the pairing-derived stealth scalar b.
package keyshare

import (
	"fmt"

	"github.com/luxfi/stealthmpc/internal/party"
	"github.com/luxfi/stealthmpc/internal/secp"
)

// IncompleteKeyShare is the output of distributed keygen before auxiliary
// info is bound in. The invariant
// shared_public_key = sum(public_shares) and self's x is the pre-image of
// public_shares[self] holds for every valid instance.
type IncompleteKeyShare struct {
	Self            party.ID
	X               *secp.Scalar
	PublicShares    map[party.ID]*secp.Point
	SharedPublicKey *secp.Point
}

// Validate checks the IncompleteKeyShare invariant described above.
func (k *IncompleteKeyShare) Validate() error {
	selfShare, ok := k.PublicShares[k.Self]
	if !ok {
		return fmt.Errorf("keyshare: missing public share for self (%d)", k.Self)
	}
	if hex(secp.PubFromSecret(k.X)) != hex(selfShare) {
		return fmt.Errorf("keyshare: x is not the pre-image of public_shares[self]")
	}

	var sum *secp.Point
	for _, id := range sortedIDs(k.PublicShares) {
		p := k.PublicShares[id]
		if sum == nil {
			sum = p
			continue
		}
		sum = secp.Add(sum, p)
	}
	if hex(sum) != hex(k.SharedPublicKey) {
		return fmt.Errorf("keyshare: shared_public_key is not the sum of public_shares")
	}
	return nil
}

func hex(p *secp.Point) string {
	if p == nil {
		return ""
	}
	return p.Hex()
}

func sortedIDs(m map[party.ID]*secp.Point) party.IDSlice {
	ids := make(party.IDSlice, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return ids.Sorted()
}

// AuxInfo is CGGMP21 auxiliary material: opaque to this spec,
// required by signing. See internal/threshold for its construction.
type AuxInfo struct {
	// Modulus is a Paillier-style RSA modulus n = p*q, one per party,
	// indexed by party ID.
	Modulus map[party.ID][]byte
	// PedersenBase and PedersenBaseExp are ring-Pedersen commitment
	// parameters (s, t) per party, s = t^lambda mod n.
	PedersenBase    map[party.ID][]byte
	PedersenBaseExp map[party.ID][]byte
}

// KeyShare is a completed, validated (IncompleteKeyShare, AuxInfo) pair
//, ready for signing.
type KeyShare struct {
	Incomplete IncompleteKeyShare
	Aux        AuxInfo
}
