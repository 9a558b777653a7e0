package keyshare

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/luxfi/stealthmpc/internal/party"
	"github.com/luxfi/stealthmpc/internal/secp"
)

// wireShare is the canonical-binary DTO for IncompleteKeyShare.
type wireShare struct {
	Self            uint16
	X               [32]byte
	PublicShares    map[uint16][]byte
	SharedPublicKey []byte
}

// MarshalBinary implements the canonical binary encoding for
// IncompleteKeyShare.
func (k *IncompleteKeyShare) MarshalBinary() ([]byte, error) {
	w := wireShare{
		Self:            uint16(k.Self),
		X:               k.X.Bytes(),
		PublicShares:    make(map[uint16][]byte, len(k.PublicShares)),
		SharedPublicKey: k.SharedPublicKey.Compressed(),
	}
	for id, p := range k.PublicShares {
		w.PublicShares[uint16(id)] = p.Compressed()
	}
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("keyshare: marshal: %w", err)
	}
	b, err := em.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("keyshare: marshal: %w", err)
	}
	return b, nil
}

// UnmarshalIncompleteKeyShare decodes the canonical binary encoding
// produced by MarshalBinary.
func UnmarshalIncompleteKeyShare(data []byte) (*IncompleteKeyShare, error) {
	var w wireShare
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("keyshare: unmarshal: %w", err)
	}
	x, err := secp.FromBytes(w.X[:])
	if err != nil {
		return nil, fmt.Errorf("keyshare: unmarshal x: %w", err)
	}
	sharedPub, err := secp.PointFromCompressed(w.SharedPublicKey)
	if err != nil {
		return nil, fmt.Errorf("keyshare: unmarshal shared public key: %w", err)
	}
	publicShares := make(map[party.ID]*secp.Point, len(w.PublicShares))
	for id, b := range w.PublicShares {
		p, err := secp.PointFromCompressed(b)
		if err != nil {
			return nil, fmt.Errorf("keyshare: unmarshal public share %d: %w", id, err)
		}
		publicShares[party.ID(id)] = p
	}
	return &IncompleteKeyShare{
		Self:            party.ID(w.Self),
		X:               x,
		PublicShares:    publicShares,
		SharedPublicKey: sharedPub,
	}, nil
}
