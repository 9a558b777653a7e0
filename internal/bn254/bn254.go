// Package bn254 implements the pairing-side half of PairingPrimitives
//: ephemeral keypairs, scalar multiplication, the bilinear
// pairing, the firstCoordinate projection that defines the rebase scalar
// b, and viewtag hashing.
//
// Grounded on original_source/src/off_chain/{common,utils}.rs, translated
// from ark-bn254's Fq12 = ((Fq2)^2)^3 tower onto gnark-crypto's equivalent
// E12{C0,C1 E6}, E6{B0,B1,B2 E2}, E2{A0,A1 fp.Element} representation: the
// ark-bn254 "c0.c0.c0" coordinate is gnark-crypto's GT.C0.B0.A0.
package bn254

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Scalar is an element of the BN254 scalar field Fr.
type Scalar struct{ inner fr.Element }

// G1 is a point on BN254's G1.
type G1 struct{ inner bn254.G1Affine }

// G2 is a point on BN254's G2.
type G2 struct{ inner bn254.G2Affine }

// GT is the pairing target group element (Fq12).
type GT struct{ inner bn254.GT }

// U256 is a canonical big-endian 256-bit integer.
type U256 [32]byte

var g1Gen, g2Gen = func() (bn254.G1Affine, bn254.G2Affine) {
	_, _, g1, g2 := bn254.Generators()
	return g1, g2
}()

// G2Generator returns BN254's G2 generator.
func G2Generator() *G2 { return &G2{inner: g2Gen} }

// G1Generator returns BN254's G1 generator.
func G1Generator() *G1 { return &G1{inner: g1Gen} }

// NewEphemeral samples a uniform r in Fr and returns (r, R = r*G1), matching
// utils.rs's generate_bn254_key_pair.
func NewEphemeral() (*Scalar, *G1, error) {
	var s fr.Element
	if _, err := s.SetRandom(); err != nil {
		return nil, nil, fmt.Errorf("bn254: sample ephemeral scalar: %w", err)
	}
	r := &Scalar{inner: s}
	return r, MulPoint(G1Generator(), r), nil
}

// MulPoint computes s*P for an arbitrary G1 point.
func MulPoint(p *G1, s *Scalar) *G1 {
	var bi big.Int
	s.inner.BigInt(&bi)
	var j bn254.G1Jac
	j.FromAffine(&p.inner)
	j.ScalarMultiplication(&j, &bi)
	var out bn254.G1Affine
	out.FromJacobian(&j)
	return &G1{inner: out}
}

// Pairing computes e(P, Q).
func Pairing(p *G1, q *G2) (*GT, error) {
	res, err := bn254.Pair([]bn254.G1Affine{p.inner}, []bn254.G2Affine{q.inner})
	if err != nil {
		return nil, fmt.Errorf("bn254: pairing: %w", err)
	}
	return &GT{inner: res}, nil
}

// FirstCoordinate extracts the c0.c0.c0 base-field tower coordinate of an
// Fq12 element as a canonical big-endian 256-bit integer. This projection
// must be bit-exact with any other implementation deriving the same b
//.
func FirstCoordinate(t *GT) U256 {
	b := t.inner.C0.B0.A0.Bytes()
	var u U256
	copy(u[:], b[:])
	return u
}

// Viewtag computes the 1-byte view tag for a G1 point, version 0 or 1
//. Any other version is a hard error.
func Viewtag(p *G1, version int) (byte, error) {
	switch version {
	case 0:
		b := p.inner.X.Bytes()
		return b[0], nil
	case 1:
		c := p.inner.Bytes()
		h := sha256.Sum256(c[:])
		return h[0], nil
	default:
		return 0, ErrInvalidViewtagVersion
	}
}

// Compressed returns the compressed serialization of a G1 point.
func (p *G1) Compressed() []byte {
	b := p.inner.Bytes()
	return b[:]
}

// Hex hex-encodes the compressed point.
func (p *G1) Hex() string { return hex.EncodeToString(p.Compressed()) }

// G1FromHex decodes a compressed hex-encoded G1 point.
func G1FromHex(x string) (*G1, error) {
	b, err := hex.DecodeString(x)
	if err != nil {
		return nil, fmt.Errorf("bn254: decode G1 hex: %w", err)
	}
	var aff bn254.G1Affine
	if _, err := aff.SetBytes(b); err != nil {
		return nil, fmt.Errorf("bn254: decode G1 point: %w", err)
	}
	return &G1{inner: aff}, nil
}

// Bytes returns the 32-byte big-endian encoding of the scalar.
func (s *Scalar) Bytes() [32]byte { return s.inner.Bytes() }

// Hex hex-encodes the scalar.
func (s *Scalar) Hex() string {
	b := s.inner.Bytes()
	return hex.EncodeToString(b[:])
}

// ScalarFromHex decodes a big-endian hex-encoded Fr element, reducing mod
// the BN254 scalar order as utils.rs's deserialize_field_element does.
func ScalarFromHex(x string) (*Scalar, error) {
	b, err := hex.DecodeString(x)
	if err != nil {
		return nil, fmt.Errorf("bn254: decode scalar hex: %w", err)
	}
	var s fr.Element
	s.SetBytes(b)
	return &Scalar{inner: s}, nil
}

// ErrInvalidViewtagVersion is returned by Viewtag for unsupported versions.
var ErrInvalidViewtagVersion = errors.New("bn254: viewtag version must be 0 or 1")
