// Package secp wraps the secp256k1 operations PairingPrimitives needs:
// scalar/point arithmetic and address derivation. Viewtag computation
// lives in internal/bn254.
package secp

import (
	"encoding/hex"
	"errors"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/sha3"
)

// N is the secp256k1 scalar field order.
var N = func() *big.Int {
	n, ok := new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)
	if !ok {
		panic("secp: bad group order constant")
	}
	return n
}()

// Scalar is an element of the secp256k1 scalar field, big-endian. FromBytes,
// FromHex and ReduceToScalar only return non-zero values; arithmetic and
// ScalarFromUint64(0) can yield zero.
type Scalar struct {
	inner secp256k1.ModNScalar
}

// Point is a secp256k1 public point.
type Point struct {
	inner secp256k1.JacobianPoint
}

// SerializationError wraps hex/point decode failures.
type SerializationError struct {
	Op  string
	Err error
}

func (e *SerializationError) Error() string { return "secp: " + e.Op + ": " + e.Err.Error() }
func (e *SerializationError) Unwrap() error { return e.Err }

// FromBytes decodes a 32-byte big-endian non-zero scalar.
func FromBytes(b []byte) (*Scalar, error) {
	if len(b) != 32 {
		return nil, &SerializationError{Op: "scalar", Err: errors.New("want 32 bytes")}
	}
	var s secp256k1.ModNScalar
	overflow := s.SetByteSlice(b)
	if overflow {
		return nil, &SerializationError{Op: "scalar", Err: errors.New("out of range")}
	}
	if s.IsZero() {
		return nil, &SerializationError{Op: "scalar", Err: errors.New("zero scalar")}
	}
	return &Scalar{inner: s}, nil
}

// Bytes returns the 32-byte big-endian encoding.
func (s *Scalar) Bytes() [32]byte { return s.inner.Bytes() }

// PrivateKey returns s as a *secp256k1.PrivateKey, usable directly with
// the ecdsa package for signing.
func (s *Scalar) PrivateKey() *secp256k1.PrivateKey {
	b := s.inner.Bytes()
	return secp256k1.PrivKeyFromBytes(b[:])
}

// Hex hex-encodes the scalar.
func (s *Scalar) Hex() string {
	b := s.inner.Bytes()
	return hex.EncodeToString(b[:])
}

// FromHex decodes a hex-encoded scalar.
func FromHex(x string) (*Scalar, error) {
	b, err := hex.DecodeString(x)
	if err != nil {
		return nil, &SerializationError{Op: "scalar-hex", Err: err}
	}
	return FromBytes(b)
}

// Mul multiplies two scalars mod N.
func (s *Scalar) Mul(other *Scalar) *Scalar {
	var out secp256k1.ModNScalar
	out.Mul2(&s.inner, &other.inner)
	return &Scalar{inner: out}
}

// IsZero reports whether the scalar is zero.
func (s *Scalar) IsZero() bool { return s.inner.IsZero() }

// Equal reports whether two scalars are equal.
func (s *Scalar) Equal(other *Scalar) bool { return s.inner.Equals(&other.inner) }

// Add adds two scalars mod N.
func (s *Scalar) Add(other *Scalar) *Scalar {
	var out secp256k1.ModNScalar
	out.Add2(&s.inner, &other.inner)
	return &Scalar{inner: out}
}

// Sub subtracts other from s mod N.
func (s *Scalar) Sub(other *Scalar) *Scalar {
	neg := other.Negate()
	return s.Add(neg)
}

// Negate returns -s mod N.
func (s *Scalar) Negate() *Scalar {
	out := s.inner
	out.Negate()
	return &Scalar{inner: out}
}

// Inverse returns s^-1 mod N. s must be non-zero.
func (s *Scalar) Inverse() *Scalar {
	out := s.inner
	out.InverseNonConst()
	return &Scalar{inner: out}
}

// ScalarFromUint64 constructs a scalar from an integer (zero for x == 0),
// primarily used to build Shamir evaluation points (party index + 1).
func ScalarFromUint64(x uint64) *Scalar {
	var s secp256k1.ModNScalar
	s.SetInt(uint32(x))
	if x > uint64(^uint32(0)) {
		// Evaluation points never exceed the party count in practice; this
		// path only guards against misuse.
		var big [32]byte
		for i := 0; i < 8; i++ {
			big[31-i] = byte(x >> (8 * i))
		}
		s.SetByteSlice(big[:])
	}
	return &Scalar{inner: s}
}

// PubFromSecret computes P = sk*G.
func PubFromSecret(sk *Scalar) *Point {
	var p secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&sk.inner, &p)
	p.ToAffine()
	return &Point{inner: p}
}

// MulPubKey computes s*P.
func MulPubKey(p *Point, s *Scalar) *Point {
	var out secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&s.inner, &p.inner, &out)
	out.ToAffine()
	return &Point{inner: out}
}

// Add adds two points.
func Add(a, b *Point) *Point {
	var out secp256k1.JacobianPoint
	secp256k1.AddNonConst(&a.inner, &b.inner, &out)
	out.ToAffine()
	return &Point{inner: out}
}

// XBytes returns the point's affine x-coordinate as 32 big-endian bytes.
func (p *Point) XBytes() [32]byte { return p.inner.X.Bytes() }

// Compressed returns the 33-byte compressed encoding.
func (p *Point) Compressed() []byte {
	pub := secp256k1.NewPublicKey(&p.inner.X, &p.inner.Y)
	return pub.SerializeCompressed()
}

// Uncompressed returns the 65-byte uncompressed encoding (0x04 prefix).
func (p *Point) Uncompressed() []byte {
	pub := secp256k1.NewPublicKey(&p.inner.X, &p.inner.Y)
	return pub.SerializeUncompressed()
}

// Hex hex-encodes the compressed point.
func (p *Point) Hex() string { return hex.EncodeToString(p.Compressed()) }

// PointFromHex decodes a compressed secp256k1 public key.
func PointFromHex(x string) (*Point, error) {
	b, err := hex.DecodeString(x)
	if err != nil {
		return nil, &SerializationError{Op: "point-hex", Err: err}
	}
	return PointFromCompressed(b)
}

// PointFromCompressed decodes a 33-byte compressed secp256k1 public key.
func PointFromCompressed(b []byte) (*Point, error) {
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, &SerializationError{Op: "point-parse", Err: err}
	}
	var j secp256k1.JacobianPoint
	pub.AsJacobian(&j)
	return &Point{inner: j}, nil
}

// ReduceToScalar reduces a 256-bit big-endian integer mod N, as the rebase
// splice requires before combining it with a share. Returns an error if
// the reduction yields zero.
func ReduceToScalar(b [32]byte) (*Scalar, error) {
	var s secp256k1.ModNScalar
	s.SetByteSlice(b[:]) // SetByteSlice already reduces mod N when overflowing
	if s.IsZero() {
		return nil, ErrZeroScalar
	}
	return &Scalar{inner: s}, nil
}

// ErrZeroScalar is returned when a pairing-derived scalar reduces to zero.
var ErrZeroScalar = errors.New("secp: reduction produced zero scalar")

// Address derives the 20-byte Ethereum-style stealth address from a
// secp256k1 public key: Keccak256(uncompressed[1:])[12:32].
func Address(p *Point) [20]byte {
	u := p.Uncompressed()
	h := sha3.NewLegacyKeccak256()
	h.Write(u[1:])
	sum := h.Sum(nil)
	var addr [20]byte
	copy(addr[:], sum[12:32])
	return addr
}
