package bn254_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/stealthmpc/internal/bn254"
)

// TestPairingAgreement checks e(r*V, G2) == e(v*R, G2) for R = r*G1, V = v*G1
//.
func TestPairingAgreement(t *testing.T) {
	r, R, err := bn254.NewEphemeral()
	require.NoError(t, err)
	v, V, err := bn254.NewEphemeral()
	require.NoError(t, err)

	rV := bn254.MulPoint(V, r)
	vR := bn254.MulPoint(R, v)

	ss1, err := bn254.Pairing(rV, bn254.G2Generator())
	require.NoError(t, err)
	ss2, err := bn254.Pairing(vR, bn254.G2Generator())
	require.NoError(t, err)

	require.Equal(t, bn254.FirstCoordinate(ss1), bn254.FirstCoordinate(ss2))
}

// TestViewtagAgreement checks that, for v=7 and r=11, the sender's
// viewtag(r*V) equals the recipient's viewtag(v*R) for both versions.
func TestViewtagAgreement(t *testing.T) {
	for _, version := range []int{0, 1} {
		r := scalarFromUint64(t, 11)
		v := scalarFromUint64(t, 7)

		R := bn254.MulPoint(bn254.G1Generator(), r)
		V := bn254.MulPoint(bn254.G1Generator(), v)

		rV := bn254.MulPoint(V, r)
		vR := bn254.MulPoint(R, v)

		tagSender, err := bn254.Viewtag(rV, version)
		require.NoError(t, err)
		tagRecipient, err := bn254.Viewtag(vR, version)
		require.NoError(t, err)

		require.Equal(t, tagSender, tagRecipient)
	}
}

func TestViewtagInvalidVersion(t *testing.T) {
	_, G, err := bn254.NewEphemeral()
	require.NoError(t, err)
	_, err = bn254.Viewtag(G, 2)
	require.ErrorIs(t, err, bn254.ErrInvalidViewtagVersion)
}

func TestFirstCoordinateDeterministic(t *testing.T) {
	r := scalarFromUint64(t, 11)
	v := scalarFromUint64(t, 7)
	V := bn254.MulPoint(bn254.G1Generator(), v)
	rV := bn254.MulPoint(V, r)

	ss, err := bn254.Pairing(rV, bn254.G2Generator())
	require.NoError(t, err)
	b1 := bn254.FirstCoordinate(ss)

	ss2, err := bn254.Pairing(rV, bn254.G2Generator())
	require.NoError(t, err)
	b2 := bn254.FirstCoordinate(ss2)

	require.Equal(t, b1, b2)
}

func scalarFromUint64(t *testing.T, x uint64) *bn254.Scalar {
	t.Helper()
	var be [32]byte
	for i := 0; i < 8; i++ {
		be[31-i] = byte(x >> (8 * i))
	}
	s, err := bn254.ScalarFromHex(hex.EncodeToString(be[:]))
	require.NoError(t, err)
	return s
}
