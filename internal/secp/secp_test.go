package secp_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/stealthmpc/internal/secp"
)

func randomScalar(t *testing.T) *secp.Scalar {
	t.Helper()
	for {
		var b [32]byte
		_, err := rand.Read(b[:])
		require.NoError(t, err)
		s, err := secp.FromBytes(b[:])
		if err == nil {
			return s
		}
	}
}

// TestRoundTrip checks deserialize(serialize(x)) == x for secp256k1 secrets
// and public keys.
func TestRoundTrip(t *testing.T) {
	sk := randomScalar(t)
	decoded, err := secp.FromHex(sk.Hex())
	require.NoError(t, err)
	require.Equal(t, sk.Bytes(), decoded.Bytes())

	pk := secp.PubFromSecret(sk)
	decodedPk, err := secp.PointFromHex(pk.Hex())
	require.NoError(t, err)
	require.Equal(t, pk.Compressed(), decodedPk.Compressed())
}

func TestAddressDeterministic(t *testing.T) {
	sk := randomScalar(t)
	pk := secp.PubFromSecret(sk)
	a1 := secp.Address(pk)
	a2 := secp.Address(pk)
	require.Equal(t, a1, a2)
}

func TestReduceToScalarZero(t *testing.T) {
	var zero [32]byte
	_, err := secp.ReduceToScalar(zero)
	require.ErrorIs(t, err, secp.ErrZeroScalar)
}

func TestReduceToScalarReducesModN(t *testing.T) {
	// N itself reduces to zero.
	var nBytes [32]byte
	copy(nBytes[:], secp.N.Bytes())
	_, err := secp.ReduceToScalar(nBytes)
	require.ErrorIs(t, err, secp.ErrZeroScalar)
}
