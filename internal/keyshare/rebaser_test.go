package keyshare_test

import (
	"crypto/rand"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/stealthmpc/internal/bn254"
	"github.com/luxfi/stealthmpc/internal/keyshare"
	"github.com/luxfi/stealthmpc/internal/party"
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

func fixedIncompleteShare(t *testing.T, n int) keyshare.IncompleteKeyShare {
	t.Helper()
	xs := make([]*secp.Scalar, n)
	shares := make(map[party.ID]*secp.Point, n)
	var sum *secp.Point
	for i := 0; i < n; i++ {
		xs[i] = randomScalar(t)
		p := secp.PubFromSecret(xs[i])
		shares[party.ID(i)] = p
		if sum == nil {
			sum = p
		} else {
			sum = secp.Add(sum, p)
		}
	}
	return keyshare.IncompleteKeyShare{
		Self:            0,
		X:               xs[0],
		PublicShares:    shares,
		SharedPublicKey: sum,
	}
}

// TestRebaseHomomorphism checks that for any nonzero b_s, (b_s*x_i,
// b_s*P_i, b_s*K) again satisfies the keygen invariants, and the rebased
// key equals b_s applied to the original shared public key.
func TestRebaseHomomorphism(t *testing.T) {
	incomplete := fixedIncompleteShare(t, 3)

	var b bn254.U256
	b[31] = 4

	rebased, err := keyshare.Rebase(incomplete, b, keyshare.AuxInfo{})
	require.NoError(t, err)

	require.NoError(t, rebased.Incomplete.Validate())

	four, err := secp.FromBytes(b[:])
	require.NoError(t, err)
	expectedKey := secp.MulPubKey(incomplete.SharedPublicKey, four)
	require.Equal(t, expectedKey.Compressed(), rebased.Incomplete.SharedPublicKey.Compressed())
}

func TestRebaseZeroScalarFails(t *testing.T) {
	incomplete := fixedIncompleteShare(t, 2)
	var zero bn254.U256
	_, err := keyshare.Rebase(incomplete, zero, keyshare.AuxInfo{})
	require.Error(t, err)
	var zsErr *keyshare.ZeroScalarError
	require.ErrorAs(t, err, &zsErr)
}

// TestRebasedShareSignsValidly checks that a rebased single-party "share"
// (threshold 1 for this unit test) produces a signature verifying against
// the rebased public key.
func TestRebasedShareSignsValidly(t *testing.T) {
	incomplete := fixedIncompleteShare(t, 1)

	var b bn254.U256
	b[31] = 4

	rebased, err := keyshare.Rebase(incomplete, b, keyshare.AuxInfo{})
	require.NoError(t, err)

	digest := make([]byte, 32)
	copy(digest, []byte("hello world"))

	sig := ecdsa.SignCompact(rebased.Incomplete.X.PrivateKey(), digest, false)
	require.NotEmpty(t, sig)

	pub, _, err := ecdsa.RecoverCompact(sig, digest)
	require.NoError(t, err)
	require.Equal(t, rebased.Incomplete.SharedPublicKey.Compressed(), pub.SerializeCompressed())
}
