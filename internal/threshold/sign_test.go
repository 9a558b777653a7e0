package threshold_test

import (
	"context"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/stealthmpc/internal/keyshare"
	"github.com/luxfi/stealthmpc/internal/party"
	"github.com/luxfi/stealthmpc/internal/threshold"
)

// TestThreePartyEndToEndSign covers the n=3, t=2 end-to-end scenario:
// every party finishes Sign with a signature that verifies against the
// shared public key from keygen.
func TestThreePartyEndToEndSign(t *testing.T) {
	parties := party.Range(3)
	kgHub := newHub(parties)

	type kgResult struct {
		id    party.ID
		share *keyshare.IncompleteKeyShare
		err   error
	}
	kgResults := make(chan kgResult, len(parties))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, p := range parties {
		go func(self party.ID) {
			cfg := threshold.Config{ExecID: []byte("test-sign-keygen"), Self: self, Parties: parties, Threshold: 2}
			share, err := threshold.Keygen(ctx, cfg, kgHub.transport(self, parties))
			kgResults <- kgResult{id: self, share: share, err: err}
		}(p)
	}

	shares := make(map[party.ID]*keyshare.IncompleteKeyShare, len(parties))
	for range parties {
		r := <-kgResults
		require.NoError(t, r.err)
		shares[r.id] = r.share
	}

	digest := sha256.Sum256([]byte("hello world"))
	signHub := newHub(parties)

	type sigResult struct {
		id  party.ID
		sig *threshold.Signature
		err error
	}
	sigResults := make(chan sigResult, len(parties))

	for _, p := range parties {
		go func(self party.ID) {
			cfg := threshold.Config{ExecID: []byte("test-sign"), Self: self, Parties: parties, Threshold: 2}
			ks := keyshare.KeyShare{Incomplete: *shares[self]}
			sig, err := threshold.Sign(ctx, cfg, signHub.transport(self, parties), ks, digest)
			sigResults <- sigResult{id: self, sig: sig, err: err}
		}(p)
	}

	pub := shares[parties[0]].SharedPublicKey
	for range parties {
		r := <-sigResults
		require.NoError(t, r.err)
		require.True(t, r.sig.Verify(digest, pub), "signature from party %d failed to verify", r.id)
	}
}
