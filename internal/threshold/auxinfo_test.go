package threshold_test

import (
	"context"
	"crypto/rand"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/stealthmpc/internal/keyshare"
	"github.com/luxfi/stealthmpc/internal/party"
	"github.com/luxfi/stealthmpc/internal/threshold"
)

func smallPrime(t *testing.T, bits int) *big.Int {
	t.Helper()
	p, err := rand.Prime(rand.Reader, bits)
	require.NoError(t, err)
	return p
}

func TestAuxInfoGenAggregatesAllParties(t *testing.T) {
	parties := party.Range(3)
	h := newHub(parties)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		id  party.ID
		aux *keyshare.AuxInfo
		err error
	}
	results := make(chan result, len(parties))

	for _, p := range parties {
		go func(self party.ID) {
			cfg := threshold.Config{ExecID: []byte("test-aux"), Self: self, Parties: parties}
			primes := threshold.Primes{P: smallPrime(t, 64), Q: smallPrime(t, 64)}
			aux, err := threshold.AuxInfoGen(ctx, cfg, h.transport(self, parties), primes)
			results <- result{id: self, aux: aux, err: err}
		}(p)
	}

	for range parties {
		r := <-results
		require.NoError(t, r.err)
		require.Len(t, r.aux.Modulus, len(parties))
		require.Len(t, r.aux.PedersenBase, len(parties))
		require.Len(t, r.aux.PedersenBaseExp, len(parties))
		for _, p := range parties {
			require.NotEmpty(t, r.aux.Modulus[p])
		}
	}
}
