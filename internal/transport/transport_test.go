package transport_test

import (
	"context"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/stealthmpc/internal/party"
	"github.com/luxfi/stealthmpc/internal/transport"
)

func TestPeerTableBijective(t *testing.T) {
	p0 := peer.ID("peer-zero")
	p1 := peer.ID("peer-one")
	table := transport.NewPeerTable([]peer.ID{p0, p1})

	id, ok := table.Party(p0)
	require.True(t, ok)
	require.Equal(t, party.ID(0), id)

	p, ok := table.Peer(party.ID(1))
	require.True(t, ok)
	require.Equal(t, p1, p)

	_, ok = table.Party("unknown-peer")
	require.False(t, ok)
}

func TestAwaitQuorumNoOpForSingleParty(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	table := transport.NewPeerTable([]peer.ID{"solo"})
	bus, err := transport.NewBus(ctx, party.ID(0), "/ip4/127.0.0.1/tcp/0", table, nil)
	require.NoError(t, err)
	defer bus.Close()

	require.NoError(t, bus.AwaitQuorum(ctx))
}
