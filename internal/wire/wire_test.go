package wire_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/stealthmpc/internal/party"
	"github.com/luxfi/stealthmpc/internal/wire"
)

type fakeTransport struct {
	broadcasts [][]byte
	toParty    map[party.ID][][]byte
	incoming   chan wire.RawIncoming
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{toParty: make(map[party.ID][][]byte), incoming: make(chan wire.RawIncoming, 8)}
}

func (f *fakeTransport) PublishBroadcast(data []byte) error {
	f.broadcasts = append(f.broadcasts, data)
	return nil
}

func (f *fakeTransport) PublishToParty(id party.ID, data []byte) error {
	f.toParty[id] = append(f.toParty[id], data)
	return nil
}

func (f *fakeTransport) Incoming() <-chan wire.RawIncoming { return f.incoming }

type testMsg struct {
	Round int
	Body  []byte
}

func TestSendBroadcastAndParty(t *testing.T) {
	ft := newFakeTransport()
	a := wire.NewAdapter[testMsg](ft)

	require.NoError(t, a.Send(testMsg{Round: 1, Body: []byte("hi")}, wire.ToBroadcast()))
	require.NoError(t, a.Send(testMsg{Round: 2, Body: []byte("yo")}, wire.ToParty(2)))

	require.Len(t, ft.broadcasts, 1)
	require.Len(t, ft.toParty[2], 1)
}

func TestRecvDecodesAndSkipsMalformed(t *testing.T) {
	ft := newFakeTransport()
	a := wire.NewAdapter[testMsg](ft)

	// Malformed payload first; the adapter must skip it without stalling.
	ft.incoming <- wire.RawIncoming{ID: 1, Sender: 0, Class: wire.Broadcast, Data: []byte{0xFF, 0xFF}}

	good := testMsg{Round: 3, Body: []byte("ok")}
	encoded, err := encodeForTest(good)
	require.NoError(t, err)
	ft.incoming <- wire.RawIncoming{ID: 2, Sender: 1, Class: wire.P2P, Data: encoded}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	msg, err := a.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), msg.ID)
	require.Equal(t, party.ID(1), msg.Sender)
	require.Equal(t, wire.P2P, msg.Class)
	require.Equal(t, good, msg.Msg)
}

// encodeForTest round-trips through a second adapter's Send to produce a
// validly-encoded payload without exporting the package-private codec.
func encodeForTest(msg testMsg) ([]byte, error) {
	ft := newFakeTransport()
	a := wire.NewAdapter[testMsg](ft)
	if err := a.Send(msg, wire.ToBroadcast()); err != nil {
		return nil, err
	}
	return ft.broadcasts[0], nil
}

func TestSessionAdapterRejectsForeignSessionID(t *testing.T) {
	sender := newFakeTransport()
	senderAdapter := wire.NewSessionAdapter[testMsg](sender, []byte("session-a"))
	require.NoError(t, senderAdapter.Send(testMsg{Round: 1, Body: []byte("in")}, wire.ToBroadcast()))

	otherSession := newFakeTransport()
	otherAdapter := wire.NewSessionAdapter[testMsg](otherSession, []byte("session-b"))
	require.NoError(t, otherAdapter.Send(testMsg{Round: 2, Body: []byte("out")}, wire.ToBroadcast()))

	recv := newFakeTransport()
	recv.incoming <- wire.RawIncoming{ID: 1, Sender: 0, Class: wire.Broadcast, Data: otherSession.broadcasts[0]}
	recv.incoming <- wire.RawIncoming{ID: 2, Sender: 1, Class: wire.Broadcast, Data: sender.broadcasts[0]}

	receiver := wire.NewSessionAdapter[testMsg](recv, []byte("session-a"))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, err := receiver.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), msg.ID)
	require.Equal(t, []byte("in"), msg.Msg.Body)
}
