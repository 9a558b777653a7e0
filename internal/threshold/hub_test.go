package threshold_test

import (
	"sync"

	"github.com/luxfi/stealthmpc/internal/party"
	"github.com/luxfi/stealthmpc/internal/wire"
)

// hub is an in-memory fan-out transport connecting every party in a test,
// standing in for the gossip overlay (internal/transport) that production
// code uses. It implements wire.Transport once per party.
type hub struct {
	mu    sync.Mutex
	chans map[party.ID]chan wire.RawIncoming
	id    uint64
}

func newHub(parties party.IDSlice) *hub {
	h := &hub{chans: make(map[party.ID]chan wire.RawIncoming, len(parties))}
	for _, p := range parties {
		h.chans[p] = make(chan wire.RawIncoming, 256)
	}
	return h
}

func (h *hub) transport(self party.ID, parties party.IDSlice) *hubTransport {
	return &hubTransport{h: h, self: self, parties: parties}
}

func (h *hub) nextID() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.id++
	return h.id
}

type hubTransport struct {
	h       *hub
	self    party.ID
	parties party.IDSlice
}

func (t *hubTransport) PublishBroadcast(data []byte) error {
	for _, p := range t.parties {
		if p == t.self {
			continue
		}
		t.h.chans[p] <- wire.RawIncoming{ID: t.h.nextID(), Sender: t.self, Class: wire.Broadcast, Data: data}
	}
	return nil
}

func (t *hubTransport) PublishToParty(id party.ID, data []byte) error {
	t.h.chans[id] <- wire.RawIncoming{ID: t.h.nextID(), Sender: t.self, Class: wire.P2P, Data: data}
	return nil
}

func (t *hubTransport) Incoming() <-chan wire.RawIncoming { return t.h.chans[t.self] }
