// Package execid implements ExecIdAgreement: every party
// contributes a 16-byte nonce, and all parties derive the same session id
// by hashing the sorted (peer_id, nonce) contributions.
//
// Grounded on original_source/src/off_chain/protocol.rs's gen_exec_id.
package execid

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/luxfi/stealthmpc/internal/party"
	"github.com/luxfi/stealthmpc/internal/wire"
)

// NonceSize is the number of random bytes each party contributes.
const NonceSize = 16

// NewNonce samples this party's 16-byte contribution.
func NewNonce() ([NonceSize]byte, error) {
	var b [NonceSize]byte
	if _, err := rand.Read(b[:]); err != nil {
		return b, fmt.Errorf("execid: sample nonce: %w", err)
	}
	return b, nil
}

// Collector accumulates one nonce per peer id, keyed by peer id so that
// duplicate contributions from the same peer are idempotent (last write
// wins).
type Collector struct {
	known map[string]struct{}
	seen  map[string][NonceSize]byte
}

// NewCollector creates a Collector expecting contributions from exactly the
// given set of peer ids (including the local party's own).
func NewCollector(knownPeerIDs []string) *Collector {
	known := make(map[string]struct{}, len(knownPeerIDs))
	for _, id := range knownPeerIDs {
		known[id] = struct{}{}
	}
	return &Collector{known: known, seen: make(map[string][NonceSize]byte)}
}

// Add records a contribution from a peer. Contributions from peers outside
// the known set are ignored.
func (c *Collector) Add(peerID string, nonce [NonceSize]byte) {
	if _, ok := c.known[peerID]; !ok {
		return
	}
	c.seen[peerID] = nonce
}

// Done reports whether a contribution has been observed for every known
// peer.
func (c *Collector) Done() bool { return len(c.seen) == len(c.known) }

// ExecID derives eid = SHA-256(concat(nonces sorted by peer id)).
// Returns an error if not all contributions have arrived.
func (c *Collector) ExecID() ([]byte, error) {
	if !c.Done() {
		return nil, fmt.Errorf("execid: missing contributions: have %d, want %d", len(c.seen), len(c.known))
	}

	peerIDs := make([]string, 0, len(c.seen))
	for id := range c.seen {
		peerIDs = append(peerIDs, id)
	}
	sort.Strings(peerIDs)

	h := sha256.New()
	for _, id := range peerIDs {
		nonce := c.seen[id]
		h.Write(nonce[:])
	}
	return h.Sum(nil), nil
}

// nonceMsg is the broadcast wire message Agree exchanges: one party's
// raw 16-byte contribution.
type nonceMsg struct {
	Nonce [NonceSize]byte
}

// Agree runs the full ExecIdAgreement exchange over transport: it samples
// this party's nonce, broadcasts it, collects one contribution per peer in
// knownPeerIDs (including selfPeerID), and derives eid once all have
// arrived. peerIDOf resolves an incoming message's sender party index back
// to its libp2p peer id string, per the static peer/party table.
func Agree(ctx context.Context, transport wire.Transport, selfPeerID string, knownPeerIDs []string, peerIDOf func(party.ID) (string, bool)) ([]byte, error) {
	nonce, err := NewNonce()
	if err != nil {
		return nil, err
	}

	adapter := wire.NewAdapter[nonceMsg](transport)
	if err := adapter.Send(nonceMsg{Nonce: nonce}, wire.ToBroadcast()); err != nil {
		return nil, fmt.Errorf("execid: broadcast nonce: %w", err)
	}

	collector := NewCollector(knownPeerIDs)
	collector.Add(selfPeerID, nonce)
	for !collector.Done() {
		inc, err := adapter.Recv(ctx)
		if err != nil {
			return nil, fmt.Errorf("execid: recv: %w", err)
		}
		peerID, ok := peerIDOf(inc.Sender)
		if !ok {
			continue
		}
		collector.Add(peerID, inc.Msg.Nonce)
	}
	return collector.ExecID()
}
