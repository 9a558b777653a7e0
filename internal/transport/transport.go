// Package transport implements the Transport component: a
// peer-to-peer gossip bus with a broadcast topic, per-party topics, mDNS
// peer discovery, and a membership barrier, satisfying wire.Transport.
// Built on a libp2p host and go-libp2p-pubsub, with a broadcast-plus-
// per-party topic discipline and a static peer-id/party-index table in
// place of a fixed block/tx/vote topic set.
package transport

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"
	"github.com/multiformats/go-multiaddr"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/stealthmpc/internal/party"
	"github.com/luxfi/stealthmpc/internal/wire"
)

const (
	// BroadcastTopic is the shared topic every party subscribes to and
	// publishes on.
	BroadcastTopic = "cggmp21/broadcast"
	// MaxPayloadBytes is the transmit cap.
	MaxPayloadBytes = 4 << 20
	// Heartbeat is the gossip heartbeat interval.
	Heartbeat = time.Second
	mdnsServiceTag = "cggmp21-stealthmpc"
)

// PartyTopic returns the per-party topic name for i.
func PartyTopic(i party.ID) string { return fmt.Sprintf("cggmp21/party/%d", i) }

// ConfigError is a configuration-time failure: an unparseable listen
// address, a peer table missing an entry, or an inconsistent party count
//.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string { return "transport: " + e.Op + ": " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// PeerTable is the compile-time static, bijective map of libp2p peer id to
// party index. Membership is closed: unknown peer ids are
// silently ignored on receive.
type PeerTable struct {
	toParty map[peer.ID]party.ID
	toPeer  map[party.ID]peer.ID
}

// NewPeerTable builds a PeerTable from a party-index-ordered slice of peer
// ids.
func NewPeerTable(peers []peer.ID) *PeerTable {
	t := &PeerTable{toParty: make(map[peer.ID]party.ID, len(peers)), toPeer: make(map[party.ID]peer.ID, len(peers))}
	for i, p := range peers {
		id := party.ID(i)
		t.toParty[p] = id
		t.toPeer[id] = p
	}
	return t
}

func (t *PeerTable) Party(p peer.ID) (party.ID, bool) {
	id, ok := t.toParty[p]
	return id, ok
}

func (t *PeerTable) Peer(id party.ID) (peer.ID, bool) {
	p, ok := t.toPeer[id]
	return p, ok
}

func (t *PeerTable) Len() int { return len(t.toPeer) }

// OtherPeers returns every peer id in the table except self's.
func (t *PeerTable) OtherPeers(self party.ID) []peer.ID {
	others := make([]peer.ID, 0, len(t.toPeer)-1)
	for id, p := range t.toPeer {
		if id != self {
			others = append(others, p)
		}
	}
	return others
}

// Bus is the gossip transport for one party's process. It owns the
// libp2p host and pubsub instance for the lifetime of a session and
// satisfies wire.Transport.
type Bus struct {
	self  party.ID
	table *PeerTable

	host   host.Host
	pubsub *pubsub.PubSub

	broadcastTopic *pubsub.Topic
	broadcastSub   *pubsub.Subscription
	selfTopic      *pubsub.Topic
	selfSub        *pubsub.Subscription

	incoming chan wire.RawIncoming

	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewBus constructs the gossip overlay for party self, listening on
// listenAddr, with the given static peer table. It subscribes both
// topics but does not yet block on the membership barrier; call
// AwaitQuorum for that.
func NewBus(ctx context.Context, self party.ID, listenAddr string, table *PeerTable, identity crypto.PrivKey) (*Bus, error) {
	hostCtx, cancel := context.WithCancel(ctx)

	addr, err := multiaddr.NewMultiaddr(listenAddr)
	if err != nil {
		cancel()
		return nil, &ConfigError{Op: "parse-listen-addr", Err: err}
	}

	opts := []libp2p.Option{libp2p.ListenAddrs(addr)}
	if identity != nil {
		opts = append(opts, libp2p.Identity(identity))
	}
	h, err := libp2p.New(opts...)
	if err != nil {
		cancel()
		return nil, &ConfigError{Op: "new-host", Err: err}
	}

	ps, err := pubsub.NewGossipSub(hostCtx, h,
		pubsub.WithMessageIdFn(messageIDFn),
		pubsub.WithMaxMessageSize(MaxPayloadBytes),
		pubsub.WithValidateQueueSize(256),
	)
	if err != nil {
		cancel()
		h.Close()
		return nil, &ConfigError{Op: "new-pubsub", Err: err}
	}

	b := &Bus{
		self:     self,
		table:    table,
		host:     h,
		pubsub:   ps,
		incoming: make(chan wire.RawIncoming, 4096),
		cancel:   cancel,
	}

	if err := b.subscribe(hostCtx); err != nil {
		cancel()
		h.Close()
		return nil, err
	}

	disc := mdns.NewMdnsService(h, mdnsServiceTag, &mdnsNotifee{ctx: hostCtx, host: h})
	if err := disc.Start(); err != nil {
		cancel()
		h.Close()
		return nil, &ConfigError{Op: "mdns-start", Err: err}
	}

	go b.readLoop(hostCtx, b.broadcastSub, wire.Broadcast)
	go b.readLoop(hostCtx, b.selfSub, wire.P2P)

	return b, nil
}

func (b *Bus) subscribe(ctx context.Context) error {
	var err error
	b.broadcastTopic, err = b.pubsub.Join(BroadcastTopic)
	if err != nil {
		return &ConfigError{Op: "join-broadcast", Err: err}
	}
	b.broadcastSub, err = b.broadcastTopic.Subscribe()
	if err != nil {
		return &ConfigError{Op: "subscribe-broadcast", Err: err}
	}

	selfTopicName := PartyTopic(b.self)
	b.selfTopic, err = b.pubsub.Join(selfTopicName)
	if err != nil {
		return &ConfigError{Op: "join-self", Err: err}
	}
	b.selfSub, err = b.selfTopic.Subscribe()
	if err != nil {
		return &ConfigError{Op: "subscribe-self", Err: err}
	}
	return nil
}

// AwaitQuorum blocks until every other party in the table has subscribed
// to the broadcast topic, or ctx is done. It is idempotent: calling it
// again after quorum was already reached returns immediately.
//
// One goroutine per expected peer polls for that peer's arrival under an
// errgroup.Group, so a single missing peer fails the whole barrier as
// soon as ctx is done instead of only being noticed on the next shared
// tick.
func (b *Bus) AwaitQuorum(ctx context.Context) error {
	others := b.table.OtherPeers(b.self)
	if len(others) == 0 {
		return nil
	}
	eg, egCtx := errgroup.WithContext(ctx)
	for _, p := range others {
		p := p
		eg.Go(func() error { return b.awaitPeerSubscribed(egCtx, p) })
	}
	return eg.Wait()
}

// awaitPeerSubscribed blocks until p appears among the broadcast topic's
// subscribed peers, or ctx is done.
func (b *Bus) awaitPeerSubscribed(ctx context.Context, p peer.ID) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		for _, seen := range b.broadcastTopic.ListPeers() {
			if seen == p {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (b *Bus) readLoop(ctx context.Context, sub *pubsub.Subscription, class wire.Class) {
	for {
		msg, err := sub.Next(ctx)
		if err != nil {
			return
		}
		if msg.ReceivedFrom == b.host.ID() {
			continue
		}
		sender, ok := b.table.Party(msg.ReceivedFrom)
		if !ok {
			// Unknown peer: silently ignored, not an error.
			continue
		}
		select {
		case b.incoming <- wire.RawIncoming{ID: messageSeq(msg.Data), Sender: sender, Class: class, Data: msg.Data}:
		case <-ctx.Done():
			return
		}
	}
}

// PublishBroadcast implements wire.Transport.
func (b *Bus) PublishBroadcast(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.broadcastTopic.Publish(context.Background(), data)
}

// PublishToParty implements wire.Transport.
func (b *Bus) PublishToParty(id party.ID, data []byte) error {
	peerTopicName := PartyTopic(id)
	topic, err := b.pubsub.Join(peerTopicName)
	if err != nil {
		return fmt.Errorf("transport: join %s: %w", peerTopicName, err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return topic.Publish(context.Background(), data)
}

// Incoming implements wire.Transport.
func (b *Bus) Incoming() <-chan wire.RawIncoming { return b.incoming }

// SelfPeerID returns this party's own libp2p peer id string.
func (b *Bus) SelfPeerID() string { return b.host.ID().String() }

// PeerID returns the libp2p peer id string for a party index, per the
// static PeerTable.
func (b *Bus) PeerID(id party.ID) (string, bool) {
	p, ok := b.table.Peer(id)
	if !ok {
		return "", false
	}
	return p.String(), true
}

// Close tears down the host and pubsub machinery.
func (b *Bus) Close() error {
	b.cancel()
	return b.host.Close()
}

// messageIDFn computes a deterministic message id: hash of (payload,
// sequence_number, source) truncated to 8 bytes. The pubsub message's
// Seqno and From fields supply the sequence number and source.
func messageIDFn(pmsg *pubsub.Message) string {
	h := blake3.New()
	h.Write(pmsg.Data)
	h.Write(pmsg.Message.GetSeqno())
	h.Write([]byte(pmsg.Message.GetFrom()))
	sum := h.Sum(nil)
	return string(sum[:8])
}

// messageSeq derives a local u64 id for an incoming payload, used only to
// tag wire.RawIncoming entries for logging/dedup at the WireAdapter layer.
func messageSeq(data []byte) uint64 {
	sum := sha256.Sum256(data)
	return binary.BigEndian.Uint64(sum[:8])
}

type mdnsNotifee struct {
	ctx  context.Context
	host host.Host
}

func (n *mdnsNotifee) HandlePeerFound(pi peer.AddrInfo) {
	if pi.ID == n.host.ID() {
		return
	}
	_ = n.host.Connect(n.ctx, pi)
}
