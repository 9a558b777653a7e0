// Package service implements the Service Shell: per-party
// process orchestration. It is the only component permitted to own
// process-lifetime state.
package service

import (
	"context"
	"fmt"
	"log"

	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/luxfi/stealthmpc/internal/execid"
	"github.com/luxfi/stealthmpc/internal/identity"
	"github.com/luxfi/stealthmpc/internal/keyshare"
	"github.com/luxfi/stealthmpc/internal/party"
	"github.com/luxfi/stealthmpc/internal/threshold"
	"github.com/luxfi/stealthmpc/internal/transport"
)

// Shell is one party's long-lived process state: identity, transport, the
// party set it is running with, and the session id every party agreed on
// via ExecIdAgreement.
type Shell struct {
	Self    party.ID
	Parties party.IDSlice
	Bus     *transport.Bus
	EID     []byte
	Log     *log.Logger
}

// Start parses identity from dataDir, constructs the gossip Transport, and
// completes the membership barrier.
func Start(ctx context.Context, dataDir string, self party.ID, listenAddr string, peers []peer.ID) (*Shell, error) {
	logger := log.New(log.Writer(), fmt.Sprintf("[party %d] ", self), log.LstdFlags)

	priv, err := identity.Load(dataDir, self)
	if err != nil {
		return nil, err
	}

	table := transport.NewPeerTable(peers)
	bus, err := transport.NewBus(ctx, self, listenAddr, table, priv)
	if err != nil {
		return nil, err
	}

	logger.Printf("waiting for %d peers to join the broadcast topic", table.Len()-1)
	if err := bus.AwaitQuorum(ctx); err != nil {
		bus.Close()
		return nil, fmt.Errorf("service: membership barrier: %w", err)
	}
	logger.Printf("quorum reached")

	parties := party.Range(uint16(table.Len()))
	eid, err := agreeExecID(ctx, bus, parties)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("service: exec id agreement: %w", err)
	}
	logger.Printf("exec id agreed: %x", eid)

	return &Shell{
		Self:    self,
		Parties: parties,
		Bus:     bus,
		EID:     eid,
		Log:     logger,
	}, nil
}

// agreeExecID runs ExecIdAgreement (spec.md §4.5) over the broadcast topic:
// every party contributes a nonce tagged by its libp2p peer id, and all
// parties derive the same session id once every contribution has arrived.
func agreeExecID(ctx context.Context, bus *transport.Bus, parties party.IDSlice) ([]byte, error) {
	knownPeerIDs := make([]string, 0, len(parties))
	for _, id := range parties {
		peerID, ok := bus.PeerID(id)
		if !ok {
			return nil, fmt.Errorf("service: no peer id for party %d", id)
		}
		knownPeerIDs = append(knownPeerIDs, peerID)
	}
	return execid.Agree(ctx, bus, bus.SelfPeerID(), knownPeerIDs, bus.PeerID)
}

// Close releases the shell's transport resources.
func (s *Shell) Close() error { return s.Bus.Close() }

// RunDemo runs the full keygen → aux_info → rebase(b) → sign end-to-end
// demo.
func (s *Shell) RunDemo(ctx context.Context, thresh int, primes threshold.Primes, rebaseScalar [32]byte, digest [32]byte) (*threshold.Signature, error) {
	cfg := threshold.Config{ExecID: s.EID, Self: s.Self, Parties: s.Parties, Threshold: thresh}

	s.Log.Printf("running keygen")
	incomplete, err := threshold.Keygen(ctx, cfg, s.Bus)
	if err != nil {
		return nil, fmt.Errorf("service: demo keygen: %w", err)
	}

	s.Log.Printf("running aux-info-gen")
	aux, err := threshold.AuxInfoGen(ctx, cfg, s.Bus, primes)
	if err != nil {
		return nil, fmt.Errorf("service: demo aux-info-gen: %w", err)
	}

	s.Log.Printf("rebasing key share")
	rebased, err := keyshare.Rebase(*incomplete, rebaseScalar, *aux)
	if err != nil {
		return nil, fmt.Errorf("service: demo rebase: %w", err)
	}

	s.Log.Printf("signing")
	sig, err := threshold.Sign(ctx, cfg, s.Bus, *rebased, digest)
	if err != nil {
		return nil, fmt.Errorf("service: demo sign: %w", err)
	}

	s.Log.Printf("done")
	return sig, nil
}
