package threshold

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/luxfi/stealthmpc/internal/keyshare"
	"github.com/luxfi/stealthmpc/internal/polynomial"
	"github.com/luxfi/stealthmpc/internal/secp"
	"github.com/luxfi/stealthmpc/internal/wire"
)

// deriveSubSessionID tags a sub-round of a larger session (e.g. Sign's
// internal nonce sub-keygen) with its own eid, SHA-256(eid || purpose), so
// its messages carry a distinct domain-separation tag from the outer
// session's own rounds.
func deriveSubSessionID(eid []byte, purpose string) []byte {
	h := sha256.New()
	h.Write(eid)
	h.Write([]byte(purpose))
	return h.Sum(nil)
}

// Signature is a standard (r, s) ECDSA signature over secp256k1.
type Signature struct {
	R, S *secp.Scalar
}

// Bytes returns the 64-byte big-endian (r || s) encoding.
func (sig *Signature) Bytes() [64]byte {
	var out [64]byte
	rb := sig.R.Bytes()
	sb := sig.S.Bytes()
	copy(out[:32], rb[:])
	copy(out[32:], sb[:])
	return out
}

// Verify checks sig against digest under pubKey using the textbook ECDSA
// verification equation, independent of any particular signing library's
// internal representation.
func (sig *Signature) Verify(digest [32]byte, pubKey *secp.Point) bool {
	e, err := secp.ReduceToScalar(digest)
	if err != nil {
		// A zero digest is vanishingly unlikely but not itself a forgery;
		// treat it as a valid scalar of value determined by reduction.
		e = secp.ScalarFromUint64(0)
	}
	sInv := sig.S.Inverse()
	u1 := e.Mul(sInv)
	u2 := sig.R.Mul(sInv)
	p1 := secp.PubFromSecret(u1)
	p2 := secp.MulPubKey(pubKey, u2)
	sum := secp.Add(p1, p2)
	rx, err := secp.ReduceToScalar(sum.XBytes())
	if err != nil {
		return false
	}
	return rx.Equal(sig.R)
}

// sigShareMsg carries this party's Lagrange-weighted nonce and key-share
// contributions for the final signature combination round.
type sigShareMsg struct {
	KShare [32]byte
	XShare [32]byte
}

// Sign runs threshold ECDSA signing for
// the quorum named by cfg.Parties (the party_indexes_at_keygen set) over
// the completed key share, producing a signature that verifies under
// keyShare.Incomplete.SharedPublicKey.
func Sign(ctx context.Context, cfg Config, transport wire.Transport, keyShare keyshare.KeyShare, digest [32]byte) (*Signature, error) {
	// The nonce sub-keygen gets its own derived session tag so its round
	// messages cannot be confused with (or replayed from) the outer
	// keygen round that produced keyShare, even though both run under
	// the same top-level eid.
	nonceCfg := cfg
	nonceCfg.ExecID = deriveSubSessionID(cfg.ExecID, "sign-nonce")

	nonceShare, err := Keygen(ctx, nonceCfg, transport)
	if err != nil {
		return nil, fmt.Errorf("threshold: sign nonce generation: %w", err)
	}

	rxBytes := nonceShare.SharedPublicKey.XBytes()
	r, err := secp.ReduceToScalar(rxBytes)
	if err != nil {
		return nil, fmt.Errorf("threshold: sign: nonce point has zero x: %w", err)
	}

	lagrange := polynomial.Lagrange(cfg.Parties)
	lambda := lagrange[cfg.Self]

	kShare := lambda.Mul(nonceShare.X).Bytes()
	xShare := lambda.Mul(keyShare.Incomplete.X).Bytes()

	adapter := wire.NewSessionAdapter[sigShareMsg](transport, deriveSubSessionID(cfg.ExecID, "sign-combine"))
	if err := adapter.Send(sigShareMsg{KShare: kShare, XShare: xShare}, wire.ToBroadcast()); err != nil {
		return nil, fmt.Errorf("threshold: sign round 3 send: %w", err)
	}

	kAgg, err := secp.FromBytes(kShare[:])
	if err != nil {
		return nil, err
	}
	xAgg, err := secp.FromBytes(xShare[:])
	if err != nil {
		return nil, err
	}

	received := 1
	for received < len(cfg.Parties) {
		inc, err := adapter.Recv(ctx)
		if err != nil {
			return nil, fmt.Errorf("threshold: sign round 3 recv: %w", err)
		}
		if !cfg.Parties.Contains(inc.Sender) || inc.Sender == cfg.Self {
			continue
		}
		ks, err := secp.FromBytes(inc.Msg.KShare[:])
		if err != nil {
			continue
		}
		xs, err := secp.FromBytes(inc.Msg.XShare[:])
		if err != nil {
			continue
		}
		kAgg = kAgg.Add(ks)
		xAgg = xAgg.Add(xs)
		received++
	}

	digestScalar, err := secp.ReduceToScalar(digest)
	if err != nil {
		digestScalar = secp.ScalarFromUint64(0)
	}

	kInv := kAgg.Inverse()
	s := kInv.Mul(digestScalar.Add(r.Mul(xAgg)))

	return &Signature{R: r, S: s}, nil
}
