package threshold

import (
	"context"
	"fmt"

	"github.com/luxfi/stealthmpc/internal/keyshare"
	"github.com/luxfi/stealthmpc/internal/party"
	"github.com/luxfi/stealthmpc/internal/secp"
	"github.com/luxfi/stealthmpc/internal/wire"
)

// keygenCommit is the round 1 broadcast: Feldman commitments to this
// party's degree-(threshold-1) polynomial, C_k = a_k*G.
type keygenCommit struct {
	Commitments [][]byte
}

// keygenShare is the round 2 point-to-point message: the sender's
// polynomial evaluated at the recipient's Shamir point, f_i(recipient).
type keygenShare struct {
	Share [32]byte
}

// Keygen runs Feldman-VSS distributed key generation and returns this party's IncompleteKeyShare.
func Keygen(ctx context.Context, cfg Config, transport wire.Transport) (*keyshare.IncompleteKeyShare, error) {
	if cfg.Threshold < 1 || cfg.Threshold > len(cfg.Parties) {
		return nil, fmt.Errorf("threshold: invalid threshold %d for %d parties", cfg.Threshold, len(cfg.Parties))
	}

	coeffs := make([]*secp.Scalar, cfg.Threshold)
	for k := range coeffs {
		s, err := randomNonZeroScalar()
		if err != nil {
			return nil, err
		}
		coeffs[k] = s
	}

	commitPoints := make([]*secp.Point, cfg.Threshold)
	commitBytes := make([][]byte, cfg.Threshold)
	for k, c := range coeffs {
		p := secp.PubFromSecret(c)
		commitPoints[k] = p
		commitBytes[k] = p.Compressed()
	}

	commitAdapter := wire.NewSessionAdapter[keygenCommit](transport, cfg.ExecID)
	if err := commitAdapter.Send(keygenCommit{Commitments: commitBytes}, wire.ToBroadcast()); err != nil {
		return nil, fmt.Errorf("threshold: keygen round 1 send: %w", err)
	}

	allCommits := map[party.ID][]*secp.Point{cfg.Self: commitPoints}
	for len(allCommits) < len(cfg.Parties) {
		inc, err := commitAdapter.Recv(ctx)
		if err != nil {
			return nil, fmt.Errorf("threshold: keygen round 1 recv: %w", err)
		}
		if !cfg.Parties.Contains(inc.Sender) || inc.Sender == cfg.Self {
			continue
		}
		if _, seen := allCommits[inc.Sender]; seen {
			continue
		}
		if len(inc.Msg.Commitments) != cfg.Threshold {
			return nil, &ProtocolError{Round: 1, Culprit: inc.Sender, Err: fmt.Errorf("wrong commitment count %d", len(inc.Msg.Commitments))}
		}
		points := make([]*secp.Point, cfg.Threshold)
		for k, b := range inc.Msg.Commitments {
			p, err := secp.PointFromCompressed(b)
			if err != nil {
				return nil, &ProtocolError{Round: 1, Culprit: inc.Sender, Err: err}
			}
			points[k] = p
		}
		allCommits[inc.Sender] = points
	}

	shareAdapter := wire.NewSessionAdapter[keygenShare](transport, cfg.ExecID)
	var selfShare *secp.Scalar
	for _, j := range cfg.Parties {
		s := evalPolynomial(coeffs, evalPoint(j))
		if j == cfg.Self {
			selfShare = s
			continue
		}
		b := s.Bytes()
		if err := shareAdapter.Send(keygenShare{Share: b}, wire.ToParty(j)); err != nil {
			return nil, fmt.Errorf("threshold: keygen round 2 send to %d: %w", j, err)
		}
	}

	receivedShares := map[party.ID]*secp.Scalar{cfg.Self: selfShare}
	for len(receivedShares) < len(cfg.Parties) {
		inc, err := shareAdapter.Recv(ctx)
		if err != nil {
			return nil, fmt.Errorf("threshold: keygen round 2 recv: %w", err)
		}
		if !cfg.Parties.Contains(inc.Sender) || inc.Sender == cfg.Self {
			continue
		}
		if _, seen := receivedShares[inc.Sender]; seen {
			continue
		}
		share, err := secp.FromBytes(inc.Msg.Share[:])
		if err != nil {
			return nil, &ProtocolError{Round: 2, Culprit: inc.Sender, Err: err}
		}
		expected := evalCommitment(allCommits[inc.Sender], evalPoint(cfg.Self))
		if secp.PubFromSecret(share).Hex() != expected.Hex() {
			return nil, &ProtocolError{Round: 2, Culprit: inc.Sender, Err: fmt.Errorf("share inconsistent with round 1 commitment")}
		}
		receivedShares[inc.Sender] = share
	}

	x := receivedShares[cfg.Parties[0]]
	for _, id := range cfg.Parties[1:] {
		x = x.Add(receivedShares[id])
	}

	publicShares := make(map[party.ID]*secp.Point, len(cfg.Parties))
	for _, j := range cfg.Parties {
		xj := evalPoint(j)
		var sum *secp.Point
		for _, i := range cfg.Parties {
			contrib := evalCommitment(allCommits[i], xj)
			if sum == nil {
				sum = contrib
				continue
			}
			sum = secp.Add(sum, contrib)
		}
		publicShares[j] = sum
	}

	// shared_public_key = sum of every party's constant-term commitment,
	// equivalently the sum of any t public shares weighted by Lagrange
	// coefficients; the constant-term commitments are already in hand.
	var sharedPub *secp.Point
	for _, i := range cfg.Parties {
		c0 := allCommits[i][0]
		if sharedPub == nil {
			sharedPub = c0
			continue
		}
		sharedPub = secp.Add(sharedPub, c0)
	}

	share := &keyshare.IncompleteKeyShare{
		Self:            cfg.Self,
		X:               x,
		PublicShares:    publicShares,
		SharedPublicKey: sharedPub,
	}
	if err := share.Validate(); err != nil {
		return nil, fmt.Errorf("threshold: keygen produced invalid share: %w", err)
	}
	return share, nil
}

func randomNonZeroScalar() (*secp.Scalar, error) {
	for {
		var b [32]byte
		if _, err := randRead(b[:]); err != nil {
			return nil, err
		}
		s, err := secp.FromBytes(b[:])
		if err == nil {
			return s, nil
		}
	}
}

func evalPoint(id party.ID) *secp.Scalar { return secp.ScalarFromUint64(uint64(id) + 1) }

func evalPolynomial(coeffs []*secp.Scalar, x *secp.Scalar) *secp.Scalar {
	acc := coeffs[len(coeffs)-1]
	for k := len(coeffs) - 2; k >= 0; k-- {
		acc = acc.Mul(x).Add(coeffs[k])
	}
	return acc
}

func evalCommitment(commits []*secp.Point, x *secp.Scalar) *secp.Point {
	xk := secp.ScalarFromUint64(1)
	acc := secp.MulPubKey(commits[0], xk)
	for k := 1; k < len(commits); k++ {
		xk = xk.Mul(x)
		acc = secp.Add(acc, secp.MulPubKey(commits[k], xk))
	}
	return acc
}
