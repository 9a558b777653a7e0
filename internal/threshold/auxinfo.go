package threshold

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"

	"github.com/luxfi/stealthmpc/internal/keyshare"
	"github.com/luxfi/stealthmpc/internal/party"
	"github.com/luxfi/stealthmpc/internal/wire"
)

// Primes is one party's pregenerated RSA material for AuxInfoGen. Prime
// generation is the expensive part of CGGMP21's aux-info round and is
// left to the caller to supply.
type Primes struct {
	P, Q *big.Int
}

// auxInfoMsg is the broadcast aux-info contribution: an RSA modulus and
// ring-Pedersen commitment base, the CGGMP21 auxiliary material this
// service treats as opaque.
type auxInfoMsg struct {
	Modulus         []byte
	PedersenBase    []byte
	PedersenBaseExp []byte
}

// AuxInfoGen runs the aux-info-gen round and returns the
// aggregated AuxInfo covering every party.
func AuxInfoGen(ctx context.Context, cfg Config, transport wire.Transport, primes Primes) (*keyshare.AuxInfo, error) {
	pNat := new(saferith.Nat).SetBytes(primes.P.Bytes())
	qNat := new(saferith.Nat).SetBytes(primes.Q.Bytes())
	modulus, err := saferith.ModulusFromFactors(pNat, qNat)
	if err != nil {
		return nil, fmt.Errorf("threshold: build rsa modulus: %w", err)
	}
	n := modulus.Nat()

	// saferith has no direct "uniform Nat below a Modulus" helper, so the
	// bound sampling itself still goes through math/big; the modulus and
	// the Pedersen base's modular exponentiation are the arithmetic that
	// actually needs to run over the composite n, and that runs on Nat.
	nBig := new(big.Int).Mul(primes.P, primes.Q)
	lambdaBig, err := rand.Int(rand.Reader, nBig)
	if err != nil {
		return nil, fmt.Errorf("threshold: sample pedersen exponent: %w", err)
	}
	tBig, err := rand.Int(rand.Reader, nBig)
	if err != nil {
		return nil, fmt.Errorf("threshold: sample pedersen base: %w", err)
	}
	lambda := new(saferith.Nat).SetBytes(lambdaBig.Bytes())
	t := new(saferith.Nat).SetBytes(tBig.Bytes())
	s := new(saferith.Nat).Exp(t, lambda, modulus)

	msg := auxInfoMsg{
		Modulus:         n.Bytes(),
		PedersenBase:    s.Bytes(),
		PedersenBaseExp: t.Bytes(),
	}

	adapter := wire.NewSessionAdapter[auxInfoMsg](transport, cfg.ExecID)
	if err := adapter.Send(msg, wire.ToBroadcast()); err != nil {
		return nil, fmt.Errorf("threshold: aux-info send: %w", err)
	}

	aux := &keyshare.AuxInfo{
		Modulus:         map[party.ID][]byte{cfg.Self: msg.Modulus},
		PedersenBase:    map[party.ID][]byte{cfg.Self: msg.PedersenBase},
		PedersenBaseExp: map[party.ID][]byte{cfg.Self: msg.PedersenBaseExp},
	}
	for len(aux.Modulus) < len(cfg.Parties) {
		inc, err := adapter.Recv(ctx)
		if err != nil {
			return nil, fmt.Errorf("threshold: aux-info recv: %w", err)
		}
		if !cfg.Parties.Contains(inc.Sender) || inc.Sender == cfg.Self {
			continue
		}
		if _, seen := aux.Modulus[inc.Sender]; seen {
			continue
		}
		aux.Modulus[inc.Sender] = inc.Msg.Modulus
		aux.PedersenBase[inc.Sender] = inc.Msg.PedersenBase
		aux.PedersenBaseExp[inc.Sender] = inc.Msg.PedersenBaseExp
	}
	return aux, nil
}
