package stealth

import (
	"github.com/luxfi/stealthmpc/internal/bn254"
	"github.com/luxfi/stealthmpc/internal/secp"
)

// Recipient is the information a sender needs about a stealth-address
// recipient: a BN254 viewing public key and a secp256k1 spending public key
//.
type Recipient struct {
	ViewingPubKey  *bn254.G1
	SpendingPubKey *secp.Point
}

// SendResult is the sender-side output of stealth derivation.
type SendResult struct {
	EphemeralSK    *bn254.Scalar
	EphemeralPK    *bn254.G1
	ViewTag        byte
	StealthPubKey  *secp.Point
	StealthAddress [20]byte
}

// Send computes a one-time stealth address for recipient, matching
// sender.rs's send(): sample an ephemeral BN254 keypair, derive the shared
// point V*r, project it to the rebase scalar b, and apply b to the
// recipient's spending key.
func Send(recipient Recipient, viewTagVersion int) (*SendResult, error) {
	r, R, err := bn254.NewEphemeral()
	if err != nil {
		return nil, &Error{Op: "ephemeral-keygen", Err: err}
	}

	vR := bn254.MulPoint(recipient.ViewingPubKey, r)

	viewTag, err := bn254.Viewtag(vR, viewTagVersion)
	if err != nil {
		return nil, &Error{Op: "viewtag", Err: err}
	}

	b, err := computeB(vR)
	if err != nil {
		return nil, err
	}

	stealthPub := secp.MulPubKey(recipient.SpendingPubKey, b)

	return &SendResult{
		EphemeralSK:    r,
		EphemeralPK:    R,
		ViewTag:        viewTag,
		StealthPubKey:  stealthPub,
		StealthAddress: StealthAddress(stealthPub),
	}, nil
}
