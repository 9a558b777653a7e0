package stealth_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luxfi/stealthmpc/internal/bn254"
	"github.com/luxfi/stealthmpc/internal/secp"
	"github.com/luxfi/stealthmpc/internal/stealth"
)

func TestStealthSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "stealth derivation suite")
}

var _ = Describe("stealth address derivation", func() {
	var (
		viewingSK, viewingPK = mustEphemeral()
		spendingSK           = mustScalar()
		spendingPK           = secp.PubFromSecret(spendingSK)
		recipient            = stealth.Recipient{ViewingPubKey: viewingPK, SpendingPubKey: spendingPK}
	)

	It("derives a stealth address the recipient can recover", func() {
		sent, err := stealth.Send(recipient, 0)
		Expect(err).NotTo(HaveOccurred())

		scanned, err := stealth.Scan([]stealth.Entry{{EphemeralPK: sent.EphemeralPK, Viewtag: sent.ViewTag}}, viewingSK, spendingSK, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(scanned).To(HaveLen(1))
		Expect(scanned[0].StealthAddress).To(Equal(sent.StealthAddress))
	})

	It("produces an empty scan for an unrelated viewing key", func() {
		_, otherViewingPK := mustEphemeral()
		otherRecipient := stealth.Recipient{ViewingPubKey: otherViewingPK, SpendingPubKey: spendingPK}

		sent, err := stealth.Send(otherRecipient, 1)
		Expect(err).NotTo(HaveOccurred())

		scanned, err := stealth.Scan([]stealth.Entry{{EphemeralPK: sent.EphemeralPK, Viewtag: sent.ViewTag}}, viewingSK, spendingSK, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(scanned).To(BeEmpty())
	})
})

func mustEphemeral() (*bn254.Scalar, *bn254.G1) {
	sk, pk, err := bn254.NewEphemeral()
	if err != nil {
		panic(err)
	}
	return sk, pk
}

func mustScalar() *secp.Scalar {
	sk, _ := mustEphemeral()
	b := sk.Bytes()
	s, err := secp.FromBytes(b[:])
	if err != nil {
		// Extremely unlikely: re-sample once to avoid a flaky zero-after-reduce.
		sk2, _ := mustEphemeral()
		b2 := sk2.Bytes()
		s, err = secp.FromBytes(b2[:])
		if err != nil {
			panic(err)
		}
	}
	return s
}
