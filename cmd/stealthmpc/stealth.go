package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/stealthmpc/internal/bn254"
	"github.com/luxfi/stealthmpc/internal/secp"
	"github.com/luxfi/stealthmpc/internal/stealth"
)

// Off-MPC sender/recipient CLI subcommands, for operators who want to
// derive or scan stealth addresses without running the MPC quorum.
// Grounded on original_source/src/off_chain/bin/main.rs, which exposes
// both halves as standalone binaries.

var (
	sendViewingPub  string
	sendSpendingPub string
	sendViewTagVer  int

	scanViewingSK  string
	scanSpendingSK string
	scanViewTagVer int
	scanEntries    []string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "compute a one-time stealth address for a recipient",
	RunE:  runSend,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "scan published entries for ones addressed to this recipient",
	RunE:  runScan,
}

func init() {
	sendCmd.Flags().StringVar(&sendViewingPub, "viewing-pub", "", "recipient BN254 viewing public key (hex, compressed G1)")
	sendCmd.Flags().StringVar(&sendSpendingPub, "spending-pub", "", "recipient secp256k1 spending public key (hex, compressed)")
	sendCmd.Flags().IntVar(&sendViewTagVer, "viewtag-version", 0, "viewtag derivation version (0 or 1)")
	sendCmd.MarkFlagRequired("viewing-pub")
	sendCmd.MarkFlagRequired("spending-pub")

	scanCmd.Flags().StringVar(&scanViewingSK, "viewing-sk", "", "recipient's BN254 viewing secret (hex Fr)")
	scanCmd.Flags().StringVar(&scanSpendingSK, "spending-sk", "", "recipient's secp256k1 spending secret (hex)")
	scanCmd.Flags().IntVar(&scanViewTagVer, "viewtag-version", 0, "viewtag derivation version (0 or 1)")
	scanCmd.Flags().StringSliceVar(&scanEntries, "entry", nil, "ephemeral_pubkey:viewtag pairs, hex, repeatable")
	scanCmd.MarkFlagRequired("viewing-sk")
	scanCmd.MarkFlagRequired("spending-sk")

	rootCmd.AddCommand(sendCmd, scanCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	viewingPub, err := bn254.G1FromHex(sendViewingPub)
	if err != nil {
		return fmt.Errorf("stealthmpc send: viewing-pub: %w", err)
	}
	spendingPub, err := secp.PointFromHex(sendSpendingPub)
	if err != nil {
		return fmt.Errorf("stealthmpc send: spending-pub: %w", err)
	}

	result, err := stealth.Send(stealth.Recipient{ViewingPubKey: viewingPub, SpendingPubKey: spendingPub}, sendViewTagVer)
	if err != nil {
		return err
	}

	fmt.Printf("ephemeral_pub_key: %s\n", result.EphemeralPK.Hex())
	fmt.Printf("viewtag: %02x\n", result.ViewTag)
	fmt.Printf("stealth_pub_key: %s\n", result.StealthPubKey.Hex())
	fmt.Printf("stealth_address: %x\n", result.StealthAddress)
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	viewingSK, err := bn254.ScalarFromHex(scanViewingSK)
	if err != nil {
		return fmt.Errorf("stealthmpc scan: viewing-sk: %w", err)
	}
	spendingSK, err := secp.FromHex(scanSpendingSK)
	if err != nil {
		return fmt.Errorf("stealthmpc scan: spending-sk: %w", err)
	}

	entries := make([]stealth.Entry, 0, len(scanEntries))
	for _, e := range scanEntries {
		pubHex, tagHex, ok := splitPair(e)
		if !ok {
			return fmt.Errorf("stealthmpc scan: malformed --entry %q, want pubkey:viewtag", e)
		}
		pub, err := bn254.G1FromHex(pubHex)
		if err != nil {
			return fmt.Errorf("stealthmpc scan: entry pubkey: %w", err)
		}
		tagBytes, err := hex.DecodeString(tagHex)
		if err != nil || len(tagBytes) != 1 {
			return fmt.Errorf("stealthmpc scan: entry viewtag must be 1 byte")
		}
		entries = append(entries, stealth.Entry{EphemeralPK: pub, Viewtag: tagBytes[0]})
	}

	results, err := stealth.Scan(entries, viewingSK, spendingSK, scanViewTagVer)
	if err != nil {
		return err
	}

	for _, r := range results {
		fmt.Printf("address=%x stealth_sk=%s\n", r.StealthAddress, r.StealthSK.Hex())
	}
	return nil
}

func splitPair(s string) (string, string, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}
