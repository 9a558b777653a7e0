// Command stealthmpc is the per-party process shell: on start it parses
// party_id from argv, loads its identity keypair, builds the gossip
// Transport, and completes the membership barrier. It then either runs
// the end-to-end demo or serves the HTTP surface.
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/spf13/cobra"

	"github.com/luxfi/stealthmpc/internal/party"
	"github.com/luxfi/stealthmpc/internal/service"
	"github.com/luxfi/stealthmpc/internal/threshold"
)

var (
	dataDir    string
	listenAddr string
	peerIDs    []string
	threshold_ int
	httpAddr   string
	serve      bool
)

var rootCmd = &cobra.Command{
	Use:   "stealthmpc party_id",
	Short: "threshold-signature service for stealth payments",
	Long: `Per-party process for the CGGMP21-family threshold-ECDSA quorum
coupled with a BN254 stealth-address scheme. Positional argument:
party_id, this process's index in [0, n).`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "data", "identity file directory")
	rootCmd.Flags().StringVar(&listenAddr, "listen", "/ip4/0.0.0.0/tcp/0", "libp2p listen multiaddr")
	rootCmd.Flags().StringSliceVar(&peerIDs, "peer", nil, "peer ids, in party-index order (required)")
	rootCmd.Flags().IntVarP(&threshold_, "threshold", "t", 2, "reconstruction threshold")
	rootCmd.Flags().StringVar(&httpAddr, "http", "", "serve the HTTP surface on this address instead of running the demo")
	rootCmd.MarkFlagRequired("peer")
}

func run(cmd *cobra.Command, args []string) error {
	partyIDNum, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("stealthmpc: party_id must be an integer: %w", err)
	}
	self := party.ID(partyIDNum)

	peers := make([]peer.ID, len(peerIDs))
	for i, s := range peerIDs {
		p, err := peer.Decode(s)
		if err != nil {
			return fmt.Errorf("stealthmpc: peer %d: %w", i, err)
		}
		peers[i] = p
	}

	ctx := context.Background()
	shell, err := service.Start(ctx, dataDir, self, listenAddr, peers)
	if err != nil {
		return err
	}
	defer shell.Close()

	if httpAddr != "" {
		mux := http.NewServeMux()
		handler := &service.Handler{Shell: shell, Primes: randomPrimes}
		handler.Routes(mux)
		shell.Log.Printf("serving HTTP on %s", httpAddr)
		return http.ListenAndServe(httpAddr, mux)
	}

	digest := sha256.Sum256([]byte("hello world"))
	var rebaseScalar [32]byte
	rebaseScalar[31] = 4 // fixed rebase scalar for the demo path

	sig, err := shell.RunDemo(ctx, threshold_, randomPrimes(), rebaseScalar, digest)
	if err != nil {
		return err
	}
	shell.Log.Printf("signature: %x", sig.Bytes())
	return nil
}

func randomPrimes() threshold.Primes {
	p, _ := rand.Prime(rand.Reader, 1024)
	q, _ := rand.Prime(rand.Reader, 1024)
	return threshold.Primes{P: p, Q: q}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
