// Command peeridgen emits a freshly generated Ed25519 keypair as the
// JSON-encoded byte array identity.Load expects, plus its derived peer
// id, for operator provisioning ahead of starting a party process.
//
// Grounded on original_source/src/scripts/peer_id_gen.rs.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/spf13/cobra"
)

var writeTo string

var rootCmd = &cobra.Command{
	Use:   "peeridgen",
	Short: "generate an Ed25519 keypair and its libp2p peer id",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVarP(&writeTo, "out", "o", "", "write the keypair JSON to this file instead of stdout")
}

func run(cmd *cobra.Command, args []string) error {
	priv, pub, err := crypto.GenerateEd25519Key(nil)
	if err != nil {
		return fmt.Errorf("peeridgen: generate keypair: %w", err)
	}

	protoBytes, err := crypto.MarshalPrivateKey(priv)
	if err != nil {
		return fmt.Errorf("peeridgen: marshal keypair: %w", err)
	}
	keypairJSON, err := json.Marshal(protoBytes)
	if err != nil {
		return fmt.Errorf("peeridgen: encode keypair json: %w", err)
	}

	id, err := peer.IDFromPublicKey(pub)
	if err != nil {
		return fmt.Errorf("peeridgen: derive peer id: %w", err)
	}

	if writeTo != "" {
		if err := os.WriteFile(writeTo, keypairJSON, 0o600); err != nil {
			return fmt.Errorf("peeridgen: write %s: %w", writeTo, err)
		}
	} else {
		fmt.Println(string(keypairJSON))
	}
	fmt.Println(id.String())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
