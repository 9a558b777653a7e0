// Package identity loads a party's libp2p-compatible Ed25519 keypair from
// its on-disk identity file: data/party_{i}_key.json, a
// JSON-encoded byte array containing the protobuf encoding of the
// keypair.
package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/libp2p/go-libp2p/core/crypto"

	"github.com/luxfi/stealthmpc/internal/party"
)

// ConfigError is returned for a missing or malformed identity file
//.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("identity: %s: %s", e.Path, e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

// Path returns the conventional identity file path for a party index,
// rooted at dataDir.
func Path(dataDir string, id party.ID) string {
	return filepath.Join(dataDir, fmt.Sprintf("party_%d_key.json", id))
}

// Load reads and decodes the identity file for party id under dataDir.
func Load(dataDir string, id party.ID) (crypto.PrivKey, error) {
	path := Path(dataDir, id)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	var protoBytes []byte
	if err := json.Unmarshal(raw, &protoBytes); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("decode json byte array: %w", err)}
	}

	priv, err := crypto.UnmarshalPrivateKey(protoBytes)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("unmarshal protobuf keypair: %w", err)}
	}
	if priv.Type() != crypto.Ed25519 {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("want Ed25519 key, got %s", priv.Type())}
	}
	return priv, nil
}

// Generate creates a fresh Ed25519 keypair and writes it to dataDir in
// the same format Load expects (the format cmd/peeridgen also writes).
func Generate(dataDir string, id party.ID) (crypto.PrivKey, error) {
	priv, _, err := crypto.GenerateEd25519Key(nil)
	if err != nil {
		return nil, fmt.Errorf("identity: generate keypair: %w", err)
	}
	protoBytes, err := crypto.MarshalPrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("identity: marshal keypair: %w", err)
	}
	data, err := json.Marshal(protoBytes)
	if err != nil {
		return nil, fmt.Errorf("identity: encode json byte array: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("identity: mkdir %s: %w", dataDir, err)
	}
	if err := os.WriteFile(Path(dataDir, id), data, 0o600); err != nil {
		return nil, fmt.Errorf("identity: write %s: %w", Path(dataDir, id), err)
	}
	return priv, nil
}
