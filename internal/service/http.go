package service

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/luxfi/stealthmpc/internal/bn254"
	"github.com/luxfi/stealthmpc/internal/keyshare"
	"github.com/luxfi/stealthmpc/internal/party"
	"github.com/luxfi/stealthmpc/internal/stealth"
	"github.com/luxfi/stealthmpc/internal/threshold"
)

// Handler serves the HTTP surface: healthcheck, key-generation, and
// sign-transaction, all over net/http directly. No framework dependency
// is warranted for three routes.
type Handler struct {
	Shell  *Shell
	Primes func() threshold.Primes
}

// Routes registers the three endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/healthchecker", h.healthcheck)
	mux.HandleFunc("/key-generation", h.keyGeneration)
	mux.HandleFunc("/sign-transaction", h.signTransaction)
}

func (h *Handler) healthcheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "stealthmpc party is running"})
}

func (h *Handler) keyGeneration(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	n, err := strconv.Atoi(q.Get("n"))
	if err != nil {
		writeError(w, fmt.Errorf("parse n: %w", err))
		return
	}
	localPartyID, err := strconv.Atoi(q.Get("local_party_id"))
	if err != nil {
		writeError(w, fmt.Errorf("parse local_party_id: %w", err))
		return
	}
	t, err := strconv.Atoi(q.Get("t"))
	if err != nil {
		writeError(w, fmt.Errorf("parse t: %w", err))
		return
	}
	execID := []byte(q.Get("exec_id"))

	cfg := threshold.Config{
		ExecID:    execID,
		Self:      party.ID(localPartyID),
		Parties:   party.Range(uint16(n)),
		Threshold: t,
	}

	share, err := threshold.Keygen(r.Context(), cfg, h.Shell.Bus)
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := share.MarshalBinary()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"incomplete_key_share": hex.EncodeToString(data)})
}

func (h *Handler) signTransaction(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	n, err := strconv.Atoi(q.Get("n"))
	if err != nil {
		writeError(w, fmt.Errorf("parse n: %w", err))
		return
	}
	localPartyID, err := strconv.Atoi(q.Get("local_party_id"))
	if err != nil {
		writeError(w, fmt.Errorf("parse local_party_id: %w", err))
		return
	}
	execID := []byte(q.Get("exec_id"))

	shareBytes, err := hex.DecodeString(q.Get("incomplete_key_share"))
	if err != nil {
		writeError(w, fmt.Errorf("decode incomplete_key_share: %w", err))
		return
	}
	incomplete, err := keyshare.UnmarshalIncompleteKeyShare(shareBytes)
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := bn254.G1FromHex(q.Get("entry"))
	if err != nil {
		writeError(w, fmt.Errorf("decode entry: %w", err))
		return
	}
	viewingSK, err := bn254.ScalarFromHex(q.Get("viewing_sk"))
	if err != nil {
		writeError(w, fmt.Errorf("decode viewing_sk: %w", err))
		return
	}
	viewTagVersion, err := strconv.Atoi(q.Get("view_tag_version"))
	if err != nil {
		writeError(w, fmt.Errorf("parse view_tag_version: %w", err))
		return
	}
	viewtagBytes, err := hex.DecodeString(q.Get("viewtag"))
	if err != nil || len(viewtagBytes) != 1 {
		writeError(w, fmt.Errorf("decode viewtag: expected 1 byte"))
		return
	}

	b, err := stealth.MPCRebaseScalar(entry, viewingSK, viewtagBytes[0], viewTagVersion)
	if err != nil {
		writeError(w, err)
		return
	}

	cfg := threshold.Config{
		ExecID:    execID,
		Self:      party.ID(localPartyID),
		Parties:   party.Range(uint16(n)),
		Threshold: len(incomplete.PublicShares),
	}

	aux, err := threshold.AuxInfoGen(r.Context(), cfg, h.Shell.Bus, h.Primes())
	if err != nil {
		writeError(w, err)
		return
	}

	rebased, err := keyshare.RebaseWithScalar(*incomplete, b, *aux)
	if err != nil {
		writeError(w, err)
		return
	}

	var digest [32]byte
	msgDigest, err := hex.DecodeString(q.Get("digest"))
	if err == nil && len(msgDigest) == 32 {
		copy(digest[:], msgDigest)
	}

	sig, err := threshold.Sign(r.Context(), cfg, h.Shell.Bus, *rebased, digest)
	if err != nil {
		writeError(w, err)
		return
	}

	sigBytes := sig.Bytes()
	writeJSON(w, http.StatusOK, map[string]string{"signature": hex.EncodeToString(sigBytes[:])})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
