package handlers

import (
	"context"
	"encoding/json"
	"net/http"
)

// SyncStateRepository é o pedaço do repositório que o endpoint
// administrativo enxerga
type SyncStateRepository interface {
	SyncState(ctx context.Context) (string, error)
	ResetInitialSync(ctx context.Context) error
}

// SyncHandler expõe o estado do backfill inicial e o rearme manual do
// portão (para reimportar depois de limpar a conta no Omnisend).
type SyncHandler struct {
	Repo SyncStateRepository
}

func NewSyncHandler(repo SyncStateRepository) *SyncHandler {
	return &SyncHandler{Repo: repo}
}

// HandleGetState (GET /sync/state)
func (h *SyncHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.Repo.SyncState(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"state": state})
}

// HandleReset (POST /sync/reset)
func (h *SyncHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.ResetInitialSync(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
