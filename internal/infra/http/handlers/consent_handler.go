package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xavierca1/omnisend-sync/internal/mapper"
	"github.com/xavierca1/omnisend-sync/internal/usecase"
)

// ConsentReader é o pedaço do service que o formulário de perfil usa
type ConsentReader interface {
	ConsentSnapshot(ctx context.Context, email string) usecase.ConsentSnapshot
	UpdateConsent(ctx context.Context, fields mapper.FormFields, email string)
}

// ConsentHandler serve o estado de consentimento para o WordPress
// pré-marcar os checkboxes, e recebe a reconciliação antes do save.
type ConsentHandler struct {
	Service ConsentReader
}

func NewConsentHandler(service ConsentReader) *ConsentHandler {
	return &ConsentHandler{Service: service}
}

// HandleGetSnapshot (GET /consent?email=...)
// Sem email (sem sessão no WP), os dois canais voltam false.
func (h *ConsentHandler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	snapshot := h.Service.ConsentSnapshot(r.Context(), email)

	response := map[string]interface{}{
		"email": false,
		"sms":   false,
	}
	if snapshot.Email != "" {
		response["email"] = snapshot.Email
	}
	if snapshot.SMS != "" {
		response["sms"] = snapshot.SMS
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleReconcile (POST /consent/reconcile)
// Sincroniza o estado exibido com o remoto antes do save do perfil
func (h *ConsentHandler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email  string            `json:"email"`
		Fields map[string]string `json:"fields"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	if input.Email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	h.Service.UpdateConsent(r.Context(), mapper.FormFields(sanitizeFields(input.Fields)), input.Email)

	w.WriteHeader(http.StatusNoContent)
}
