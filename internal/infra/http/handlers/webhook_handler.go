package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/xavierca1/omnisend-sync/internal/infra/queue"
	"github.com/xavierca1/omnisend-sync/internal/mapper"
)

// Campos de formulário que aceitamos do webhook. Qualquer outra chave é
// descartada antes do evento entrar na fila.
var allowedFields = map[string]bool{
	mapper.FieldEmail:           true,
	mapper.FieldPhone:           true,
	mapper.FieldFirstName:       true,
	mapper.FieldLastName:        true,
	mapper.FieldBillingZip:      true,
	mapper.FieldBillingAddress1: true,
	mapper.FieldBillingAddress2: true,
	mapper.FieldBillingState:    true,
	mapper.FieldBillingCountry:  true,
	mapper.FieldBillingCity:     true,
	mapper.FieldConsentEmail:    true,
	mapper.FieldConsentPhone:    true,
}

// WebhookHandler recebe os eventos de ciclo de vida que o plugin
// companheiro dispara do WordPress e os coloca na fila. Só extração e
// sanitização de campos — a regra de negócio mora no worker/service.
type WebhookHandler struct {
	Producer queue.ProducerInterface
}

func NewWebhookHandler(producer queue.ProducerInterface) *WebhookHandler {
	return &WebhookHandler{Producer: producer}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Event        string            `json:"event"`
		UserID       int               `json:"user_id"`
		Email        string            `json:"email"`
		CourseID     int               `json:"course_id"`
		MembershipID int               `json:"membership_id"`
		Fields       map[string]string `json:"fields"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	ev := queue.LifecycleEvent{
		ID:           uuid.New().String(),
		Event:        payload.Event,
		UserID:       payload.UserID,
		Email:        strings.TrimSpace(payload.Email),
		CourseID:     payload.CourseID,
		MembershipID: payload.MembershipID,
		Fields:       sanitizeFields(payload.Fields),
	}

	if errs := queue.ValidateLifecycleEvent(ev); len(errs) > 0 {
		// Evento que não sabemos tratar não é erro do WordPress:
		// responde 200 e ignora, senão o remetente fica reenviando
		log.Printf("⚠️ Webhook descartado (%s): %v", ev.Event, errs)
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.Producer.PublishLifecycleEvent(r.Context(), ev); err != nil {
		log.Printf("❌ Erro fila: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func sanitizeFields(raw map[string]string) map[string]string {
	if raw == nil {
		return nil
	}

	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		if allowedFields[key] {
			fields[key] = strings.TrimSpace(value)
		}
	}
	return fields
}
