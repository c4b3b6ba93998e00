package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/omnisend-sync/internal/infra/queue"
)

// MockProducer
type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) PublishLifecycleEvent(ctx context.Context, ev queue.LifecycleEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func postWebhook(t *testing.T, handler *WebhookHandler, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/lifterlms", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)
	return rec
}

// TestWebhookAcceptsValidEvent - evento válido entra na fila e responde 202
func TestWebhookAcceptsValidEvent(t *testing.T) {
	producer := new(MockProducer)
	handler := NewWebhookHandler(producer)

	var published queue.LifecycleEvent
	producer.On("PublishLifecycleEvent", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			published = args.Get(1).(queue.LifecycleEvent)
		}).
		Return(nil)

	rec := postWebhook(t, handler, map[string]interface{}{
		"event":     queue.EventCourseEnrolled,
		"user_id":   7,
		"email":     "  aluno@example.com ",
		"course_id": 42,
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.NotEmpty(t, published.ID)
	assert.Equal(t, queue.EventCourseEnrolled, published.Event)
	assert.Equal(t, "aluno@example.com", published.Email)
	assert.Equal(t, 42, published.CourseID)
}

// TestWebhookSanitizesFields - chave fora da whitelist não chega na fila
func TestWebhookSanitizesFields(t *testing.T) {
	producer := new(MockProducer)
	handler := NewWebhookHandler(producer)

	var published queue.LifecycleEvent
	producer.On("PublishLifecycleEvent", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			published = args.Get(1).(queue.LifecycleEvent)
		}).
		Return(nil)

	rec := postWebhook(t, handler, map[string]interface{}{
		"event": queue.EventUserRegistered,
		"fields": map[string]string{
			"email_address":    " novo@example.com ",
			"llmsconsentEmail": "1",
			"wp_capabilities":  "administrator", // não passa
			"password":         "hunter2",       // não passa
		},
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, map[string]string{
		"email_address":    "novo@example.com",
		"llmsconsentEmail": "1",
	}, published.Fields)
}

// TestWebhookIgnoresUnknownEvent - 200 sem publicar, senão o WP reenvia para sempre
func TestWebhookIgnoresUnknownEvent(t *testing.T) {
	producer := new(MockProducer)
	handler := NewWebhookHandler(producer)

	rec := postWebhook(t, handler, map[string]interface{}{
		"event": "user.deleted",
		"email": "a@example.com",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	producer.AssertNotCalled(t, "PublishLifecycleEvent")
}

// TestWebhookRejectsMalformedJSON
func TestWebhookRejectsMalformedJSON(t *testing.T) {
	producer := new(MockProducer)
	handler := NewWebhookHandler(producer)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/lifterlms", bytes.NewReader([]byte("{nope")))
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	producer.AssertNotCalled(t, "PublishLifecycleEvent")
}

// TestWebhookQueueFailure - fila fora do ar responde 500 para o WP reenviar depois
func TestWebhookQueueFailure(t *testing.T) {
	producer := new(MockProducer)
	handler := NewWebhookHandler(producer)

	producer.On("PublishLifecycleEvent", mock.Anything, mock.Anything).
		Return(assert.AnError)

	rec := postWebhook(t, handler, map[string]interface{}{
		"event":         queue.EventMembershipAdded,
		"email":         "a@example.com",
		"membership_id": 3,
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
