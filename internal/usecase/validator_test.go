package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/omnisend-sync/internal/infra/integration/omnisend"
)

func TestIsValidCleanResponse(t *testing.T) {
	v := NewResponseValidator()

	assert.True(t, v.IsValid(&omnisend.SaveContactResponse{ContactID: "abc123"}))
}

// TestIsValidErrorWins - erro presente invalida mesmo com contact ID
func TestIsValidErrorWins(t *testing.T) {
	v := NewResponseValidator()

	response := &omnisend.SaveContactResponse{
		ContactID: "abc123",
		Err:       "rate limit exceeded",
	}

	assert.False(t, v.IsValid(response))
}

func TestIsValidMissingContactID(t *testing.T) {
	v := NewResponseValidator()

	assert.False(t, v.IsValid(&omnisend.SaveContactResponse{}))
}

func TestIsValidNilResponse(t *testing.T) {
	v := NewResponseValidator()

	assert.False(t, v.IsValid(nil))
}
