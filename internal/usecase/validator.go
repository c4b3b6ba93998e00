package usecase

import (
	"log"

	"github.com/xavierca1/omnisend-sync/internal/infra/integration/omnisend"
)

// ResponseValidator é o único portão entre "sync deu certo" e "trata como
// falha". Não existe sucesso parcial: ou a resposta está limpa, ou a
// chamada inteira vira no-op.
type ResponseValidator struct{}

func NewResponseValidator() *ResponseValidator {
	return &ResponseValidator{}
}

func (v *ResponseValidator) IsValid(response *omnisend.SaveContactResponse) bool {
	if response == nil {
		return false
	}

	if response.Err != "" {
		log.Printf("❌ Omnisend recusou o contato: %s", response.Err)
		return false
	}

	if response.ContactID == "" {
		return false
	}

	return true
}
