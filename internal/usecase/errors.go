package usecase

// DomainError: falha esperada do negócio (evento desconhecido,
// contato inexistente no Omnisend). Não vale retry.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

// TechnicalError: falha de infraestrutura (Omnisend ou WordPress fora
// do ar). Também não vale retry aqui — a mensagem vai para a DLQ e um
// operador decide o replay.
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}
