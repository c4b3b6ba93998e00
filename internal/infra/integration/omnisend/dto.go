package omnisend

import "github.com/xavierca1/omnisend-sync/internal/entity"

// Métodos aceitos pelo endpoint de batch
const (
	MethodCreate = "create"
	MethodUpsert = "upsert"
)

// --- PAYLOADS: O que o Client manda para o Omnisend (Interno) ---

type contactRequest struct {
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`

	EmailConsent string `json:"emailConsent,omitempty"`
	EmailStatus  string `json:"emailStatus,omitempty"`
	PhoneConsent string `json:"smsConsent,omitempty"`
	PhoneStatus  string `json:"smsStatus,omitempty"`

	Tags             []string               `json:"tags,omitempty"`
	CustomProperties map[string]interface{} `json:"customProperties,omitempty"`

	SendWelcomeEmail bool `json:"sendWelcomeEmail,omitempty"`
}

type contactResponse struct {
	ContactID string `json:"contactID"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`

	EmailStatus string `json:"emailStatus"`
	PhoneStatus string `json:"smsStatus"`

	Tags             []string               `json:"tags"`
	CustomProperties map[string]interface{} `json:"customProperties"`
}

type listContactsResponse struct {
	Contacts []contactResponse `json:"contacts"`
}

type batchRequest struct {
	Method   string           `json:"method"`
	Endpoint string           `json:"endpoint"`
	Items    []contactRequest `json:"items"`
}

type apiError struct {
	Error string `json:"error"`
}

// --- RESPOSTAS: O que o Service enxerga ---

// SaveContactResponse carrega o resultado de um save único.
// Err preenchido = falha na camada da API (o validator decide o resto).
type SaveContactResponse struct {
	ContactID string
	Err       string
}

// GetContactResponse embala o contato remoto ou o erro da busca
type GetContactResponse struct {
	Contact *entity.Contact
	Err     string
}
