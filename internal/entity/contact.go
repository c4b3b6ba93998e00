package entity

// Status de inscrição que o Omnisend reconhece por canal (email/sms)
const (
	StatusSubscribed   = "subscribed"
	StatusUnsubscribed = "unsubscribed"
	// Vazio ("") significa que o canal nunca recebeu consentimento — usado no backfill
)

// Entidade: Contact
// Representação de uma pessoa no Omnisend. Nunca é persistida localmente:
// montamos, enviamos e descartamos dentro da mesma requisição/tick.
type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`

	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Address    string `json:"address"` // linha 1 + linha 2 concatenadas
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`

	// Consentimento por canal: a origem (tag fixa) e o status atual
	EmailConsent string `json:"email_consent"`
	EmailStatus  string `json:"email_status"`
	PhoneConsent string `json:"phone_consent"`
	PhoneStatus  string `json:"phone_status"`

	Tags             []string               `json:"tags"`
	CustomProperties map[string]interface{} `json:"custom_properties"`

	WelcomeEmail bool `json:"welcome_email"`
}

func (c *Contact) AddTag(tag string) {
	for _, t := range c.Tags {
		if t == tag {
			return
		}
	}
	c.Tags = append(c.Tags, tag)
}

func (c *Contact) AddCustomProperty(key string, value interface{}) {
	if c.CustomProperties == nil {
		c.CustomProperties = map[string]interface{}{}
	}
	c.CustomProperties[key] = value
}

// StringListProperty lê uma custom property como lista de strings.
// O contato vindo da API chega com []interface{} por causa do decode JSON,
// então precisamos converter aqui antes de mexer nas listas de cursos/memberships.
func (c *Contact) StringListProperty(key string) []string {
	raw, ok := c.CustomProperties[key]
	if !ok || raw == nil {
		return nil
	}

	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}

	return nil
}
