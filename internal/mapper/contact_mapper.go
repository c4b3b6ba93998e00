package mapper

import (
	"github.com/xavierca1/omnisend-sync/internal/entity"
)

// Tag de origem que todo contato criado pela integração carrega.
// Também usada como fonte do consentimento nos dois canais.
const (
	CustomPrefix  = "lifter_lms"
	ConsentPrefix = "lifter_lms"
)

const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

const (
	PropCourses     = "courses"
	PropMemberships = "memberships"
)

// Chaves dos campos como chegam dos formulários do LifterLMS.
// Consentimento é sinalizado pela PRESENÇA da chave, não pelo valor.
const (
	FieldEmail           = "email_address"
	FieldPhone           = "llms_phone"
	FieldFirstName       = "first_name"
	FieldLastName        = "last_name"
	FieldBillingZip      = "llms_billing_zip"
	FieldBillingAddress1 = "llms_billing_address_1"
	FieldBillingAddress2 = "llms_billing_address_2"
	FieldBillingState    = "llms_billing_state"
	FieldBillingCountry  = "llms_billing_country"
	FieldBillingCity     = "llms_billing_city"
	FieldConsentEmail    = "llmsconsentEmail"
	FieldConsentPhone    = "llmsconsentPhone"
)

// FormFields é o payload cru já sanitizado pelos bindings de evento.
// Campo ausente vale string vazia — nunca falhamos por campo faltando.
type FormFields map[string]string

// NewContact monta o contato de um registro novo.
// Com consentimento desligado os dois canais entram como subscribed
// (legado opt-out); ligado, o status vem da presença da flag de cada canal.
func NewContact(fields FormFields, consentEnabled bool) *entity.Contact {
	contact := baseContact(fields)
	contact.Email = fields[FieldEmail]
	contact.WelcomeEmail = true

	applyConsent(contact, fields, consentEnabled)
	contact.AddTag(CustomPrefix)

	return contact
}

// UpdatedContact segue as mesmas regras do NewContact, mas a identidade
// vem do usuário autenticado, não do formulário. Um form adulterado não
// consegue sequestrar o contato de outro email.
func UpdatedContact(fields FormFields, currentEmail string, consentEnabled bool) *entity.Contact {
	contact := baseContact(fields)
	contact.Email = currentEmail
	contact.WelcomeEmail = true

	applyConsent(contact, fields, consentEnabled)
	contact.AddTag(CustomPrefix)

	return contact
}

// ContactFromUserInfo é o caminho do backfill: sem consentimento nenhum
// (status fica vazio nos dois canais — consentimento só nasce nos fluxos
// ao vivo) e com as listas de cursos/memberships preenchidas.
func ContactFromUserInfo(info *entity.UserInfo) *entity.Contact {
	contact := &entity.Contact{
		Email:      info.Email,
		Phone:      info.Phone,
		FirstName:  info.FirstName,
		LastName:   info.LastName,
		City:       info.City,
		State:      info.State,
		PostalCode: info.ZipCode,
		Country:    info.Country,
		Address:    info.Address1 + " " + info.Address2,
	}

	contact.AddCustomProperty(PropMemberships, info.Memberships)
	contact.AddCustomProperty(PropCourses, info.Courses)
	contact.AddTag(CustomPrefix)

	return contact
}

// ApplyCourseDelta devolve um contato mínimo (só email + lista de cursos)
// com o título aplicado. Add é idempotente e ignora título em branco;
// remove derruba todas as ocorrências.
func ApplyCourseDelta(existing *entity.Contact, title, action string) *entity.Contact {
	return applyListDelta(existing, PropCourses, title, action)
}

// ApplyMembershipDelta é o simétrico do ApplyCourseDelta para memberships
func ApplyMembershipDelta(existing *entity.Contact, title, action string) *entity.Contact {
	return applyListDelta(existing, PropMemberships, title, action)
}

func applyListDelta(existing *entity.Contact, prop, title, action string) *entity.Contact {
	current := existing.StringListProperty(prop)

	if !contains(current, title) && title != "" {
		if action == ActionAdd {
			current = append(current, title)
		}
	} else if contains(current, title) && action == ActionRemove {
		current = removeAll(current, title)
	}

	// Lista vazia vai explícita no payload, não omitida —
	// senão o Omnisend mantém o valor antigo da property
	if current == nil {
		current = []string{}
	}

	contact := &entity.Contact{Email: existing.Email}
	contact.AddCustomProperty(prop, current)
	contact.AddTag(CustomPrefix)

	return contact
}

func baseContact(fields FormFields) *entity.Contact {
	return &entity.Contact{
		Phone:      fields[FieldPhone],
		FirstName:  fields[FieldFirstName],
		LastName:   fields[FieldLastName],
		PostalCode: fields[FieldBillingZip],
		Address:    fields[FieldBillingAddress1] + " " + fields[FieldBillingAddress2],
		State:      fields[FieldBillingState],
		Country:    fields[FieldBillingCountry],
		City:       fields[FieldBillingCity],
	}
}

func applyConsent(contact *entity.Contact, fields FormFields, consentEnabled bool) {
	if !consentEnabled {
		contact.EmailConsent = ConsentPrefix
		contact.EmailStatus = entity.StatusSubscribed
		contact.PhoneConsent = ConsentPrefix
		contact.PhoneStatus = entity.StatusSubscribed
		return
	}

	contact.EmailConsent = ConsentPrefix
	if _, ok := fields[FieldConsentEmail]; ok {
		contact.EmailStatus = entity.StatusSubscribed
	} else {
		// Flag ausente = descadastrado, não "desconhecido"
		contact.EmailStatus = entity.StatusUnsubscribed
	}

	contact.PhoneConsent = ConsentPrefix
	if _, ok := fields[FieldConsentPhone]; ok {
		contact.PhoneStatus = entity.StatusSubscribed
	} else {
		contact.PhoneStatus = entity.StatusUnsubscribed
	}
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func removeAll(list []string, value string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item != value {
			out = append(out, item)
		}
	}
	return out
}
