package lms

// User é o que o endpoint companheiro do WordPress devolve por usuário.
// Os campos de billing vêm direto do user meta do LifterLMS.
type User struct {
	ID    int    `json:"id"`
	Email string `json:"email"`

	Roles []string `json:"roles"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"llms_phone"`
	Address1  string `json:"llms_billing_address_1"`
	Address2  string `json:"llms_billing_address_2"`
	City      string `json:"llms_billing_city"`
	State     string `json:"llms_billing_state"`
	ZipCode   string `json:"llms_billing_zip"`
	Country   string `json:"llms_billing_country"`
}

// IsAdministrator: administradores nunca entram no backfill
func (u User) IsAdministrator() bool {
	for _, role := range u.Roles {
		if role == "administrator" {
			return true
		}
	}
	return false
}

type titleResponse struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type enrollmentsResponse struct {
	IDs []int `json:"ids"`
}

type listUsersResponse struct {
	Users []User `json:"users"`
}
