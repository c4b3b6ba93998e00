package entity

// UserInfo é o snapshot de um usuário do WordPress usado no backfill.
// Montado uma vez por iteração, vira Contact e é descartado.
type UserInfo struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipcode"`
	Country  string `json:"country"`

	// Títulos legíveis, não IDs — é assim que os dados vivem no Omnisend
	Courses     []string `json:"courses"`
	Memberships []string `json:"memberships"`
}
