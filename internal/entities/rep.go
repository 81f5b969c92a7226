package entities

// RepSummary identifies one sales representative in candidate sets and
// assignment responses.
type RepSummary struct {
	RepID     int    `json:"rep_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}
