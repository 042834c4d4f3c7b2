package domain

// Identity is the verified caller as reported by the session collaborator.
type Identity struct {
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id,omitempty"`
}
