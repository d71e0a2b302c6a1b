package models

// CredentialRecord is a stored identity plus its bcrypt password hash.
// Username is the key; at most one record exists per username.
type CredentialRecord struct {
	Username     string `json:"username" db:"username"`
	PasswordHash []byte `json:"-" db:"password_hash"`
	Disabled     bool   `json:"disabled" db:"disabled"`
	DisplayName  string `json:"display_name,omitempty" db:"display_name"`
	Email        string `json:"email,omitempty" db:"email"`
}

// Identity returns the descriptive part of the record.
func (r *CredentialRecord) Identity() *Identity {
	return &Identity{
		Username:    r.Username,
		DisplayName: r.DisplayName,
		Email:       r.Email,
	}
}
