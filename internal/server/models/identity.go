// Package models holds the data types shared by the sentinel server layers.
package models

// Identity is who a caller is once authenticated. DisplayName and Email are
// descriptive only and never take part in an authentication decision.
type Identity struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
}
