package models

import "fmt"

// User is the identity captured from the commerce provider's auth flow.
// A visitor counts as logged in when at least one field is set.
type User struct {
	Username   string `json:"username,omitempty"`
	UsernameID string `json:"username_id,omitempty"`
}

func (u User) IsEmpty() bool {
	return u.Username == "" && u.UsernameID == ""
}

// DisplayName mirrors the storefront chrome fallback chain: username,
// then an id-derived handle, then a generic label.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if u.UsernameID != "" {
		return fmt.Sprintf("Player_%s", u.UsernameID)
	}
	return "User"
}
