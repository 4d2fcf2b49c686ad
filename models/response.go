package models

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SessionStatus feeds the navigation chrome (cart badge, login state).
type SessionStatus struct {
	ItemCount   int    `json:"item_count"`
	LoggedIn    bool   `json:"logged_in"`
	DisplayName string `json:"display_name,omitempty"`
}
