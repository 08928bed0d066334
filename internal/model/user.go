package model

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionInfo is what the console reports about the caller's token. Nothing
// in it has been verified.
type SessionInfo struct {
	Subject   string `json:"subject"`
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
	Role      string `json:"role,omitempty"`
	OrgID     string `json:"org_id,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Expired   bool   `json:"expired"`
}

type LoginResponse struct {
	Token   string      `json:"token"`
	Session SessionInfo `json:"session"`
}

type OpenViewRequest struct {
	Collection string `json:"collection" validate:"required"`
}

type SearchRequest struct {
	Term string `json:"term"`
}

type SortRequest struct {
	Field string `json:"field" validate:"required"`
}
