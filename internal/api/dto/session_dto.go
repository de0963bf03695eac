package dto

// LoginRequest payload.
type LoginRequest struct {
	Agent string `json:"agent"`
}

// LoginResponse carries the bearer token for subsequent calls.
type LoginResponse struct {
	Token string `json:"token"`
	Agent string `json:"agent"`
}

// SessionResponse reports the live session state.
type SessionResponse struct {
	Agent            string `json:"agent"`
	ConfirmingFinish bool   `json:"confirming_finish"`
}

// AgentResponse is one login selector entry.
type AgentResponse struct {
	Name string `json:"name"`
}
