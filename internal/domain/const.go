package domain

// Request context keys set by the auth middleware.
const (
	SessionCtxKey = "assistra-session"
)
