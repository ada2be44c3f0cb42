package constants

// Session and context keys
const (
	SessionCookieName = "progress_session"
	ContextKeyUserID  = "user_id"
	ContextKeyRequest = "request_id"
	ContextKeyProject = "project"
	ContextKeyMember  = "project_member"
	ContextKeyTask    = "task"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const MinPasswordLength = 8

// AI drafting
const MaxAIGeneratedTasks = 20

// Headers
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderRequestID      = "X-Request-ID"
)
