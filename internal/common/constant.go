// Package common contains constants and small helpers shared by the client
// and the dev backend.
package common

// RequestIDHeaderName carries a per-call identifier for log correlation.
const RequestIDHeaderName = "X-Request-ID"

// Persisted metadata keys.
const (
	KeyToken         = "token"
	KeyEmail         = "email"
	KeyUserID        = "userId"
	KeyUserRole      = "userRole"
	KeySetupProgress = "setupProgress"
)

// ResendCooldownSeconds is the default wait before another OTP may be
// requested.
const ResendCooldownSeconds = 30
