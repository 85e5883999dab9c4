package secondary

import "context"

// SessionManager manages terminal sessions for manual intervention on
// blocked tasks.
type SessionManager interface {
	// CreateSession creates a named session rooted at workingDir.
	CreateSession(ctx context.Context, name, workingDir string) error

	// SessionExists checks if a session exists.
	SessionExists(ctx context.Context, name string) bool

	// AttachCommand returns the argv to exec for attaching to a
	// session from the current terminal.
	AttachCommand(name string) []string
}
