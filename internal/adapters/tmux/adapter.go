// Package tmux contains the gotmux implementation of the session
// manager used for manual intervention on blocked tasks.
package tmux

import (
	"context"
	"fmt"

	"github.com/GianlucaP106/gotmux/gotmux"

	"github.com/example/foreman/internal/ports/secondary"
)

// Adapter implements secondary.SessionManager with gotmux.
type Adapter struct {
	tmux *gotmux.Tmux
}

// NewAdapter creates a new tmux session manager.
func NewAdapter() (*Adapter, error) {
	t, err := gotmux.DefaultTmux()
	if err != nil {
		return nil, fmt.Errorf("failed to create tmux client: %w", err)
	}
	return &Adapter{tmux: t}, nil
}

// CreateSession creates a detached session rooted at workingDir.
func (a *Adapter) CreateSession(ctx context.Context, name, workingDir string) error {
	_, err := a.tmux.NewSession(&gotmux.SessionOptions{
		Name:           name,
		StartDirectory: workingDir,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// SessionExists checks if a session exists.
func (a *Adapter) SessionExists(ctx context.Context, name string) bool {
	sessions, err := a.tmux.ListSessions()
	if err != nil {
		return false
	}
	for _, s := range sessions {
		if s.Name == name {
			return true
		}
	}
	return false
}

// AttachCommand returns the argv for attaching to a session from the
// current terminal.
func (a *Adapter) AttachCommand(name string) []string {
	return []string{"tmux", "attach", "-t", name}
}

// Ensure Adapter implements the interface
var _ secondary.SessionManager = (*Adapter)(nil)
