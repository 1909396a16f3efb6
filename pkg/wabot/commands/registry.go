// Package commands implements the command registry, the dispatch/permission
// pipeline, and the built-in handler set.
package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/ntandomods/wabot/pkg/wabot/ingest"
)

// Role is the permission a command requires.
type Role int

const (
	RoleAnyone Role = iota
	RoleGroupAdmin
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleGroupAdmin:
		return "group admin"
	case RoleOwner:
		return "owner"
	default:
		return "anyone"
	}
}

// HandlerFunc executes a command. The returned string, if non-empty, is sent
// to the chat as the reply; errors are mapped to user-facing messages by the
// router.
type HandlerFunc func(ctx context.Context, inv *ingest.Invocation) (string, error)

// Spec declares a command: its handler plus the metadata that drives both
// authorization and the !help listing. Keeping them in one place means help
// output cannot drift from what actually dispatches.
type Spec struct {
	Name     string
	Summary  string
	Usage    string
	Category string
	Role     Role
	// GroupOnly commands answer with a group-only notice outside groups.
	GroupOnly bool
	Run       HandlerFunc
}

// Registry maps normalized command names to specs. It is built once at
// startup and read-only afterwards.
type Registry struct {
	specs map[string]Spec
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]Spec)}
}

// Register adds a command. Names are case-normalized and must be unique.
func (r *Registry) Register(s Spec) error {
	name := strings.ToLower(s.Name)
	if name == "" {
		return fmt.Errorf("command name must not be empty")
	}
	if s.Run == nil {
		return fmt.Errorf("command %q has no handler", name)
	}
	if _, exists := r.specs[name]; exists {
		return fmt.Errorf("command %q already registered", name)
	}
	s.Name = name
	r.specs[name] = s
	r.order = append(r.order, name)
	return nil
}

// Lookup resolves a normalized command name.
func (r *Registry) Lookup(name string) (Spec, bool) {
	s, ok := r.specs[strings.ToLower(name)]
	return s, ok
}

// List returns all specs in registration order.
func (r *Registry) List() []Spec {
	out := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}
