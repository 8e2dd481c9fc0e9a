package workflow

import (
	"fmt"
	"sort"
	"sync"
)

// Info describes a registered workflow for listings.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Registry is the process-wide name-to-workflow lookup table. It is
// populated once at startup and read-only afterwards; the lock exists for
// the registration phase, not for steady-state contention.
type Registry struct {
	mu        sync.RWMutex
	workflows map[string]Workflow
}

// NewRegistry creates an empty workflow registry.
func NewRegistry() *Registry {
	return &Registry{workflows: make(map[string]Workflow)}
}

// Register adds a workflow under its name. Registering the same name twice
// is a programming error and is rejected.
func (r *Registry) Register(w Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := w.Name()
	if name == "" {
		return fmt.Errorf("workflow has empty name")
	}
	if _, exists := r.workflows[name]; exists {
		return fmt.Errorf("workflow %q already registered", name)
	}
	r.workflows[name] = w
	return nil
}

// Get looks a workflow up by name. A miss is a normal outcome, reported via
// the boolean; callers turn it into their own "unknown workflow" error.
func (r *Registry) Get(name string) (Workflow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.workflows[name]
	return w, ok
}

// List returns all registered workflows sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.workflows))
	for _, w := range r.workflows {
		infos = append(infos, Info{Name: w.Name(), Description: w.Description()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
