// Package input maps player input actions onto a weapon's firing controls.
package input

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownAction is returned for input that names no registered action.
var ErrUnknownAction = errors.New("unknown input action")

// Kind identifies what an action does to its Target.
type Kind int

const (
	FireStarted Kind = iota
	FireTriggered
	FireReleased
	Reload
	ToggleMode
)

// String returns the canonical action name for k.
func (k Kind) String() string {
	switch k {
	case FireStarted:
		return "fire"
	case FireTriggered:
		return "hold"
	case FireReleased:
		return "release"
	case Reload:
		return "reload"
	case ToggleMode:
		return "mode"
	default:
		return "unknown"
	}
}

// Action is a named input.
type Action struct {
	Name    string
	Aliases []string
	Help    string
	Kind    Kind
}

// BuiltinActions returns the default action table.
func BuiltinActions() []Action {
	return []Action{
		{Name: "fire", Aliases: []string{"f", "shoot"}, Help: "press the trigger", Kind: FireStarted},
		{Name: "hold", Help: "keep the trigger held", Kind: FireTriggered},
		{Name: "release", Aliases: []string{"up"}, Help: "release the trigger", Kind: FireReleased},
		{Name: "reload", Aliases: []string{"r"}, Help: "swap in a spare rack", Kind: Reload},
		{Name: "mode", Aliases: []string{"m", "toggle"}, Help: "switch between single and auto fire", Kind: ToggleMode},
	}
}

// Registry maps action names and aliases to Actions.
type Registry struct {
	actions map[string]*Action // canonical name → action
	aliases map[string]string  // alias → canonical name
}

// NewRegistry creates a Registry populated with the given actions.
//
// Precondition: No two actions may share a canonical name or alias.
// Postcondition: Returns a Registry or an error on name/alias collisions.
func NewRegistry(actions []Action) (*Registry, error) {
	r := &Registry{
		actions: make(map[string]*Action, len(actions)),
		aliases: make(map[string]string),
	}
	for i := range actions {
		a := &actions[i]
		if _, exists := r.actions[a.Name]; exists {
			return nil, fmt.Errorf("duplicate action name: %q", a.Name)
		}
		if _, exists := r.aliases[a.Name]; exists {
			return nil, fmt.Errorf("action name %q conflicts with an existing alias", a.Name)
		}
		r.actions[a.Name] = a
		for _, alias := range a.Aliases {
			if _, exists := r.actions[alias]; exists {
				return nil, fmt.Errorf("alias %q conflicts with action name %q", alias, alias)
			}
			if existing, exists := r.aliases[alias]; exists {
				return nil, fmt.Errorf("duplicate alias %q: used by %q and %q", alias, existing, a.Name)
			}
			r.aliases[alias] = a.Name
		}
	}
	return r, nil
}

// DefaultRegistry creates a Registry with the builtin actions.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinActions())
	if err != nil {
		panic(fmt.Sprintf("building default input registry: %v", err))
	}
	return r
}

// Resolve looks up an action by name or alias.
func (r *Registry) Resolve(name string) (*Action, bool) {
	if a, ok := r.actions[name]; ok {
		return a, true
	}
	if canonical, ok := r.aliases[name]; ok {
		return r.actions[canonical], true
	}
	return nil, false
}

// Actions returns all registered actions sorted by name.
func (r *Registry) Actions() []*Action {
	out := make([]*Action, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Interpret parses line and resolves its action word.
//
// Postcondition: returns ErrUnknownAction when the line is empty or names no action.
func (r *Registry) Interpret(line string) (Kind, error) {
	p := Parse(line)
	a, ok := r.Resolve(p.Action)
	if !ok {
		return 0, fmt.Errorf("%q: %w", p.Action, ErrUnknownAction)
	}
	return a.Kind, nil
}
