// Package command holds the chat command registry and the built-in
// command set.
package command

import (
	"fmt"
	"sort"
)

// Ctx is the surface a handler gets to talk back through the session and
// read bot identity. Say routes to a room or to PMs depending on the room
// tag; Send writes a raw protocol line.
type Ctx interface {
	Say(room, text string)
	Send(line string)

	Nick() string
	Guide() string
	GitURL() string
	Owners() []string
	MainRoom() string

	TournamentActive() bool
	SetTournamentActive(active bool)
}

// Handler runs one command. arg is the raw text after the command name, by
// is the sender identity with its rank symbol, room is the origin room or
// a PM tag.
type Handler func(ctx Ctx, arg, by, room string)

// Registry maps command names to handlers. Aliases resolve in a single
// step at registration time, so lookups never chase chains.
type Registry struct {
	handlers map[string]Handler
	aliases  map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		aliases:  make(map[string]string),
	}
}

func (r *Registry) Register(name string, h Handler) {
	r.handlers[name] = h
}

// Alias points alias at an already registered handler name. Aliasing to
// another alias or to a missing command is rejected, which rules out
// chains and cycles by construction.
func (r *Registry) Alias(alias, canonical string) error {
	if _, ok := r.aliases[canonical]; ok {
		return fmt.Errorf("alias %q targets alias %q", alias, canonical)
	}
	if _, ok := r.handlers[canonical]; !ok {
		return fmt.Errorf("alias %q targets unknown command %q", alias, canonical)
	}
	if _, ok := r.handlers[alias]; ok {
		return fmt.Errorf("alias %q shadows a command", alias)
	}
	r.aliases[alias] = canonical
	return nil
}

// Lookup resolves name to its canonical command. Permission checks key on
// the canonical name, never the alias.
func (r *Registry) Lookup(name string) (string, Handler, bool) {
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	h, ok := r.handlers[name]
	return name, h, ok
}

// Names lists canonical command names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
