// Package permit decides whether a user may invoke a named command in a
// given room. Rooms may tighten or loosen any command relative to the
// global defaults, carve out named-user exceptions, and bot owners always
// win. Lookups fail closed.
package permit

import (
	"strings"

	"github.com/tbran/voltbot/internal/rank"
)

// Verdict is the outcome of a permission check.
type Verdict int

const (
	Denied Verdict = iota
	Allowed
	AllowedInPrivateOnly
)

func (v Verdict) String() string {
	switch v {
	case Allowed:
		return "allowed"
	case AllowedInPrivateOnly:
		return "allowed-in-private-only"
	default:
		return "denied"
	}
}

// RelayCommand is the command whose PM invocations may be authorized by
// target-room ownership (step 4 of Resolve).
const RelayCommand = "custom"

// Resolve decides whether identity may invoke cmd in room with the given
// raw argument. Precedence, first match wins:
//
//  1. room-level explicit rank requirement
//  2. room-level special user+argument exception
//  3. target-room ownership for the relay command in PMs
//  4. global fallback (rank-0 commands are forced into PMs for
//     unprivileged users in public rooms)
//  5. bot owner override, which also trumps a room-level denial
//
// A room that defines an explicit rule for cmd owns the decision: the
// global fallback is not consulted for it.
func (c *Config) Resolve(cmd, room, identity, arg string) Verdict {
	if c == nil {
		return Denied
	}
	sym := rank.Symbol(identity)
	level := rank.LevelOf(sym)
	userID := rank.ToID(rank.TrimStatus(identity))

	if contains(c.Owners, userID) {
		return Allowed
	}

	roomHasRule := false
	if rc, ok := c.Rooms[room]; ok {
		if rule, ok := rc.Commands[cmd]; ok {
			roomHasRule = true
			if level >= rule.Rank {
				return Allowed
			}
		}
		if sp, ok := rc.Special[cmd]; ok && len(sp.Users) > 0 {
			if contains(sp.Users, userID) && (sp.Arg == "" || strings.Contains(arg, sp.Arg)) {
				return Allowed
			}
		}
	}

	// Room owners may use the relay command from PMs against their own
	// room, named in a leading bracketed tag.
	if cmd == RelayCommand && rank.IsPM(room) {
		if target, ok := bracketedRoom(arg); ok {
			if rc, ok := c.Rooms[target]; ok && contains(rc.Owners, userID) {
				return Allowed
			}
		}
	}

	if !roomHasRule {
		if rule, ok := c.Global[cmd]; ok {
			if rule.Rank == 0 && level == 0 && !rank.IsPM(room) {
				return AllowedInPrivateOnly
			}
			if level >= rule.Rank {
				return Allowed
			}
		}
	}

	return Denied
}

// bracketedRoom extracts the room name from a leading "[room]" tag.
func bracketedRoom(arg string) (string, bool) {
	if !strings.HasPrefix(arg, "[") {
		return "", false
	}
	end := strings.Index(arg, "]")
	if end < 0 {
		return "", false
	}
	return arg[1:end], true
}
