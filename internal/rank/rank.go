// Package rank maps Showdown authority symbols to integer levels and
// canonicalizes user identities.
package rank

import (
	"strings"
)

// Ranks is the ordered authority alphabet. The index of a symbol is its
// level: regular user, voice, driver, moderator, bot, leader, room owner,
// administrator.
const Ranks = " +%@*&#~"

const (
	LevelRegular = iota
	LevelVoice
	LevelDriver
	LevelModerator
	LevelBot
	LevelLeader
	LevelRoomOwner
	LevelAdmin
)

// PMPrefix marks a RoomTag as a private-message exchange; the remainder of
// the tag is the correspondent's identity.
const PMPrefix = ','

// LevelOf returns the integer level for an authority symbol, or 0 when the
// symbol is not part of the alphabet.
func LevelOf(sym rune) int {
	if i := strings.IndexRune(Ranks, sym); i > 0 {
		return i
	}
	return 0
}

// HasSymbol reports whether sym is one of the symbols in set.
func HasSymbol(sym rune, set string) bool {
	return strings.ContainsRune(set, sym)
}

// Symbol returns the authority symbol encoded as the identity's first
// character, or a space when the identity is empty.
func Symbol(identity string) rune {
	if identity == "" {
		return ' '
	}
	return rune(identity[0])
}

// ToID reduces an identity to its stable join key: lower-cased with
// everything but letters and digits stripped. The authority prefix and any
// cosmetic punctuation disappear in the process.
func ToID(identity string) string {
	var b strings.Builder
	b.Grow(len(identity))
	for _, r := range strings.ToLower(identity) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TrimStatus removes a status suffix appended after an '@' separator.
// A leading '@' is the moderator rank symbol, not a status separator, so
// the name is the segment after it, still subject to status stripping.
func TrimStatus(identity string) string {
	parts := strings.SplitN(identity, "@", 3)
	if len(parts) == 1 {
		return identity
	}
	if parts[0] == "" {
		return parts[1]
	}
	return parts[0]
}

// IsPM reports whether a RoomTag denotes a private-message exchange.
func IsPM(room string) bool {
	return strings.HasPrefix(room, string(PMPrefix))
}

// PMTarget extracts the correspondent identity from a private-message
// RoomTag. Returns "" for ordinary rooms.
func PMTarget(room string) string {
	if !IsPM(room) {
		return ""
	}
	return room[1:]
}
