package permit

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/tbran/voltbot/internal/rank"
)

// Rule is a minimum authority level required to invoke a command.
type Rule struct {
	Rank int `yaml:"rank"`
}

// Special is a room-level exception naming specific users, optionally
// restricted to a single argument substring. An empty Arg matches any
// argument.
type Special struct {
	Users []string `yaml:"users"`
	Arg   string   `yaml:"arg"`
}

// RoomConfig carries one room's permission overrides.
type RoomConfig struct {
	Commands map[string]Rule    `yaml:"commands"`
	Special  map[string]Special `yaml:"special"`
	Owners   []string           `yaml:"owners"`
}

// Config is the full permission data set: per-room overrides, the global
// fallback, and the bot owner list. It is read-only after load.
type Config struct {
	Global map[string]Rule       `yaml:"global"`
	Rooms  map[string]RoomConfig `yaml:"rooms"`
	Owners []string              `yaml:"owners"`
}

// Load parses a permission config from YAML bytes. User lists are
// canonicalized to UserIDs so lookups never depend on display casing.
func Load(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse permission config: %w", err)
	}
	cfg.Owners = toIDs(cfg.Owners)
	for name, room := range cfg.Rooms {
		room.Owners = toIDs(room.Owners)
		for cmd, sp := range room.Special {
			sp.Users = toIDs(sp.Users)
			room.Special[cmd] = sp
		}
		cfg.Rooms[name] = room
	}
	return &cfg, nil
}

// LoadFile reads and parses a permission config file.
func LoadFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read permission config: %w", err)
	}
	return Load(b)
}

func toIDs(users []string) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		if id := rank.ToID(u); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
