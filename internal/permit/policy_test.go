package permit

import "testing"

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load([]byte(`
global:
  samples: {rank: 0}
  usage: {rank: 0}
  joke: {rank: 2}
  tour: {rank: 2}
owners:
  - blarajan
rooms:
  vgc:
    owners:
      - ansena
      - rapha
    commands:
      joke: {rank: 2}
      tour: {rank: 3}
    special:
      blog:
        users: [ansena]
      tour:
        users: [legavgc]
        arg: vgc13
  dou:
    commands:
      joke: {rank: 1}
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func TestResolveRoomRank(t *testing.T) {
	cfg := testConfig(t)
	cases := []struct {
		cmd, room, identity, arg string
		want                     Verdict
	}{
		// driver meets the room minimum
		{"joke", "vgc", "%ansena", "", Allowed},
		// voice falls short of the room minimum and the room owns the decision
		{"joke", "vgc", "+someone", "", Denied},
		// room override beats the looser global fallback
		{"tour", "vgc", " ansena", "", Denied},
		{"tour", "vgc", "+someone", "", Denied},
		// no room override elsewhere: global rank 2 applies directly
		{"tour", "elsewhere", "%driver", "", Allowed},
		{"tour", "elsewhere", " pleb", "", Denied},
		// rank-0 global commands are PM-only for unprivileged users in rooms
		{"samples", "vgc", " pleb", "", AllowedInPrivateOnly},
		{"samples", "vgc", "+voice", "", Allowed},
		{"samples", ",pleb", " pleb", "", Allowed},
		// unknown command in unknown room fails closed
		{"nosuch", "nowhere", "#owner", "", Denied},
	}
	for _, c := range cases {
		if got := cfg.Resolve(c.cmd, c.room, c.identity, c.arg); got != c.want {
			t.Errorf("Resolve(%q, %q, %q, %q) = %v, want %v", c.cmd, c.room, c.identity, c.arg, got, c.want)
		}
	}
}

func TestResolveSpecialException(t *testing.T) {
	cfg := testConfig(t)

	// named user, no arg restriction
	if got := cfg.Resolve("blog", "vgc", "%ansena", ""); got != Allowed {
		t.Errorf("special user: got %v, want Allowed", got)
	}
	if got := cfg.Resolve("blog", "vgc", "%mish", ""); got != Denied {
		t.Errorf("non-listed user: got %v, want Denied", got)
	}
	if got := cfg.Resolve("blog", "notvgc", "%ansena", ""); got != Denied {
		t.Errorf("special exception is room-scoped: got %v, want Denied", got)
	}

	// named user restricted to a single argument
	if got := cfg.Resolve("tour", "vgc", " legavgc", "vgc13"); got != Allowed {
		t.Errorf("special arg match: got %v, want Allowed", got)
	}
	if got := cfg.Resolve("tour", "vgc", " legavgc", "vgc20"); got != Denied {
		t.Errorf("special arg mismatch: got %v, want Denied", got)
	}
}

func TestResolveRelayRoomOwner(t *testing.T) {
	cfg := testConfig(t)

	// room owner of vgc relaying into vgc from a PM
	if got := cfg.Resolve("custom", ",rapha", "+rapha", "[vgc] hello"); got != Allowed {
		t.Errorf("room owner relay: got %v, want Allowed", got)
	}
	// not an owner of the target room
	if got := cfg.Resolve("custom", ",mish", "+mish", "[vgc] hello"); got != Denied {
		t.Errorf("non-owner relay: got %v, want Denied", got)
	}
	// relay ownership only applies in PMs
	if got := cfg.Resolve("custom", "vgc", "+rapha", "[vgc] hello"); got != Denied {
		t.Errorf("relay in public room: got %v, want Denied", got)
	}
	// unknown target room fails closed
	if got := cfg.Resolve("custom", ",rapha", "+rapha", "[nosuch] hi"); got != Denied {
		t.Errorf("unknown target room: got %v, want Denied", got)
	}
}

func TestResolveOwnerOverride(t *testing.T) {
	cfg := testConfig(t)

	// bot owners always win, even against room-level denials and even in PMs
	if got := cfg.Resolve("custom", ",blarajan", "+blarajan", "[vgc] hello"); got != Allowed {
		t.Errorf("owner override relay: got %v, want Allowed", got)
	}
	if got := cfg.Resolve("tour", "vgc", " blarajan", ""); got != Allowed {
		t.Errorf("owner override room denial: got %v, want Allowed", got)
	}
	if got := cfg.Resolve("nosuch", "nowhere", " blarajan", ""); got != Allowed {
		t.Errorf("owner override unknown command: got %v, want Allowed", got)
	}
}

func TestResolveStatusSuffixStripped(t *testing.T) {
	cfg := testConfig(t)
	if got := cfg.Resolve("blog", "vgc", "%ansena@!busy", ""); got != Allowed {
		t.Errorf("status suffix should be stripped before ID derivation: got %v", got)
	}
}

func TestMalformedSpecialTreatedAsAbsent(t *testing.T) {
	cfg, err := Load([]byte(`
rooms:
  vgc:
    special:
      blog: {}
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Resolve("blog", "vgc", "%ansena", ""); got != Denied {
		t.Errorf("empty special entry must not authorize: got %v", got)
	}
}
