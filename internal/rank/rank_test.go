package rank

import "testing"

func TestLevelOf(t *testing.T) {
	cases := []struct {
		sym  rune
		want int
	}{
		{' ', 0},
		{'+', 1},
		{'%', 2},
		{'@', 3},
		{'*', 4},
		{'&', 5},
		{'#', 6},
		{'~', 7},
		{'?', 0}, // unrecognized symbols fall back to regular user
		{'!', 0},
	}
	for _, c := range cases {
		if got := LevelOf(c.sym); got != c.want {
			t.Errorf("LevelOf(%q) = %d, want %d", c.sym, got, c.want)
		}
	}
}

func TestToID(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"%ansena", "ansena"},
		{" ansena", "ansena"},
		{"DaWoblefet", "dawoblefet"},
		{"Some User-99", "someuser99"},
		{"+Bright Size", "brightsize"},
		{"", ""},
	}
	for _, c := range cases {
		if got := ToID(c.in); got != c.want {
			t.Errorf("ToID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTrimStatus(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"ansena@busy", "ansena"},
		{"@modname", "modname"},
		{"@modname@!away", "modname"},
		{"plainname", "plainname"},
		{"a@b@c", "a"},
	}
	if got := ToID(TrimStatus("@Wobb@!away")); got != "wobb" {
		t.Errorf("ToID(TrimStatus(%q)) = %q, want %q", "@Wobb@!away", got, "wobb")
	}
	for _, c := range cases {
		if got := TrimStatus(c.in); got != c.want {
			t.Errorf("TrimStatus(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPMRoomTags(t *testing.T) {
	if !IsPM(",ansena") {
		t.Error("expected ,ansena to be a PM room tag")
	}
	if IsPM("vgc") {
		t.Error("vgc is not a PM room tag")
	}
	if got := PMTarget(",ansena"); got != "ansena" {
		t.Errorf("PMTarget = %q, want ansena", got)
	}
	if got := PMTarget("vgc"); got != "" {
		t.Errorf("PMTarget on room = %q, want empty", got)
	}
}

func TestSymbol(t *testing.T) {
	if got := Symbol("%ansena"); got != '%' {
		t.Errorf("Symbol = %q, want %%", got)
	}
	if got := Symbol(""); got != ' ' {
		t.Errorf("Symbol of empty identity = %q, want space", got)
	}
}
