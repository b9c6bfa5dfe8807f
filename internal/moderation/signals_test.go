package moderation

import (
	"strings"
	"testing"
	"time"
)

func TestIsShouting(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"WHY IS EVERYONE SO LOUD IN HERE TODAY", true},
		{"why is everyone so loud in here today", false},
		{"OK", false}, // too short
		{"This Is A Normally Capitalized Long Sentence", false},
		{"STOP IT stop it STOP IT STOP IT STOP", true},
	}
	for _, c := range cases {
		if got := isShouting(c.msg); got != c.want {
			t.Errorf("isShouting(%q) = %v, want %v", c.msg, got, c.want)
		}
	}
}

func TestIsOverBolded(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"**everything in this message is bolded text**", true},
		{"a **small** bit of emphasis in a longer message", false},
		{"no markup here at all, just words and words", false},
		// unbalanced trailing delimiter is discarded before measuring
		{"plain text with a stray ** marker in a long line", false},
		{"**short**", false}, // under the length floor
	}
	for _, c := range cases {
		if got := isOverBolded(c.msg); got != c.want {
			t.Errorf("isOverBolded(%q) = %v, want %v", c.msg, got, c.want)
		}
	}
}

func TestIsStretched(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"yessssssssss", true}, // single char repeated 8+
		{"yesssss", false},     // only 5 repeats
		{"hahahahahaha", true}, // group repeated 5+
		{"hahaha", false},
		{"NOOOOOOOOO WAY", true},
		{"an ordinary message", false},
		{"lolololololol", true},
	}
	for _, c := range cases {
		if got := isStretched(c.msg); got != c.want {
			t.Errorf("isStretched(%q) = %v, want %v", c.msg, got, c.want)
		}
	}
}

func TestNormalizeCollapsesInvisibleRuns(t *testing.T) {
	in := "a\u200b\u200b\u200bb   c \x00d"
	if got := normalizeMessage(in); got != "a b c d" {
		t.Errorf("normalizeMessage(%q) = %q", in, got)
	}
}

func TestIsFlooding(t *testing.T) {
	base := time.Unix(1700000000, 0)

	// 5 messages over 3s: inside the window, spacing above the lag floor.
	var times []time.Time
	for i := 0; i < 5; i++ {
		times = append(times, base.Add(time.Duration(i)*750*time.Millisecond))
	}
	now := times[len(times)-1]
	if !isFlooding(times, now) {
		t.Error("expected flooding for 5 messages in 3s")
	}

	// Same 5 messages arriving within 1s total: that's a lag burst, not
	// a human flooding.
	times = times[:0]
	for i := 0; i < 5; i++ {
		times = append(times, base.Add(time.Duration(i)*200*time.Millisecond))
	}
	if isFlooding(times, times[len(times)-1]) {
		t.Error("sub-floor spacing should be treated as network lag")
	}

	// 5 messages spread over 10s: outside the window.
	times = times[:0]
	for i := 0; i < 5; i++ {
		times = append(times, base.Add(time.Duration(i)*2500*time.Millisecond))
	}
	if isFlooding(times, times[len(times)-1]) {
		t.Error("slow messages must not count as flooding")
	}

	// Fewer than 5 messages never flood.
	if isFlooding(times[:4], now) {
		t.Error("four messages cannot flood")
	}
}

func TestLoadCorrectionsEmbedded(t *testing.T) {
	cs, err := LoadCorrections("")
	if err != nil {
		t.Fatalf("LoadCorrections: %v", err)
	}
	if len(cs) == 0 {
		t.Fatal("expected embedded corrections")
	}
	found := false
	for _, c := range cs {
		if c.Pattern.MatchString("politoad is my favorite") {
			found = true
			if c.Correct != "Politoed" {
				t.Errorf("correction = %q, want Politoed", c.Correct)
			}
		}
	}
	if !found {
		t.Error("expected a pattern matching 'politoad'")
	}
	if strings.TrimSpace(cs[0].Correct) == "" {
		t.Error("corrections must carry replacement text")
	}
}
