package command

import (
	"errors"
	"strings"
	"testing"
)

func newTourHandler(t *testing.T) Handler {
	t.Helper()
	formats, err := LoadTourFormats()
	if err != nil {
		t.Fatalf("LoadTourFormats: %v", err)
	}
	return formats.Command()
}

func TestTourDefault(t *testing.T) {
	tour := newTourHandler(t)
	ctx := &fakeCtx{}
	tour(ctx, "", "#ansena", "vgc")
	if len(ctx.says) == 0 {
		t.Fatal("tour said nothing")
	}
	want := "/tour create gen8vgc2021series8, elimination, 128, 1, VGC 2021 Series 8"
	if got := ctx.says[0].text; got != want {
		t.Errorf("create line = %q, want %q", got, want)
	}
	// The default format carries a note, announced with /wall.
	var walled bool
	for _, s := range ctx.says[1:] {
		if strings.HasPrefix(s.text, "/wall ") {
			walled = true
		}
	}
	if !walled {
		t.Error("expected a /wall note for the default format")
	}
}

func TestTourAliasAndSettings(t *testing.T) {
	tour := newTourHandler(t)
	ctx := &fakeCtx{}
	tour(ctx, "vgc13, roundrobin, 64, 1", "#ansena", "vgc")
	want := "/tour create gen5vgc2013, roundrobin, 64, 1, VGC 2013"
	if got := ctx.says[0].text; got != want {
		t.Errorf("create line = %q, want %q", got, want)
	}
}

func TestTourDoubleElim(t *testing.T) {
	tour := newTourHandler(t)
	ctx := &fakeCtx{}
	tour(ctx, "double", "#ansena", "vgc")
	want := "/tour create gen8vgc2021series8, elimination, 128, 2, VGC 2021 Series 8"
	if got := ctx.says[0].text; got != want {
		t.Errorf("create line = %q, want %q", got, want)
	}
}

func TestTourUnknownFormatPassesThrough(t *testing.T) {
	tour := newTourHandler(t)
	ctx := &fakeCtx{}
	tour(ctx, "gen8ou", "#ansena", "vgc")
	want := "/tour create gen8ou, elimination, 128, 1"
	if got := ctx.says[0].text; got != want {
		t.Errorf("create line = %q, want %q", got, want)
	}
}

func TestTourBadSettingsFallBack(t *testing.T) {
	tour := newTourHandler(t)
	ctx := &fakeCtx{}
	tour(ctx, "vgc13, elimination, lots, soon", "#ansena", "vgc")
	want := "/tour create gen5vgc2013, elimination, 128, 1, VGC 2013"
	if got := ctx.says[0].text; got != want {
		t.Errorf("create line = %q, want %q", got, want)
	}
}

func TestTourRefusedFormats(t *testing.T) {
	tour := newTourHandler(t)
	for _, arg := range []string{"randombattle", "cap"} {
		ctx := &fakeCtx{}
		tour(ctx, arg, "#ansena", "vgc")
		if len(ctx.says) != 1 || !strings.HasPrefix(ctx.says[0].text, "Cannot start ") {
			t.Errorf("tour(%q) = %v, want refusal", arg, ctx.says)
		}
	}
}

func TestTourGuardAndReset(t *testing.T) {
	tour := newTourHandler(t)
	ctx := &fakeCtx{tourActive: true}
	tour(ctx, "", "#ansena", "vgc")
	if got := ctx.lastSay(t).text; got != "A tournament has already been started." {
		t.Errorf("guard = %q", got)
	}

	tour(ctx, "reset", "#ansena", "vgc")
	if ctx.tourActive {
		t.Error("reset must clear the started flag")
	}
	if got := ctx.lastSay(t).text; got != "Tournament creation should be working again." {
		t.Errorf("reset reply = %q", got)
	}
}

type fakeFetcher struct {
	body string
	err  error
	urls []string
}

func (f *fakeFetcher) FetchText(url string) (string, error) {
	f.urls = append(f.urls, url)
	return f.body, f.err
}

func TestCustomRelaysToTargetRoom(t *testing.T) {
	h := customCommand(nil)
	ctx := &fakeCtx{}
	h(ctx, "[vgc] !dt pikachu", ",rapha", ",rapha")
	got := ctx.lastSay(t)
	if got.room != "vgc" || got.text != "!dt pikachu" {
		t.Errorf("relay = %+v", got)
	}

	// Without a bracketed room it echoes back where it came from.
	ctx = &fakeCtx{}
	h(ctx, "hello", ",rapha", ",rapha")
	got = ctx.lastSay(t)
	if got.room != ",rapha" || got.text != "hello" {
		t.Errorf("relay = %+v", got)
	}
}

func TestCustomExpandsPastebin(t *testing.T) {
	fetch := &fakeFetcher{body: "/announce hello from paste"}
	h := customCommand(fetch)
	ctx := &fakeCtx{}
	h(ctx, "[vgc] https://pastebin.com/raw/abc123", ",rapha", ",rapha")
	got := ctx.lastSay(t)
	if got.room != "vgc" || got.text != "/announce hello from paste" {
		t.Errorf("relay = %+v", got)
	}
	if len(fetch.urls) != 1 || fetch.urls[0] != "https://pastebin.com/raw/abc123" {
		t.Errorf("fetched %v", fetch.urls)
	}
}

func TestCustomPastebinFailure(t *testing.T) {
	h := customCommand(&fakeFetcher{err: errors.New("boom")})
	ctx := &fakeCtx{}
	h(ctx, "https://pastebin.com/raw/abc123", ",rapha", ",rapha")
	if got := ctx.lastSay(t).text; got != "Could not read the pastebin link." {
		t.Errorf("failure reply = %q", got)
	}
}
