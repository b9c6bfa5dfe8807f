package dispatch

import (
	"testing"
)

func TestFrameDisallowedRoomIsLeft(t *testing.T) {
	fx := newFixture(t)
	fx.s.HandleFrame(">staff\n|init|chat\n|title|Staff\n|users|5")
	lines := fx.out.all()
	if len(lines) != 1 || lines[0] != "|/leave staff" {
		t.Fatalf("sent = %v, want a single /leave", lines)
	}
}

func TestFrameBattleInitIsIgnored(t *testing.T) {
	fx := newFixture(t)
	// The backlog after a battle init must not be dispatched; a win line
	// would otherwise trigger a /leave reply.
	fx.s.HandleFrame(">battle-gen8vgc2021-42\n|init|battle\n|win|someone")
	if got := fx.out.all(); len(got) != 0 {
		t.Fatalf("sent = %v, want nothing", got)
	}
}

func TestFrameChatInitBacklogIsDispatched(t *testing.T) {
	fx := newFixture(t)
	fx.s.HandleFrame(">vgc\n|init|chat\n|title|VGC\n|J|*VoltBot")
	if got := fx.s.RoomSymbol("vgc"); got != '*' {
		t.Errorf("symbol from init backlog = %q, want '*'", got)
	}
}

func TestFrameMarkerOnlyAndEmpty(t *testing.T) {
	fx := newFixture(t)
	fx.s.HandleFrame("")
	fx.s.HandleFrame(">vgc")
	fx.s.HandleFrame(">vgc\n")
	if got := fx.out.all(); len(got) != 0 {
		t.Fatalf("sent = %v, want nothing", got)
	}
}

func TestFrameSingleLineGoesToLobby(t *testing.T) {
	fx := newFixture(t)
	fx.s.HandleFrame("|pm|*VoltBot|someone|hi")
	if got := fx.s.RoomSymbol("lobby"); got != '*' {
		t.Errorf("lobby symbol = %q, want '*'", got)
	}
}
