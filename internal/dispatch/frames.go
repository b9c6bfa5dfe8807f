package dispatch

import (
	"strings"

	"go.uber.org/zap"

	"github.com/tbran/voltbot/internal/obslog"
	"github.com/tbran/voltbot/internal/rank"
)

const initPrefix = "|init|"

// HandleFrame splits one websocket frame into protocol lines. A frame
// either carries a single line addressed to the lobby or a >room header
// followed by lines for that room.
func (s *Session) HandleFrame(frame string) {
	if frame == "" {
		return
	}
	if !strings.Contains(frame, "\n") {
		s.handleLine(frame, "lobby")
		return
	}

	lines := strings.Split(frame, "\n")
	room := "lobby"
	if strings.HasPrefix(lines[0], ">") {
		room = lines[0][1:]
		lines = lines[1:]

		if len(lines) > 0 && strings.HasPrefix(lines[0], initPrefix) {
			switch roomType := lines[0][len(initPrefix):]; roomType {
			case "battle":
				obslog.L().Info("joined_battle", zap.String("room", room))
				return
			case "chat":
				if s.roomDisallowed(room) {
					s.out.Send("|/leave " + rank.ToID(room))
					return
				}
				obslog.L().Info("joined_room", zap.String("room", room))
			}
		}
	}

	for _, line := range lines {
		if line != "" {
			s.handleLine(line, room)
		}
	}
}

func (s *Session) roomDisallowed(room string) bool {
	id := rank.ToID(room)
	for _, banned := range s.cfg.DisallowedRooms {
		if rank.ToID(banned) == id {
			return true
		}
	}
	return false
}
