package command

import (
	"strings"

	"go.uber.org/zap"

	"github.com/tbran/voltbot/internal/obslog"
)

// Fetcher fetches remote text for the custom command's pastebin support.
type Fetcher interface {
	FetchText(url string) (string, error)
}

const pastebinRawPrefix = "https://pastebin.com/raw/"

// customCommand relays arbitrary text, optionally into a bracketed target
// room. A pastebin raw link is expanded to its contents, which lets room
// owners run payloads too long for a PM.
func customCommand(fetch Fetcher) Handler {
	return func(ctx Ctx, arg, by, room string) {
		target := room
		if strings.HasPrefix(arg, "[") {
			if end := strings.Index(arg, "]"); end > 0 {
				target = arg[1:end]
				arg = strings.TrimSpace(arg[end+1:])
			}
		}

		if strings.HasPrefix(arg, pastebinRawPrefix) {
			if fetch == nil {
				ctx.Say(room, "Pastebin relay is not available.")
				return
			}
			body, err := fetch.FetchText(arg)
			if err != nil {
				obslog.L().Warn("pastebin_fetch_failed", zap.String("url", arg), zap.Error(err))
				ctx.Say(room, "Could not read the pastebin link.")
				return
			}
			arg = body
		}

		ctx.Say(target, arg)
	}
}
