package moderation

import (
	"regexp"
	"strings"
	"time"

	"github.com/tbran/voltbot/internal/rank"
)

// Detection thresholds. Flood is the heaviest signal (level 2); the text
// heuristics all weigh level 1.
const (
	floodMessageNum  = 5
	floodPerMsgMin   = 500 * time.Millisecond
	floodMessageTime = 6 * time.Second

	minCapsLength     = 18
	minCapsProportion = 0.8

	minBoldLength     = 18
	minBoldProportion = 0.8

	stretchSingleRepeat = 8
	stretchGroupRepeat  = 5
)

// invisibleRuns collapses runs of spaces, NULs and zero-width characters so
// stretched text cannot hide behind invisible padding.
var invisibleRuns = regexp.MustCompile(`[ \x{0}\x{200B}-\x{200F}]+`)

func normalizeMessage(msg string) string {
	return invisibleRuns.ReplaceAllString(strings.TrimSpace(msg), " ")
}

// isFlooding reports whether the Nth-most-recent message landed inside the
// flood window while the overall spacing is too tight to be explained by
// network lag delivering a legitimate burst at once.
func isFlooding(times []time.Time, now time.Time) bool {
	if len(times) < floodMessageNum {
		return false
	}
	span := now.Sub(times[len(times)-floodMessageNum])
	return span < floodMessageTime && span > floodPerMsgMin*floodMessageNum
}

// isShouting reports whether a long enough message is mostly uppercase.
func isShouting(msg string) bool {
	idLen := len(rank.ToID(msg))
	if idLen <= minCapsLength {
		return false
	}
	caps := 0
	for _, r := range msg {
		if r >= 'A' && r <= 'Z' {
			caps++
		}
	}
	return caps >= int(float64(idLen)*minCapsProportion)
}

// isOverBolded measures how much of the message sits between ** delimiter
// pairs. An unbalanced trailing delimiter is discarded before measuring.
func isOverBolded(msg string) bool {
	if !strings.Contains(msg, "**") {
		return false
	}
	var marks []int
	for i := 0; ; {
		j := strings.Index(msg[i:], "**")
		if j < 0 {
			break
		}
		marks = append(marks, i+j)
		i += j + 1
	}
	if len(marks)%2 == 1 {
		marks = marks[:len(marks)-1]
	}
	bolded := 0
	for i := 0; i+1 < len(marks); i += 2 {
		bolded += marks[i+1] - marks[i] - 2
	}
	idLen := len(rank.ToID(msg))
	return idLen > minBoldLength &&
		(bolded >= minBoldLength || bolded >= int(float64(idLen)*minBoldProportion))
}

// isStretched reports whether any single character repeats at least 8 times
// in a row, or any short character group repeats at least 5 times in a row.
func isStretched(msg string) bool {
	lower := strings.ToLower(msg)
	runes := []rune(lower)

	run := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			run++
			if run >= stretchSingleRepeat {
				return true
			}
		} else {
			run = 1
		}
	}

	// Group stretching: "hahahahaha", "lolollololol" and friends. Check
	// every group size that could repeat five times within the message.
	n := len(runes)
	for size := 2; size*stretchGroupRepeat <= n; size++ {
		for start := 0; start+size*stretchGroupRepeat <= n; start++ {
			repeats := 1
			for off := start + size; off+size <= n; off += size {
				if string(runes[off:off+size]) != string(runes[start:start+size]) {
					break
				}
				repeats++
				if repeats >= stretchGroupRepeat {
					return true
				}
			}
		}
	}
	return false
}
