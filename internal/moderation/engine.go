// Package moderation watches chat lines for flood, shouting, emphasis and
// stretching abuse and escalates automated punishments with time decay.
package moderation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tbran/voltbot/internal/obslog"
	"github.com/tbran/voltbot/internal/rank"
)

const (
	actionCooldown     = 3 * time.Second
	maxInfractionLevel = 4
	timesRetention     = 5 * time.Second

	// SweepInterval is how often Sweep should run once a session is
	// authenticated.
	SweepInterval = 30 * time.Minute

	autocorrectStreakLimit = 3
)

// Config is the engine's policy surface, injected from app config.
type Config struct {
	AllowMute bool
	// ModeratedRooms are the rooms the engine acts in; everywhere else it
	// only tracks message times.
	ModeratedRooms []string
	// PrivateRooms can't display warnings, so warn is substituted with mute.
	PrivateRooms []string
	// Whitelist holds UserIDs that are never punished.
	Whitelist []string
	// Punishments orders infraction levels to action names,
	// e.g. 1:warn 2:mute 3:hourmute 4:roomban.
	Punishments map[int]string
	// ZeroToleranceThreshold is the count of mute-or-worse actions beyond
	// which every further infraction escalates straight to the top tier.
	ZeroToleranceThreshold int
	Corrections            []Correction
}

// RankView exposes the bot's own authority symbol per room. The engine
// needs it to know whether the top-tier punishment is achievable.
type RankView interface {
	RoomSymbol(room string) rune
}

// RankViewFunc adapts a function to the RankView interface.
type RankViewFunc func(room string) rune

func (f RankViewFunc) RoomSymbol(room string) rune { return f(room) }

// ZeroToleranceStore counts serious infractions per UserID across all
// rooms. Counts are monotonic and never decay.
type ZeroToleranceStore interface {
	Incr(ctx context.Context, userID string) (int, error)
	Count(ctx context.Context, userID string) (int, error)
}

// Action is a punishment directive ready to be sent to a room.
type Action struct {
	Command       string
	UserID        string
	Reason        string
	ZeroTolerance bool
}

// Line renders the outward punishment command.
func (a *Action) Line() string {
	if a.Reason == "" {
		return fmt.Sprintf("/%s %s", a.Command, a.UserID)
	}
	return fmt.Sprintf("/%s %s, %s", a.Command, a.UserID, a.Reason)
}

type recordKey struct {
	userID string
	room   string
}

type record struct {
	times       []time.Time
	points      int
	lastAction  time.Time
	autocorrect int
}

// Engine owns all per-(user,room) moderation state. Evaluate and Sweep are
// safe to interleave.
type Engine struct {
	mu      sync.Mutex
	cfg     Config
	ranks   RankView
	zeroTol ZeroToleranceStore
	records map[recordKey]*record
	now     func() time.Time
}

type Option func(*Engine)

// WithClock replaces the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithZeroToleranceStore replaces the in-memory zero-tolerance counters,
// e.g. with the redis-backed store.
func WithZeroToleranceStore(s ZeroToleranceStore) Option {
	return func(e *Engine) { e.zeroTol = s }
}

func NewEngine(cfg Config, ranks RankView, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		ranks:   ranks,
		zeroTol: NewMemoryStore(),
		records: make(map[recordKey]*record),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate inspects one chat line. It returns public correction lines to
// announce (possibly none) and a punishment directive when an infraction
// escalates. PMs, empty UserIDs and driver-or-better senders are exempt
// from punishment, though message times are still recorded for flood
// bookkeeping.
func (e *Engine) Evaluate(ctx context.Context, userID, room, msg string, authority rune) ([]string, *Action) {
	if userID == "" || rank.IsPM(room) {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	rec := e.record(userID, room)
	rec.times = append(rec.times, now)

	if !e.cfg.AllowMute || !containsID(e.cfg.ModeratedRooms, room) ||
		containsID(e.cfg.Whitelist, userID) || rank.LevelOf(authority) >= rank.LevelDriver {
		return nil, nil
	}

	msg = normalizeMessage(msg)

	pointVal := 0
	reason := ""
	if isFlooding(rec.times, now) {
		pointVal, reason = 2, "Stop spamming the chat"
	}
	if pointVal < 1 && isShouting(msg) {
		pointVal, reason = 1, "Watch the caps"
	}
	if pointVal < 1 && isOverBolded(msg) {
		pointVal, reason = 1, "Don't make everything in bold"
	}
	if pointVal < 1 && isStretched(msg) {
		pointVal, reason = 1, "Don't stretch out what you type"
	}

	var corrections []string
	for _, c := range e.cfg.Corrections {
		if c.Pattern.MatchString(msg) {
			corrections = append(corrections, "*"+c.Correct)
			rec.autocorrect++
		}
	}

	if (pointVal == 0 && rec.autocorrect < autocorrectStreakLimit) ||
		now.Sub(rec.lastAction) < actionCooldown {
		return corrections, nil
	}

	cmd := "mute"
	switch {
	case rec.points >= maxInfractionLevel:
		rec.points = maxInfractionLevel
		cmd = e.punishment(maxInfractionLevel, cmd)
	case rec.points >= pointVal:
		// Repeat offense at a severity already reached: move one step up
		// the escalation table rather than repeating the same action.
		rec.points++
		cmd = e.punishment(rec.points, cmd)
	default:
		// First offense at this severity uses that severity's own action.
		rec.points = pointVal
		cmd = e.punishment(pointVal, cmd)
	}

	if cmd == "warn" && containsID(e.cfg.PrivateRooms, room) {
		cmd = "mute"
	}
	if rec.points >= maxInfractionLevel && !e.botCanBan(room) {
		cmd = "hourmute"
	}

	zeroTol := false
	if rec.autocorrect >= autocorrectStreakLimit {
		cmd = "warn"
		reason = "Stop triggering the autocorrect intentionally"
		// Reset to one below the limit so the next trigger reasserts the
		// warning instead of requiring a whole new streak.
		rec.autocorrect = autocorrectStreakLimit - 1
	}

	if count, err := e.zeroTol.Count(ctx, userID); err == nil && count > e.cfg.ZeroToleranceThreshold {
		cmd = e.punishment(maxInfractionLevel, "roomban")
		if !e.botCanBan(room) {
			cmd = "hourmute"
		}
		reason = "Zero tolerance: repeated serious infractions"
		zeroTol = true
	}

	if cmd != "warn" {
		if _, err := e.zeroTol.Incr(ctx, userID); err != nil {
			obslog.L().Warn("zero_tolerance_incr_failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	rec.lastAction = now
	return corrections, &Action{Command: cmd, UserID: userID, Reason: reason, ZeroTolerance: zeroTol}
}

// Sweep drops stale message timestamps, evicts empty records and decays
// each surviving record's infraction level by one.
func (e *Engine) Sweep() {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	for key, rec := range e.records {
		kept := rec.times[:0]
		for _, ts := range rec.times {
			if now.Sub(ts) < timesRetention {
				kept = append(kept, ts)
			}
		}
		rec.times = kept
		if len(rec.times) == 0 {
			delete(e.records, key)
			continue
		}
		if rec.points > 0 {
			rec.points--
		}
	}
}

// InfractionLevel reports the current level for a (user, room) pair.
func (e *Engine) InfractionLevel(userID, room string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if rec, ok := e.records[recordKey{userID, room}]; ok {
		return rec.points
	}
	return 0
}

func (e *Engine) record(userID, room string) *record {
	key := recordKey{userID, room}
	rec, ok := e.records[key]
	if !ok {
		rec = &record{}
		e.records[key] = rec
	}
	return rec
}

func (e *Engine) punishment(level int, fallback string) string {
	if cmd, ok := e.cfg.Punishments[level]; ok && cmd != "" {
		return cmd
	}
	return fallback
}

// botCanBan reports whether the bot's own authority in the room is high
// enough for the top-tier action.
func (e *Engine) botCanBan(room string) bool {
	if e.ranks == nil {
		return false
	}
	return rank.LevelOf(e.ranks.RoomSymbol(room)) >= rank.LevelModerator
}

func containsID(list []string, v string) bool {
	id := rank.ToID(v)
	for _, item := range list {
		if rank.ToID(item) == id {
			return true
		}
	}
	return false
}

// MemoryStore is the in-process ZeroToleranceStore.
type MemoryStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counts: make(map[string]int)}
}

func (s *MemoryStore) Incr(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[userID]++
	return s.counts[userID], nil
}

func (s *MemoryStore) Count(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[userID], nil
}
