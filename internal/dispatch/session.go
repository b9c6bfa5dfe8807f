// Package dispatch turns raw server frames into protocol events: login,
// chat, PMs, rank bookkeeping, moderation and command routing.
package dispatch

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tbran/voltbot/internal/command"
	"github.com/tbran/voltbot/internal/config"
	"github.com/tbran/voltbot/internal/moderation"
	"github.com/tbran/voltbot/internal/obslog"
	"github.com/tbran/voltbot/internal/permit"
	"github.com/tbran/voltbot/internal/rank"
	"github.com/tbran/voltbot/internal/showdown"
)

// Sender is the throttled outbound line queue.
type Sender interface {
	Send(line string)
}

// LoginService exchanges a challenge for a login assertion.
type LoginService interface {
	FetchAssertion(ctx context.Context, nick, pass, keyID, challenge string) (string, error)
}

// AuditLog persists issued punishments.
type AuditLog interface {
	RecordAction(ctx context.Context, room string, a *moderation.Action) error
}

// Session owns all per-connection protocol state. Frame handling runs on
// the websocket read goroutine; command handlers run on their own.
type Session struct {
	cfg      *config.AppConfig
	out      Sender
	login    LoginService
	perms    *permit.Config
	registry *command.Registry
	mod      *moderation.Engine
	audit    AuditLog

	mu               sync.Mutex
	ranks            map[string]rune
	tourActive       bool
	initialLogin     bool
	loginInFlight    bool
	loginRetries     int
	loginEpoch       int
	mostRecentUserPM string

	sweepOnce sync.Once
	stopCh    chan struct{}
	stopOnce  sync.Once

	onFatal    func(reason string)
	retryAfter func(d time.Duration, f func())
}

type SessionOption func(*Session)

// WithAuditLog persists every punishment the session issues.
func WithAuditLog(a AuditLog) SessionOption {
	return func(s *Session) { s.audit = a }
}

// WithOnFatal is invoked when login cannot complete; the process should
// exit and let the supervisor restart it.
func WithOnFatal(f func(reason string)) SessionOption {
	return func(s *Session) { s.onFatal = f }
}

func withRetryScheduler(f func(d time.Duration, fn func())) SessionOption {
	return func(s *Session) { s.retryAfter = f }
}

func NewSession(cfg *config.AppConfig, out Sender, login LoginService, perms *permit.Config, registry *command.Registry, mod *moderation.Engine, opts ...SessionOption) *Session {
	s := &Session{
		cfg:          cfg,
		out:          out,
		login:        login,
		perms:        perms,
		registry:     registry,
		mod:          mod,
		ranks:        make(map[string]rune),
		initialLogin: true,
		stopCh:       make(chan struct{}),
		retryAfter:   func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reset returns the session to its pre-login state. Wire it to the
// transport's disconnect notification so a reconnect performs a fresh
// login handshake.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginEpoch++
	s.initialLogin = true
	s.loginInFlight = false
	s.loginRetries = 0
}

func (s *Session) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// handleLine dispatches one pipe-delimited protocol line.
func (s *Session) handleLine(line, room string) {
	if !strings.HasPrefix(line, "|") {
		return
	}
	verb, payload, _ := strings.Cut(line[1:], "|")
	switch verb {
	case "challstr":
		keyID, challenge, _ := strings.Cut(payload, "|")
		s.handleChallstr(keyID, challenge)
	case "updateuser":
		name, rest, _ := strings.Cut(payload, "|")
		namedFlag, _, _ := strings.Cut(rest, "|")
		s.handleUpdateUser(name, namedFlag)
	case "c":
		by, msg, _ := strings.Cut(payload, "|")
		s.chatMessage(msg, by, room)
	case "c:":
		_, rest, _ := strings.Cut(payload, "|")
		by, msg, _ := strings.Cut(rest, "|")
		s.moderate(msg, by, room)
		s.chatMessage(msg, by, room)
	case "pm":
		by, rest, _ := strings.Cut(payload, "|")
		to, msg, _ := strings.Cut(rest, "|")
		s.handlePM(by, to, msg, room)
	case "N", "J", "j":
		name, _, _ := strings.Cut(payload, "|")
		s.noteRank(room, name)
	case "L", "l":
		// Leaves carry no state the session tracks.
	case "tournament":
		sub, _, _ := strings.Cut(payload, "|")
		switch sub {
		case "create", "update":
			s.SetTournamentActive(true)
		case "end", "forceend":
			s.SetTournamentActive(false)
		}
	case "html":
	case "raw":
		if strings.HasPrefix(payload, `<strong class="message-throttle-notice">`) {
			obslog.L().Error("message_throttled", zap.String("room", room))
		}
	case "error":
		s.handleServerError(payload, room)
	case "win":
		s.Say(room, "/leave")
	}
}

func (s *Session) handleChallstr(keyID, challenge string) {
	s.mu.Lock()
	if s.loginInFlight {
		s.mu.Unlock()
		return
	}
	s.loginInFlight = true
	epoch := s.loginEpoch
	s.mu.Unlock()

	obslog.L().Info("challstr_received")
	go s.attemptLogin(epoch, keyID, challenge)
}

// attemptLogin runs one login exchange for the given epoch. A Reset bumps
// the epoch, so attempts and scheduled retries belonging to a dead
// connection drop out instead of replaying a stale challenge.
func (s *Session) attemptLogin(epoch int, keyID, challenge string) {
	if s.loginStale(epoch) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	assertion, err := s.login.FetchAssertion(ctx, s.cfg.Nick, s.cfg.Pass, keyID, challenge)
	if err == nil {
		s.mu.Lock()
		if epoch != s.loginEpoch {
			s.mu.Unlock()
			return
		}
		s.loginInFlight = false
		s.loginRetries = 0
		s.mu.Unlock()
		s.out.Send("|/trn " + s.cfg.Nick + ",0," + assertion)
		return
	}

	if showdown.IsRetryableLoginError(err) {
		s.mu.Lock()
		if epoch != s.loginEpoch {
			s.mu.Unlock()
			return
		}
		s.loginRetries++
		retries := s.loginRetries
		s.mu.Unlock()
		if retries <= s.cfg.LoginRetryMax {
			obslog.L().Warn("login_retry_scheduled",
				zap.Int("attempt", retries),
				zap.Error(err))
			s.retryAfter(time.Minute, func() { s.attemptLogin(epoch, keyID, challenge) })
			return
		}
	}

	s.mu.Lock()
	if epoch != s.loginEpoch {
		s.mu.Unlock()
		return
	}
	s.loginInFlight = false
	s.mu.Unlock()
	obslog.L().Error("login_failed", zap.Error(err))
	if s.onFatal != nil {
		s.onFatal("login failed: " + err.Error())
	}
}

func (s *Session) loginStale(epoch int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return epoch != s.loginEpoch
}

func (s *Session) handleUpdateUser(name, namedFlag string) {
	s.mu.Lock()
	initial := s.initialLogin
	s.mu.Unlock()

	if namedFlag != "1" && !initial {
		obslog.L().Error("renamed_to_guest", zap.String("name", name))
		if s.onFatal != nil {
			s.onFatal("switched off the main account")
		}
		return
	}
	// Guest updates arrive before the login completes; wait for our nick.
	if initial && rank.ToID(name) != rank.ToID(s.cfg.Nick) {
		return
	}

	s.mu.Lock()
	first := s.initialLogin
	s.initialLogin = false
	s.mu.Unlock()
	if !first {
		return
	}

	obslog.L().Info("logged_in", zap.String("name", name))
	if s.cfg.Avatar != "" {
		s.out.Send("|/avatar " + s.cfg.Avatar)
	}
	if s.cfg.Status != "" {
		s.out.Send("|/status " + s.cfg.Status)
	}
	for _, room := range s.cfg.Rooms {
		s.out.Send("|/join " + room)
	}
	for _, room := range s.cfg.PrivateRooms {
		s.out.Send("|/join " + room)
	}

	s.sweepOnce.Do(func() {
		go s.sweepLoop()
	})
}

func (s *Session) sweepLoop() {
	t := time.NewTicker(moderation.SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-t.C:
			s.mod.Sweep()
		}
	}
}

func (s *Session) moderate(msg, by, room string) {
	corrections, action := s.mod.Evaluate(context.Background(), rank.ToID(by), room, msg, rank.Symbol(by))
	for _, c := range corrections {
		s.Say(room, c)
	}
	if action == nil {
		return
	}
	s.Say(room, action.Line())
	if s.audit != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.audit.RecordAction(ctx, room, action); err != nil {
			obslog.L().Warn("audit_record_failed", zap.Error(err))
		}
	}
}

func (s *Session) handlePM(by, to, msg, room string) {
	s.noteRank(room, by)

	if rank.ToID(by) != rank.ToID(s.cfg.Nick) && rank.ToID(to) == rank.ToID(s.cfg.Nick) {
		obslog.L().Info("pm_received", zap.String("from", by))
		s.mu.Lock()
		s.mostRecentUserPM = rank.ToID(by)
		s.mu.Unlock()
		if rank.ToID(msg) == "mish" && msg != s.cfg.BotPrefix+"mish" {
			s.out.Send("|/pm " + rank.ToID(by) + ", mish mish")
		}
	}

	s.chatMessage(msg, by, string(rank.PMPrefix)+by)
}

// noteRank records the bot's own rank symbol whenever the server shows the
// bot's identity for a room.
func (s *Session) noteRank(room, identity string) {
	if identity == "" || rank.ToID(identity) != rank.ToID(s.cfg.Nick) {
		return
	}
	sym := rank.Symbol(identity)
	if !rank.HasSymbol(sym, rank.Ranks) {
		return
	}
	s.mu.Lock()
	s.ranks[room] = sym
	s.mu.Unlock()
}

func (s *Session) handleServerError(text, room string) {
	switch {
	case strings.Contains(text, "valid tournament"),
		strings.Contains(text, "restarting soon"),
		strings.Contains(text, "current room activity"),
		strings.Contains(text, "technical difficulties"):
		s.Say(room, text)
	case strings.Contains(text, "who are not in this room"):
		s.mu.Lock()
		recipient := s.mostRecentUserPM
		s.mu.Unlock()
		if recipient != "" {
			s.out.Send("|/pm " + recipient + ", You must be in the <<" + rank.ToID(s.cfg.MainRoom()) + ">> room for this command to work in PMs (sorry, blame Showdown).")
		}
	}
	obslog.L().Error("server_error", zap.String("room", room), zap.String("text", text))
}

// inviteRanks are the global ranks whose room invites are auto-accepted.
const inviteRanks = "%@*&"

func (s *Session) chatMessage(msg, by, room string) {
	msg = strings.TrimSpace(msg)

	if rank.IsPM(room) && strings.HasPrefix(msg, "/invite ") &&
		rank.HasSymbol(rank.Symbol(by), inviteRanks) {
		s.out.Send("|/join " + strings.TrimPrefix(msg, "/invite "))
	}

	if !strings.HasPrefix(msg, s.cfg.BotPrefix) || rank.ToID(by) == rank.ToID(s.cfg.Nick) {
		return
	}

	body := msg[len(s.cfg.BotPrefix):]
	name, arg, _ := strings.Cut(body, " ")
	arg = strings.TrimSpace(arg)

	canonical, handler, ok := s.registry.Lookup(name)
	if !ok {
		return
	}

	switch s.perms.Resolve(canonical, room, by, arg) {
	case permit.Allowed:
		go handler(s, arg, by, room)
	case permit.AllowedInPrivateOnly:
		s.Say(room, "/pm "+by+", You do not have sufficient rank to use this command in "+room+", but you can use it in "+s.cfg.Nick+"'s PMs.")
	default:
		s.Say(room, "/pm "+by+", You don't have access to this command.")
	}
}

// Say routes text to a room, or line by line over PM when the room is a
// PM tag.
func (s *Session) Say(room, text string) {
	if !rank.IsPM(room) {
		s.out.Send(room + "|" + text)
		return
	}
	target := rank.PMTarget(room)
	for _, line := range strings.Split(text, "\n") {
		s.out.Send("|/pm " + target + ", " + line)
	}
}

func (s *Session) Send(line string) { s.out.Send(line) }

func (s *Session) Nick() string     { return s.cfg.Nick }
func (s *Session) Guide() string    { return s.cfg.Guide }
func (s *Session) GitURL() string   { return s.cfg.Git }
func (s *Session) Owners() []string { return s.cfg.Owners }
func (s *Session) MainRoom() string { return s.cfg.MainRoom() }

func (s *Session) TournamentActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tourActive
}

func (s *Session) SetTournamentActive(active bool) {
	s.mu.Lock()
	s.tourActive = active
	s.mu.Unlock()
}

// RoomSymbol reports the bot's own rank symbol in a room.
func (s *Session) RoomSymbol(room string) rune {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sym, ok := s.ranks[room]; ok {
		return sym
	}
	return ' '
}
