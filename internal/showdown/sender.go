package showdown

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tbran/voltbot/internal/obslog"
)

// DefaultThrottle spaces outbound lines far enough apart that the server's
// per-connection rate limit never triggers.
const DefaultThrottle = 600 * time.Millisecond

const senderQueueSize = 256

// Sender serializes all outbound protocol lines through one queue so that
// every caller shares the same throttle.
type Sender struct {
	ws        WSClient
	throttle  time.Duration
	queue     chan string
	sessionID string

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewSender(ws WSClient, throttle time.Duration) *Sender {
	if throttle <= 0 {
		throttle = DefaultThrottle
	}
	return &Sender{
		ws:        ws,
		throttle:  throttle,
		queue:     make(chan string, senderQueueSize),
		sessionID: uuid.NewString(),
		stopCh:    make(chan struct{}),
	}
}

func (s *Sender) Start() {
	s.wg.Add(1)
	go s.loop()
}

// Send enqueues one raw protocol line. A full queue drops the line rather
// than blocking the dispatch path.
func (s *Sender) Send(line string) {
	select {
	case s.queue <- line:
	default:
		obslog.L().Warn("send_queue_full",
			zap.String("session_id", s.sessionID),
			zap.String("line", truncate(line, 128)))
	}
}

func (s *Sender) loop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		case line := <-s.queue:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := s.ws.WriteText(ctx, line)
			cancel()
			if err != nil {
				obslog.L().Warn("send_failed",
					zap.String("session_id", s.sessionID),
					zap.String("line", truncate(line, 128)),
					zap.Error(err))
			}

			select {
			case <-s.stopCh:
				return
			case <-time.After(s.throttle):
			}
		}
	}
}

func (s *Sender) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
