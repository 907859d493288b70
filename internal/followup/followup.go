// Package followup reminds the user about sessions parked on unanswered
// clarification questions. A sweep is idempotent per interval: the same
// session is nudged at most once per epoch no matter how often the sweep
// runs.
package followup

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/devplan/devplan/internal/clock"
	"github.com/devplan/devplan/internal/constants"
	"github.com/devplan/devplan/internal/domain"
)

// Notifier receives reminders for sessions awaiting answers.
type Notifier interface {
	Notify(sess *domain.Session)
}

// SessionLister lists sessions to consider for follow-up.
// Satisfied by store.FileSessionStore.
type SessionLister interface {
	List(ctx context.Context) ([]*domain.Session, error)
}

// WriterNotifier prints a one-line reminder, optionally preceded by a
// terminal bell.
type WriterNotifier struct {
	writer io.Writer
	bell   bool
}

// NewWriterNotifier creates a notifier writing to stdout.
func NewWriterNotifier(bell bool) *WriterNotifier {
	return &WriterNotifier{writer: os.Stdout, bell: bell}
}

// NewWriterNotifierWithWriter creates a notifier with a custom writer.
// This is useful for testing.
func NewWriterNotifierWithWriter(w io.Writer, bell bool) *WriterNotifier {
	return &WriterNotifier{writer: w, bell: bell}
}

// Notify prints the reminder line.
func (n *WriterNotifier) Notify(sess *domain.Session) {
	if n == nil {
		return
	}
	if n.bell {
		_, _ = n.writer.Write([]byte("\a"))
	}
	questions := 0
	if sess.Classification != nil {
		questions = len(sess.Classification.Questions)
	}
	_, _ = fmt.Fprintf(n.writer, "session %s is waiting on %d unanswered question(s): devplan plan --session %s --answer ...\n",
		sess.ID, questions, sess.ID)
}

// Scheduler periodically sweeps the session store and notifies about
// sessions stuck in StateAwaitingAnswers.
type Scheduler struct {
	sessions SessionLister
	notifier Notifier
	interval time.Duration
	clock    clock.Clock
	logger   zerolog.Logger

	mu       sync.Mutex
	notified map[string]int64 // session id -> last notified epoch
}

// NewScheduler creates a Scheduler. A non-positive interval falls back to
// the default. The logger may be nil, in which case a no-op logger is used.
func NewScheduler(sessions SessionLister, notifier Notifier, interval time.Duration, clk clock.Clock, logger *zerolog.Logger) *Scheduler {
	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}
	if interval <= 0 {
		interval = constants.FollowUpInterval
	}
	return &Scheduler{
		sessions: sessions,
		notifier: notifier,
		interval: interval,
		clock:    clk,
		logger:   log,
		notified: make(map[string]int64),
	}
}

// Run sweeps immediately and then on every interval tick until the context
// is canceled. The context error is returned so callers can distinguish
// shutdown from failure.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one follow-up pass. Sessions awaiting answers are
// notified at most once per epoch; everything else clears its dedup entry
// so a session that regresses to awaiting is nudged again promptly.
func (s *Scheduler) Sweep(ctx context.Context) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("follow-up sweep failed to list sessions")
		return
	}

	epoch := s.clock.Now().UnixNano() / int64(s.interval)

	s.mu.Lock()
	defer s.mu.Unlock()
	awaiting := make(map[string]bool, len(sessions))
	for _, sess := range sessions {
		if sess.State != domain.StateAwaitingAnswers {
			continue
		}
		awaiting[sess.ID] = true
		if s.notified[sess.ID] == epoch {
			continue
		}
		s.notified[sess.ID] = epoch
		s.notifier.Notify(sess)
		s.logger.Debug().Str("session", sess.ID).Int64("epoch", epoch).Msg("follow-up sent")
	}

	for id := range s.notified {
		if !awaiting[id] {
			delete(s.notified, id)
		}
	}
}
