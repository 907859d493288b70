package followup

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devplan/devplan/internal/clock"
	"github.com/devplan/devplan/internal/domain"
	"github.com/devplan/devplan/internal/testutil"
)

type fakeLister struct {
	mu       sync.Mutex
	sessions []*domain.Session
	err      error
}

func (f *fakeLister) List(_ context.Context) ([]*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.sessions, nil
}

type recordingNotifier struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingNotifier) Notify(sess *domain.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, sess.ID)
}

func (r *recordingNotifier) notified() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

func awaitingSession(id string) *domain.Session {
	return &domain.Session{
		ID:    id,
		State: domain.StateAwaitingAnswers,
		Classification: &domain.ClassificationResult{
			TaskType: domain.TaskTypeNew,
			Status:   domain.ClarityAmbiguous,
			Questions: []domain.Question{
				{Question: "Which columns should the export include?"},
			},
		},
	}
}

func TestSweep(t *testing.T) {
	t.Parallel()

	t.Run("notifies awaiting sessions once per epoch", func(t *testing.T) {
		t.Parallel()

		lister := &fakeLister{sessions: []*domain.Session{
			awaitingSession("sess-1"),
			{ID: "sess-2", State: domain.StatePlanReady},
		}}
		notifier := &recordingNotifier{}
		clk := clock.Fixed{Time: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)}
		s := NewScheduler(lister, notifier, 2*time.Minute, clk, nil)

		s.Sweep(context.Background())
		s.Sweep(context.Background())
		assert.Equal(t, []string{"sess-1"}, notifier.notified())
	})

	t.Run("next epoch notifies again", func(t *testing.T) {
		t.Parallel()

		lister := &fakeLister{sessions: []*domain.Session{awaitingSession("sess-1")}}
		notifier := &recordingNotifier{}
		base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
		s := NewScheduler(lister, notifier, 2*time.Minute, clock.Fixed{Time: base}, nil)

		s.Sweep(context.Background())
		s.clock = clock.Fixed{Time: base.Add(2 * time.Minute)}
		s.Sweep(context.Background())
		assert.Equal(t, []string{"sess-1", "sess-1"}, notifier.notified())
	})

	t.Run("answered session clears its dedup entry", func(t *testing.T) {
		t.Parallel()

		lister := &fakeLister{sessions: []*domain.Session{awaitingSession("sess-1")}}
		notifier := &recordingNotifier{}
		clk := clock.Fixed{Time: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)}
		s := NewScheduler(lister, notifier, 2*time.Minute, clk, nil)

		s.Sweep(context.Background())
		lister.sessions = []*domain.Session{{ID: "sess-1", State: domain.StatePlanReady}}
		s.Sweep(context.Background())

		s.mu.Lock()
		_, tracked := s.notified["sess-1"]
		s.mu.Unlock()
		assert.False(t, tracked)
	})

	t.Run("list failure is non-fatal", func(t *testing.T) {
		t.Parallel()

		lister := &fakeLister{err: testutil.ErrMockStoreUnavailable}
		notifier := &recordingNotifier{}
		s := NewScheduler(lister, notifier, 2*time.Minute, nil, nil)
		s.Sweep(context.Background())
		assert.Empty(t, notifier.notified())
	})
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("stops on cancellation", func(t *testing.T) {
		t.Parallel()

		lister := &fakeLister{sessions: []*domain.Session{awaitingSession("sess-1")}}
		notifier := &recordingNotifier{}
		s := NewScheduler(lister, notifier, 5*time.Millisecond, clock.NewRealClock(), nil)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- s.Run(ctx) }()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			require.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("scheduler did not stop")
		}
		assert.NotEmpty(t, notifier.notified())
	})
}

func TestWriterNotifier(t *testing.T) {
	t.Parallel()

	t.Run("prints reminder with question count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n := NewWriterNotifierWithWriter(&buf, false)
		n.Notify(awaitingSession("sess-1"))
		assert.Contains(t, buf.String(), "sess-1")
		assert.Contains(t, buf.String(), "1 unanswered question")
		assert.NotContains(t, buf.String(), "\a")
	})

	t.Run("bell precedes the reminder when enabled", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n := NewWriterNotifierWithWriter(&buf, true)
		n.Notify(awaitingSession("sess-1"))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\a")))
	})
}
