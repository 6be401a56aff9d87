package scheduling

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

func (m *MemoryRepository) eventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev.EventType)
	}
	return out
}

// passthroughLocker runs the critical section without any real locking; the
// fake repository's own mutex provides the atomicity under test.
type passthroughLocker struct{}

func (passthroughLocker) WithSlotLock(ctx context.Context, _ uuid.UUID, _ time.Time, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeConferencing returns a fixed link, or the configured error.
type fakeConferencing struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeConferencing) CreateMeeting(_ context.Context, appointmentID uuid.UUID, _ time.Time, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "https://meet.example.com/" + appointmentID.String(), nil
}
