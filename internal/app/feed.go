package app

import (
	"sync"
	"time"

	"school-merit-service/internal/domain"
)

// AwardEvent is broadcast whenever a badge lands on a student's collection.
type AwardEvent struct {
	StudentID  string       `json:"studentId"`
	Badge      domain.Badge `json:"badge"`
	OccurredAt time.Time    `json:"occurredAt"`
}

// AwardFeed fans badge-award events out to in-process subscribers, feeding
// the dashboard push channel.
type AwardFeed struct {
	mu          sync.Mutex
	subscribers map[chan AwardEvent]struct{}
}

func NewAwardFeed() *AwardFeed {
	return &AwardFeed{subscribers: make(map[chan AwardEvent]struct{})}
}

// Subscribe returns a channel of award events. The caller must invoke the
// returned cancel function to avoid leaks.
func (f *AwardFeed) Subscribe() (<-chan AwardEvent, func()) {
	ch := make(chan AwardEvent, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber. Slow consumers lose their
// oldest pending event instead of blocking the publisher.
func (f *AwardFeed) Publish(event AwardEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}
