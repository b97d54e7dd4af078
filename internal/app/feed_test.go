package app_test

import (
	"testing"
	"time"

	"school-merit-service/internal/app"
	"school-merit-service/internal/domain"
)

func TestAwardFeedDeliversToAllSubscribers(t *testing.T) {
	feed := app.NewAwardFeed()

	first, cancelFirst := feed.Subscribe()
	second, cancelSecond := feed.Subscribe()
	defer cancelFirst()
	defer cancelSecond()

	feed.Publish(app.AwardEvent{StudentID: "S1", Badge: domain.Badge{Type: "prefect"}})

	for _, ch := range []<-chan app.AwardEvent{first, second} {
		select {
		case event := <-ch:
			if event.StudentID != "S1" {
				t.Fatalf("unexpected event %+v", event)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber did not receive event")
		}
	}
}

func TestAwardFeedCancelStopsDelivery(t *testing.T) {
	feed := app.NewAwardFeed()

	events, cancel := feed.Subscribe()
	cancel()

	// Publishing after cancel must not panic or block.
	feed.Publish(app.AwardEvent{StudentID: "S1"})

	if _, ok := <-events; ok {
		t.Fatalf("expected closed channel after cancel")
	}
}

func TestAwardFeedDropsOldestWhenSlow(t *testing.T) {
	feed := app.NewAwardFeed()

	events, cancel := feed.Subscribe()
	defer cancel()

	// Overfill the subscriber buffer; the publisher must not block and the
	// newest event must survive.
	for i := 0; i < 20; i++ {
		feed.Publish(app.AwardEvent{StudentID: "S1", Badge: domain.Badge{AwardedBy: "p"}, OccurredAt: time.Unix(int64(i), 0)})
	}

	var last app.AwardEvent
	for {
		select {
		case event := <-events:
			last = event
			continue
		default:
		}
		break
	}
	if !last.OccurredAt.Equal(time.Unix(19, 0)) {
		t.Fatalf("expected newest event to survive, got %v", last.OccurredAt)
	}
}
