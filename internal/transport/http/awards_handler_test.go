package http

import (
	"testing"
	"time"

	"school-merit-service/internal/app"
	"school-merit-service/internal/domain"
	"github.com/gorilla/websocket"
)

func TestAwardsWebSocketStreamsGrants(t *testing.T) {
	server, feed := newTestServer(t)

	u := "ws" + server.URL[len("http"):] + "/ws/awards"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The handler subscribes after the upgrade; republish until the read
	// below observes an event so the test cannot race the subscription.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			feed.Publish(app.AwardEvent{
				StudentID:  "S1",
				Badge:      domain.Badge{Type: "prefect", DisplayName: "Prefect"},
				OccurredAt: time.Now(),
			})
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
		}
	}()

	var msg struct {
		Type    string         `json:"type"`
		Payload app.AwardEvent `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "badgeAwarded" {
		t.Fatalf("expected badgeAwarded, got %s", msg.Type)
	}
	if msg.Payload.StudentID != "S1" || msg.Payload.Badge.Type != "prefect" {
		t.Fatalf("unexpected payload %+v", msg.Payload)
	}
}
