package http

import (
	"log"
	"net/http"

	"school-merit-service/internal/app"
	"github.com/gorilla/websocket"
)

// AwardsHandler streams badge-award events to dashboard clients over a
// websocket.
type AwardsHandler struct {
	feed     *app.AwardFeed
	upgrader websocket.Upgrader
}

func NewAwardsHandler(feed *app.AwardFeed) *AwardsHandler {
	return &AwardsHandler{
		feed: feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type awardMessage struct {
	Type    string         `json:"type"`
	Payload app.AwardEvent `json:"payload"`
}

// ServeWS upgrades the request and forwards feed events until the client
// disconnects.
func (h *AwardsHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := h.feed.Subscribe()
	defer cancel()

	done := make(chan struct{})

	// Read pump exists only to observe the close; inbound frames are
	// discarded.
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(awardMessage{Type: "badgeAwarded", Payload: event}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}
