package http

import (
	"log"
	"net/http"
	"time"

	"knowledge-check-service/internal/app"
	"github.com/gorilla/websocket"
)

const (
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsWriteWait  = 10 * time.Second
)

// NotificationsHandler streams a caller's notifications over a websocket.
type NotificationsHandler struct {
	hub      *app.NotificationHub
	upgrader websocket.Upgrader
}

func NewNotificationsHandler(hub *app.NotificationHub) *NotificationsHandler {
	return &NotificationsHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type subscribedPayload struct {
	UserID int64 `json:"user_id"`
}

// ServeWS upgrades the request and forwards hub notifications until the client leaves.
func (h *NotificationsHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := CallerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing caller")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Subscribe before acknowledging so nothing sent after the ack is missed.
	updates, cancel := h.hub.Subscribe(userID)
	defer cancel()

	// The reader only drains control frames and notices disconnects.
	readerDone := make(chan struct{})
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if err := h.write(conn, outboundMessage[subscribedPayload]{Type: "subscribed", Payload: subscribedPayload{UserID: userID}}); err != nil {
		return
	}

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case n, ok := <-updates:
			if !ok {
				return
			}
			if err := h.write(conn, outboundMessage[any]{Type: "notification", Payload: n}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readerDone:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (h *NotificationsHandler) write(conn *websocket.Conn, msg interface{}) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(msg)
}
