package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"waconsole/internal/models"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

const subscriberBufferSize = 16

// Hub pushes newly recorded inbound messages to connected console sessions.
// Slow subscribers are disconnected rather than allowed to block the
// webhook pipeline.
type Hub struct {
	logger       *logrus.Logger
	writeTimeout time.Duration

	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
}

type subscriber struct {
	msgs      chan []byte
	closeSlow func()
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		logger:       logger,
		writeTimeout: 5 * time.Second,
		subscribers:  make(map[*subscriber]struct{}),
	}
}

type hubEvent struct {
	Type    string          `json:"type"`
	Message *models.Message `json:"message"`
}

// PublishMessage fans the message out to all subscribers without blocking.
func (h *Hub) PublishMessage(msg *models.Message) {
	data, err := json.Marshal(hubEvent{Type: "message", Message: msg})
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode hub event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers {
		select {
		case sub.msgs <- data:
		default:
			go sub.closeSlow()
		}
	}
}

// ServeWS upgrades the request and streams hub events until the client
// disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket accept failed")
		return
	}
	defer conn.CloseNow()

	sub := &subscriber{
		msgs: make(chan []byte, subscriberBufferSize),
		closeSlow: func() {
			conn.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with messages")
		},
	}
	h.addSubscriber(sub)
	defer h.removeSubscriber(sub)

	// CloseRead handles control frames and cancels the context when the
	// client goes away.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			return
		case data := <-sub.msgs:
			if err := h.write(ctx, conn, data); err != nil {
				return
			}
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, data []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, h.writeTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}

func (h *Hub) addSubscriber(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[sub] = struct{}{}
}

func (h *Hub) removeSubscriber(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, sub)
}

// SubscriberCount reports the number of connected console sessions.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
