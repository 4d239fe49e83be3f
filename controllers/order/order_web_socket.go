package orderControllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/junaidrashid-git/aurelia-api/models"
)

const (
	EventOrderCreated = "order.created"
	EventOrderStatus  = "order.status"

	feedWriteTimeout = 5 * time.Second
	feedBuffer       = 32
)

var upgrader = websocket.Upgrader{
	// Callers are authenticated admins; the token is checked before upgrade.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type FeedEvent struct {
	Type  string        `json:"type"`
	Order *models.Order `json:"order"`
}

// feedClient owns one connection. Only its writer goroutine writes to conn.
type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Feed fans committed order events out to connected admin dashboards.
// Publish never blocks on the network: each client has a buffered queue
// drained by its own writer, and a client whose queue is full is dropped.
type Feed struct {
	mu      sync.Mutex
	clients map[*feedClient]struct{}
}

func NewFeed() *Feed {
	return &Feed{clients: make(map[*feedClient]struct{})}
}

// Publish queues the event for every client. A nil feed is a no-op.
func (f *Feed) Publish(event FeedEvent) {
	if f == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("feed: marshal event", slog.Any("error", err))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for client := range f.clients {
		select {
		case client.send <- data:
		default:
			slog.Warn("feed: dropping slow client")
			f.dropLocked(client)
		}
	}
}

// Clients is the number of connected dashboards.
func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

func (f *Feed) add(conn *websocket.Conn) *feedClient {
	client := &feedClient{conn: conn, send: make(chan []byte, feedBuffer)}
	f.mu.Lock()
	f.clients[client] = struct{}{}
	f.mu.Unlock()
	return client
}

func (f *Feed) remove(client *feedClient) {
	f.mu.Lock()
	f.dropLocked(client)
	f.mu.Unlock()
}

// dropLocked closes the client's queue once; its writer then closes conn.
func (f *Feed) dropLocked(client *feedClient) {
	if _, ok := f.clients[client]; !ok {
		return
	}
	delete(f.clients, client)
	close(client.send)
}

// writeLoop drains the queue until it is closed or a write fails.
func (c *feedClient) writeLoop() {
	defer c.conn.Close()
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

// GET /orders/admin/feed
func FeedHandler(feed *Feed) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		client := feed.add(conn)
		defer feed.remove(client)
		go client.writeLoop()

		// Nothing is expected from the client; reading detects disconnects.
		// A dropped client's conn is closed by its writer, which ends this loop.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
