package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/thejerf/suture/v4"
	"github.com/vedran77/inkwell/internal/logging"
)

// Hub manages all active WebSocket clients and routes events. Only the Run
// goroutine touches the client set.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMsg
	done       chan struct{}
	stopOnce   sync.Once

	log logging.Logger
}

type broadcastMsg struct {
	// articleID limits delivery to subscribers; nil reaches every client.
	articleID *uuid.UUID
	// target, when set, is the only recipient.
	target *Client
	data   []byte
}

func NewHub(log logging.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMsg, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the Hub's main event loop and blocks until ctx is done. On exit,
// panics included, every client is disconnected and the hub stays stopped.
func (h *Hub) Run(ctx context.Context) {
	defer h.stop()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.log.Debug(ctx, "ws client connected", "clients", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.log.Debug(ctx, "ws client disconnected", "clients", len(h.clients))
			}

		case msg := <-h.broadcast:
			if msg.target != nil {
				if _, ok := h.clients[msg.target]; ok {
					select {
					case msg.target.send <- msg.data:
					default:
					}
				}
				continue
			}
			for client := range h.clients {
				if msg.articleID != nil && !client.IsSubscribed(*msg.articleID) {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// Client buffer full - disconnect
					h.drop(client)
				}
			}
		}
	}
}

// Serve lets a supervisor own the hub. A stopped hub cannot be restarted,
// so later calls return suture.ErrDoNotRestart.
func (h *Hub) Serve(ctx context.Context) error {
	if h.Stopped() {
		return suture.ErrDoNotRestart
	}
	h.Run(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	return suture.ErrDoNotRestart
}

// Stopped reports whether Run has returned.
func (h *Hub) Stopped() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() {
		for client := range h.clients {
			h.drop(client)
		}
		close(h.done)
	})
}

func (h *Hub) String() string {
	return "ws hub"
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// SendTo queues raw data for a single client, if it is still connected.
func (h *Hub) SendTo(c *Client, data []byte) {
	h.enqueue(&broadcastMsg{target: c, data: data})
}

// BroadcastToArticle sends an event to all subscribers of an article.
func (h *Hub) BroadcastToArticle(articleID uuid.UUID, event *Event) {
	h.publish(&articleID, event)
}

// BroadcastToAll sends an event to every connected client.
func (h *Hub) BroadcastToAll(event *Event) {
	h.publish(nil, event)
}

func (h *Hub) publish(articleID *uuid.UUID, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error(context.Background(), "ws hub: marshal failed", "error", err)
		return
	}
	h.enqueue(&broadcastMsg{articleID: articleID, data: data})
}

func (h *Hub) enqueue(msg *broadcastMsg) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
}
