package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/inkwell/internal/domain"
	"github.com/vedran77/inkwell/internal/logging"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256
)

// Client represents a single WebSocket connection. Readers connect without
// signing in; principal is nil for them.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	principal *domain.Principal
	log       logging.Logger

	// subscribedArticles tracks which articles this client follows.
	subscribedArticles map[uuid.UUID]struct{}
	mu                 sync.RWMutex

	send chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn, principal *domain.Principal, log logging.Logger) *Client {
	if principal != nil {
		log = log.With("author_id", principal.ID)
	}
	return &Client{
		hub:                hub,
		conn:               conn,
		principal:          principal,
		log:                log,
		subscribedArticles: make(map[uuid.UUID]struct{}),
		send:               make(chan []byte, sendBufSize),
	}
}

// IsSubscribed checks if this client follows an article.
func (c *Client) IsSubscribed(articleID uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subscribedArticles[articleID]
	return ok
}

func (c *Client) Subscribe(articleID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribedArticles[articleID] = struct{}{}
}

func (c *Client) Unsubscribe(articleID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscribedArticles, articleID)
}

// ReadPump reads events from the WebSocket until the connection or ctx ends.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(ctx, c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				c.log.Debug(ctx, "ws read failed", "error", err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes queued events to the WebSocket and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeArticleSubscribe, EventTypeArticleUnsubscribe:
		var p ArticlePayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.ArticleID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "article_id required for "+event.Type)
			return
		}
		if event.Type == EventTypeArticleSubscribe {
			c.Subscribe(p.ArticleID)
		} else {
			c.Unsubscribe(p.ArticleID)
		}

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	c.enqueue(data)
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, nil, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	c.enqueue(data)
}

// enqueue goes through the hub, which owns the send channel.
func (c *Client) enqueue(data []byte) {
	c.hub.SendTo(c, data)
}
