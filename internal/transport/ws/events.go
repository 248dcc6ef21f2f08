package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/inkwell/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeArticleSubscribe   = "article.subscribe"
	EventTypeArticleUnsubscribe = "article.unsubscribe"
	EventTypePing               = "ping"
)

// Event types - Server → Client
const (
	EventTypeCommentNew       = "comment.new"
	EventTypeArticlePublished = "article.published"
	EventTypePong             = "pong"
	EventTypeError            = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	ArticleID *uuid.UUID      `json:"article_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type ArticlePayload struct {
	ArticleID uuid.UUID `json:"article_id"`
}

// --- Server → Client payloads ---

type CommentPayload struct {
	domain.Comment
}

type PublishedPayload struct {
	domain.Article
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, articleID *uuid.UUID, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		ArticleID: articleID,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
