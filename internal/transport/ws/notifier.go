package ws

import (
	"context"

	"github.com/vedran77/inkwell/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyNewComment(c *domain.Comment) {
	evt, err := NewEvent(EventTypeCommentNew, &c.ArticleID, CommentPayload{Comment: *c})
	if err != nil {
		n.hub.log.Error(context.Background(), "ws notifier: marshal failed", "error", err)
		return
	}
	n.hub.BroadcastToArticle(c.ArticleID, evt)
}

func (n *HubNotifier) NotifyPublished(a *domain.Article) {
	evt, err := NewEvent(EventTypeArticlePublished, &a.ID, PublishedPayload{Article: *a})
	if err != nil {
		n.hub.log.Error(context.Background(), "ws notifier: marshal failed", "error", err)
		return
	}
	n.hub.BroadcastToAll(evt)
}
