package service

import "github.com/vedran77/inkwell/internal/domain"

// Notifier broadcasts real-time events to connected readers.
type Notifier interface {
	NotifyNewComment(comment *domain.Comment)
	NotifyPublished(article *domain.Article)
}
