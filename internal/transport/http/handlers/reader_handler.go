package handlers

import (
	"errors"
	"net/http"

	"github.com/vedran77/inkwell/internal/domain"
	"github.com/vedran77/inkwell/internal/logging"
	"github.com/vedran77/inkwell/internal/service"
	"github.com/vedran77/inkwell/internal/transport/http/middleware"
	"github.com/vedran77/inkwell/pkg/validator"
)

// ReaderHandler serves published articles to everyone, signed in or not.
type ReaderHandler struct {
	articleService *service.ArticleService
	commentService *service.CommentService
	log            logging.Logger
}

func NewReaderHandler(articleService *service.ArticleService, commentService *service.CommentService, log logging.Logger) *ReaderHandler {
	return &ReaderHandler{
		articleService: articleService,
		commentService: commentService,
		log:            log,
	}
}

type articleWithComments struct {
	Article  *domain.Article  `json:"article"`
	Comments []domain.Comment `json:"comments"`
}

type commentRequest struct {
	Content string `json:"content"`
}

func (h *ReaderHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articleService.ListPublished(r.Context())
	if err != nil {
		writeInternal(r.Context(), w, h.log, "list published", err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (h *ReaderHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	article, err := h.articleService.GetPublished(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get published", err)
		return
	}

	comments, err := h.commentService.List(r.Context(), id)
	if err != nil {
		writeInternal(r.Context(), w, h.log, "list comments", err)
		return
	}

	writeJSON(w, http.StatusOK, articleWithComments{Article: article, Comments: comments})
}

func (h *ReaderHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res := validator.ValidateComment(req.Content)
	if !res.Valid() {
		writeValidationErrors(w, res.Errors())
		return
	}

	comment, err := h.commentService.Add(r.Context(), middleware.GetPrincipal(r.Context()), id, res.Value())
	if err != nil {
		h.writeError(w, r, "add comment", err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *ReaderHandler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, service.ErrArticleNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Article not found")
		return
	}
	writeInternal(r.Context(), w, h.log, op, err)
}
