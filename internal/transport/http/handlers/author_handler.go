package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/inkwell/internal/logging"
	"github.com/vedran77/inkwell/internal/service"
	"github.com/vedran77/inkwell/internal/session"
	"github.com/vedran77/inkwell/internal/transport/http/middleware"
	"github.com/vedran77/inkwell/pkg/validator"
)

// AuthorHandler serves the signed-in author's settings and articles.
type AuthorHandler struct {
	authorService  *service.AuthorService
	articleService *service.ArticleService
	sessions       *session.Manager
	log            logging.Logger
}

func NewAuthorHandler(authorService *service.AuthorService, articleService *service.ArticleService, sessions *session.Manager, log logging.Logger) *AuthorHandler {
	return &AuthorHandler{
		authorService:  authorService,
		articleService: articleService,
		sessions:       sessions,
		log:            log,
	}
}

type settingsRequest struct {
	Name         string `json:"name"`
	BlogTitle    string `json:"blog_title"`
	BlogSubtitle string `json:"blog_subtitle"`
}

type articleRequest struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Content  string `json:"content"`
}

func (h *AuthorHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	author, err := h.authorService.Get(r.Context(), middleware.GetAuthorID(r.Context()))
	if err != nil {
		h.writeAuthorError(w, r, "get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, author)
}

func (h *AuthorHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res := validator.ValidateSettings(req.Name, req.BlogTitle, req.BlogSubtitle)
	if !res.Valid() {
		writeValidationErrors(w, res.Errors())
		return
	}
	in := res.Value()

	authorID := middleware.GetAuthorID(r.Context())
	author, err := h.authorService.UpdateSettings(r.Context(), authorID, service.SettingsInput{
		DisplayName:  in.DisplayName,
		BlogTitle:    in.BlogTitle,
		BlogSubtitle: in.BlogSubtitle,
	})
	if err != nil {
		h.writeAuthorError(w, r, "update settings", err)
		return
	}

	// open sessions keep their principal in storage
	if err := h.sessions.RefreshDisplayName(r.Context(), authorID, author.DisplayName); err != nil {
		writeInternal(r.Context(), w, h.log, "update settings: sessions", err)
		return
	}

	writeJSON(w, http.StatusOK, author)
}

func (h *AuthorHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articleService.ListMine(r.Context(), middleware.GetAuthorID(r.Context()))
	if err != nil {
		writeInternal(r.Context(), w, h.log, "list articles", err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (h *AuthorHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	article, err := h.articleService.CreateDraft(r.Context(), middleware.GetAuthorID(r.Context()))
	if err != nil {
		writeInternal(r.Context(), w, h.log, "create article", err)
		return
	}
	writeJSON(w, http.StatusCreated, article)
}

func (h *AuthorHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	article, err := h.articleService.GetMine(r.Context(), middleware.GetAuthorID(r.Context()), id)
	if err != nil {
		h.writeArticleError(w, r, "get article", err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (h *AuthorHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req articleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res := validator.ValidateArticle(req.Title, req.Subtitle, req.Content)
	if !res.Valid() {
		writeValidationErrors(w, res.Errors())
		return
	}
	in := res.Value()

	article, err := h.articleService.Update(r.Context(), middleware.GetAuthorID(r.Context()), id, service.UpdateArticleInput{
		Title:    in.Title,
		Subtitle: in.Subtitle,
		Content:  in.Content,
	})
	if err != nil {
		h.writeArticleError(w, r, "update article", err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (h *AuthorHandler) PublishArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	article, err := h.articleService.Publish(r.Context(), middleware.GetAuthorID(r.Context()), id)
	if err != nil {
		h.writeArticleError(w, r, "publish article", err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (h *AuthorHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.articleService.Delete(r.Context(), middleware.GetAuthorID(r.Context()), id); err != nil {
		h.writeArticleError(w, r, "delete article", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthorHandler) writeAuthorError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, service.ErrAuthorNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Author not found")
		return
	}
	writeInternal(r.Context(), w, h.log, op, err)
}

func (h *AuthorHandler) writeArticleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrArticleNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Article not found")
	case errors.Is(err, service.ErrArticleIncomplete):
		writeError(w, http.StatusUnprocessableEntity, "ARTICLE_INCOMPLETE", "Published articles need a title, subtitle and content")
	default:
		writeInternal(r.Context(), w, h.log, op, err)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid article ID")
		return uuid.Nil, false
	}
	return id, true
}
