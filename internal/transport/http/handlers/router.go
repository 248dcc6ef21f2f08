package handlers

import (
	"net/http"

	"github.com/vedran77/inkwell/internal/logging"
	"github.com/vedran77/inkwell/internal/session"
	"github.com/vedran77/inkwell/internal/transport/http/middleware"
)

type Router struct {
	Auth     *AuthHandler
	Author   *AuthorHandler
	Reader   *ReaderHandler
	Sessions *session.Manager
	// Feed serves the websocket comment feed. Optional.
	Feed        http.Handler
	CORSOrigins []string
	Log         logging.Logger
}

// Handler builds the routed, middleware-wrapped API.
func (rt Router) Handler() http.Handler {
	auth := middleware.RequireAuth

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/register", rt.Auth.Register)
	mux.HandleFunc("POST /api/v1/auth/login", rt.Auth.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", rt.Auth.Logout)
	mux.Handle("GET /api/v1/auth/me", auth(http.HandlerFunc(rt.Auth.Me)))

	// Reader
	mux.HandleFunc("GET /api/v1/articles", rt.Reader.ListArticles)
	mux.HandleFunc("GET /api/v1/articles/{id}", rt.Reader.GetArticle)
	mux.HandleFunc("POST /api/v1/articles/{id}/comments", rt.Reader.AddComment)

	// Protected - Author
	mux.Handle("GET /api/v1/author/settings", auth(http.HandlerFunc(rt.Author.GetSettings)))
	mux.Handle("PATCH /api/v1/author/settings", auth(http.HandlerFunc(rt.Author.UpdateSettings)))
	mux.Handle("GET /api/v1/author/articles", auth(http.HandlerFunc(rt.Author.ListArticles)))
	mux.Handle("POST /api/v1/author/articles", auth(http.HandlerFunc(rt.Author.CreateArticle)))
	mux.Handle("GET /api/v1/author/articles/{id}", auth(http.HandlerFunc(rt.Author.GetArticle)))
	mux.Handle("PUT /api/v1/author/articles/{id}", auth(http.HandlerFunc(rt.Author.UpdateArticle)))
	mux.Handle("DELETE /api/v1/author/articles/{id}", auth(http.HandlerFunc(rt.Author.DeleteArticle)))
	mux.Handle("POST /api/v1/author/articles/{id}/publish", auth(http.HandlerFunc(rt.Author.PublishArticle)))

	// WebSocket
	if rt.Feed != nil {
		mux.Handle("GET /api/v1/ws", rt.Feed)
	}

	return middleware.Chain(mux,
		middleware.RequestLogger(rt.Log),
		middleware.Recover(rt.Log),
		middleware.CORS(rt.CORSOrigins),
		middleware.Session(rt.Sessions, rt.Log),
	)
}
