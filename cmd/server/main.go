package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/vedran77/inkwell/internal/config"
	"github.com/vedran77/inkwell/internal/database"
	"github.com/vedran77/inkwell/internal/logging"
	"github.com/vedran77/inkwell/internal/password"
	"github.com/vedran77/inkwell/internal/repository"
	"github.com/vedran77/inkwell/internal/repository/memory"
	postgresrepo "github.com/vedran77/inkwell/internal/repository/postgres"
	"github.com/vedran77/inkwell/internal/service"
	"github.com/vedran77/inkwell/internal/session"
	"github.com/vedran77/inkwell/internal/transport/http/handlers"
	"github.com/vedran77/inkwell/internal/transport/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.LogLevel)
	if cfg.SessionSecret == config.DevSessionSecret {
		log.Warn(context.Background(), "SESSION_SECRET is the development default")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hasher, err := password.New(password.DefaultParams(), cfg.KDFWorkers)
	if err != nil {
		return err
	}

	repos, closeRepos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRepos()

	// Sessions
	sessions, err := session.NewManager(repos.sessions, session.Options{
		Secret: cfg.SessionSecret,
		TTL:    cfg.SessionTTL,
		Cookie: session.CookieOptions{
			Name:     cfg.CookieName,
			Secure:   cfg.CookieSecure,
			SameSite: cfg.CookieSameSite,
		},
	})
	if err != nil {
		return err
	}

	// WebSocket hub
	hub := ws.NewHub(log)
	notifier := ws.NewHubNotifier(hub)

	// Services
	authService := service.NewAuthService(repos.authors, hasher)
	authorService := service.NewAuthorService(repos.authors)
	articleService := service.NewArticleService(repos.articles)
	articleService.SetNotifier(notifier)
	commentService := service.NewCommentService(repos.comments, repos.articles)
	commentService.SetNotifier(notifier)

	// Handlers
	router := handlers.Router{
		Auth:        handlers.NewAuthHandler(authService, sessions, log),
		Author:      handlers.NewAuthorHandler(authorService, articleService, sessions, log),
		Reader:      handlers.NewReaderHandler(articleService, commentService, log),
		Sessions:    sessions,
		Feed:        ws.ServeWS(hub, ws.OriginPatterns(cfg.CORSOrigins), log),
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Background services
	sup := suture.NewSimple("inkwell")
	sup.Add(hub)
	sup.Add(session.NewSweeper(sessions, cfg.SessionSweepInterval, log))
	sup.Add(&httpService{srv: srv, log: log})

	err = sup.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// httpService runs the API server under the supervisor and shuts it down
// gracefully when the supervisor stops.
type httpService struct {
	srv *http.Server
	log logging.Logger
}

func (s *httpService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "starting server", "addr", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return suture.ErrDoNotRestart
		}
		s.log.Error(ctx, "server failed", "error", err)
		return suture.ErrTerminateSupervisorTree
	case <-ctx.Done():
	}

	s.log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.log.Error(shutdownCtx, "shutdown failed", "error", err)
	}
	return ctx.Err()
}

func (s *httpService) String() string {
	return "http server"
}

type repositories struct {
	authors  repository.AuthorRepository
	articles repository.ArticleRepository
	comments repository.CommentRepository
	sessions repository.SessionRepository
}

func openRepositories(ctx context.Context, cfg *config.Config, log logging.Logger) (*repositories, func(), error) {
	switch cfg.Storage {
	case "memory":
		log.Warn(ctx, "using in-memory storage, data is lost on restart")
		authors := memory.NewAuthorStore()
		comments := memory.NewCommentStore()
		return &repositories{
			authors:  authors,
			articles: memory.NewArticleStore(authors, comments),
			comments: comments,
			sessions: memory.NewSessionStore(),
		}, func() {}, nil

	case "postgres":
		pool, err := database.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Info(ctx, "connected to database")

		if cfg.AutoMigrate {
			if err := database.MigratePool(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
			log.Info(ctx, "migrations applied")
		}

		return &repositories{
			authors:  postgresrepo.NewAuthorRepo(pool),
			articles: postgresrepo.NewArticleRepo(pool),
			comments: postgresrepo.NewCommentRepo(pool),
			sessions: postgresrepo.NewSessionRepo(pool),
		}, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}
}
