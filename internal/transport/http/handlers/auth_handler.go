package handlers

import (
	"errors"
	"net/http"

	"github.com/vedran77/inkwell/internal/logging"
	"github.com/vedran77/inkwell/internal/service"
	"github.com/vedran77/inkwell/internal/session"
	"github.com/vedran77/inkwell/internal/transport/http/middleware"
	"github.com/vedran77/inkwell/pkg/validator"
)

type AuthHandler struct {
	authService *service.AuthService
	sessions    *session.Manager
	log         logging.Logger
}

func NewAuthHandler(authService *service.AuthService, sessions *session.Manager, log logging.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		log:         log,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res := validator.ValidateRegister(req.Email, req.Password, req.Confirm, req.Name)
	if !res.Valid() {
		writeValidationErrors(w, res.Errors())
		return
	}
	in := res.Value()

	author, err := h.authService.Register(r.Context(), service.RegisterInput{
		Email:       in.Email,
		Password:    in.Password,
		DisplayName: in.DisplayName,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email is already registered")
		default:
			writeInternal(r.Context(), w, h.log, "register", err)
		}
		return
	}

	principal, err := h.sessions.Establish(r.Context(), w, author)
	if err != nil {
		writeInternal(r.Context(), w, h.log, "register: session", err)
		return
	}

	logging.FromContext(r.Context(), h.log).Info(r.Context(), "author registered", "author_id", author.ID)
	writeJSON(w, http.StatusCreated, principal)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res := validator.ValidateLogin(req.Email, req.Password)
	if !res.Valid() {
		writeValidationErrors(w, res.Errors())
		return
	}
	in := res.Value()

	author, err := h.authService.Login(r.Context(), service.LoginInput{Email: in.Email, Password: in.Password})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCreds) {
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "incorrect username or password")
		} else {
			writeInternal(r.Context(), w, h.log, "login", err)
		}
		return
	}

	principal, err := h.sessions.Establish(r.Context(), w, author)
	if err != nil {
		writeInternal(r.Context(), w, h.log, "login: session", err)
		return
	}

	writeJSON(w, http.StatusOK, principal)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		writeInternal(r.Context(), w, h.log, "logout", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.GetPrincipal(r.Context()))
}
