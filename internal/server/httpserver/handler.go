package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/aimauth/internal/common"
	"github.com/dmitrijs2005/aimauth/internal/logging"
	"github.com/dmitrijs2005/aimauth/internal/server/models"
	"github.com/dmitrijs2005/aimauth/internal/server/services"
)

// AccountAPI is the subset of *services.AccountService the handlers call.
type AccountAPI interface {
	CreateAccount(ctx context.Context, in services.CreateAccountInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error
	DeleteAccount(ctx context.Context, email, password string) error
	IssueToken(ctx context.Context, email string) (string, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

const (
	maxBodyBytes  = 1 << 20
	maxFormMemory = 1 << 20
)

// Handler serves the /api/auth endpoints. Requests are form-encoded,
// responses are JSON.
type Handler struct {
	accounts AccountAPI
	logger   logging.Logger
}

func NewHandler(accounts AccountAPI, l logging.Logger) *Handler {
	return &Handler{accounts: accounts, logger: l}
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/create", h.handleCreate)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/change_password", h.handleChangePassword)
	mux.HandleFunc("POST /api/auth/delete", h.handleDelete)
	mux.HandleFunc("GET /api/auth/me", h.handleMe)
	mux.HandleFunc("GET /health", h.handleHealth)
	return mux
}

type profile struct {
	ID        int64  `json:"id"`
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type successResponse struct {
	Message string   `json:"message"`
	Token   string   `json:"token,omitempty"`
	Data    *profile `json:"data,omitempty"`
}

func profileOf(u *models.User) *profile {
	return &profile{ID: u.ID, Role: u.Role, FirstName: u.FirstName, LastName: u.LastName}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	f, ok := h.form(w, r, "email", "firstName", "lastName", "password")
	if !ok {
		return
	}

	_, err := h.accounts.CreateAccount(r.Context(), services.CreateAccountInput{
		FirstName: f["firstName"],
		LastName:  f["lastName"],
		Email:     f["email"],
		Password:  f["password"],
	})
	if err != nil {
		h.fail(w, r, "create account", err)
		return
	}

	token, err := h.accounts.IssueToken(r.Context(), f["email"])
	if err != nil {
		h.fail(w, r, "issue token", err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Message: "success", Token: token})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	f, ok := h.form(w, r, "email", "password")
	if !ok {
		return
	}

	u, err := h.accounts.Login(r.Context(), f["email"], f["password"])
	if err != nil {
		h.fail(w, r, "login", err)
		return
	}

	token, err := h.accounts.IssueToken(r.Context(), f["email"])
	if err != nil {
		h.fail(w, r, "issue token", err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Message: "success", Token: token, Data: profileOf(u)})
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	f, ok := h.form(w, r, "email", "old_password", "new_password")
	if !ok {
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), f["email"], f["old_password"], f["new_password"]); err != nil {
		h.fail(w, r, "change password", err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Message: "success"})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	f, ok := h.form(w, r, "email", "password")
	if !ok {
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), f["email"], f["password"]); err != nil {
		h.fail(w, r, "delete account", err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Message: "success"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r.Header.Get(common.AuthorizationHeaderName))
	if token == "" {
		h.fail(w, r, "authenticate", common.ErrMissingAuthToken)
		return
	}

	u, err := h.accounts.Authenticate(r.Context(), token)
	if err != nil {
		h.fail(w, r, "authenticate", err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Message: "success", Data: profileOf(u)})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// form parses the request body and returns the named fields verbatim. It
// writes a 400 and returns false if any field is absent; an empty value is
// passed through.
func (h *Handler) form(w http.ResponseWriter, r *http.Request, names ...string) (map[string]string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return nil, false
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return nil, false
	}

	out := make(map[string]string, len(names))
	for _, name := range names {
		vs, ok := r.PostForm[name]
		if !ok || len(vs) == 0 {
			writeError(w, http.StatusBadRequest, "missing field: "+name)
			return nil, false
		}
		out[name] = vs[0]
	}
	return out, true
}

// fail maps err to a status and public message. Server-side failures are
// logged with their full cause; the response never carries it.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed",
			"op", op, "error", err.Error(), "request_id", RequestIDFromContext(r.Context()))
	} else {
		h.logger.Debug(r.Context(), "request rejected",
			"op", op, "reason", msg, "request_id", RequestIDFromContext(r.Context()))
	}
	writeError(w, status, msg)
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
