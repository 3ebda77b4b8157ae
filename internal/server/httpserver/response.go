package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/aimauth/internal/common"
)

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// classification is checked in order; the first match wins.
var classification = []struct {
	err     error
	status  int
	message string
}{
	{common.ErrEmailAlreadyExists, http.StatusConflict, "email already exists"},
	{common.ErrEmailNotFound, http.StatusNotFound, "email does not exist"},
	{common.ErrSubjectNotFound, http.StatusNotFound, "email does not exist"},
	{common.ErrIncorrectPassword, http.StatusUnauthorized, "incorrect password"},
	{common.ErrNoOpPasswordChange, http.StatusBadRequest, "new password is the same as old password"},
	{common.ErrPasswordTooLong, http.StatusBadRequest, "password too long"},
	{common.ErrMissingAuthToken, http.StatusUnauthorized, "missing bearer token"},
	{common.ErrTokenExpired, http.StatusUnauthorized, "token expired"},
	{common.ErrInvalidToken, http.StatusUnauthorized, "invalid token"},
	{common.ErrStorageUnavailable, http.StatusServiceUnavailable, "service unavailable"},
}

// classify returns the HTTP status and user-facing message for err.
// Anything unrecognized is an internal error.
func classify(err error) (int, string) {
	for _, c := range classification {
		if errors.Is(err, c.err) {
			return c.status, c.message
		}
	}
	return http.StatusInternalServerError, "internal error"
}
