// Package client talks to the aimauth HTTP API.
//
// Requests are form-encoded, responses JSON. Non-2xx responses become
// *APIError carrying the server's message; APIError unwraps to
// ErrUnauthorized or ErrUnavailable where that applies, so callers can use
// errors.Is.
package client
