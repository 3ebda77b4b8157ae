// Package cli provides the interactive aimauth command-line client.
//
// It wires configuration and the HTTP API client into a small REPL:
//
//	register   create an account (and sign in)
//	login      sign in with email and password
//	whoami     show the signed-in profile, verified by the server
//	passwd     change the password
//	delete     delete the account
//	logout     forget the local session
//
// Passwords are read from the terminal without echo and wiped after use.
// The REPL is started via App.Run, which blocks until the user exits.
package cli
