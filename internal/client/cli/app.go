package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/aimauth/internal/client/client"
	"github.com/dmitrijs2005/aimauth/internal/client/config"
)

// AccountAPI is the server surface the CLI uses. *client.HTTPClient
// satisfies it.
type AccountAPI interface {
	Register(ctx context.Context, r client.RegisterRequest) (string, error)
	Login(ctx context.Context, email string, password []byte) (*client.LoginResult, error)
	ChangePassword(ctx context.Context, email string, oldPassword, newPassword []byte) error
	Delete(ctx context.Context, email string, password []byte) error
	Me(ctx context.Context, token string) (*client.Profile, error)
	Ping(ctx context.Context) error
}

// session is the signed-in state kept in memory only.
type session struct {
	email   string
	token   string
	profile client.Profile
}

type App struct {
	config  *config.Config
	api     AccountAPI
	session *session
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	api, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return newApp(c, api, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, api AccountAPI, in io.Reader, out io.Writer) *App {
	return &App{config: c, api: api, reader: bufio.NewReader(in), out: out}
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

func (a *App) getStatus() string {
	if a.session == nil {
		return "(signed out)"
	}
	return fmt.Sprintf("(%s)", a.session.email)
}

// Run checks that the server answers, then runs the REPL until EOF or exit.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "aimauth CLI (type 'help' for commands)")

	if err := a.api.Ping(ctx); err != nil {
		fmt.Fprintf(a.out, "Warning: %s is not reachable: %v\n", a.config.ServerURL, err)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

// report prints err in a user-facing form and returns it unchanged.
func (a *App) report(err error) error {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, try again later")
	default:
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
	return err
}
