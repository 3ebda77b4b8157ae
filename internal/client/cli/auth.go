package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/aimauth/internal/client/client"
	"github.com/dmitrijs2005/aimauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the profile and a password, creates the account and
// signs in with the returned token.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	firstName, err := getSimpleText(a.reader, "Enter first name", a.out)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Enter last name", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(password)

	token, err := a.api.Register(ctx, client.RegisterRequest{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Password:  password,
	})
	if err != nil {
		return a.report(err)
	}

	a.session = &session{
		email:   email,
		token:   token,
		profile: client.Profile{FirstName: firstName, LastName: lastName},
	}
	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login prompts for credentials and keeps the issued token for this process.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Login(ctx, email, password)
	if err != nil {
		return a.report(err)
	}

	a.session = &session{email: email, token: res.Token, profile: res.Profile}
	fmt.Fprintf(a.out, "Welcome, %s %s (%s)\n", res.Profile.FirstName, res.Profile.LastName, res.Profile.Role)
	return nil
}

// WhoAmI asks the server who the current token belongs to.
func (a *App) WhoAmI(ctx context.Context) error {
	if a.session == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	p, err := a.api.Me(ctx, a.session.token)
	if err != nil {
		return a.report(err)
	}

	a.session.profile = *p
	fmt.Fprintf(a.out, "%s %s <%s> id=%d role=%s\n", p.FirstName, p.LastName, a.session.email, p.ID, p.Role)
	return nil
}

// Logout drops the in-memory session. Tokens are not revoked server-side.
func (a *App) Logout(ctx context.Context) error {
	a.session = nil
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
