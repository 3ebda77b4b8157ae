package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/aimauth/internal/common"
)

// sessionEmail returns the signed-in email or prompts for one.
func (a *App) sessionEmail() (string, error) {
	if a.session != nil {
		return a.session.email, nil
	}
	return getSimpleText(a.reader, "Enter email", a.out)
}

// ChangePassword prompts for the current and new passwords.
func (a *App) ChangePassword(ctx context.Context) error {
	email, err := a.sessionEmail()
	if err != nil {
		return err
	}

	oldPassword, err := getPassword("Enter current password", a.out)
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(oldPassword)

	newPassword, err := getPassword("Enter new password", a.out)
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(newPassword)

	if err := a.api.ChangePassword(ctx, email, oldPassword, newPassword); err != nil {
		return a.report(err)
	}

	fmt.Fprintln(a.out, "Password changed")
	return nil
}

// DeleteAccount asks for confirmation and the password, deletes the account
// and ends the session.
func (a *App) DeleteAccount(ctx context.Context) error {
	email, err := a.sessionEmail()
	if err != nil {
		return err
	}

	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete account %s? Type 'yes' to confirm", email), a.out)
	if err != nil {
		return err
	}
	if answer != "yes" {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(password)

	if err := a.api.Delete(ctx, email, password); err != nil {
		return a.report(err)
	}

	a.session = nil
	fmt.Fprintln(a.out, "Account deleted")
	return nil
}
