package cli

import (
	"context"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/aimauth/internal/client/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangePassword_UsesSessionEmail(t *testing.T) {
	f := &fakeAPI{}
	a, out := newTestApp(f)
	a.session = &session{email: "a@x", token: "t"}
	oldPw, newPw := []byte("old"), []byte("new")
	stubInputs(t, nil, [][]byte{oldPw, newPw})

	require.NoError(t, a.ChangePassword(context.Background()))

	assert.Equal(t, "a@x", f.changeEmail)
	assert.Equal(t, "old", f.changeOld)
	assert.Equal(t, "new", f.changeNew)
	assert.Equal(t, []byte{0, 0, 0}, oldPw)
	assert.Equal(t, []byte{0, 0, 0}, newPw)
	assert.Contains(t, out.String(), "Password changed")
}

func TestChangePassword_PromptsForEmailWhenSignedOut(t *testing.T) {
	f := &fakeAPI{changeErr: &client.APIError{StatusCode: http.StatusBadRequest, Message: "new password is the same as old password"}}
	a, out := newTestApp(f)
	stubInputs(t, []string{"b@x"}, [][]byte{[]byte("pw"), []byte("pw")})

	require.Error(t, a.ChangePassword(context.Background()))
	assert.Equal(t, "b@x", f.changeEmail)
	assert.Contains(t, out.String(), "new password is the same as old password")
}

func TestDeleteAccount(t *testing.T) {
	f := &fakeAPI{}
	a, out := newTestApp(f)
	a.session = &session{email: "a@x", token: "t"}
	stubInputs(t, []string{"yes"}, [][]byte{[]byte("pw")})

	require.NoError(t, a.DeleteAccount(context.Background()))

	assert.Equal(t, "a@x", f.deleteEmail)
	assert.Equal(t, "pw", f.deletePass)
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Account deleted")
}

func TestDeleteAccount_Cancelled(t *testing.T) {
	f := &fakeAPI{}
	a, out := newTestApp(f)
	a.session = &session{email: "a@x", token: "t"}
	stubInputs(t, []string{"no"}, nil)

	require.NoError(t, a.DeleteAccount(context.Background()))

	assert.False(t, f.deleteCalled)
	assert.True(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Cancelled")
}

func TestDeleteAccount_WrongPasswordKeepsSession(t *testing.T) {
	f := &fakeAPI{deleteErr: &client.APIError{StatusCode: http.StatusUnauthorized, Message: "incorrect password"}}
	a, _ := newTestApp(f)
	a.session = &session{email: "a@x", token: "t"}
	stubInputs(t, []string{"yes"}, [][]byte{[]byte("bad")})

	require.ErrorIs(t, a.DeleteAccount(context.Background()), client.ErrUnauthorized)
	assert.True(t, a.isLoggedIn())
}
