package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dmitrijs2005/aimauth/internal/common"
	"github.com/dmitrijs2005/aimauth/internal/logging"
	"github.com/dmitrijs2005/aimauth/internal/server/models"
	"github.com/dmitrijs2005/aimauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type fakeAccounts struct {
	createFn       func(ctx context.Context, in services.CreateAccountInput) (*models.User, error)
	loginFn        func(ctx context.Context, email, password string) (*models.User, error)
	changeFn       func(ctx context.Context, email, oldPassword, newPassword string) error
	deleteFn       func(ctx context.Context, email, password string) error
	issueFn        func(ctx context.Context, email string) (string, error)
	authenticateFn func(ctx context.Context, token string) (*models.User, error)
}

func (f fakeAccounts) CreateAccount(ctx context.Context, in services.CreateAccountInput) (*models.User, error) {
	if f.createFn == nil {
		return &models.User{ID: 1, Email: in.Email}, nil
	}
	return f.createFn(ctx, in)
}

func (f fakeAccounts) Login(ctx context.Context, email, password string) (*models.User, error) {
	if f.loginFn == nil {
		return &models.User{ID: 1, Email: email}, nil
	}
	return f.loginFn(ctx, email, password)
}

func (f fakeAccounts) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	if f.changeFn == nil {
		return nil
	}
	return f.changeFn(ctx, email, oldPassword, newPassword)
}

func (f fakeAccounts) DeleteAccount(ctx context.Context, email, password string) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, email, password)
}

func (f fakeAccounts) IssueToken(ctx context.Context, email string) (string, error) {
	if f.issueFn == nil {
		return "tok-" + email, nil
	}
	return f.issueFn(ctx, email)
}

func (f fakeAccounts) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if f.authenticateFn == nil {
		return nil, common.ErrInvalidToken
	}
	return f.authenticateFn(ctx, token)
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%q)", err, resp.Body.String())
	}
	return body
}

func routes(f fakeAccounts) http.Handler {
	return NewHandler(f, nopLogger{}).Routes()
}

func createForm() url.Values {
	return url.Values{
		"email":     {"ada@example.com"},
		"firstName": {"Ada"},
		"lastName":  {"Lovelace"},
		"password":  {"pw1"},
	}
}

func TestCreate_Success(t *testing.T) {
	var got services.CreateAccountInput
	f := fakeAccounts{
		createFn: func(ctx context.Context, in services.CreateAccountInput) (*models.User, error) {
			got = in
			return &models.User{ID: 7, Email: in.Email}, nil
		},
	}

	resp, body := postForm(t, routes(f), "/api/auth/create", createForm())

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
	assert.Equal(t, "success", body["message"])
	assert.Equal(t, "tok-ada@example.com", body["token"])
	assert.NotContains(t, body, "data")
	assert.Equal(t, services.CreateAccountInput{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "pw1",
	}, got)
}

func TestCreate_IgnoresRoleField(t *testing.T) {
	var got services.CreateAccountInput
	f := fakeAccounts{
		createFn: func(ctx context.Context, in services.CreateAccountInput) (*models.User, error) {
			got = in
			return &models.User{ID: 1}, nil
		},
	}
	form := createForm()
	form.Set("role", "admin")

	resp, _ := postForm(t, routes(f), "/api/auth/create", form)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, got.Role)
}

func TestCreate_MissingFields(t *testing.T) {
	for _, field := range []string{"email", "firstName", "lastName", "password"} {
		t.Run(field, func(t *testing.T) {
			f := fakeAccounts{
				createFn: func(ctx context.Context, in services.CreateAccountInput) (*models.User, error) {
					t.Fatal("service must not be called")
					return nil, nil
				},
			}
			form := createForm()
			form.Del(field)

			resp, body := postForm(t, routes(f), "/api/auth/create", form)

			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Equal(t, "missing field: "+field, body["message"])
		})
	}
}

func TestCreate_EmptyValuesPassThrough(t *testing.T) {
	for _, field := range []string{"firstName", "lastName", "password"} {
		t.Run(field, func(t *testing.T) {
			var got services.CreateAccountInput
			f := fakeAccounts{
				createFn: func(ctx context.Context, in services.CreateAccountInput) (*models.User, error) {
					got = in
					return &models.User{ID: 1}, nil
				},
			}
			form := createForm()
			form.Set(field, "")

			resp, body := postForm(t, routes(f), "/api/auth/create", form)

			require.Equal(t, http.StatusOK, resp.Code)
			assert.Equal(t, "success", body["message"])
			assert.Equal(t, "ada@example.com", got.Email)
		})
	}
}

func TestCreate_FieldsNotTrimmed(t *testing.T) {
	var got services.CreateAccountInput
	f := fakeAccounts{
		createFn: func(ctx context.Context, in services.CreateAccountInput) (*models.User, error) {
			got = in
			return &models.User{ID: 1}, nil
		},
	}
	form := createForm()
	form.Set("email", " ada@example.com ")
	form.Set("firstName", "Ada\t")

	resp, _ := postForm(t, routes(f), "/api/auth/create", form)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, " ada@example.com ", got.Email)
	assert.Equal(t, "Ada\t", got.FirstName)
}

func TestCreate_PasswordNotTrimmed(t *testing.T) {
	var got string
	f := fakeAccounts{
		createFn: func(ctx context.Context, in services.CreateAccountInput) (*models.User, error) {
			got = in.Password
			return &models.User{ID: 1}, nil
		},
	}
	form := createForm()
	form.Set("password", " pw ")

	resp, _ := postForm(t, routes(f), "/api/auth/create", form)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, " pw ", got)
}

func TestCreate_Multipart(t *testing.T) {
	var sb strings.Builder
	boundary := "xxBOUNDARYxx"
	for k, v := range createForm() {
		fmt.Fprintf(&sb, "--%s\r\nContent-Disposition: form-data; name=%q\r\n\r\n%s\r\n", boundary, k, v[0])
	}
	fmt.Fprintf(&sb, "--%s--\r\n", boundary)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/create", strings.NewReader(sb.String()))
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	resp := httptest.NewRecorder()
	routes(fakeAccounts{}).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "success", decodeBody(t, resp)["message"])
}

func TestCreate_IssueTokenFailure(t *testing.T) {
	f := fakeAccounts{
		issueFn: func(ctx context.Context, email string) (string, error) {
			return "", fmt.Errorf("sign: %w", common.ErrSigningFailure)
		},
	}

	resp, body := postForm(t, routes(f), "/api/auth/create", createForm())

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "internal error", body["message"])
}

func TestServiceErrors_MapToStatus(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"duplicate", common.ErrEmailAlreadyExists, http.StatusConflict, "email already exists"},
		{"unknown email", common.ErrEmailNotFound, http.StatusNotFound, "email does not exist"},
		{"wrong password", common.ErrIncorrectPassword, http.StatusUnauthorized, "incorrect password"},
		{"same password", common.ErrNoOpPasswordChange, http.StatusBadRequest, "new password is the same as old password"},
		{"too long", common.ErrPasswordTooLong, http.StatusBadRequest, "password too long"},
		{"storage", fmt.Errorf("find: %w: %w", common.ErrStorageUnavailable, errBoom), http.StatusServiceUnavailable, "service unavailable"},
		{"unknown", errBoom, http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fakeAccounts{
				loginFn: func(ctx context.Context, email, password string) (*models.User, error) {
					return nil, tt.err
				},
			}

			resp, body := postForm(t, routes(f), "/api/auth/login",
				url.Values{"email": {"a@x"}, "password": {"pw"}})

			assert.Equal(t, tt.status, resp.Code)
			assert.Equal(t, tt.message, body["message"])
			assert.Len(t, body, 1)
		})
	}
}

func TestLogin_Success(t *testing.T) {
	f := fakeAccounts{
		loginFn: func(ctx context.Context, email, password string) (*models.User, error) {
			assert.Equal(t, "ada@example.com", email)
			assert.Equal(t, "pw1", password)
			return &models.User{ID: 3, Role: "user", FirstName: "Ada", LastName: "Lovelace", Email: email}, nil
		},
	}

	resp, body := postForm(t, routes(f), "/api/auth/login",
		url.Values{"email": {"ada@example.com"}, "password": {"pw1"}})

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "success", body["message"])
	assert.Equal(t, "tok-ada@example.com", body["token"])
	assert.Equal(t, map[string]any{
		"id":        float64(3),
		"role":      "user",
		"firstName": "Ada",
		"lastName":  "Lovelace",
	}, body["data"])
}

func TestChangePassword(t *testing.T) {
	var gotOld, gotNew string
	f := fakeAccounts{
		changeFn: func(ctx context.Context, email, oldPassword, newPassword string) error {
			gotOld, gotNew = oldPassword, newPassword
			return nil
		},
	}

	resp, body := postForm(t, routes(f), "/api/auth/change_password",
		url.Values{"email": {"a@x"}, "old_password": {"pw1"}, "new_password": {"pw2"}})

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, map[string]any{"message": "success"}, body)
	assert.Equal(t, "pw1", gotOld)
	assert.Equal(t, "pw2", gotNew)
}

func TestChangePassword_MissingNewPassword(t *testing.T) {
	resp, body := postForm(t, routes(fakeAccounts{}), "/api/auth/change_password",
		url.Values{"email": {"a@x"}, "old_password": {"pw1"}})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "missing field: new_password", body["message"])
}

func TestDelete(t *testing.T) {
	called := false
	f := fakeAccounts{
		deleteFn: func(ctx context.Context, email, password string) error {
			called = true
			return nil
		},
	}

	resp, body := postForm(t, routes(f), "/api/auth/delete",
		url.Values{"email": {"a@x"}, "password": {"pw"}})

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, map[string]any{"message": "success"}, body)
	assert.True(t, called)
}

func TestMe(t *testing.T) {
	f := fakeAccounts{
		authenticateFn: func(ctx context.Context, token string) (*models.User, error) {
			if token != "good" {
				return nil, common.ErrInvalidToken
			}
			return &models.User{ID: 9, Role: "user", FirstName: "Ada", LastName: "L"}, nil
		},
	}

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"ok", "Bearer good", http.StatusOK, "success"},
		{"lowercase scheme", "bearer good", http.StatusOK, "success"},
		{"missing", "", http.StatusUnauthorized, "missing bearer token"},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, "missing bearer token"},
		{"bad token", "Bearer bad", http.StatusUnauthorized, "invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set(common.AuthorizationHeaderName, tt.header)
			}
			resp := httptest.NewRecorder()
			routes(f).ServeHTTP(resp, req)

			assert.Equal(t, tt.status, resp.Code)
			assert.Equal(t, tt.message, decodeBody(t, resp)["message"])
		})
	}
}

func TestMe_Expired(t *testing.T) {
	f := fakeAccounts{
		authenticateFn: func(ctx context.Context, token string) (*models.User, error) {
			return nil, fmt.Errorf("verify: %w", common.ErrTokenExpired)
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set(common.AuthorizationHeaderName, "Bearer old")
	resp := httptest.NewRecorder()
	routes(f).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "token expired", decodeBody(t, resp)["message"])
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	routes(fakeAccounts{}).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", decodeBody(t, resp)["status"])
}

func TestWrongMethod(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/login", nil)
	resp := httptest.NewRecorder()
	routes(fakeAccounts{}).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
}

func TestBodyTooLarge(t *testing.T) {
	big := strings.Repeat("a", maxBodyBytes+1)
	resp, body := postForm(t, routes(fakeAccounts{}), "/api/auth/login",
		url.Values{"email": {"a@x"}, "password": {big}})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "invalid form body", body["message"])
}
