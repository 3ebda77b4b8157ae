package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/aimauth/internal/common"
	"github.com/dmitrijs2005/aimauth/internal/netx"
)

// Profile is the public part of an account.
type Profile struct {
	ID        int64  `json:"id"`
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LoginResult is what a successful login returns.
type LoginResult struct {
	Token   string
	Profile Profile
}

// RegisterRequest holds the fields for account creation.
type RegisterRequest struct {
	Email     string
	FirstName string
	LastName  string
	Password  []byte
}

type envelope struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	Data    *Profile `json:"data"`
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the server at baseURL
// (e.g. "http://127.0.0.1:8000").
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q must be http or https", baseURL)
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// Register creates an account and returns its access token.
func (c *HTTPClient) Register(ctx context.Context, r RegisterRequest) (string, error) {
	env, err := c.call(ctx, http.MethodPost, "/api/auth/create", url.Values{
		"email":     {r.Email},
		"firstName": {r.FirstName},
		"lastName":  {r.LastName},
		"password":  {string(r.Password)},
	}, "")
	if err != nil {
		return "", err
	}
	return env.Token, nil
}

func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (*LoginResult, error) {
	env, err := c.call(ctx, http.MethodPost, "/api/auth/login", url.Values{
		"email":    {email},
		"password": {string(password)},
	}, "")
	if err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, fmt.Errorf("login response has no profile")
	}
	return &LoginResult{Token: env.Token, Profile: *env.Data}, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, email string, oldPassword, newPassword []byte) error {
	_, err := c.call(ctx, http.MethodPost, "/api/auth/change_password", url.Values{
		"email":        {email},
		"old_password": {string(oldPassword)},
		"new_password": {string(newPassword)},
	}, "")
	return err
}

func (c *HTTPClient) Delete(ctx context.Context, email string, password []byte) error {
	_, err := c.call(ctx, http.MethodPost, "/api/auth/delete", url.Values{
		"email":    {email},
		"password": {string(password)},
	}, "")
	return err
}

// Me returns the profile of the token's owner.
func (c *HTTPClient) Me(ctx context.Context, token string) (*Profile, error) {
	env, err := c.call(ctx, http.MethodGet, "/api/auth/me", nil, token)
	if err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, fmt.Errorf("me response has no profile")
	}
	return env.Data, nil
}

// Ping checks that the server answers its health endpoint.
func (c *HTTPClient) Ping(ctx context.Context) error {
	resp, err := netx.Send(ctx, c.http, http.MethodGet, c.baseURL+"/health", nil, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *HTTPClient) call(ctx context.Context, method, path string, form url.Values, token string) (*envelope, error) {
	var header http.Header
	if token != "" {
		header = http.Header{}
		header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	resp, err := netx.Send(ctx, c.http, method, c.baseURL+path, form, header)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	env := &envelope{}
	decodeErr := json.Unmarshal(resp.Body, env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	return env, nil
}
