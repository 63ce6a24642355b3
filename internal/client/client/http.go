package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/consultbook/internal/client/models"
	"github.com/dmitrijs2005/consultbook/internal/common"
)

// HTTPClient implements Client against the booking backend's JSON API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient builds a client for baseURL with a per-request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// envelope is the union of the body shapes the backend returns.
type envelope struct {
	Message      string          `json:"message"`
	Error        string          `json:"error"`
	IsRegistered bool            `json:"isRegistered"`
	Data         json.RawMessage `json:"data"`
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

type authData struct {
	Token string            `json:"token"`
	User  models.UserRecord `json:"user"`
}

func (c *HTTPClient) CheckEmail(ctx context.Context, email string) (*EmailCheckResponse, error) {
	status, env, err := c.do(ctx, http.MethodPost, "/auth/check-email", "", map[string]string{"email": email})
	if err != nil {
		return nil, err
	}
	return &EmailCheckResponse{Status: status, IsRegistered: env.IsRegistered, Message: env.message()}, nil
}

func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (*AuthResponse, error) {
	return c.auth(ctx, "/auth/signin", map[string]string{"email": email, "password": password})
}

func (c *HTTPClient) ResendOTP(ctx context.Context, email string) (*StatusResponse, error) {
	status, env, err := c.do(ctx, http.MethodPost, "/auth/resend-otp", "", map[string]string{"email": email})
	if err != nil {
		return nil, err
	}
	return &StatusResponse{Status: status, Message: env.message()}, nil
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, email, code string) (*AuthResponse, error) {
	return c.auth(ctx, "/auth/verify-otp", map[string]string{"email": email, "otp": code})
}

func (c *HTTPClient) UpdateUser(ctx context.Context, token, userID string, p ProfileUpdate) (*ProfileResponse, error) {
	status, env, err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(userID), token, p)
	if err != nil {
		return nil, err
	}
	resp := &ProfileResponse{Status: status, Message: env.message()}
	if len(env.Data) > 0 && isSuccess(status) {
		if err := json.Unmarshal(env.Data, &resp.Data); err != nil {
			return nil, fmt.Errorf("%w: profile data: %v", ErrMalformedResponse, err)
		}
	}
	return resp, nil
}

func (c *HTTPClient) auth(ctx context.Context, path string, body any) (*AuthResponse, error) {
	status, env, err := c.do(ctx, http.MethodPost, path, "", body)
	if err != nil {
		return nil, err
	}
	resp := &AuthResponse{Status: status, Message: env.message()}
	if len(env.Data) > 0 && isSuccess(status) {
		var d authData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("%w: auth data: %v", ErrMalformedResponse, err)
		}
		resp.Token, resp.User = d.Token, d.User
	}
	return resp, nil
}

// do sends body as JSON and decodes the envelope. Bodies of error responses
// that are not JSON are tolerated; a 2xx with an undecodable body is not.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, body any) (int, envelope, error) {
	var env envelope

	payload, err := json.Marshal(body)
	if err != nil {
		return 0, env, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, env, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, env, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, env, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && isSuccess(resp.StatusCode) {
			return 0, env, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}
	return resp.StatusCode, env, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
