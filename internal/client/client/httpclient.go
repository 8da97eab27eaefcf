package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/talkscribe/internal/common"
	"github.com/dmitrijs2005/talkscribe/internal/netx"
)

const (
	defaultRequestTimeout = 15 * time.Second
	transcribeTimeout     = 2 * time.Minute
)

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

type sessionBody struct {
	User *RemoteUser `json:"user"`
	Tokens
}

// HTTPClient talks to the server's JSON API. Expired access tokens are
// refreshed once per request using the stored refresh token.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu     sync.Mutex
	tokens Tokens

	// OnTokens, when set, receives every new token pair (including the empty
	// pair after logout) so it can be persisted.
	OnTokens func(Tokens)
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *HTTPClient) Tokens() Tokens {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

func (c *HTTPClient) SetTokens(t Tokens) {
	c.mu.Lock()
	c.tokens = t
	cb := c.OnTokens
	c.mu.Unlock()
	if cb != nil {
		cb(t)
	}
}

func (c *HTTPClient) authHeader() http.Header {
	h := http.Header{}
	if t := c.Tokens(); t.AccessToken != "" {
		h.Set(common.AuthorizationHeader, common.BearerPrefix+t.AccessToken)
	}
	return h
}

// mapError converts transport failures and error bodies into the package's
// sentinel errors.
func mapError(code int, body []byte, err error) error {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if code >= 200 && code < 300 {
		return nil
	}

	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	switch code {
	case http.StatusUnauthorized:
		if eb.Error != "" && eb.Error != "Unauthorized" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, eb.Error)
		}
		return ErrUnauthorized
	case http.StatusConflict:
		return common.ErrDuplicateUser
	}
	if eb.Error == "" {
		eb.Error = strings.TrimSpace(string(body))
	}
	return &APIError{StatusCode: code, Message: eb.Error, Details: eb.Details}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any, auth bool) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		payload = b
	}

	send := func() (int, []byte, error) {
		ctx, cancel := context.WithTimeout(ctx, defaultRequestTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return 0, nil, err
		}
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if auth {
			for k, v := range c.authHeader() {
				req.Header[k] = v
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return 0, nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		return resp.StatusCode, body, err
	}

	code, body, err := send()
	if err == nil && auth && code == http.StatusUnauthorized && c.refresh(ctx) == nil {
		code, body, err = send()
	}
	if err := mapError(code, body, err); err != nil {
		return err
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return nil
}

// refresh rotates the token pair. It fails without a stored refresh token.
func (c *HTTPClient) refresh(ctx context.Context) error {
	rt := c.Tokens().RefreshToken
	if rt == "" {
		return ErrNotLoggedIn
	}

	var pair Tokens
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", map[string]string{"refresh_token": rt}, &pair, false); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			c.SetTokens(Tokens{})
		}
		return err
	}
	c.SetTokens(pair)
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, false)
}

func (c *HTTPClient) authenticate(ctx context.Context, path, email, password string) (*RemoteUser, error) {
	var s sessionBody
	req := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, path, req, &s, false); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	c.SetTokens(s.Tokens)
	return s.User, nil
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (*RemoteUser, error) {
	return c.authenticate(ctx, "/api/auth/register", email, password)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*RemoteUser, error) {
	return c.authenticate(ctx, "/api/auth/login", email, password)
}

// Logout revokes the refresh token on the server and forgets both tokens
// locally, even when the server cannot be reached.
func (c *HTTPClient) Logout(ctx context.Context) error {
	rt := c.Tokens().RefreshToken
	defer c.SetTokens(Tokens{})
	if rt == "" {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/api/auth/logout", map[string]string{"refresh_token": rt}, nil, false)
}

// Transcribe uploads a WAV recording to the ASR relay.
func (c *HTTPClient) Transcribe(ctx context.Context, wav []byte, durationSeconds int) (*TranscribeResult, error) {
	if c.Tokens().AccessToken == "" {
		return nil, ErrNotLoggedIn
	}

	upload := func() ([]byte, error) {
		ctx, cancel := context.WithTimeout(ctx, transcribeTimeout)
		defer cancel()
		return netx.UploadMultipart(ctx, c.http, c.baseURL+"/api/transcribe", c.authHeader(),
			"audio", "recording.wav", wav, map[string]string{"duration": strconv.Itoa(durationSeconds)})
	}

	body, err := upload()
	var se *netx.StatusError
	if errors.As(err, &se) && se.Code == http.StatusUnauthorized && c.refresh(ctx) == nil {
		body, err = upload()
	}
	if err != nil {
		if errors.As(err, &se) {
			return nil, mapError(se.Code, se.Body, nil)
		}
		return nil, mapError(0, nil, err)
	}

	var res TranscribeResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode transcribe response: %w", err)
	}
	return &res, nil
}

// Translate asks the server's translation relay. The result may be one of
// the relay's placeholder messages.
func (c *HTTPClient) Translate(ctx context.Context, text, target string) (string, error) {
	var out struct {
		Translated string `json:"translated"`
	}
	req := map[string]string{"text": text, "target": target}
	if err := c.do(ctx, http.MethodPost, "/api/translate", req, &out, true); err != nil {
		return "", err
	}
	return out.Translated, nil
}
