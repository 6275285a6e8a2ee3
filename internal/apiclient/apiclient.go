// Package apiclient talks to a running billing server on behalf of the CLI dashboard.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

var ErrNotFound = errors.New("not found")

// APIError is a non-2xx answer. Message is the server's {"error"} text when present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server answered %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server answered %d", e.StatusCode)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

type Client struct {
	http    *http.Client
	baseURL string
	log     *slog.Logger

	login    string
	password string
}

func New(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// SetBasicAuth sets the credentials sent with admin-only requests.
func (c *Client) SetBasicAuth(login, password string) {
	c.login, c.password = login, password
}

func (c *Client) Dashboard(ctx context.Context) (storage.Dashboard, error) {
	var d storage.Dashboard
	err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, &d)
	return d, err
}

func (c *Client) GetClient(ctx context.Context, id string) (*storage.ClientWithEquipment, error) {
	var cl storage.ClientWithEquipment
	if err := c.do(ctx, http.MethodGet, "/api/clients/"+url.PathEscape(id), nil, &cl); err != nil {
		return nil, err
	}
	return &cl, nil
}

func (c *Client) Settings(ctx context.Context) (*storage.Settings, error) {
	var st storage.Settings
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// SyncResponse is the body of POST /api/sync.
type SyncResponse struct {
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func (c *Client) Sync(ctx context.Context) (*SyncResponse, error) {
	var resp SyncResponse
	if err := c.do(ctx, http.MethodPost, "/api/sync", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	const op = "apiclient.do"

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.login != "" {
		req.SetBasicAuth(c.login, c.password)
	}

	c.log.Debug("api request", slog.String("method", method), slog.String("url", req.URL.String()))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %s %s: %w", op, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &errBody) == nil {
			apiErr.Message = errBody.Error
		}
		return fmt.Errorf("%s: %s %s: %w", op, method, path, apiErr)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}

	return nil
}
