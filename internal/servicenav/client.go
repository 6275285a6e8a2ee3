package servicenav

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/config"
)

// maxBodySize caps one upstream answer; a full host export stays well under it.
const maxBodySize = 64 << 20

type Client struct {
	client        *http.Client
	log           *slog.Logger
	baseURL       string
	apiKey        string
	companiesPath string
	equipmentPath string
	maxBody       int64
}

func New(cfg config.ServiceNav, log *slog.Logger) (*Client, error) {
	const op = "servicenav.New"

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%s: base url is not configured", op)
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("%s: invalid base url: %w", op, err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		log:           log.With(slog.String("component", "servicenav")),
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		companiesPath: cfg.CompaniesPath,
		equipmentPath: cfg.EquipmentPath,
		maxBody:       maxBodySize,
	}, nil
}

// FetchCompanies returns every company known to ServiceNav.
func (c *Client) FetchCompanies(ctx context.Context) ([]Company, error) {
	const op = "servicenav.FetchCompanies"

	body, err := c.get(ctx, c.companiesPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	companies, err := ParseCompanies(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return companies, nil
}

// FetchClientEquipment returns the hosts of one company.
func (c *Client) FetchClientEquipment(ctx context.Context, companyID string) ([]Equipment, error) {
	const op = "servicenav.FetchClientEquipment"

	path := strings.ReplaceAll(c.equipmentPath, "{id}", url.PathEscape(companyID))

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%s: company %s: %w", op, companyID, err)
	}

	equipment, err := ParseEquipment(body)
	if err != nil {
		return nil, fmt.Errorf("%s: company %s: %w", op, companyID, err)
	}

	return equipment, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.log.Debug("requesting servicenav", slog.String("url", req.URL.String()))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s answered %d", ErrUpstream, path, resp.StatusCode)
	}

	// one byte past the cap tells an oversized answer from one that fits exactly
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: %s: payload too large (over %d bytes)", ErrUpstream, path, c.maxBody)
	}

	return body, nil
}
