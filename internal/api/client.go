// Package api provides a client for the name-ranking statistics API.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/verte-zerg/nomes/internal/model"
)

// DefaultBaseURL is the public IBGE names endpoint.
const DefaultBaseURL = "https://servicodados.ibge.gov.br/api/v2/censos/nomes"

const defaultTimeout = 10 * time.Second

// Error kinds reported by Client. Use errors.Is to test for them.
var (
	// ErrStatus marks a response with a non-success status code.
	ErrStatus = errors.New("unexpected status")
	// ErrNotFound marks a response without records.
	ErrNotFound = errors.New("no records found")
	// ErrRequestFailed marks transport failures and undecodable bodies.
	ErrRequestFailed = errors.New("request failed")
)

// Source is implemented by anything that can serve ranking data.
type Source interface {
	Ranking(ctx context.Context) ([]model.NameRecord, error)
	NameHistory(ctx context.Context, name string) ([]model.NameRecord, error)
}

// Client fetches ranking data over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
	flights    singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the statistics API.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    DefaultBaseURL,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ranking returns the overall name ranking. An empty body yields no
// records and no error. Concurrent calls share a single request.
func (c *Client) Ranking(ctx context.Context) ([]model.NameRecord, error) {
	v, err, shared := c.flights.Do("ranking", func() (any, error) {
		return c.get(ctx, "/ranking")
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("ranking request shared")
	}
	sets := v.([]model.ResultSet)
	if len(sets) == 0 {
		return nil, nil
	}
	return sets[0].Res, nil
}

// NameHistory returns the per-period frequencies of name. The name is
// lower-cased before it is sent. An empty result is reported as ErrNotFound.
func (c *Client) NameHistory(ctx context.Context, name string) ([]model.NameRecord, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, errors.Mark(errors.New("name is empty"), ErrNotFound)
	}
	path := "/" + url.PathEscape(name)
	sets, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 || len(sets[0].Res) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "name %q", name)
	}
	return sets[0].Res, nil
}

func (c *Client) get(ctx context.Context, path string) ([]model.ResultSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "create request"), ErrRequestFailed)
	}
	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("path", path), zap.Error(err))
		return nil, errors.Mark(errors.Wrapf(err, "GET %s", path), ErrRequestFailed)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.logger.Info("request done",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	if resp.StatusCode != http.StatusOK {
		return nil, errors.WithDetailf(
			errors.Wrapf(ErrStatus, "GET %s: %s", path, resp.Status),
			"status code %d", resp.StatusCode)
	}

	var sets []model.ResultSet
	if err := json.NewDecoder(resp.Body).Decode(&sets); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decode %s", path), ErrRequestFailed)
	}
	return sets, nil
}
