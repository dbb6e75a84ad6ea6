package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/metrics"
	"shareit/internal/models"
	"shareit/internal/retry"

	"github.com/rs/zerolog"
)

// maxBodySize bounds how much of an upstream response is buffered.
const maxBodySize = 64 << 20

const searchKeyPrefix = "search:"

// ErrResponseTooLarge is returned instead of relaying a truncated upstream body.
var ErrResponseTooLarge = errors.New("upstream response exceeds size limit")

// Outbound is one request to forward to the ShareIt server.
type Outbound struct {
	Method    string
	Path      string
	Query     url.Values
	UserID    string
	RequestID string
	Body      []byte
}

// ServerClient forwards gateway requests to the ShareIt server.
type ServerClient struct {
	baseURL    string
	httpClient *http.Client
	retry      retry.Policy
	logger     *zerolog.Logger
	maxBody    int64

	cache    domain.ResponseCache
	cacheTTL time.Duration
}

func NewServerClient(baseURL string, timeout time.Duration, policy retry.Policy, logger *zerolog.Logger) *ServerClient {
	return &ServerClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		retry:      policy,
		logger:     logger,
		maxBody:    maxBodySize,
	}
}

// UseCache enables response caching for item search. A zero ttl disables it.
func (c *ServerClient) UseCache(cache domain.ResponseCache, ttl time.Duration) {
	c.cache = cache
	c.cacheTTL = ttl
}

// Forward sends out and returns the upstream status and body unchanged.
// GET requests are retried on transport errors and 5xx responses.
func (c *ServerClient) Forward(ctx context.Context, out Outbound) (*models.CachedResponse, error) {
	if out.Method != http.MethodGet {
		resp, err := c.send(ctx, out)
		c.observe(out.Method, resp, err)
		if err == nil && resp.Status < http.StatusMultipleChoices && changesSearch(out) {
			c.invalidateSearch(ctx)
		}
		return resp, err
	}

	var resp *models.CachedResponse
	err := c.retry.Do(ctx, func(attempt int) (bool, error) {
		var err error
		resp, err = c.send(ctx, out)
		if errors.Is(err, ErrResponseTooLarge) {
			return false, err
		}
		if err != nil {
			c.logger.Warn().Err(err).Int("attempt", attempt+1).Str("path", out.Path).Msg("upstream request failed")
			return true, err
		}
		if resp.Status >= http.StatusInternalServerError {
			c.logger.Warn().Int("status", resp.Status).Int("attempt", attempt+1).Str("path", out.Path).Msg("upstream returned server error")
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		resp = nil
	}
	c.observe(out.Method, resp, err)
	return resp, err
}

// Search forwards an item search, serving repeated queries from the cache.
func (c *ServerClient) Search(ctx context.Context, out Outbound) (*models.CachedResponse, error) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return c.Forward(ctx, out)
	}

	key := searchCacheKey(out.Query)
	cached, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.IncCache("error")
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	case cached != nil:
		metrics.IncCache("hit")
		return cached, nil
	default:
		metrics.IncCache("miss")
	}

	resp, err := c.Forward(ctx, out)
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusOK {
		if err := c.cache.Set(ctx, key, resp, c.cacheTTL); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return resp, nil
}

// Ping checks that the server answers GET /healthz.
func (c *ServerClient) Ping(ctx context.Context) error {
	resp, err := c.send(ctx, Outbound{Method: http.MethodGet, Path: "/healthz"})
	if err != nil {
		return err
	}
	if resp.Status != http.StatusOK {
		return fmt.Errorf("server health returned %d", resp.Status)
	}
	return nil
}

func (c *ServerClient) send(ctx context.Context, out Outbound) (*models.CachedResponse, error) {
	endpoint := c.baseURL + out.Path
	if len(out.Query) > 0 {
		endpoint += "?" + out.Query.Encode()
	}

	var body io.Reader
	if len(out.Body) > 0 {
		body = bytes.NewReader(out.Body)
	}
	req, err := http.NewRequestWithContext(ctx, out.Method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if out.UserID != "" {
		req.Header.Set(models.HeaderUserID, out.UserID)
	}
	if out.RequestID != "" {
		req.Header.Set("X-Request-Id", out.RequestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, fmt.Errorf("%s %s: %w", out.Method, out.Path, ErrResponseTooLarge)
	}
	return &models.CachedResponse{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

func (c *ServerClient) observe(method string, resp *models.CachedResponse, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case resp.Status >= http.StatusInternalServerError:
		outcome = "server_error"
	case resp.Status >= http.StatusBadRequest:
		outcome = "client_error"
	}
	metrics.IncUpstream(method, outcome)
}

// invalidateSearch drops cached searches after an item write.
func (c *ServerClient) invalidateSearch(ctx context.Context) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	if err := c.cache.DeletePrefix(ctx, searchKeyPrefix); err != nil {
		c.logger.Warn().Err(err).Msg("search cache invalidation failed")
	}
}

// changesSearch reports whether out creates or edits an item.
// Comments do not affect search results.
func changesSearch(out Outbound) bool {
	path := strings.TrimRight(out.Path, "/")
	switch out.Method {
	case http.MethodPost:
		return path == "/items"
	case http.MethodPatch:
		return strings.HasPrefix(path, "/items/")
	default:
		return false
	}
}

// searchCacheKey lowercases text the way the server does but keeps whitespace,
// which the server treats as part of the substring.
func searchCacheKey(q url.Values) string {
	norm := url.Values{}
	norm.Set("text", strings.ToLower(q.Get("text")))
	norm.Set("from", q.Get("from"))
	norm.Set("size", q.Get("size"))
	return searchKeyPrefix + norm.Encode()
}
