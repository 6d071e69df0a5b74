package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/dm/sfm-go/internal/logging"
	"github.com/dm/sfm-go/internal/metrics"
)

// DefaultTimeout is the per-request timeout and also the smallest one
// accepted by configuration.
const DefaultTimeout = 10 * time.Second

// ThumbnailSize is the edge length requested when none is given.
const ThumbnailSize = 256

const maxResponseBytes = 64 * 1024 * 1024

// SeafileClient defines the interface for talking to one Seafile account.
type SeafileClient interface {
	Login(ctx context.Context) error
	Account(ctx context.Context) (*AccountInfo, error)
	Server(ctx context.Context) (*ServerInfo, error)
	Libraries(ctx context.Context) ([]Library, error)
	Directories(ctx context.Context, repoID, path string) ([]DirEntry, error)
	File(ctx context.Context, repoID, path string) (string, error)
	FileBytes(ctx context.Context, repoID, path string) ([]byte, error)
	Thumbnail(ctx context.Context, repoID, path string, size int) ([]byte, error)
	Diagnostics() map[string]DiagnosticRecord
	BaseURL() string
}

// ClientConfig holds configuration for DefaultClient.
type ClientConfig struct {
	URL                string
	Username           string
	Password           string
	Timeout            time.Duration
	InsecureSkipVerify bool
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// DefaultClient implements SeafileClient over the api2 REST API.
type DefaultClient struct {
	http    *http.Client
	config  ClientConfig
	apiBase string
	maxBody int64
	log     zerolog.Logger

	mu    sync.RWMutex
	token string

	diag *diagnosticsLog
}

// NewDefaultClient constructs a DefaultClient. A trailing "/" on the URL is
// dropped and "/api2" is appended to form the API base.
func NewDefaultClient(cfg ClientConfig) (*DefaultClient, error) {
	cfg.URL = strings.TrimSuffix(cfg.URL, "/")
	if cfg.URL == "" {
		return nil, fmt.Errorf("URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
		}
		httpClient = &http.Client{Transport: transport}
	}

	return &DefaultClient{
		http:    httpClient,
		config:  cfg,
		apiBase: cfg.URL + "/api2",
		maxBody: maxResponseBytes,
		log:     logging.With().Str("component", "client").Str("account", cfg.Username).Logger(),
		diag:    newDiagnosticsLog(),
	}, nil
}

// BaseURL returns the server URL without the API suffix.
func (c *DefaultClient) BaseURL() string {
	return c.config.URL
}

// Diagnostics returns a copy of the last request record for every path.
func (c *DefaultClient) Diagnostics() map[string]DiagnosticRecord {
	return c.diag.snapshot()
}

func (c *DefaultClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login exchanges the username and password for a token. The stored token
// only changes when the response carries one.
func (c *DefaultClient) Login(ctx context.Context) error {
	const path = "auth-token"

	form := url.Values{}
	form.Set("username", c.config.Username)
	form.Set("password", c.config.Password)

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	reqURL := c.endpointURL(path, nil)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return c.requestError(path, reqURL, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, path, false)
	if err != nil {
		return err
	}

	var resp struct {
		Token *string `json:"token"`
	}
	// A valid non-object body carries no token.
	if err := json.Unmarshal(body, &resp); err == nil && resp.Token != nil {
		c.mu.Lock()
		c.token = *resp.Token
		c.mu.Unlock()
	}
	return nil
}

// request performs an authenticated GET against {base}/api2/{path}/.
// With raw set, a successful body is returned as is; otherwise it must be
// JSON.
func (c *DefaultClient) request(ctx context.Context, path string, query url.Values, raw bool) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	reqURL := c.endpointURL(path, query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, c.requestError(path, reqURL, err)
	}
	req.Header.Set("Authorization", "Token "+c.currentToken())
	if !raw {
		req.Header.Set("Accept", "application/json")
	}

	return c.do(req, path, raw)
}

// download fetches an absolute URL returned by the file endpoint.
func (c *DefaultClient) download(ctx context.Context, link, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, c.requestError(path, link, err)
	}
	return c.do(req, path, true)
}

// do sends req and classifies the outcome. Every call leaves a diagnostics
// record under path.
func (c *DefaultClient) do(req *http.Request, path string, raw bool) ([]byte, error) {
	endpoint := metricsEndpoint(path)
	start := time.Now()
	reqURL := req.URL.String()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.connectionError(path, reqURL, endpoint, start, fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, c.connectionError(path, reqURL, endpoint, start, fmt.Errorf("read body: %w", err))
	}
	if int64(len(body)) > c.maxBody {
		return nil, c.connectionError(path, reqURL, endpoint, start, fmt.Errorf("response body exceeds %d bytes", c.maxBody))
	}

	c.log.Debug().Str("url", reqURL).Int("status", resp.StatusCode).Str("body", truncate(body, 200)).Msg("Successful request")
	c.diag.record(path, messageSuccess, body)

	if raw && resp.StatusCode < http.StatusBadRequest {
		metrics.ObserveRequest(endpoint, "ok", time.Since(start))
		return body, nil
	}

	if !json.Valid(body) {
		return nil, c.connectionError(path, reqURL, endpoint, start, fmt.Errorf("unexpected body (status %d): %s", resp.StatusCode, truncate(body, 200)))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		metrics.ObserveRequest(endpoint, "request_error", time.Since(start))
		return nil, newRequestError(body)
	}

	metrics.ObserveRequest(endpoint, "ok", time.Since(start))
	return body, nil
}

// requestError reports a request that could not be built.
func (c *DefaultClient) requestError(path, reqURL string, err error) error {
	return c.connectionError(path, reqURL, metricsEndpoint(path), time.Now(), fmt.Errorf("create request: %w", err))
}

func (c *DefaultClient) connectionError(path, reqURL, endpoint string, start time.Time, err error) error {
	c.log.Debug().Str("url", reqURL).Err(err).Msg("Connection error")
	c.diag.record(path, messageConnection, []byte(err.Error()))
	metrics.ObserveRequest(endpoint, "connection_error", time.Since(start))
	return &ConnectionError{Err: err}
}

func (c *DefaultClient) endpointURL(path string, query url.Values) string {
	u := c.apiBase + "/" + path + "/"
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// metricsEndpoint collapses repository ids so the label set stays bounded.
func metricsEndpoint(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) >= 3 && parts[0] == "repos" {
		parts[1] = ":id"
	}
	return strings.Join(parts, "/")
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
