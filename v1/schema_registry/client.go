package schema_registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"
)

const (
	// DefaultTimeout bounds a single schema fetch.
	DefaultTimeout = 30 * time.Second

	// maxDocumentSize caps how much of a registry response is read.
	maxDocumentSize = 8 << 20
)

// Fetcher retrieves raw schema documents by id.
//
// Implementations must be safe for concurrent use. The returned bytes are
// expected to be a JSON object with a "schema" field; Fetcher does not
// interpret them.
//
//go:generate mockgen -source=client.go -destination=mock_fetcher.go -package=schema_registry
type Fetcher interface {
	Fetch(ctx context.Context, id uint32) ([]byte, error)
}

// FetcherFunc adapts an ordinary function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, id uint32) ([]byte, error)

// Fetch calls f(ctx, id).
func (f FetcherFunc) Fetch(ctx context.Context, id uint32) ([]byte, error) {
	return f(ctx, id)
}

// Config holds configuration for the schema registry client
type Config struct {
	// URL is the registry base. The schema id is appended verbatim, so it
	// usually ends with a slash (e.g., "https://registry.local/schemas/ids/").
	URL string `yaml:"url" envconfig:"SCHEMA_REGISTRY_URL"`

	// Username for basic auth (optional)
	Username string `yaml:"username" envconfig:"SCHEMA_REGISTRY_USERNAME"`

	// Password for basic auth (optional)
	Password string `yaml:"password" envconfig:"SCHEMA_REGISTRY_PASSWORD"`

	// Timeout for HTTP requests. Defaults to DefaultTimeout.
	Timeout time.Duration `yaml:"timeout" envconfig:"SCHEMA_REGISTRY_TIMEOUT"`
}

// Client is the HTTP implementation of Fetcher.
// TLS is used whenever the URL scheme is https.
type Client struct {
	url        string
	httpClient *http.Client

	// Authentication
	username string
	password string
}

// NewClient creates a new schema registry client
// Returns the concrete *Client type.
func NewClient(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("schema registry URL is required")
	}

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	return &Client{
		url: config.URL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		username: config.Username,
		password: config.Password,
	}, nil
}

// URL returns the configured registry base.
func (c *Client) URL() string {
	return c.url
}

// Fetch retrieves the schema document for id with a GET on <URL><id>.
//
// Any transport error, non-2xx status or unreadable body is returned as an
// error. Timeouts (the client timeout or a ctx deadline) additionally match
// ErrTimeout.
func (c *Client) Fetch(ctx context.Context, id uint32) ([]byte, error) {
	url := c.url + strconv.FormatUint(uint64(id), 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("Accept", "application/vnd.schemaregistry.v1+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("failed to fetch schema %d: %w: %w", id, ErrTimeout, err)
		}
		return nil, fmt.Errorf("failed to fetch schema %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: schema registry returned status %d: %s", ErrUnexpectedStatus, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("failed to read schema %d: %w: %w", id, ErrTimeout, err)
		}
		return nil, fmt.Errorf("failed to read schema %d: %w", id, err)
	}
	if len(body) > maxDocumentSize {
		return nil, fmt.Errorf("schema %d document exceeds %d bytes", id, maxDocumentSize)
	}

	return body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
