package schema_registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	c, err := NewClient(Config{URL: "http://registry/"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
	assert.Equal(t, "http://registry/", c.URL())
}

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/schemas/ids/7", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "user", user)
		assert.Equal(t, "secret", pass)
		assert.Contains(t, r.Header.Get("Accept"), "application/json")

		_, _ = w.Write([]byte(`{"schema":"\"string\""}`))
	}))
	defer server.Close()

	c, err := NewClient(Config{URL: server.URL + "/schemas/ids/", Username: "user", Password: "secret"})
	require.NoError(t, err)

	doc, err := c.Fetch(context.Background(), 7)
	require.NoError(t, err)
	assert.JSONEq(t, `{"schema":"\"string\""}`, string(doc))
}

func TestClient_Fetch_IDAppendedVerbatim(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c, err := NewClient(Config{URL: server.URL + "/schema-"})
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), 4294967295)
	require.NoError(t, err)
	assert.Equal(t, "/schema-4294967295", path)
}

func TestClient_Fetch_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "schema not found", http.StatusNotFound)
	}))
	defer server.Close()

	c, err := NewClient(Config{URL: server.URL + "/"})
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), 9)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "404")
	assert.False(t, IsTimeoutError(err))
}

func TestClient_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c, err := NewClient(Config{URL: server.URL + "/", Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, IsTimeoutError(err), "%v", err)
}

func TestClient_Fetch_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL + "/"
	server.Close()

	c, err := NewClient(Config{URL: url})
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), 1)
	assert.Error(t, err)
}
