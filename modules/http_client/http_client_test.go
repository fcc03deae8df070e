package http_client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/modlink/internal/registry"
)

func TestResolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/config.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"port": 8080, "tags": ["a", "b"], "debug": false}`))
		case "/broken.json":
			_, _ = w.Write([]byte(`{not json`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	r := New(server.Client())

	t.Run("json document", func(t *testing.T) {
		v, err := r.Resolve(context.Background(), server.URL+"/config.json")
		require.NoError(t, err)
		assert.Equal(t, registry.Exports{
			"port":  8080,
			"tags":  []any{"a", "b"},
			"debug": false,
		}, v)
	})

	t.Run("not a url", func(t *testing.T) {
		v, err := r.Resolve(context.Background(), "lib/name")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := r.Resolve(context.Background(), server.URL+"/missing.json")
		assert.ErrorContains(t, err, "404")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := r.Resolve(ctx, server.URL+"/config.json")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("invalid body", func(t *testing.T) {
		_, err := r.Resolve(context.Background(), server.URL+"/broken.json")
		assert.ErrorContains(t, err, "not JSON")
	})
}
