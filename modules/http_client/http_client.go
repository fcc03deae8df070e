// Package http_client serves JSON documents fetched over HTTP as host
// modules. A module name that is an http or https URL resolves to the
// decoded body of a GET request to it.
package http_client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vk/modlink/internal/ctxlog"
	"github.com/vk/modlink/internal/ctyconv"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 30 * time.Second

// Resolver fetches remote modules.
type Resolver struct {
	client  *http.Client
	timeout time.Duration
}

// New creates a Resolver using client, or http.DefaultClient when nil.
func New(client *http.Client) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &Resolver{client: client, timeout: DefaultTimeout}
}

// Resolve is a linker.ExternalLoader. Names that are not URLs are left
// unresolved. The fetch is bounded by both ctx and the resolver timeout.
func (r *Resolver) Resolve(ctx context.Context, name string) (any, error) {
	if !strings.HasPrefix(name, "http://") && !strings.HasPrefix(name, "https://") {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ctxlog.FromContext(ctx).Debug("Fetching remote module.", "url", name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected response status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	ty, err := ctyjson.ImpliedType(body)
	if err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	val, err := ctyjson.Unmarshal(body, ty)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return ctyconv.FromCty(val)
}
