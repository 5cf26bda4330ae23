package tracker

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"chatdesk/internal/config"
)

// UpstreamClient fetches raw tracking payloads from the remote carrier
// endpoint. Failures are not retried; the relaying request fails with them.
type UpstreamClient struct {
	url    string
	client *http.Client
}

func NewUpstreamClient(cfg config.UpstreamConfig) *UpstreamClient {
	return &UpstreamClient{
		url:    cfg.TrackerURL,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (u *UpstreamClient) Fetch(ctx context.Context, orderID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("tracker upstream returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
