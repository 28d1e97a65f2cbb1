package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Probe checks that the marketplace API answers at all. It bypasses the
// interceptor so a health check can never clear the session.
type Probe struct {
	url  string
	http *http.Client
}

func NewProbe(baseURL string, timeout time.Duration) *Probe {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Probe{url: baseURL, http: &http.Client{Timeout: timeout}}
}

// Ping succeeds on any HTTP answer below 500.
func (p *Probe) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("upstream answered %d", resp.StatusCode)
	}
	return nil
}
