package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"RoadPulse/pkg/config"

	"github.com/gin-gonic/gin"
)

// upstreamProxy performs the passthrough calls: reverse geocoding and
// routing. Responses are relayed verbatim; the proxy exists to keep the
// client's origin and any credentials out of upstream requests.
type upstreamProxy struct {
	cfg    config.ProxyConfig
	client *http.Client
}

func newUpstreamProxy(cfg config.ProxyConfig) *upstreamProxy {
	return &upstreamProxy{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *upstreamProxy) reverseGeocode(ctx context.Context, lat, lon float64) (int, []byte, error) {
	u := fmt.Sprintf("%s/reverse?format=json&lat=%f&lon=%f&zoom=10", p.cfg.ReverseBaseURL, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", p.cfg.BrowserUserAgent)
	req.Header.Set("Referer", p.cfg.Referer)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to call reverse geocoder: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read reverse geocoder response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (p *upstreamProxy) route(ctx context.Context, payload json.RawMessage) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.RouteURL, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", p.cfg.BrowserUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// handleRouteProxy forwards the routing payload untouched and relays the
// answer, whatever its status.
func (h *Handlers) handleRouteProxy(c *gin.Context, req *actionRequest) {
	status, body, err := h.proxy.route(c.Request.Context(), req.Payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Proxy Error: " + err.Error()})
		return
	}
	c.Data(status, "application/json; charset=utf-8", body)
}
