package traffic

import (
	"context"
	"io"
	"net/http"
	"regexp"

	"github.com/spf13/cast"
)

// The tunnel operator publishes a status page in French. The wait shows up
// as "attente ... <N> min"; free-flowing traffic as "fluide". Matching page
// text with a pattern is brittle against upstream redesigns, which is why
// this lives behind the same resolver fallback as the jam query.
var (
	tunnelWaitRe  = regexp.MustCompile(`(?i)attente[^0-9]{0,40}(\d+)\s*(?:min|mn|minute)`)
	tunnelFluidRe = regexp.MustCompile(`(?i)fluide`)
)

// scrapeTunnel fetches the tunnel status page and extracts a wait. Any
// failure (transport, status, no match) yields ok=false so the resolver
// falls through to the next source.
func (r *Resolver) scrapeTunnel(ctx context.Context) (Estimate, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.TunnelStatusURL, nil)
	if err != nil {
		return Estimate{}, false
	}
	req.Header.Set("User-Agent", r.cfg.BrowserUserAgent)

	resp, err := r.scrapeClient.Do(req)
	if err != nil {
		r.log.WithError(err).Debug("tunnel status scrape failed")
		return Estimate{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.log.WithField("status", resp.StatusCode).Debug("tunnel status page rejected request")
		return Estimate{}, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Estimate{}, false
	}
	page := string(body)

	source := r.cfg.Tunnel.Name + " Live"
	if m := tunnelWaitRe.FindStringSubmatch(page); m != nil {
		minutes := cast.ToInt(m[1])
		return waitEstimate(cast.ToString(minutes)+"min", source), true
	}
	if tunnelFluidRe.MatchString(page) {
		return waitEstimate("Fluid", source), true
	}
	return Estimate{}, false
}
