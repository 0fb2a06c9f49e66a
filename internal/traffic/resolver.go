package traffic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"RoadPulse/pkg/cache"
	"RoadPulse/pkg/config"

	"github.com/sirupsen/logrus"
)

// Estimate is the outcome of a border-wait resolution. Wait is nil when no
// answer could be produced, "Fluid", or "<N>min"; Source names the upstream
// that produced it.
type Estimate struct {
	Wait   *string `json:"wait"`
	Source string  `json:"source,omitempty"`
	Info   *string `json:"info,omitempty"`
}

func waitEstimate(wait, source string) Estimate {
	return Estimate{Wait: &wait, Source: source}
}

// Resolver answers border-wait queries by consulting sources in strict
// order: the tunnel status page when the point or name matches the tunnel
// landmark, then area traffic jams, then a default "Fluid". Sources are
// sequential; a source is consulted only when the previous one yielded
// nothing confident.
type Resolver struct {
	cfg          config.TrafficConfig
	scrapeClient *http.Client
	queryClient  *http.Client
	cache        cache.Cache
	log          *logrus.Logger
}

func NewResolver(cfg config.TrafficConfig, store cache.Cache, log *logrus.Logger) *Resolver {
	if log == nil {
		log = logrus.New()
	}
	return &Resolver{
		cfg:          cfg,
		scrapeClient: &http.Client{Timeout: cfg.ScrapeTimeout},
		queryClient:  &http.Client{Timeout: cfg.QueryTimeout},
		cache:        store,
		log:          log,
	}
}

// Resolve produces a wait estimate for the given point. name is optional
// and only used for landmark keyword matching. The cache key carries the
// tunnel-match outcome: a named tunnel query and a bare-coordinates query at
// the same point take different source chains and must not share an entry.
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64, name string) Estimate {
	tunnelMatch := matchesLandmark(lat, lon, name, r.cfg.Tunnel)

	key := fmt.Sprintf("border:%.3f:%.3f:%t", lat, lon, tunnelMatch)
	if est, ok := r.cached(ctx, key); ok {
		return est
	}

	est := r.resolve(ctx, lat, lon, tunnelMatch)

	if r.cache != nil && r.cfg.CacheTTL > 0 {
		if raw, err := json.Marshal(est); err == nil {
			_ = r.cache.Set(ctx, key, string(raw), r.cfg.CacheTTL)
		}
	}
	return est
}

func (r *Resolver) resolve(ctx context.Context, lat, lon float64, tunnelMatch bool) Estimate {
	if tunnelMatch {
		if est, ok := r.scrapeTunnel(ctx); ok {
			return est
		}
	}

	if est, ok := r.queryJams(ctx, lat, lon); ok {
		return est
	}

	return waitEstimate("Fluid", "Default")
}

func (r *Resolver) cached(ctx context.Context, key string) (Estimate, bool) {
	if r.cache == nil || r.cfg.CacheTTL <= 0 {
		return Estimate{}, false
	}
	value, ok := r.cache.Get(ctx, key)
	if !ok {
		return Estimate{}, false
	}
	raw, ok := value.(string)
	if !ok {
		return Estimate{}, false
	}
	var est Estimate
	if err := json.Unmarshal([]byte(raw), &est); err != nil {
		return Estimate{}, false
	}
	return est, true
}

// matchesLandmark reports whether the query names the landmark or sits
// within its coordinate tolerance.
func matchesLandmark(lat, lon float64, name string, lm config.Landmark) bool {
	if lm.Keyword != "" && name != "" &&
		strings.Contains(strings.ToLower(name), strings.ToLower(lm.Keyword)) {
		return true
	}
	return math.Abs(lat-lm.Latitude) <= lm.Tolerance &&
		math.Abs(lon-lm.Longitude) <= lm.Tolerance
}

type jamsResponse struct {
	Jams []struct {
		Delay int `json:"delay"`
	} `json:"jams"`
}

// queryJams asks the jam aggregation API for the bounding box around the
// point and converts the worst delay into a wait.
func (r *Resolver) queryJams(ctx context.Context, lat, lon float64) (Estimate, bool) {
	half := r.cfg.DefaultHalfWidth
	if math.Abs(lat-r.cfg.Crossing.Latitude) <= r.cfg.Crossing.Tolerance &&
		math.Abs(lon-r.cfg.Crossing.Longitude) <= r.cfg.Crossing.Tolerance {
		half = r.cfg.WideHalfWidth
	}

	u := fmt.Sprintf("%s?top=%f&bottom=%f&left=%f&right=%f&env=row&types=traffic",
		r.cfg.GeoRSSBaseURL, lat+half, lat-half, lon-half, lon+half)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Estimate{}, false
	}
	req.Header.Set("User-Agent", r.cfg.BrowserUserAgent)
	req.Header.Set("Referer", r.cfg.Referer)

	resp, err := r.queryClient.Do(req)
	if err != nil {
		r.log.WithError(err).Debug("jam query failed")
		return Estimate{}, false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		r.log.WithField("status", resp.StatusCode).Debug("jam query rejected")
		return Estimate{}, false
	}

	var jr jamsResponse
	if err := json.Unmarshal(body, &jr); err != nil {
		return Estimate{}, false
	}

	maxDelay := 0
	for _, jam := range jr.Jams {
		if jam.Delay > maxDelay {
			maxDelay = jam.Delay
		}
	}
	if maxDelay <= 0 {
		return Estimate{}, false
	}

	minutes := int(math.Round(float64(maxDelay) / 60))
	if minutes < 1 {
		minutes = 1
	}
	return waitEstimate(fmt.Sprintf("%dmin", minutes), "Waze Community"), true
}
