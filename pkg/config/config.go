package config

import (
	"RoadPulse/pkg/cache"
	"RoadPulse/pkg/logger"
	"RoadPulse/pkg/util"
	"log"
	"os"
	"time"
)

const (
	browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	appUserAgent     = "RoadPulse/1.0 (contact: ops@roadpulse.example)"
	appReferer       = "https://roadpulse.example/"
)

// Landmark is a configured point of interest used to special-case the
// border-wait lookup, matched by a name keyword or a coordinate tolerance.
type Landmark struct {
	Name      string
	Keyword   string
	Latitude  float64
	Longitude float64
	Tolerance float64
}

// GeocodeConfig configures the two-provider geocoding chain.
type GeocodeConfig struct {
	NominatimBaseURL string
	PhotonBaseURL    string
	UserAgent        string
	Referer          string
	Timeout          time.Duration

	// LeakUpstream preserves the historical behavior of relaying the
	// primary provider's raw failing response when both providers fail.
	// Off by default; failures normalize to an empty list.
	LeakUpstream bool
}

// TrafficConfig configures the border-wait resolution chain.
type TrafficConfig struct {
	TunnelStatusURL string
	GeoRSSBaseURL   string

	Tunnel   Landmark
	Crossing Landmark

	// Bounding-box half-widths in degrees. The wide value applies when the
	// queried point falls inside the crossing landmark's tolerance zone.
	DefaultHalfWidth float64
	WideHalfWidth    float64

	BrowserUserAgent string
	Referer          string
	ScrapeTimeout    time.Duration
	QueryTimeout     time.Duration

	// CacheTTL for resolved estimates; zero disables caching.
	CacheTTL time.Duration
}

// ProxyConfig configures the passthrough reverse-geocode and routing proxies.
type ProxyConfig struct {
	ReverseBaseURL   string
	RouteURL         string
	BrowserUserAgent string
	Referer          string
	Timeout          time.Duration
}

type Config struct {
	DBDriver string `env:"DB_DRIVER"`
	DSN      string `env:"DSN"`
	Addr     string `env:"ADDR"`
	Mode     string `env:"MODE"`

	Log   logger.LogConfig
	Cache cache.Config

	Geocode GeocodeConfig
	Traffic TrafficConfig
	Proxy   ProxyConfig

	SweepSchedule string        `env:"SWEEP_SCHEDULE"`
	AlertTTL      time.Duration `env:"ALERT_TTL"`
	PositionTTL   time.Duration `env:"POSITION_TTL"`
}

func Load() (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("Failed to load .env file: %v", err)
	}

	cfg := &Config{
		DBDriver: util.GetEnvDefault("DB_DRIVER", "mysql"),
		DSN:      util.GetEnv("DSN"),
		Addr:     util.GetEnvDefault("ADDR", ":8080"),
		Mode:     util.GetEnvDefault("MODE", "debug"),
		Log: logger.LogConfig{
			Level:      util.GetEnvDefault("LOG_LEVEL", "info"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE")),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE")),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS")),
		},
		Cache: cache.Config{
			Type: util.GetEnvDefault("CACHE_TYPE", "local"),
			Redis: cache.RedisConfig{
				Addr:     util.GetEnvDefault("REDIS_ADDR", "localhost:6379"),
				Password: util.GetEnv("REDIS_PASSWORD"),
				DB:       int(util.GetIntEnv("REDIS_DB")),
			},
			Local: cache.LocalConfig{
				DefaultExpiration: util.GetDurationEnv("LOCAL_CACHE_DEFAULT_EXPIRATION", 5*time.Minute),
				CleanupInterval:   util.GetDurationEnv("LOCAL_CACHE_CLEANUP_INTERVAL", 10*time.Minute),
			},
		},
		Geocode: GeocodeConfig{
			NominatimBaseURL: util.GetEnvDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
			PhotonBaseURL:    util.GetEnvDefault("PHOTON_BASE_URL", "https://photon.komoot.io"),
			UserAgent:        util.GetEnvDefault("GEOCODE_USER_AGENT", appUserAgent),
			Referer:          util.GetEnvDefault("GEOCODE_REFERER", appReferer),
			Timeout:          util.GetDurationEnv("GEOCODE_TIMEOUT", 10*time.Second),
			LeakUpstream:     util.GetBoolEnv("GEOCODE_LEAK_UPSTREAM"),
		},
		Traffic: TrafficConfig{
			TunnelStatusURL: util.GetEnvDefault("TUNNEL_STATUS_URL", "https://www.atmb.com/info-trafic/"),
			GeoRSSBaseURL:   util.GetEnvDefault("WAZE_GEORSS_BASE_URL", "https://www.waze.com/live-map/api/georss"),
			Tunnel: Landmark{
				Name:      util.GetEnvDefault("TUNNEL_NAME", "Tunnel"),
				Keyword:   util.GetEnvDefault("TUNNEL_KEYWORD", "tunnel"),
				Latitude:  util.GetFloatEnv("TUNNEL_LAT", 45.9014),
				Longitude: util.GetFloatEnv("TUNNEL_LON", 6.8619),
				Tolerance: util.GetFloatEnv("TUNNEL_TOLERANCE", 0.05),
			},
			Crossing: Landmark{
				Name:      util.GetEnvDefault("CROSSING_NAME", "Douane"),
				Keyword:   util.GetEnvDefault("CROSSING_KEYWORD", "douane"),
				Latitude:  util.GetFloatEnv("CROSSING_LAT", 46.1420),
				Longitude: util.GetFloatEnv("CROSSING_LON", 6.1060),
				Tolerance: util.GetFloatEnv("CROSSING_TOLERANCE", 0.10),
			},
			DefaultHalfWidth: util.GetFloatEnv("BBOX_HALF_WIDTH", 0.05),
			WideHalfWidth:    util.GetFloatEnv("BBOX_WIDE_HALF_WIDTH", 0.15),
			BrowserUserAgent: util.GetEnvDefault("TRAFFIC_USER_AGENT", browserUserAgent),
			Referer:          util.GetEnvDefault("TRAFFIC_REFERER", appReferer),
			ScrapeTimeout:    util.GetDurationEnv("SCRAPE_TIMEOUT", 5*time.Second),
			QueryTimeout:     util.GetDurationEnv("TRAFFIC_TIMEOUT", 10*time.Second),
			CacheTTL:         util.GetDurationEnv("BORDER_CACHE_TTL", time.Minute),
		},
		Proxy: ProxyConfig{
			ReverseBaseURL:   util.GetEnvDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
			RouteURL:         util.GetEnvDefault("VALHALLA_ROUTE_URL", "https://valhalla1.openstreetmap.de/route"),
			BrowserUserAgent: util.GetEnvDefault("PROXY_USER_AGENT", browserUserAgent),
			Referer:          util.GetEnvDefault("PROXY_REFERER", appReferer),
			Timeout:          util.GetDurationEnv("PROXY_TIMEOUT", 10*time.Second),
		},
		SweepSchedule: util.GetEnvDefault("SWEEP_SCHEDULE", "@every 1m"),
		AlertTTL:      util.GetDurationEnv("ALERT_TTL", 2*time.Hour),
		PositionTTL:   util.GetDurationEnv("POSITION_TTL", 5*time.Minute),
	}
	return cfg, nil
}
