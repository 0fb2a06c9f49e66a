package geocode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"RoadPulse/pkg/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// Address is the normalized address fragment of a place match.
type Address struct {
	Road    string `json:"road"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// PlaceMatch is one geocoding result in the primary provider's shape.
// Results from the secondary provider are reshaped into it.
type PlaceMatch struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
	Address     Address `json:"address"`
}

// PrimaryError reports that both providers failed; it carries the primary
// provider's raw response so the caller can decide whether to relay it.
type PrimaryError struct {
	Status int
	Body   []byte
}

func (e *PrimaryError) Error() string {
	return fmt.Sprintf("geocoding providers unavailable (primary status %d)", e.Status)
}

// Resolver chains the primary geocoder with a secondary fallback. It holds
// no state between calls and performs no caching or retries.
type Resolver struct {
	cfg    config.GeocodeConfig
	client *http.Client
	log    *logrus.Logger
}

func NewResolver(cfg config.GeocodeConfig, log *logrus.Logger) *Resolver {
	if log == nil {
		log = logrus.New()
	}
	return &Resolver{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

// nominatim's search endpoint returns coordinates as strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		Road    string `json:"road"`
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		Country string `json:"country"`
	} `json:"address"`
}

type photonResponse struct {
	Features []struct {
		Geometry struct {
			// GeoJSON order: [lon, lat]
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Name    string `json:"name"`
			Street  string `json:"street"`
			City    string `json:"city"`
			State   string `json:"state"`
			Country string `json:"country"`
		} `json:"properties"`
	} `json:"features"`
}

// Resolve queries the primary provider and, when it fails or answers empty,
// the secondary. When both fail the returned error is a *PrimaryError.
func (r *Resolver) Resolve(ctx context.Context, query, viewbox string) ([]PlaceMatch, error) {
	status, body, err := r.queryPrimary(ctx, query, viewbox)
	if err == nil && status == http.StatusOK {
		if matches, ok := parsePrimary(body); ok {
			return matches, nil
		}
	}
	if err != nil {
		r.log.WithError(err).Warn("primary geocoder unreachable, trying fallback")
	} else {
		r.log.WithField("status", status).Warn("primary geocoder rejected query, trying fallback")
	}

	matches, ferr := r.queryFallback(ctx, query)
	if ferr != nil {
		r.log.WithError(ferr).Warn("fallback geocoder failed")
		return nil, &PrimaryError{Status: status, Body: body}
	}
	return matches, nil
}

func (r *Resolver) queryPrimary(ctx context.Context, query, viewbox string) (int, []byte, error) {
	u := fmt.Sprintf("%s/search?q=%s&format=json&limit=10&addressdetails=1",
		r.cfg.NominatimBaseURL, url.QueryEscape(query))
	if viewbox != "" {
		u += "&viewbox=" + viewbox
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)
	req.Header.Set("Referer", r.cfg.Referer)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
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

// parsePrimary decodes the primary response; an empty body, a literal empty
// array or an unexpected shape all count as "no answer".
func parsePrimary(body []byte) ([]PlaceMatch, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("[]")) {
		return nil, false
	}

	var places []nominatimPlace
	if err := json.Unmarshal(trimmed, &places); err != nil || len(places) == 0 {
		return nil, false
	}

	matches := make([]PlaceMatch, 0, len(places))
	for _, p := range places {
		city := p.Address.City
		if city == "" {
			city = p.Address.Town
		}
		if city == "" {
			city = p.Address.Village
		}
		matches = append(matches, PlaceMatch{
			Latitude:    cast.ToFloat64(p.Lat),
			Longitude:   cast.ToFloat64(p.Lon),
			DisplayName: p.DisplayName,
			Address: Address{
				Road:    p.Address.Road,
				City:    city,
				Country: p.Address.Country,
			},
		})
	}
	return matches, true
}

func (r *Resolver) queryFallback(ctx context.Context, query string) ([]PlaceMatch, error) {
	u := fmt.Sprintf("%s/api/?q=%s&limit=10", r.cfg.PhotonBaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call fallback geocoder: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read fallback response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fallback geocoder error %d: %s", resp.StatusCode, string(body))
	}

	var pr photonResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("failed to parse fallback JSON: %w", err)
	}

	matches := make([]PlaceMatch, 0, len(pr.Features))
	for _, f := range pr.Features {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		props := f.Properties

		locality := props.City
		if locality == "" {
			locality = props.State
		}
		road := props.Street
		if road == "" {
			road = props.Name
		}

		matches = append(matches, PlaceMatch{
			// GeoJSON carries [lon, lat]; swap into lat/lon.
			Latitude:    f.Geometry.Coordinates[1],
			Longitude:   f.Geometry.Coordinates[0],
			DisplayName: strings.TrimSpace(fmt.Sprintf("%s, %s %s", props.Name, locality, props.Country)),
			Address: Address{
				Road:    road,
				City:    props.City,
				Country: props.Country,
			},
		})
	}
	return matches, nil
}
