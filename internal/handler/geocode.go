package handlers

import (
	"errors"
	"net/http"

	"RoadPulse/internal/geocode"
	"RoadPulse/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleSearchProxy resolves a free-text place query through the geocoding
// fallback chain. When every provider fails the default policy is an empty
// list; LeakUpstream switches to relaying the primary's raw response.
func (h *Handlers) handleSearchProxy(c *gin.Context, req *actionRequest) {
	if req.Query == "" {
		response.Error(c, http.StatusBadRequest, "query missing")
		return
	}

	matches, err := h.geocoder.Resolve(c.Request.Context(), req.Query, req.Viewbox)
	if err != nil {
		var perr *geocode.PrimaryError
		if errors.As(err, &perr) && h.cfg.Geocode.LeakUpstream {
			status := perr.Status
			if status == 0 {
				status = http.StatusBadGateway
			}
			if len(perr.Body) > 0 {
				c.Data(status, "application/json; charset=utf-8", perr.Body)
				return
			}
			response.Error(c, http.StatusBadGateway, perr.Error())
			return
		}
		h.log.Warn("geocoding failed on all providers", zap.String("query", req.Query), zap.Error(err))
		c.JSON(http.StatusOK, []geocode.PlaceMatch{})
		return
	}
	if matches == nil {
		matches = []geocode.PlaceMatch{}
	}
	c.JSON(http.StatusOK, matches)
}

// handleReverseProxy relays a reverse-geocode lookup verbatim.
func (h *Handlers) handleReverseProxy(c *gin.Context, req *actionRequest) {
	if req.Lat == nil || req.Lon == nil {
		response.Error(c, http.StatusBadRequest, "lat or lon missing")
		return
	}

	status, body, err := h.proxy.reverseGeocode(c.Request.Context(), *req.Lat, *req.Lon)
	if err != nil {
		h.log.Warn("reverse geocode proxy failed", zap.Error(err))
		response.Error(c, http.StatusBadGateway, "reverse geocoding unavailable")
		return
	}
	c.Data(status, "application/json; charset=utf-8", body)
}
