package handlers

import (
	"net/http"

	"RoadPulse/internal/traffic"

	"github.com/gin-gonic/gin"
)

// handleBorderWait answers a border wait-time query. Missing coordinates
// are not an error: the estimate itself says no answer could be produced.
func (h *Handlers) handleBorderWait(c *gin.Context, req *actionRequest) {
	if req.Lat == nil || req.Lon == nil {
		info := "coordinates missing"
		c.JSON(http.StatusOK, traffic.Estimate{Info: &info})
		return
	}

	est := h.border.Resolve(c.Request.Context(), *req.Lat, *req.Lon, req.Name)
	c.JSON(http.StatusOK, est)
}
