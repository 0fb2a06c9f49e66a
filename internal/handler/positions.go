package handlers

import (
	"net/http"

	"RoadPulse/internal/models"
	"RoadPulse/pkg/response"

	"github.com/gin-gonic/gin"
)

// handleUpdatePosition stores the caller's position ping and answers with
// the peers seen recently, never including the caller themselves.
func (h *Handlers) handleUpdatePosition(c *gin.Context, req *actionRequest) {
	if !h.requireStore(c) {
		return
	}
	if req.UserID == "" || req.Latitude == nil || req.Longitude == nil {
		response.Error(c, http.StatusBadRequest, "position data missing")
		return
	}

	pos := &models.UserPosition{
		UserID:    req.UserID,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	}
	if err := models.UpsertPosition(h.db, pos); err != nil {
		h.fail(c, h.storeFailure(err, "failed to store position"))
		return
	}

	peers, err := models.ListNearbyPositions(h.db, req.UserID, h.cfg.PositionTTL)
	if err != nil {
		h.fail(c, h.storeFailure(err, "failed to list peers"))
		return
	}
	if peers == nil {
		peers = []models.UserPosition{}
	}
	c.JSON(http.StatusOK, peers)
}
