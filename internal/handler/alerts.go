package handlers

import (
	"net/http"

	"RoadPulse/internal/models"
	"RoadPulse/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// handleListAlerts serves the active alerts, newest first. Store trouble
// degrades to an empty list rather than an error.
func (h *Handlers) handleListAlerts(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, []models.Alert{})
		return
	}

	alerts, err := models.ListActiveAlerts(h.db, h.cfg.AlertTTL)
	if err != nil {
		h.log.Warn("alert listing failed", zap.Error(err))
		c.JSON(http.StatusOK, []models.Alert{})
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	c.JSON(http.StatusOK, alerts)
}

func (h *Handlers) handleCreateAlert(c *gin.Context, req *actionRequest) {
	if !h.requireStore(c) {
		return
	}
	if req.Type == "" || req.Latitude == nil || req.Longitude == nil {
		response.Error(c, http.StatusBadRequest, "alert data missing")
		return
	}

	id := req.ID
	if id == "" {
		id = "alert_" + uuid.NewString()
	}
	userID := req.UserID
	if userID == "" {
		userID = "anon"
	}

	alert := &models.Alert{
		ID:          id,
		Type:        req.Type,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Description: req.Description,
		UserID:      userID,
	}
	if err := models.UpsertAlert(h.db, alert); err != nil {
		h.fail(c, h.storeFailure(err, "failed to store alert"))
		return
	}
	response.Success(c, gin.H{"id": id})
}

func (h *Handlers) handleVote(c *gin.Context, req *actionRequest) {
	if !h.requireStore(c) {
		return
	}
	if req.ID == "" || req.Type == "" {
		response.Error(c, http.StatusBadRequest, "id or type missing")
		return
	}

	if err := models.Vote(h.db, req.ID, req.Type); err != nil {
		h.fail(c, h.storeFailure(err, "failed to record vote"))
		return
	}
	response.Success(c, nil)
}

func (h *Handlers) handleDeleteAlert(c *gin.Context, req *actionRequest) {
	if !h.requireStore(c) {
		return
	}
	if req.ID == "" {
		response.Error(c, http.StatusBadRequest, "id missing")
		return
	}

	count, err := models.DeleteAlert(h.db, req.ID)
	if err != nil {
		h.fail(c, h.storeFailure(err, "failed to delete alert"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"deleted_count": count,
		"id":            req.ID,
	})
}
