package handlers

import (
	"encoding/json"
	"net/http"

	"RoadPulse/internal/geocode"
	"RoadPulse/internal/traffic"
	"RoadPulse/pkg/cache"
	"RoadPulse/pkg/config"
	apperrors "RoadPulse/pkg/errors"
	"RoadPulse/pkg/metrics"
	"RoadPulse/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handlers struct {
	db       *gorm.DB
	cfg      *config.Config
	geocoder *geocode.Resolver
	border   *traffic.Resolver
	proxy    *upstreamProxy
	log      *zap.Logger
}

// New wires the handlers. db may be nil when the store is unreachable at
// boot; the proxy and resolver actions keep working, store actions answer
// 503 and the alert list degrades to empty.
func New(db *gorm.DB, cfg *config.Config, store cache.Cache, log *zap.Logger) *Handlers {
	upstreamLog := logrus.New()
	return &Handlers{
		db:       db,
		cfg:      cfg,
		geocoder: geocode.NewResolver(cfg.Geocode, upstreamLog),
		border:   traffic.NewResolver(cfg.Traffic, store, upstreamLog),
		proxy:    newUpstreamProxy(cfg.Proxy),
		log:      log,
	}
}

func (h *Handlers) Register(engine *gin.Engine, m *metrics.Metrics) {
	engine.GET("/alerts", h.handleListAlerts)
	engine.POST("/alerts", h.handleDispatch)

	engine.GET("/health", h.HealthCheck)
	if m != nil {
		engine.GET("/metrics", m.Handler())
	}
}

// actionRequest is the union of the fields the POST actions accept.
// Coordinates are pointers so presence can be validated.
type actionRequest struct {
	Action      string          `json:"action"`
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Latitude    *float64        `json:"latitude"`
	Longitude   *float64        `json:"longitude"`
	Description string          `json:"description"`
	UserID      string          `json:"user_id"`
	Query       string          `json:"query"`
	Viewbox     string          `json:"viewbox"`
	Lat         *float64        `json:"lat"`
	Lon         *float64        `json:"lon"`
	Name        string          `json:"name"`
	Payload     json.RawMessage `json:"payload"`
}

// handleDispatch routes a POST by its action field. An absent action means
// create_alert, as does any unrecognized one.
func (h *Handlers) handleDispatch(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid JSON")
		return
	}

	action := req.Action
	if action == "" {
		action = "create_alert"
	}
	metrics.SetAction(c, action)

	switch action {
	case "vote":
		h.handleVote(c, &req)
	case "update_position":
		h.handleUpdatePosition(c, &req)
	case "delete", "delete_alert":
		h.handleDeleteAlert(c, &req)
	case "search_proxy":
		h.handleSearchProxy(c, &req)
	case "reverse_proxy":
		h.handleReverseProxy(c, &req)
	case "route_proxy":
		h.handleRouteProxy(c, &req)
	case "get_border_wait":
		h.handleBorderWait(c, &req)
	default:
		h.handleCreateAlert(c, &req)
	}
}

// requireStore answers 503 when the store never came up.
func (h *Handlers) requireStore(c *gin.Context) bool {
	if h.db == nil {
		h.fail(c, apperrors.WithCode(apperrors.CodeStoreUnavailable, "store unavailable"))
		return false
	}
	return true
}

// fail logs the underlying cause and answers with the error's code.
func (h *Handlers) fail(c *gin.Context, err *apperrors.Error) {
	if cause := apperrors.Cause(err); cause != nil && cause != err {
		h.log.Error(err.Message, zap.Error(cause))
	}
	response.Error(c, apperrors.GetCode(err), apperrors.GetMessage(err))
}

// storeFailure classifies a write-path store error. A store that died after
// boot answers 503 like one that never came up; anything else is internal.
func (h *Handlers) storeFailure(err error, message string) *apperrors.Error {
	if sqlDB, derr := h.db.DB(); derr != nil || sqlDB.Ping() != nil {
		return apperrors.Wrap(err, apperrors.CodeStoreUnavailable, "store unavailable")
	}
	return apperrors.Wrap(err, apperrors.CodeInternal, message)
}
