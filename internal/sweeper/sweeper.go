package sweeper

import (
	"context"
	"time"

	"RoadPulse/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sweeper deletes expired alerts and stale positions. It runs on a timer
// rather than the historical per-request probability roll; read-time
// filters apply the same cutoffs, so the sweep only reclaims storage.
type Sweeper struct {
	db          *gorm.DB
	alertTTL    time.Duration
	positionTTL time.Duration
	log         *zap.Logger
}

func New(db *gorm.DB, alertTTL, positionTTL time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{
		db:          db,
		alertTTL:    alertTTL,
		positionTTL: positionTTL,
		log:         log,
	}
}

// Run performs one sweep pass.
func (s *Sweeper) Run(ctx context.Context) {
	alerts, err := models.DeleteExpiredAlerts(s.db.WithContext(ctx), s.alertTTL)
	if err != nil {
		s.log.Warn("alert sweep failed", zap.Error(err))
	}
	positions, err := models.DeleteStalePositions(s.db.WithContext(ctx), s.positionTTL)
	if err != nil {
		s.log.Warn("position sweep failed", zap.Error(err))
	}
	if alerts > 0 || positions > 0 {
		s.log.Info("sweep complete",
			zap.Int64("alerts_deleted", alerts),
			zap.Int64("positions_deleted", positions),
		)
	}
}
