package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// scoreFloor hides alerts the community has voted down: an alert with
// upvotes - downvotes <= -3 is filtered at read time, never deleted.
const scoreFloor = -3

// Alert is a user-submitted hazard report tied to a point and a score.
type Alert struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	Type        string    `json:"type" gorm:"size:50"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Description string    `json:"description" gorm:"size:512"`
	UserID      string    `json:"user_id" gorm:"size:64"`
	Upvotes     int       `json:"upvotes"`
	Downvotes   int       `json:"downvotes"`
	Timestamp   time.Time `json:"timestamp" gorm:"autoCreateTime;index"`
}

// ListActiveAlerts returns recent alerts above the score floor, newest first.
func ListActiveAlerts(db *gorm.DB, ttl time.Duration) ([]Alert, error) {
	cutoff := time.Now().Add(-ttl)
	var alerts []Alert
	err := db.Where("timestamp > ? AND (upvotes - downvotes) > ?", cutoff, scoreFloor).
		Order("timestamp DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

// UpsertAlert inserts the alert or, when the id already exists, updates the
// content columns only. Votes and the creation timestamp are never reset by
// a re-report.
func UpsertAlert(db *gorm.DB, alert *Alert) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "latitude", "longitude", "description"}),
	}).Create(alert).Error
}

// Vote atomically increments one vote column. A nonexistent id is a no-op,
// not an error; concurrent votes on the same row commute.
func Vote(db *gorm.DB, id, direction string) error {
	column := "downvotes"
	if direction == "up" {
		column = "upvotes"
	}
	return db.Model(&Alert{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}

// DeleteAlert removes the alert and reports how many rows went away.
func DeleteAlert(db *gorm.DB, id string) (int64, error) {
	res := db.Delete(&Alert{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// DeleteExpiredAlerts removes alerts older than ttl.
func DeleteExpiredAlerts(db *gorm.DB, ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)
	res := db.Delete(&Alert{}, "timestamp < ?", cutoff)
	return res.RowsAffected, res.Error
}

// AutoMigrate creates the store schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Alert{}, &UserPosition{})
}
