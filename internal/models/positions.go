package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserPosition is the live position of one user, one row per user_id.
// LastSeen is refreshed on every ping and not exposed to peers.
type UserPosition struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;size:64"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	LastSeen  time.Time `json:"-" gorm:"index"`
}

// UpsertPosition stores the ping, refreshing last_seen.
func UpsertPosition(db *gorm.DB, pos *UserPosition) error {
	pos.LastSeen = time.Now()
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"latitude", "longitude", "last_seen"}),
	}).Create(pos).Error
}

// ListNearbyPositions returns peers seen within ttl, excluding the requester.
func ListNearbyPositions(db *gorm.DB, excludeUserID string, ttl time.Duration) ([]UserPosition, error) {
	cutoff := time.Now().Add(-ttl)
	var peers []UserPosition
	err := db.Where("user_id != ? AND last_seen > ?", excludeUserID, cutoff).
		Find(&peers).Error
	if err != nil {
		return nil, err
	}
	return peers, nil
}

// DeleteStalePositions removes positions unseen for longer than ttl.
func DeleteStalePositions(db *gorm.DB, ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)
	res := db.Delete(&UserPosition{}, "last_seen < ?", cutoff)
	return res.RowsAffected, res.Error
}
