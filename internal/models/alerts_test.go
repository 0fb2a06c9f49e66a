package models

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestListActiveAlerts_ScoreFloor(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&Alert{
		ID: "buried", Type: "police", Upvotes: 0, Downvotes: 3,
		Timestamp: time.Now(),
	}).Error)
	require.NoError(t, db.Create(&Alert{
		ID: "contested", Type: "police", Upvotes: 1, Downvotes: 3,
		Timestamp: time.Now(),
	}).Error)

	alerts, err := ListActiveAlerts(db, 2*time.Hour)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "contested", alerts[0].ID)
}

func TestListActiveAlerts_TTL(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&Alert{
		ID: "stale", Type: "accident",
		Timestamp: time.Now().Add(-3 * time.Hour),
	}).Error)
	require.NoError(t, db.Create(&Alert{
		ID: "fresh", Type: "accident",
		Timestamp: time.Now().Add(-1 * time.Hour),
	}).Error)

	alerts, err := ListActiveAlerts(db, 2*time.Hour)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "fresh", alerts[0].ID)
}

func TestListActiveAlerts_NewestFirst(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&Alert{
		ID: "older", Type: "hazard",
		Timestamp: time.Now().Add(-30 * time.Minute),
	}).Error)
	require.NoError(t, db.Create(&Alert{
		ID: "newer", Type: "hazard",
		Timestamp: time.Now().Add(-5 * time.Minute),
	}).Error)

	alerts, err := ListActiveAlerts(db, 2*time.Hour)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "newer", alerts[0].ID)
	assert.Equal(t, "older", alerts[1].ID)
}

func TestUpsertAlert_PreservesVotesAndTimestamp(t *testing.T) {
	db := newTestDB(t)

	created := time.Now().Add(-30 * time.Minute).Truncate(time.Second)
	require.NoError(t, db.Create(&Alert{
		ID: "a1", Type: "police", Description: "radar",
		Upvotes: 4, Downvotes: 1, Timestamp: created,
	}).Error)

	require.NoError(t, UpsertAlert(db, &Alert{
		ID: "a1", Type: "accident", Latitude: 45.0, Longitude: 6.0,
		Description: "pileup",
	}))

	var got Alert
	require.NoError(t, db.First(&got, "id = ?", "a1").Error)
	assert.Equal(t, "accident", got.Type)
	assert.Equal(t, "pileup", got.Description)
	assert.Equal(t, 4, got.Upvotes)
	assert.Equal(t, 1, got.Downvotes)
	assert.WithinDuration(t, created, got.Timestamp, time.Second)
}

func TestUpsertAlert_CreatesWithZeroVotes(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, UpsertAlert(db, &Alert{ID: "a2", Type: "hazard"}))

	var got Alert
	require.NoError(t, db.First(&got, "id = ?", "a2").Error)
	assert.Zero(t, got.Upvotes)
	assert.Zero(t, got.Downvotes)
	assert.False(t, got.Timestamp.IsZero())
}

func TestVote(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&Alert{ID: "a1", Type: "police", Timestamp: time.Now()}).Error)

	t.Run("increments the right column", func(t *testing.T) {
		require.NoError(t, Vote(db, "a1", "up"))
		require.NoError(t, Vote(db, "a1", "up"))
		require.NoError(t, Vote(db, "a1", "down"))

		var got Alert
		require.NoError(t, db.First(&got, "id = ?", "a1").Error)
		assert.Equal(t, 2, got.Upvotes)
		assert.Equal(t, 1, got.Downvotes)
	})

	t.Run("nonexistent id is a no-op", func(t *testing.T) {
		assert.NoError(t, Vote(db, "no-such-alert", "up"))
	})
}

func TestDeleteAlert(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&Alert{ID: "a1", Type: "police", Timestamp: time.Now()}).Error)

	count, err := DeleteAlert(db, "a1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, err = DeleteAlert(db, "a1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestDeleteExpiredAlerts(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&Alert{
		ID: "old", Type: "police", Timestamp: time.Now().Add(-3 * time.Hour),
	}).Error)
	require.NoError(t, db.Create(&Alert{
		ID: "new", Type: "police", Timestamp: time.Now(),
	}).Error)

	count, err := DeleteExpiredAlerts(db, 2*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	var remaining int64
	require.NoError(t, db.Model(&Alert{}).Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)
}
