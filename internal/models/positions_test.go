package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertPosition_RefreshesLastSeen(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, UpsertPosition(db, &UserPosition{UserID: "u1", Latitude: 45.0, Longitude: 6.0}))
	require.NoError(t, db.Model(&UserPosition{}).
		Where("user_id = ?", "u1").
		Update("last_seen", time.Now().Add(-10*time.Minute)).Error)

	require.NoError(t, UpsertPosition(db, &UserPosition{UserID: "u1", Latitude: 45.1, Longitude: 6.1}))

	var got UserPosition
	require.NoError(t, db.First(&got, "user_id = ?", "u1").Error)
	assert.Equal(t, 45.1, got.Latitude)
	assert.Equal(t, 6.1, got.Longitude)
	assert.WithinDuration(t, time.Now(), got.LastSeen, 5*time.Second)

	var count int64
	require.NoError(t, db.Model(&UserPosition{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "upsert must not duplicate the row")
}

func TestListNearbyPositions(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, UpsertPosition(db, &UserPosition{UserID: "me", Latitude: 45.0, Longitude: 6.0}))
	require.NoError(t, UpsertPosition(db, &UserPosition{UserID: "peer", Latitude: 45.2, Longitude: 6.2}))
	require.NoError(t, UpsertPosition(db, &UserPosition{UserID: "ghost", Latitude: 45.3, Longitude: 6.3}))
	require.NoError(t, db.Model(&UserPosition{}).
		Where("user_id = ?", "ghost").
		Update("last_seen", time.Now().Add(-10*time.Minute)).Error)

	peers, err := ListNearbyPositions(db, "me", 5*time.Minute)
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.Equal(t, "peer", peers[0].UserID)
}

func TestDeleteStalePositions(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, UpsertPosition(db, &UserPosition{UserID: "live"}))
	require.NoError(t, UpsertPosition(db, &UserPosition{UserID: "gone"}))
	require.NoError(t, db.Model(&UserPosition{}).
		Where("user_id = ?", "gone").
		Update("last_seen", time.Now().Add(-time.Hour)).Error)

	count, err := DeleteStalePositions(db, 5*time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
