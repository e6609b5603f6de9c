package storage_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thurmanmarka/sunwindow"
	"github.com/thurmanmarka/sunwindow/internal/storage"
)

func openTestDB(t *testing.T) *storage.Database {
	t.Helper()
	db, err := storage.NewDatabase(filepath.Join(t.TempDir(), "obs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSaveAndQuery(t *testing.T) {
	db := openTestDB(t)
	home := sunwindow.Coordinates{Lat: 40.7128, Lon: -74.0060}
	base := time.Date(2025, 6, 21, 12, 0, 0, 0, time.UTC).Unix()

	for i := int64(0); i < 3; i++ {
		r := sunwindow.Result{
			QueryTime: base + i*3600,
			RiseTime:  base - 8*3600, RiseAz: 58, HasRise: true,
			IsVisible: i < 2,
		}
		require.NoError(t, db.SaveResult("nyc", home, r))
	}

	latest, err := db.GetLatest()
	require.NoError(t, err)
	assert.Equal(t, base+2*3600, latest.Timestamp.Unix())
	assert.Equal(t, "nyc", latest.Location)
	require.NotNil(t, latest.RiseTime)
	assert.Equal(t, base-8*3600, latest.RiseTime.Unix())
	assert.Nil(t, latest.SetTime)
	assert.False(t, latest.IsVisible)

	two, err := db.GetWithLimit(2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.True(t, two[0].Timestamp.After(two[1].Timestamp))

	day, err := db.GetDailySummary(time.Unix(base, 0))
	require.NoError(t, err)
	assert.EqualValues(t, 3, day.Observations)
	assert.EqualValues(t, 2, day.Visible)

	ranged, err := db.GetByRange(time.Unix(base, 0), time.Unix(base+3600, 0))
	require.NoError(t, err)
	assert.Len(t, ranged, 2)
}

func TestGetLatestEmpty(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetLatest()
	assert.Error(t, err)
}

func TestCleanOldData(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()
	for _, age := range []time.Duration{40 * 24 * time.Hour, 10 * 24 * time.Hour, time.Hour} {
		r := sunwindow.Result{QueryTime: now.Add(-age).Unix()}
		require.NoError(t, db.SaveResult("nyc", sunwindow.Coordinates{}, r))
	}

	n, err := db.CleanOldData(30)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = db.CleanOldData(5)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	left, err := db.GetWithLimit(10)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.WithinDuration(t, now.Add(-time.Hour), left[0].Timestamp, time.Second)
}
