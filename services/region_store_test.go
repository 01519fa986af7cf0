package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenilmodi00/cse-site/models"
	"github.com/fenilmodi00/cse-site/shared"
)

func TestRegionStoreSetAndGet(t *testing.T) {
	clock := shared.NewManualClock(testEpoch)
	store := NewRegionStore(clock)

	_, exists := store.Get(models.RegionTicker)
	assert.False(t, exists)

	store.Set(models.RegionTicker, "first")
	clock.Advance(time.Minute)
	store.SetFailed(models.RegionTicker, "second")

	fragment, exists := store.Get(models.RegionTicker)
	require.True(t, exists)
	assert.Equal(t, models.RegionFragment{
		ID:        models.RegionTicker,
		HTML:      "second",
		Failed:    true,
		UpdatedAt: testEpoch.Add(time.Minute),
	}, fragment)
}

func TestRegionStoreSnapshotIsOrdered(t *testing.T) {
	clock := shared.NewManualClock(testEpoch)
	store := NewRegionStore(clock)

	store.Set(models.RegionTopLosers, "losers")
	clock.Advance(time.Second)
	store.Set(models.RegionASPIValue, "aspi")
	store.Set(models.RegionMostActive, "active")

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, models.RegionASPIValue, snapshot[0].ID)
	assert.Equal(t, models.RegionMostActive, snapshot[1].ID)
	assert.Equal(t, models.RegionTopLosers, snapshot[2].ID)
	assert.Equal(t, testEpoch.Add(time.Second), store.LastUpdated())
}
