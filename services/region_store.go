package services

import (
	"sort"
	"sync"
	"time"

	"github.com/fenilmodi00/cse-site/models"
	"github.com/fenilmodi00/cse-site/shared"
)

// RegionStore holds the current fragment of every placeholder region.
// Writes replace a region's content wholesale.
type RegionStore struct {
	mutex     sync.RWMutex
	fragments map[models.RegionID]models.RegionFragment
	clock     shared.Clock
}

// NewRegionStore creates an empty store
func NewRegionStore(clock shared.Clock) *RegionStore {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &RegionStore{
		fragments: make(map[models.RegionID]models.RegionFragment),
		clock:     clock,
	}
}

// Set replaces the content of one region
func (rs *RegionStore) Set(id models.RegionID, html string) {
	rs.write(id, html, false)
}

// SetFailed replaces the content of one region with a failure notice
func (rs *RegionStore) SetFailed(id models.RegionID, html string) {
	rs.write(id, html, true)
}

func (rs *RegionStore) write(id models.RegionID, html string, failed bool) {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	rs.fragments[id] = models.RegionFragment{
		ID:        id,
		HTML:      html,
		Failed:    failed,
		UpdatedAt: rs.clock.Now(),
	}
}

// Get returns the fragment of one region
func (rs *RegionStore) Get(id models.RegionID) (models.RegionFragment, bool) {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()

	fragment, exists := rs.fragments[id]
	return fragment, exists
}

// Snapshot returns every populated region ordered by id
func (rs *RegionStore) Snapshot() []models.RegionFragment {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()

	result := make([]models.RegionFragment, 0, len(rs.fragments))
	for _, fragment := range rs.fragments {
		result = append(result, fragment)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// LastUpdated returns the most recent write time across all regions
func (rs *RegionStore) LastUpdated() time.Time {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()

	var latest time.Time
	for _, fragment := range rs.fragments {
		if fragment.UpdatedAt.After(latest) {
			latest = fragment.UpdatedAt
		}
	}
	return latest
}
