package models

import "time"

// RegionID is the element id of a placeholder the page shells expose.
type RegionID string

const (
	RegionASPIValue      RegionID = "aspi-value"
	RegionASPIChange     RegionID = "aspi-change"
	RegionMarketTurnover RegionID = "market-turnover"
	RegionMarketCap      RegionID = "market-cap"
	RegionMarketChange   RegionID = "market-change"
	RegionTopGainers     RegionID = "top-gainers"
	RegionTopLosers      RegionID = "top-losers"
	RegionMostActive     RegionID = "most-active"
	RegionTicker         RegionID = "ticker-content"
)

// AllRegions lists every placeholder the view controller owns.
var AllRegions = []RegionID{
	RegionASPIValue,
	RegionASPIChange,
	RegionMarketTurnover,
	RegionMarketCap,
	RegionMarketChange,
	RegionTopGainers,
	RegionTopLosers,
	RegionMostActive,
	RegionTicker,
}

// IsRegion reports whether id names a known placeholder.
func IsRegion(id string) bool {
	for _, r := range AllRegions {
		if string(r) == id {
			return true
		}
	}
	return false
}

// RegionFragment is the current content of one placeholder.
type RegionFragment struct {
	ID        RegionID  `json:"id"`
	HTML      string    `json:"html"`
	Failed    bool      `json:"failed"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RefreshReport summarizes one Initialize pass.
type RefreshReport struct {
	CycleID       string        `json:"cycle_id"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
	FailedUpdates []string      `json:"failed_updates"`
}
