package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fenilmodi00/cse-site/models"
	"github.com/fenilmodi00/cse-site/shared"
)

// MarketDataSource is what the view controller needs from the data client.
// A false second return value means "no data".
type MarketDataSource interface {
	GetMarketSummary(ctx context.Context) (models.MarketSummary, bool)
	GetTopGainers(ctx context.Context) ([]models.StockRow, bool)
	GetTopLosers(ctx context.Context) ([]models.StockRow, bool)
	GetMostActive(ctx context.Context) ([]models.StockRow, bool)
}

// ViewController refreshes the placeholder regions from a MarketDataSource.
// Each update owns its regions exclusively; one failing never affects another.
type ViewController struct {
	source  MarketDataSource
	regions *RegionStore
	clock   shared.Clock
	logger  *logrus.Entry
}

// NewViewController creates a controller writing into regions
func NewViewController(source MarketDataSource, regions *RegionStore, clock shared.Clock) *ViewController {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &ViewController{
		source:  source,
		regions: regions,
		clock:   clock,
		logger:  logrus.WithField("component", "ViewController"),
	}
}

// Regions returns the store the controller writes into
func (vc *ViewController) Regions() *RegionStore {
	return vc.regions
}

type regionUpdate struct {
	name    string
	regions []models.RegionID
	run     func(ctx context.Context) bool
}

func (vc *ViewController) updates() []regionUpdate {
	return []regionUpdate{
		{"aspi", []models.RegionID{models.RegionASPIValue, models.RegionASPIChange}, vc.UpdateASPI},
		{"market_summary", []models.RegionID{models.RegionMarketTurnover, models.RegionMarketCap, models.RegionMarketChange}, vc.UpdateMarketSummary},
		{"top_gainers", []models.RegionID{models.RegionTopGainers}, vc.UpdateTopGainers},
		{"top_losers", []models.RegionID{models.RegionTopLosers}, vc.UpdateTopLosers},
		{"most_active", []models.RegionID{models.RegionMostActive}, vc.UpdateMostActive},
		{"ticker", []models.RegionID{models.RegionTicker}, vc.UpdateTicker},
	}
}

// Initialize runs every region update concurrently and waits for all of them.
// A panic in the orchestration itself is logged and swallowed.
func (vc *ViewController) Initialize(ctx context.Context) (report models.RefreshReport) {
	report.CycleID = uuid.NewString()
	report.StartedAt = vc.clock.Now()
	startTime := time.Now()

	logger := vc.logger.WithField("cycle_id", report.CycleID)

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", fmt.Sprint(r)).Error("Market data initialization failed")
		}
		report.Duration = time.Since(startTime)
	}()

	var (
		wg     sync.WaitGroup
		mutex  sync.Mutex
		failed []string
	)

	for _, update := range vc.updates() {
		wg.Add(1)
		go func(u regionUpdate) {
			defer wg.Done()
			if !vc.runUpdate(ctx, u) {
				mutex.Lock()
				failed = append(failed, u.name)
				mutex.Unlock()
			}
		}(update)
	}
	wg.Wait()

	sort.Strings(failed)
	report.FailedUpdates = failed

	logger.WithFields(logrus.Fields{
		"failed_updates": failed,
		"took":           time.Since(startTime),
	}).Info("Market data refresh cycle completed")

	return report
}

// runUpdate executes one update, turning a panic into that update's failure.
func (vc *ViewController) runUpdate(ctx context.Context, u regionUpdate) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			vc.logger.WithFields(logrus.Fields{
				"update": u.name,
				"panic":  fmt.Sprint(r),
			}).Error("Region update panicked")
			for _, id := range u.regions {
				vc.regions.SetFailed(id, RenderError(failureMessage(id)))
			}
			ok = false
		}
	}()
	return u.run(ctx)
}

// UpdateASPI writes the index level and its change
func (vc *ViewController) UpdateASPI(ctx context.Context) bool {
	summary, ok := vc.source.GetMarketSummary(ctx)
	if !ok {
		vc.fail("aspi", models.RegionASPIValue, models.RegionASPIChange)
		return false
	}

	vc.regions.Set(models.RegionASPIValue, RenderText(FormatIndexValue(summary.ASPI)))
	vc.regions.Set(models.RegionASPIChange, RenderChange(summary.ASPIChange))
	return true
}

// UpdateMarketSummary writes turnover, market capitalization and the index change
func (vc *ViewController) UpdateMarketSummary(ctx context.Context) bool {
	summary, ok := vc.source.GetMarketSummary(ctx)
	if !ok {
		vc.fail("market_summary", models.RegionMarketTurnover, models.RegionMarketCap, models.RegionMarketChange)
		return false
	}

	vc.regions.Set(models.RegionMarketTurnover, RenderText(HomeCurrency.String()+" "+FormatLargeNumber(summary.Turnover)))
	vc.regions.Set(models.RegionMarketCap, RenderText(HomeCurrency.String()+" "+FormatLargeNumber(summary.MarketCap)))
	vc.regions.Set(models.RegionMarketChange, RenderChange(summary.ASPIChange))
	return true
}

// UpdateTopGainers writes the top gainers table
func (vc *ViewController) UpdateTopGainers(ctx context.Context) bool {
	rows, ok := vc.source.GetTopGainers(ctx)
	return vc.updateTable("top_gainers", models.RegionTopGainers, rows, ok)
}

// UpdateTopLosers writes the top losers table
func (vc *ViewController) UpdateTopLosers(ctx context.Context) bool {
	rows, ok := vc.source.GetTopLosers(ctx)
	return vc.updateTable("top_losers", models.RegionTopLosers, rows, ok)
}

// UpdateMostActive writes the most active table
func (vc *ViewController) UpdateMostActive(ctx context.Context) bool {
	rows, ok := vc.source.GetMostActive(ctx)
	return vc.updateTable("most_active", models.RegionMostActive, rows, ok)
}

func (vc *ViewController) updateTable(name string, region models.RegionID, rows []models.StockRow, ok bool) bool {
	if !ok {
		vc.fail(name, region)
		return false
	}
	vc.regions.Set(region, RenderStockTable(firstN(rows, MaxTableRows)))
	return true
}

// UpdateTicker fetches gainers and losers concurrently and writes the ticker
// line. With neither available it shows the placeholder sentence.
func (vc *ViewController) UpdateTicker(ctx context.Context) bool {
	var (
		wg                  sync.WaitGroup
		gainers, losers     []models.StockRow
		gainersOK, losersOK bool
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		gainers, gainersOK = vc.source.GetTopGainers(ctx)
	}()
	go func() {
		defer wg.Done()
		losers, losersOK = vc.source.GetTopLosers(ctx)
	}()
	wg.Wait()

	if !gainersOK && !losersOK {
		vc.logger.WithField("region", models.RegionTicker).Warn("No ticker data available")
		vc.regions.SetFailed(models.RegionTicker, RenderTicker(nil, nil))
		return false
	}

	vc.regions.Set(models.RegionTicker, RenderTicker(gainers, losers))
	return true
}

func (vc *ViewController) fail(name string, regions ...models.RegionID) {
	vc.logger.WithFields(logrus.Fields{
		"update":  name,
		"regions": regions,
	}).Error("Error updating region: no data")

	for _, id := range regions {
		vc.regions.SetFailed(id, RenderError(failureMessage(id)))
	}
}

var failureMessages = map[models.RegionID]string{
	models.RegionASPIValue:      "Unable to fetch ASPI data",
	models.RegionASPIChange:     "Unable to fetch ASPI data",
	models.RegionMarketTurnover: "Unable to fetch market summary",
	models.RegionMarketCap:      "Unable to fetch market summary",
	models.RegionMarketChange:   "Unable to fetch market summary",
	models.RegionTopGainers:     "Unable to fetch top gainers",
	models.RegionTopLosers:      "Unable to fetch top losers",
	models.RegionMostActive:     "Unable to fetch most active stocks",
	models.RegionTicker:         TickerPlaceholder,
}

func failureMessage(id models.RegionID) string {
	if msg, ok := failureMessages[id]; ok {
		return msg
	}
	return "Unable to fetch data"
}
