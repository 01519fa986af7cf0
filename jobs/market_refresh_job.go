package jobs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fenilmodi00/cse-site/models"
	"github.com/fenilmodi00/cse-site/shared"
)

// DefaultRefreshInterval is the auto refresh period when none is configured.
const DefaultRefreshInterval = 60 * time.Second

// Refresher runs one full refresh of every market region.
type Refresher interface {
	Initialize(ctx context.Context) models.RefreshReport
}

// MarketRefreshJob re-runs the view controller's Initialize on a fixed
// interval. Each tick starts its cycle in a new goroutine, so a slow cycle
// can overlap the next one unless SkipIfRunning is set.
type MarketRefreshJob struct {
	Refresher     Refresher
	Interval      time.Duration
	SkipIfRunning bool

	clock    shared.Clock
	mutex    sync.Mutex
	cancel   context.CancelFunc
	loopDone chan struct{}
	cycles   sync.WaitGroup
	inFlight atomic.Bool
	runs     atomic.Int64
	skipped  atomic.Int64
}

func NewMarketRefreshJob(refresher Refresher, interval time.Duration, clock shared.Clock) *MarketRefreshJob {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &MarketRefreshJob{
		Refresher: refresher,
		Interval:  interval,
		clock:     clock,
	}
}

// Start launches the ticker loop. The first cycle runs one interval after
// Start; calling Start on a running job does nothing.
func (j *MarketRefreshJob) Start(ctx context.Context) {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	if j.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.loopDone = make(chan struct{})

	ticker := j.clock.NewTicker(j.Interval)
	logrus.WithField("interval", j.Interval).Info("Starting market refresh job")

	go func(done chan struct{}) {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				j.dispatch(ctx)
			}
		}
	}(j.loopDone)
}

// Stop cancels the loop and any in-flight cycles, then waits for them to return.
func (j *MarketRefreshJob) Stop() {
	j.mutex.Lock()
	cancel, done := j.cancel, j.loopDone
	j.cancel, j.loopDone = nil, nil
	j.mutex.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	j.cycles.Wait()

	logrus.WithFields(logrus.Fields{
		"runs":    j.Runs(),
		"skipped": j.Skipped(),
	}).Info("Market refresh job stopped")
}

// Runs returns how many cycles the job has started
func (j *MarketRefreshJob) Runs() int64 {
	return j.runs.Load()
}

// Skipped returns how many ticks were dropped because a cycle was still running
func (j *MarketRefreshJob) Skipped() int64 {
	return j.skipped.Load()
}

func (j *MarketRefreshJob) dispatch(ctx context.Context) {
	if j.SkipIfRunning && !j.inFlight.CompareAndSwap(false, true) {
		j.skipped.Add(1)
		logrus.Debug("Market refresh still running, skipping tick")
		return
	}

	j.runs.Add(1)
	j.cycles.Add(1)
	go func() {
		defer j.cycles.Done()
		if j.SkipIfRunning {
			defer j.inFlight.Store(false)
		}
		j.Run(ctx)
	}()
}

// Run performs a single refresh cycle and logs its outcome.
func (j *MarketRefreshJob) Run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", fmt.Sprint(r)).Error("Market refresh job panicked")
		}
	}()

	report := j.Refresher.Initialize(ctx)

	entry := logrus.WithFields(logrus.Fields{
		"cycle_id": report.CycleID,
		"took":     report.Duration,
	})
	if len(report.FailedUpdates) > 0 {
		entry.WithField("failed_updates", report.FailedUpdates).Warn("Market refresh completed with failures")
		return
	}
	entry.Info("Market refresh completed successfully")
}
