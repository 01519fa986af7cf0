package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultMetricsReportInterval is how often client metrics are logged.
const DefaultMetricsReportInterval = 10 * time.Minute

// MetricsReporter logs a summary of its own counters.
type MetricsReporter interface {
	LogSummary()
}

type MetricsReportJob struct {
	Reporter MetricsReporter
}

func NewMetricsReportJob(reporter MetricsReporter) *MetricsReportJob {
	return &MetricsReportJob{Reporter: reporter}
}

// Start logs a summary every interval until ctx is cancelled
func (j *MetricsReportJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultMetricsReportInterval
	}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.Run()
			}
		}
	}()
}

func (j *MetricsReportJob) Run() {
	logrus.Debug("Starting metrics report job")
	j.Reporter.LogSummary()
}
