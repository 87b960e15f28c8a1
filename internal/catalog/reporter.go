package catalog

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StatsReporter periodically logs a catalog snapshot. It is started once at
// process startup and stops when its context is cancelled.
type StatsReporter struct {
	Store    Store
	Log      *zap.Logger
	Interval time.Duration
}

func (sr *StatsReporter) Run(ctx context.Context) {
	t := time.NewTicker(sr.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			sr.report(ctx)
		}
	}
}

func (sr *StatsReporter) report(ctx context.Context) {
	products, err := sr.Store.List(ctx)
	if err != nil {
		sr.Log.Warn("stats snapshot failed", zap.Error(err))
		return
	}

	inStock := 0
	for _, p := range products {
		if p.InStock {
			inStock++
		}
	}

	sr.Log.Info("catalog stats",
		zap.Int("products", len(products)),
		zap.Int("in_stock", inStock),
	)
}
