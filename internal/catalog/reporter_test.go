package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStatsReporter_LogsAndStopsOnCancel(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	s := NewMemStore()
	mustCreate(t, s, "Widget", 9.99)
	off := false
	p := mustCreate(t, s, "Gadget", 19.99)
	_, err := s.Update(context.Background(), p.ID, ProductPatch{InStock: &off})
	require.NoError(t, err)

	sr := &StatsReporter{Store: s, Log: zap.New(core), Interval: 10 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sr.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("catalog stats").Len() > 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reporter did not stop on cancel")
	}

	entry := logs.FilterMessage("catalog stats").All()[0]
	fields := entry.ContextMap()
	assert.EqualValues(t, 2, fields["products"])
	assert.EqualValues(t, 1, fields["in_stock"])
}
