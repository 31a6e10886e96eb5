package jobs

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jordanlanch/adcreativelab/pkg/adlifecycle"
	"github.com/jordanlanch/adcreativelab/pkg/analytics"
	"github.com/jordanlanch/adcreativelab/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	mu     sync.Mutex
	calls  int
	result adlifecycle.SweepResult
	err    error
}

func (f *fakeSweeper) Sweep(context.Context) (adlifecycle.SweepResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, f.err
}

type fakeStats struct{ err error }

func (f fakeStats) Stats(context.Context) (*analytics.Stats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &analytics.Stats{
		Total:        7,
		HitRate:      50,
		StatusCounts: map[adlifecycle.Status]int{adlifecycle.StatusTesting: 2},
	}, nil
}

func TestSetupJobs(t *testing.T) {
	t.Run("Success - default schedule with stats job", func(t *testing.T) {
		cm := NewCronManager(&fakeSweeper{}, fakeStats{}, logger.Nop())
		require.NoError(t, cm.SetupJobs(""))
		assert.Equal(t, 2, cm.Entries())
	})

	t.Run("Success - sweep only", func(t *testing.T) {
		cm := NewCronManager(&fakeSweeper{}, nil, logger.Nop())
		require.NoError(t, cm.SetupJobs("*/5 * * * *"))
		assert.Equal(t, 1, cm.Entries())
	})

	t.Run("Error - invalid schedule", func(t *testing.T) {
		cm := NewCronManager(&fakeSweeper{}, nil, logger.Nop())
		err := cm.SetupJobs("every now and then")
		assert.Error(t, err)
		assert.Equal(t, 0, cm.Entries())
	})
}

func TestRunSweep(t *testing.T) {
	ctx := context.Background()

	sweeper := &fakeSweeper{result: adlifecycle.SweepResult{Expired: 2}}
	cm := NewCronManager(sweeper, nil, logger.Nop())
	result, err := cm.RunSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Expired)
	assert.Equal(t, 1, sweeper.calls)

	failing := &fakeSweeper{err: errors.New("db down")}
	_, err = NewCronManager(failing, nil, logger.Nop()).RunSweep(ctx)
	assert.Error(t, err)
}

func TestLogStats(t *testing.T) {
	var buf bytes.Buffer
	cm := NewCronManager(&fakeSweeper{}, fakeStats{}, logger.NewWithWriter(&buf, "info", "json"))

	cm.LogStats(context.Background())
	assert.Contains(t, buf.String(), `"total":7`)
	assert.Contains(t, buf.String(), `"testing":2`)

	buf.Reset()
	cm = NewCronManager(&fakeSweeper{}, fakeStats{err: errors.New("boom")}, logger.NewWithWriter(&buf, "info", "json"))
	cm.LogStats(context.Background())
	assert.Contains(t, buf.String(), "failed to get lab stats")
}

func TestStartStop(t *testing.T) {
	cm := NewCronManager(&fakeSweeper{}, nil, logger.Nop())
	require.NoError(t, cm.SetupJobs(""))
	cm.Start()
	cm.Stop()
}
