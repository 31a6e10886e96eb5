package adlifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestROAS(t *testing.T) {
	assert.Nil(t, ROAS(nil, f64(100)))
	assert.Nil(t, ROAS(f64(100), nil))
	assert.Nil(t, ROAS(f64(100), f64(0)))
	assert.Nil(t, ROAS(nil, nil))

	r := ROAS(f64(450), f64(150))
	require.NotNil(t, r)
	assert.InDelta(t, 3.0, *r, 1e-9)
}

func TestDaysRemaining(t *testing.T) {
	tests := []struct {
		name   string
		review *time.Time
		want   int
	}{
		{"nil review date", nil, 0},
		{"in the past", timePtr(fixedNow.Add(-5 * 24 * time.Hour)), 0},
		{"exactly now", timePtr(fixedNow), 0},
		{"one hour left rounds up", timePtr(fixedNow.Add(time.Hour)), 1},
		{"exactly ten days", timePtr(fixedNow.Add(10 * 24 * time.Hour)), 10},
		{"ten days and a minute", timePtr(fixedNow.Add(10*24*time.Hour + time.Minute)), 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysRemaining(tt.review, fixedNow))
		})
	}
}

func TestHitRate(t *testing.T) {
	assert.Equal(t, 0.0, HitRate(0, 0))
	assert.Equal(t, 0.0, HitRate(3, 0))
	assert.InDelta(t, 25.0, HitRate(1, 4), 1e-9)
	assert.InDelta(t, 100.0, HitRate(2, 2), 1e-9)
}

func TestEngagementBands(t *testing.T) {
	tests := []struct {
		name     string
		counts   VideoCounts
		hookBand Band
		holdBand Band
	}{
		{
			name:     "weak hook and hold",
			counts:   VideoCounts{Impressions: i64(1000), ThreeSecondViews: i64(150), ThruplayViews: i64(100)},
			hookBand: BandFailed,
			holdBand: BandFailed,
		},
		{
			name:     "middling",
			counts:   VideoCounts{Impressions: i64(1000), ThreeSecondViews: i64(250), ThruplayViews: i64(200)},
			hookBand: BandWarning,
			holdBand: BandWarning,
		},
		{
			name:     "strong",
			counts:   VideoCounts{Impressions: i64(1000), ThreeSecondViews: i64(400), ThruplayViews: i64(300)},
			hookBand: BandGood,
			holdBand: BandGood,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := EvaluateEngagement("video", tt.counts)
			assert.Equal(t, tt.hookBand, e.HookBand)
			assert.Equal(t, tt.holdBand, e.HoldBand)

			switch tt.hookBand {
			case BandFailed:
				require.NotNil(t, e.SuggestedHook)
				assert.Equal(t, ElementFailed, *e.SuggestedHook)
			case BandGood:
				require.NotNil(t, e.SuggestedHook)
				assert.Equal(t, ElementWorked, *e.SuggestedHook)
			default:
				assert.Nil(t, e.SuggestedHook)
			}
		})
	}
}

func TestEvaluateEngagement_NonVideo(t *testing.T) {
	e := EvaluateEngagement("image", VideoCounts{Impressions: i64(1000), ThreeSecondViews: i64(900)})
	assert.Nil(t, e.HookRate)
	assert.Empty(t, e.HookBand)
}

func TestEvaluateEngagement_ZeroImpressions(t *testing.T) {
	e := EvaluateEngagement("ugc", VideoCounts{Impressions: i64(0), ThreeSecondViews: i64(10)})
	assert.Nil(t, e.HookRate)
	assert.Nil(t, e.HoldRate)
	assert.Empty(t, e.HookBand)
	assert.Nil(t, e.SuggestedHook)
}
