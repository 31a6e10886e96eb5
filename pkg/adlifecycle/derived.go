package adlifecycle

import (
	"math"
	"time"
)

// Band classifies an engagement rate against its thresholds.
type Band string

const (
	BandFailed  Band = "failed"
	BandWarning Band = "warning"
	BandGood    Band = "good"
)

// Engagement thresholds, as fractions of impressions.
const (
	HookFailedBelow = 0.20
	HookGoodAbove   = 0.30
	HoldFailedBelow = 0.15
	HoldGoodAbove   = 0.25
)

// ROAS returns revenue/spend, or nil when either is missing or spend is zero.
func ROAS(revenue, spend *float64) *float64 {
	if revenue == nil || spend == nil || *spend == 0 {
		return nil
	}
	v := *revenue / *spend
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// DaysRemaining returns the whole days left until reviewDate, rounded up and
// never negative. A nil review date has no days remaining.
func DaysRemaining(reviewDate *time.Time, now time.Time) int {
	if reviewDate == nil {
		return 0
	}
	days := math.Ceil(reviewDate.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return int(days)
}

// HitRate is winners/total as a percentage; 0 for an empty set.
func HitRate(winners, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(winners) / float64(total) * 100
}

func rate(views, impressions *int64) *float64 {
	if views == nil || impressions == nil || *impressions <= 0 {
		return nil
	}
	v := float64(*views) / float64(*impressions)
	return &v
}

// HookRate is three-second views over impressions.
func HookRate(threeSecondViews, impressions *int64) *float64 {
	return rate(threeSecondViews, impressions)
}

// HoldRate is thruplay views over impressions.
func HoldRate(thruplayViews, impressions *int64) *float64 {
	return rate(thruplayViews, impressions)
}

func band(r *float64, failedBelow, goodAbove float64) Band {
	if r == nil {
		return ""
	}
	switch {
	case *r < failedBelow:
		return BandFailed
	case *r > goodAbove:
		return BandGood
	default:
		return BandWarning
	}
}

// HookBand buckets a hook rate.
func HookBand(r *float64) Band {
	return band(r, HookFailedBelow, HookGoodAbove)
}

// HoldBand buckets a hold rate.
func HoldBand(r *float64) Band {
	return band(r, HoldFailedBelow, HoldGoodAbove)
}

// VideoCounts are the raw numbers engagement is computed from.
type VideoCounts struct {
	Impressions      *int64
	ThreeSecondViews *int64
	ThruplayViews    *int64
}

// Engagement is the advisory read-out shown next to the analysis form.
type Engagement struct {
	HookRate      *float64       `json:"hook_rate"`
	HoldRate      *float64       `json:"hold_rate"`
	HookBand      Band           `json:"hook_band,omitempty"`
	HoldBand      Band           `json:"hold_band,omitempty"`
	SuggestedHook *ElementResult `json:"suggested_hook,omitempty"`
	// Hold rate drives the script suggestion.
	SuggestedScript *ElementResult `json:"suggested_script,omitempty"`
}

// IsVideoFormat reports whether engagement rates mean anything for format.
func IsVideoFormat(format string) bool {
	return format == "video" || format == "ugc"
}

func suggestion(b Band) *ElementResult {
	var r ElementResult
	switch b {
	case BandFailed:
		r = ElementFailed
	case BandGood:
		r = ElementWorked
	default:
		return nil
	}
	return &r
}

// EvaluateEngagement computes rates, bands and suggested element verdicts.
// Non-video formats get an empty Engagement.
func EvaluateEngagement(format string, counts VideoCounts) Engagement {
	if !IsVideoFormat(format) {
		return Engagement{}
	}
	hook := HookRate(counts.ThreeSecondViews, counts.Impressions)
	hold := HoldRate(counts.ThruplayViews, counts.Impressions)
	e := Engagement{
		HookRate: hook,
		HoldRate: hold,
		HookBand: HookBand(hook),
		HoldBand: HoldBand(hold),
	}
	e.SuggestedHook = suggestion(e.HookBand)
	e.SuggestedScript = suggestion(e.HoldBand)
	return e
}
