package ads

import (
	"time"

	"github.com/jordanlanch/adcreativelab/pkg/adlifecycle"
	"github.com/jordanlanch/adcreativelab/pkg/models"
)

// AdResponse is an ad as returned by the API, decorated with the numbers the
// board and the analysis form display.
type AdResponse struct {
	models.Ad
	FailReasons    []string               `json:"fail_reasons"`
	SuccessFactors []string               `json:"success_factors"`
	DaysRemaining  int                    `json:"days_remaining"`
	ROAS           *float64               `json:"roas"`
	Engagement     adlifecycle.Engagement `json:"engagement"`
}

// NewAdResponse builds the response for ad at now.
func NewAdResponse(ad models.Ad, now time.Time) AdResponse {
	return AdResponse{
		Ad:             ad,
		FailReasons:    ad.TagValues(models.TagFailReason),
		SuccessFactors: ad.TagValues(models.TagSuccessFactor),
		DaysRemaining:  adlifecycle.DaysRemaining(ad.ReviewDate, now),
		ROAS:           adlifecycle.ROAS(ad.Revenue, ad.Spend),
		Engagement:     EngagementOf(ad),
	}
}

// EngagementOf computes the video engagement read-out of ad.
func EngagementOf(ad models.Ad) adlifecycle.Engagement {
	return adlifecycle.EvaluateEngagement(string(ad.Format), adlifecycle.VideoCounts{
		Impressions:      ad.Impressions,
		ThreeSecondViews: ad.ThreeSecondViews,
		ThruplayViews:    ad.ThruplayViews,
	})
}

// BoardColumn is one status column of the Kanban board.
type BoardColumn struct {
	Status adlifecycle.Status `json:"status"`
	Count  int                `json:"count"`
	Ads    []AdResponse       `json:"ads"`
}

// Board is every ad grouped by status in pipeline order.
type Board struct {
	Columns     []BoardColumn `json:"columns"`
	Total       int           `json:"total"`
	GeneratedAt time.Time     `json:"generated_at"`
}
