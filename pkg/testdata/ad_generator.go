package testdata

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jordanlanch/adcreativelab/pkg/adlifecycle"
	"github.com/jordanlanch/adcreativelab/pkg/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

var titleCaser = cases.Title(language.English)

// AdGeneratorConfig configures ad generation parameters
type AdGeneratorConfig struct {
	Count      int
	Now        time.Time
	WinnerRate float64 // 0.0-1.0, share of completed ads that won
	// StatusWeights biases the pipeline distribution; nil means uniform.
	StatusWeights map[adlifecycle.Status]int
}

// DefaultAdGeneratorConfig returns a pipeline shaped like a busy month.
func DefaultAdGeneratorConfig(count int) AdGeneratorConfig {
	return AdGeneratorConfig{
		Count:      count,
		Now:        time.Now(),
		WinnerRate: 0.3,
		StatusWeights: map[adlifecycle.Status]int{
			adlifecycle.StatusIdea:        20,
			adlifecycle.StatusDevelopment: 15,
			adlifecycle.StatusProduction:  10,
			adlifecycle.StatusTesting:     15,
			adlifecycle.StatusAnalysis:    10,
			adlifecycle.StatusCompleted:   30,
		},
	}
}

var hookOpeners = []string{
	"Stop scrolling if you", "Nobody tells you that", "I tried this for 30 days and",
	"The reason your", "POV: you finally", "3 mistakes everyone makes with",
}

func pickStatus(weights map[adlifecycle.Status]int) adlifecycle.Status {
	if len(weights) == 0 {
		return adlifecycle.Pipeline[rand.Intn(len(adlifecycle.Pipeline))]
	}
	total := 0
	for _, s := range adlifecycle.Pipeline {
		total += weights[s]
	}
	if total <= 0 {
		return adlifecycle.StatusIdea
	}
	n := rand.Intn(total)
	for _, s := range adlifecycle.Pipeline {
		n -= weights[s]
		if n < 0 {
			return s
		}
	}
	return adlifecycle.StatusIdea
}

func pick[T any](values []T) T {
	return values[rand.Intn(len(values))]
}

func ptr[T any](v T) *T { return &v }

// GenerateAd creates a single ad whose lifecycle fields are consistent with its status
func GenerateAd(config AdGeneratorConfig) *models.Ad {
	now := config.Now
	if now.IsZero() {
		now = time.Now()
	}

	ad := &models.Ad{
		Concept:     fmt.Sprintf("%s %s", titleCaser.String(gofakeit.BuzzWord()), gofakeit.ProductName()),
		Angle:       pick(models.Angles),
		Format:      pick(models.Formats),
		FunnelStage: pick([]models.FunnelStage{models.FunnelTOF, models.FunnelMOF, models.FunnelBOF}),
		SourceType:  pick([]models.SourceType{models.SourceOriginal, models.SourceCompetitor, models.SourceIteration}),
		Status:      pickStatus(config.StatusWeights),
		LockDays:    adlifecycle.DefaultLockDays,
		Notes:       gofakeit.Sentence(8),
	}

	if ad.Status.Index() >= adlifecycle.StatusDevelopment.Index() {
		ad.Hypothesis = fmt.Sprintf("If we lead with %s, %s will convert better", ad.Angle, gofakeit.Noun())
		ad.Hook = fmt.Sprintf("%s %s", pick(hookOpeners), gofakeit.HipsterSentence(5))
		ad.Script = gofakeit.Paragraph(1, 3, 12, " ")
		ad.CTA = pick([]string{"Shop now", "Learn more", "Get yours", "Claim offer"})
	}

	if rand.Float64() < 0.3 {
		ad.DueDate = ptr(now.Add(time.Duration(rand.Intn(10)-3) * 24 * time.Hour))
	}

	switch ad.Status {
	case adlifecycle.StatusTesting:
		started := now.Add(-time.Duration(rand.Intn(ad.LockDays)) * 24 * time.Hour)
		ad.TestingStartedAt = &started
		ad.ReviewDate = ptr(started.Add(time.Duration(ad.LockDays) * 24 * time.Hour))
		ad.IsLocked = ad.ReviewDate.After(now)
		fillMetrics(ad)
	case adlifecycle.StatusAnalysis:
		started := now.Add(-time.Duration(ad.LockDays+rand.Intn(5)+1) * 24 * time.Hour)
		ad.TestingStartedAt = &started
		ad.ReviewDate = ptr(started.Add(time.Duration(ad.LockDays) * 24 * time.Hour))
		fillMetrics(ad)
	case adlifecycle.StatusCompleted:
		started := now.Add(-time.Duration(ad.LockDays+rand.Intn(30)+2) * 24 * time.Hour)
		ad.TestingStartedAt = &started
		ad.ReviewDate = ptr(started.Add(time.Duration(ad.LockDays) * 24 * time.Hour))
		ad.ClosedAt = ptr(ad.ReviewDate.Add(24 * time.Hour))
		fillMetrics(ad)
		closeOut(ad, rand.Float64() < config.WinnerRate)
	}

	return ad
}

func fillMetrics(ad *models.Ad) {
	impressions := int64(gofakeit.IntRange(2000, 200000))
	ad.Impressions = &impressions
	ad.Clicks = ptr(impressions * int64(gofakeit.IntRange(5, 40)) / 1000)
	ad.Spend = ptr(gofakeit.Float64Range(50, 1500))

	purchases := int64(gofakeit.IntRange(0, 40))
	ad.Purchases = &purchases
	ad.Revenue = ptr(float64(purchases) * gofakeit.Float64Range(20, 80))

	if adlifecycle.IsVideoFormat(string(ad.Format)) {
		ad.ThreeSecondViews = ptr(impressions * int64(gofakeit.IntRange(10, 45)) / 100)
		ad.ThruplayViews = ptr(impressions * int64(gofakeit.IntRange(5, 35)) / 100)
	}
}

func closeOut(ad *models.Ad, winner bool) {
	worked, failed := adlifecycle.ElementWorked, adlifecycle.ElementFailed
	verdict := func() *adlifecycle.ElementResult {
		if rand.Float64() < 0.5 {
			return &worked
		}
		return &failed
	}

	if winner {
		ad.Result = ptr(models.ResultWinner)
		ad.Tags = append(ad.Tags, models.AdTag{Kind: models.TagSuccessFactor, Value: pick(models.SuccessFactors)})
	} else {
		ad.Result = ptr(models.ResultLoser)
		ad.Tags = append(ad.Tags, models.AdTag{Kind: models.TagFailReason, Value: pick(models.FailReasons)})
	}
	ad.Evaluations.Hook.Result = verdict()
	ad.Evaluations.Script.Result = verdict()
	ad.Evaluations.CTA.Result = verdict()
	ad.Diagnosis = gofakeit.Sentence(14)
}

// GenerateAds creates multiple ads with the given config
func GenerateAds(config AdGeneratorConfig) []*models.Ad {
	ads := make([]*models.Ad, config.Count)
	for i := 0; i < config.Count; i++ {
		ads[i] = GenerateAd(config)
	}
	return ads
}

// BulkInsertAds inserts ads (and their tags) in batches for performance
func BulkInsertAds(ctx context.Context, db *gorm.DB, ads []*models.Ad, batchSize int) error {
	if len(ads) == 0 {
		return nil
	}
	if err := db.WithContext(ctx).CreateInBatches(ads, batchSize).Error; err != nil {
		return fmt.Errorf("failed to insert ads: %w", err)
	}
	return nil
}
