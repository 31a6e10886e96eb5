// Command seed fills the database with a generated ad pipeline for local
// development and demos.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/jordanlanch/adcreativelab/config"
	"github.com/jordanlanch/adcreativelab/pkg/database"
	"github.com/jordanlanch/adcreativelab/pkg/learnings"
	"github.com/jordanlanch/adcreativelab/pkg/testdata"
)

func main() {
	count := flag.Int("count", 60, "number of ads to generate")
	batchSize := flag.Int("batch", 100, "insert batch size")
	flag.Parse()

	cfg := config.Load()

	db, err := database.Open(cfg.DatabaseURL, nil)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	log.Printf("🌱 Seeding database with %d ads...", *count)

	ads := testdata.GenerateAds(testdata.DefaultAdGeneratorConfig(*count))
	if err := testdata.BulkInsertAds(ctx, db.DB, ads, *batchSize); err != nil {
		log.Fatalf("❌ Failed to insert ads: %v", err)
	}

	learningService := learnings.NewService(db.DB)
	created := 0
	for _, ad := range ads {
		learning, ok := learnings.Extract(ad, true)
		if !ok {
			continue
		}
		if err := learningService.Create(ctx, learning); err != nil {
			log.Printf("⚠️  Failed to create learning for %s: %v", ad.ID, err)
			continue
		}
		created++
	}

	log.Printf("✅ Seeded %d ads and %d learnings", len(ads), created)
}
