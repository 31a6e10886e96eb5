package learnings

import (
	"strings"

	"github.com/jordanlanch/adcreativelab/pkg/adlifecycle"
	"github.com/jordanlanch/adcreativelab/pkg/models"
)

// Extract derives a Learning from a completed ad. It returns false unless the
// ad is completed, saveLearning is set and the diagnosis is not blank.
func Extract(ad *models.Ad, saveLearning bool) (*models.Learning, bool) {
	if ad == nil || !saveLearning || ad.Status != adlifecycle.StatusCompleted {
		return nil, false
	}
	content := strings.TrimSpace(ad.Diagnosis)
	if content == "" {
		return nil, false
	}

	l := &models.Learning{
		AdID:        ad.ID,
		Content:     content,
		Angle:       ad.Angle,
		Format:      ad.Format,
		Evaluations: ad.Evaluations,
	}
	if ad.Result != nil {
		r := *ad.Result
		l.Result = &r
	}
	return l, true
}
