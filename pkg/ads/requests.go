package ads

import (
	"fmt"
	"strings"
	"time"

	"github.com/jordanlanch/adcreativelab/pkg/adlifecycle"
	"github.com/jordanlanch/adcreativelab/pkg/domain"
	"github.com/jordanlanch/adcreativelab/pkg/models"
)

// CreateAdRequest represents a request to create an ad.
type CreateAdRequest struct {
	Concept        string     `json:"concept" validate:"required,max=2000"`
	Angle          string     `json:"angle"`
	Format         string     `json:"format"`
	FunnelStage    string     `json:"funnel_stage"`
	SourceType     string     `json:"source_type"`
	AvatarID       *string    `json:"avatar_id,omitempty"`
	CompetitorAdID *string    `json:"competitor_ad_id,omitempty"`
	Hypothesis     string     `json:"hypothesis" validate:"max=5000"`
	Hook           string     `json:"hook" validate:"max=5000"`
	Script         string     `json:"script" validate:"max=20000"`
	CTA            string     `json:"cta" validate:"max=1000"`
	Notes          string     `json:"notes" validate:"max=20000"`
	MediaURL       string     `json:"media_url" validate:"max=1024"`
	Status         string     `json:"status"`
	LockDays       int        `json:"lock_days" validate:"omitempty,min=1,max=90"`
	DueDate        *time.Time `json:"due_date,omitempty"`
}

// EvaluationInput updates one element evaluation. An empty Result clears it.
type EvaluationInput struct {
	Result *string `json:"result"`
	Note   *string `json:"note" validate:"omitempty,max=2000"`
}

// EvaluationsInput updates any of the six element evaluations.
type EvaluationsInput struct {
	Hook   *EvaluationInput `json:"hook,omitempty"`
	Avatar *EvaluationInput `json:"avatar,omitempty"`
	Script *EvaluationInput `json:"script,omitempty"`
	CTA    *EvaluationInput `json:"cta,omitempty"`
	Visual *EvaluationInput `json:"visual,omitempty"`
	Audio  *EvaluationInput `json:"audio,omitempty"`
}

// MetricsInput updates the performance counters of an ad.
type MetricsInput struct {
	Spend            *float64 `json:"spend,omitempty" validate:"omitempty,gte=0"`
	Impressions      *int64   `json:"impressions,omitempty" validate:"omitempty,gte=0"`
	Clicks           *int64   `json:"clicks,omitempty" validate:"omitempty,gte=0"`
	Purchases        *int64   `json:"purchases,omitempty" validate:"omitempty,gte=0"`
	Revenue          *float64 `json:"revenue,omitempty" validate:"omitempty,gte=0"`
	ThreeSecondViews *int64   `json:"three_second_views,omitempty" validate:"omitempty,gte=0"`
	ThruplayViews    *int64   `json:"thruplay_views,omitempty" validate:"omitempty,gte=0"`
}

// PatchAdRequest is a partial update. Nil fields are left unchanged; empty
// strings clear optional references.
type PatchAdRequest struct {
	Concept        *string    `json:"concept,omitempty" validate:"omitempty,min=1,max=2000"`
	Angle          *string    `json:"angle,omitempty"`
	Format         *string    `json:"format,omitempty"`
	FunnelStage    *string    `json:"funnel_stage,omitempty"`
	SourceType     *string    `json:"source_type,omitempty"`
	AvatarID       *string    `json:"avatar_id,omitempty"`
	CompetitorAdID *string    `json:"competitor_ad_id,omitempty"`
	Hypothesis     *string    `json:"hypothesis,omitempty" validate:"omitempty,max=5000"`
	Hook           *string    `json:"hook,omitempty" validate:"omitempty,max=5000"`
	Script         *string    `json:"script,omitempty" validate:"omitempty,max=20000"`
	CTA            *string    `json:"cta,omitempty" validate:"omitempty,max=1000"`
	Notes          *string    `json:"notes,omitempty" validate:"omitempty,max=20000"`
	MediaURL       *string    `json:"media_url,omitempty" validate:"omitempty,max=1024"`
	Status         *string    `json:"status,omitempty"`
	LockDays       *int       `json:"lock_days,omitempty" validate:"omitempty,min=1,max=90"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	ClearDueDate   bool       `json:"clear_due_date,omitempty"`

	Result         *string           `json:"result,omitempty"`
	Diagnosis      *string           `json:"diagnosis,omitempty" validate:"omitempty,max=20000"`
	Evaluations    *EvaluationsInput `json:"evaluations,omitempty"`
	FailReasons    *[]string         `json:"fail_reasons,omitempty"`
	SuccessFactors *[]string         `json:"success_factors,omitempty"`
	MetricsInput
	SaveLearning bool `json:"save_learning,omitempty"`
}

// CompletionInput carries the analysis recorded when an ad is moved.
type CompletionInput struct {
	Result         *string           `json:"result,omitempty"`
	Diagnosis      *string           `json:"diagnosis,omitempty" validate:"omitempty,max=20000"`
	Evaluations    *EvaluationsInput `json:"evaluations,omitempty"`
	FailReasons    []string          `json:"fail_reasons,omitempty"`
	SuccessFactors []string          `json:"success_factors,omitempty"`
	MetricsInput
	SaveLearning bool `json:"save_learning,omitempty"`
}

// MoveAdRequest is an explicit transition on the board.
type MoveAdRequest struct {
	Status     string           `json:"status" validate:"required"`
	Completion *CompletionInput `json:"completion,omitempty"`
}

func (r MoveAdRequest) patch() PatchAdRequest {
	status := r.Status
	p := PatchAdRequest{Status: &status}
	if c := r.Completion; c != nil {
		p.Result = c.Result
		p.Diagnosis = c.Diagnosis
		p.Evaluations = c.Evaluations
		p.MetricsInput = c.MetricsInput
		p.SaveLearning = c.SaveLearning
		if c.FailReasons != nil {
			p.FailReasons = &c.FailReasons
		}
		if c.SuccessFactors != nil {
			p.SuccessFactors = &c.SuccessFactors
		}
	}
	return p
}

func checkEnum[T ~string](field, value string, allowed []T) error {
	if value == "" || models.OneOf(T(value), allowed) {
		return nil
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return domain.NewValidationError(fmt.Sprintf("%s must be one of: %s", field, strings.Join(names, ", ")))
}

func checkEnumPtr[T ~string](field string, value *string, allowed []T) error {
	if value == nil {
		return nil
	}
	return checkEnum(field, *value, allowed)
}

func parseStatus(raw string) (adlifecycle.Status, error) {
	s, err := adlifecycle.ParseStatus(raw)
	if err != nil {
		return "", domain.NewValidationError(err.Error())
	}
	return s, nil
}

// normalizeTags validates tag values against allowed and drops duplicates,
// keeping first-seen order.
func normalizeTags(field string, values []string, allowed []string) ([]string, error) {
	out := make([]string, 0, len(values))
	seen := map[string]bool{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if !models.OneOf(v, allowed) {
			return nil, domain.NewValidationError(fmt.Sprintf("%s: unknown value %q", field, v))
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}

func (r CreateAdRequest) checkEnums() error {
	for _, err := range []error{
		checkEnum("angle", r.Angle, models.Angles),
		checkEnum("format", r.Format, models.Formats),
		checkEnum("funnel_stage", r.FunnelStage, models.FunnelStages),
		checkEnum("source_type", r.SourceType, models.SourceTypes),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (r PatchAdRequest) checkEnums() error {
	for _, err := range []error{
		checkEnumPtr("angle", r.Angle, models.Angles),
		checkEnumPtr("format", r.Format, models.Formats),
		checkEnumPtr("funnel_stage", r.FunnelStage, models.FunnelStages),
		checkEnumPtr("source_type", r.SourceType, models.SourceTypes),
		checkEnumPtr("result", r.Result, models.AdResults),
	} {
		if err != nil {
			return err
		}
	}
	if r.Evaluations != nil {
		for name, in := range r.Evaluations.byPrefix() {
			if in == nil || in.Result == nil {
				continue
			}
			if err := checkEnum(name+".result", *in.Result, []adlifecycle.ElementResult{
				adlifecycle.ElementWorked, adlifecycle.ElementFailed,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *EvaluationsInput) byPrefix() map[string]*EvaluationInput {
	return map[string]*EvaluationInput{
		"hook":   e.Hook,
		"avatar": e.Avatar,
		"script": e.Script,
		"cta":    e.CTA,
		"visual": e.Visual,
		"audio":  e.Audio,
	}
}

// nullable maps "" to SQL NULL.
func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// columns translates the non-status fields of r into column updates.
func (r PatchAdRequest) columns() map[string]any {
	cols := map[string]any{}
	setStr := func(col string, v *string) {
		if v != nil {
			cols[col] = *v
		}
	}
	setStr("concept", r.Concept)
	setStr("angle", r.Angle)
	setStr("format", r.Format)
	setStr("funnel_stage", r.FunnelStage)
	setStr("source_type", r.SourceType)
	setStr("hypothesis", r.Hypothesis)
	setStr("hook", r.Hook)
	setStr("script", r.Script)
	setStr("cta", r.CTA)
	setStr("notes", r.Notes)
	setStr("media_url", r.MediaURL)
	setStr("diagnosis", r.Diagnosis)

	if r.AvatarID != nil {
		cols["avatar_id"] = nullable(*r.AvatarID)
	}
	if r.CompetitorAdID != nil {
		cols["competitor_ad_id"] = nullable(*r.CompetitorAdID)
	}
	if r.Result != nil {
		cols["result"] = nullable(*r.Result)
	}
	if r.LockDays != nil {
		cols["lock_days"] = *r.LockDays
	}
	if r.DueDate != nil {
		cols["due_date"] = r.DueDate.UTC()
	}
	if r.ClearDueDate {
		cols["due_date"] = nil
	}

	if r.Evaluations != nil {
		for prefix, in := range r.Evaluations.byPrefix() {
			if in == nil {
				continue
			}
			if in.Result != nil {
				cols[prefix+"_result"] = nullable(*in.Result)
			}
			if in.Note != nil {
				cols[prefix+"_note"] = *in.Note
			}
		}
	}

	m := r.MetricsInput
	for col, v := range map[string]any{
		"spend":              m.Spend,
		"impressions":        m.Impressions,
		"clicks":             m.Clicks,
		"purchases":          m.Purchases,
		"revenue":            m.Revenue,
		"three_second_views": m.ThreeSecondViews,
		"thruplay_views":     m.ThruplayViews,
	} {
		switch p := v.(type) {
		case *float64:
			if p != nil {
				cols[col] = *p
			}
		case *int64:
			if p != nil {
				cols[col] = *p
			}
		}
	}
	return cols
}
