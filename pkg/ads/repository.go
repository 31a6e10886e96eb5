package ads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/jordanlanch/adcreativelab/pkg/adlifecycle"
	"github.com/jordanlanch/adcreativelab/pkg/database"
	"github.com/jordanlanch/adcreativelab/pkg/domain"
	"github.com/jordanlanch/adcreativelab/pkg/models"
	"gorm.io/gorm"
)

// Repository is the gorm-backed ad store. It satisfies adlifecycle.Store.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new ad repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ adlifecycle.Store = (*Repository)(nil)

// ExpireTesting moves every testing ad whose review date has passed to analysis.
func (r *Repository) ExpireTesting(ctx context.Context, now time.Time) (int64, error) {
	return r.bulkUpdate(ctx, func(u *entsql.UpdateBuilder) {
		u.Set("status", string(adlifecycle.StatusAnalysis)).
			Set("is_locked", false).
			Set("updated_at", now).
			Where(entsql.And(
				entsql.EQ("status", string(adlifecycle.StatusTesting)),
				entsql.NotNull("review_date"),
				entsql.LTE("review_date", now),
			))
	})
}

// ReleaseStaleLocks clears is_locked wherever no testing window is active.
func (r *Repository) ReleaseStaleLocks(ctx context.Context, now time.Time) (int64, error) {
	return r.bulkUpdate(ctx, func(u *entsql.UpdateBuilder) {
		u.Set("is_locked", false).
			Set("updated_at", now).
			Where(entsql.And(
				entsql.EQ("is_locked", true),
				entsql.Or(
					entsql.NEQ("status", string(adlifecycle.StatusTesting)),
					entsql.IsNull("review_date"),
					entsql.LTE("review_date", now),
				),
			))
	})
}

// bulkUpdate runs a set-based UPDATE on the ads table through the ent SQL
// builder and reports the affected rows.
func (r *Repository) bulkUpdate(ctx context.Context, build func(*entsql.UpdateBuilder)) (int64, error) {
	drv, err := database.SQLDriver(r.db)
	if err != nil {
		return 0, err
	}
	u := entsql.Dialect(drv.Dialect()).Update(models.Ad{}.TableName())
	build(u)
	query, args := u.Query()

	var res sql.Result
	if err := drv.Exec(ctx, query, args, &res); err != nil {
		return 0, fmt.Errorf("failed to update ads: %w", err)
	}
	return res.RowsAffected()
}

// ListFilter narrows List. Empty fields do not filter.
type ListFilter struct {
	ExcludeCompleted bool   `query:"exclude_completed"`
	Status           string `query:"status" validate:"omitempty,oneof=idea development production testing analysis completed"`
	Angle            string `query:"angle" validate:"omitempty,oneof=fear desire curiosity offer tutorial testimonial"`
	Format           string `query:"format" validate:"omitempty,oneof=image video ugc carousel"`
	FunnelStage      string `query:"funnel_stage" validate:"omitempty,oneof=tof mof bof"`
	AvatarID         string `query:"avatar_id"`
	FailReason       string `query:"fail_reason"`
	SuccessFactor    string `query:"success_factor"`
}

func (r *Repository) withTags(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

// Find loads one ad with its tags.
func (r *Repository) Find(ctx context.Context, id string) (*models.Ad, error) {
	var ad models.Ad
	err := r.withTags(ctx).First(&ad, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("ad")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ad: %w", err)
	}
	return &ad, nil
}

// List returns ads matching f, most recently updated first. Tag filters are
// resolved by the database.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]models.Ad, error) {
	q := r.withTags(ctx).Model(&models.Ad{})

	if f.ExcludeCompleted {
		q = q.Where("status <> ?", adlifecycle.StatusCompleted)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Angle != "" {
		q = q.Where("angle = ?", f.Angle)
	}
	if f.Format != "" {
		q = q.Where("format = ?", f.Format)
	}
	if f.FunnelStage != "" {
		q = q.Where("funnel_stage = ?", f.FunnelStage)
	}
	if f.AvatarID != "" {
		q = q.Where("avatar_id = ?", f.AvatarID)
	}
	if f.FailReason != "" {
		q = q.Where("id IN (?)", r.tagged(models.TagFailReason, f.FailReason))
	}
	if f.SuccessFactor != "" {
		q = q.Where("id IN (?)", r.tagged(models.TagSuccessFactor, f.SuccessFactor))
	}

	out := []models.Ad{}
	if err := q.Order("updated_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list ads: %w", err)
	}
	return out, nil
}

func (r *Repository) tagged(kind models.TagKind, value string) *gorm.DB {
	return r.db.Model(&models.AdTag{}).Select("ad_id").Where("kind = ? AND value = ?", kind, value)
}

// Create inserts an ad and its tags in one transaction.
func (r *Repository) Create(ctx context.Context, ad *models.Ad) error {
	if err := r.db.WithContext(ctx).Create(ad).Error; err != nil {
		return fmt.Errorf("failed to create ad: %w", err)
	}
	return nil
}

// Update writes the changed columns of ad and, when tags is non-nil, replaces
// the tag set of each kind present in tags. All in one transaction.
func (r *Repository) Update(ctx context.Context, id string, columns map[string]any, tags map[models.TagKind][]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Ad{}).Where("id = ?", id).Updates(columns)
		if res.Error != nil {
			return fmt.Errorf("failed to update ad: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NewNotFoundError("ad")
		}

		for kind, values := range tags {
			if err := tx.Where("ad_id = ? AND kind = ?", id, kind).Delete(&models.AdTag{}).Error; err != nil {
				return fmt.Errorf("failed to clear %s tags: %w", kind, err)
			}
			if len(values) == 0 {
				continue
			}
			rows := make([]models.AdTag, len(values))
			for i, v := range values {
				rows[i] = models.AdTag{AdID: id, Kind: kind, Value: v}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to write %s tags: %w", kind, err)
			}
		}
		return nil
	})
}

// Delete removes an ad and its tags. Learnings are left untouched.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ad_id = ?", id).Delete(&models.AdTag{}).Error; err != nil {
			return fmt.Errorf("failed to delete ad tags: %w", err)
		}
		res := tx.Delete(&models.Ad{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete ad: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NewNotFoundError("ad")
		}
		return nil
	})
}
