package repository

import (
	"context"
	"errors"

	"github.com/mkurosawa/marketplace-backend/internal/model"
	"gorm.io/gorm"
)

type StatsRepository interface {
	Increment(ctx context.Context) error
	Get(ctx context.Context) (*model.SiteStats, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

// Increment bumps the singleton visit counter, creating the row lazily
// on the first visit. The counter update is a single atomic statement;
// a concurrent first-visit create losing the race falls back to the
// update path.
func (r *statsRepository) Increment(ctx context.Context) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Model(&model.SiteStats{}).
		Where("id = ?", model.SiteStatsID).
		UpdateColumn("visits", gorm.Expr("visits + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Create(&model.SiteStats{ID: model.SiteStatsID, Visits: 1}).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return r.db.WithContext(ctx).
			Model(&model.SiteStats{}).
			Where("id = ?", model.SiteStatsID).
			UpdateColumn("visits", gorm.Expr("visits + 1")).Error
	}
	return err
}

func (r *statsRepository) Get(ctx context.Context) (*model.SiteStats, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var s model.SiteStats
	if err := r.db.WithContext(ctx).First(&s, model.SiteStatsID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.SiteStats{ID: model.SiteStatsID}, nil
		}
		return nil, err
	}
	return &s, nil
}
