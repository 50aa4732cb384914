package repository

import (
	"context"

	"gorm.io/gorm"

	"teachload/backend/internal/model"
)

// SettingsRepository 规划设置数据访问接口
type SettingsRepository interface {
	Get(ctx context.Context) (*model.PlanningSettings, error)
	Update(ctx context.Context, settings *model.PlanningSettings) error
}

type settingsRepo struct {
	db *gorm.DB
}

// NewSettingsRepo 创建 SettingsRepository 实例
func NewSettingsRepo(db *gorm.DB) SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) Get(ctx context.Context) (*model.PlanningSettings, error) {
	var settings model.PlanningSettings
	err := r.db.WithContext(ctx).First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepo) Update(ctx context.Context, settings *model.PlanningSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
