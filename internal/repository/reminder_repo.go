package repository

import (
	"context"

	"gorm.io/gorm"

	"teachload/backend/internal/model"
)

// ReminderRepository 催交提醒记录数据访问接口
type ReminderRepository interface {
	Create(ctx context.Context, log *model.ReminderLog) error
	ListByPhase(ctx context.Context, phaseID string) ([]model.ReminderLog, error)
}

type reminderRepo struct {
	db *gorm.DB
}

// NewReminderRepo 创建 ReminderRepository 实例
func NewReminderRepo(db *gorm.DB) ReminderRepository {
	return &reminderRepo{db: db}
}

func (r *reminderRepo) Create(ctx context.Context, log *model.ReminderLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *reminderRepo) ListByPhase(ctx context.Context, phaseID string) ([]model.ReminderLog, error) {
	var logs []model.ReminderLog
	err := r.db.WithContext(ctx).
		Preload("Professor").
		Where("phase_id = ?", phaseID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
