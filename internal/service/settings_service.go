package service

import (
	"context"

	"go.uber.org/zap"

	"teachload/backend/internal/dto"
	"teachload/backend/internal/model"
	"teachload/backend/internal/repository"
)

// SettingsService 规划设置业务接口（单行配置）
type SettingsService interface {
	Get(ctx context.Context) (*dto.SettingsResponse, error)
	Update(ctx context.Context, req *dto.UpdateSettingsRequest, callerID string) (*dto.SettingsResponse, error)
}

type settingsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSettingsService 创建 SettingsService 实例
func NewSettingsService(repo *repository.Repository, logger *zap.Logger) SettingsService {
	return &settingsService{repo: repo, logger: logger}
}

func (s *settingsService) Get(ctx context.Context) (*dto.SettingsResponse, error) {
	settings, err := s.repo.Settings.Get(ctx)
	if err != nil {
		s.logger.Error("查询规划设置失败", zap.Error(err))
		return nil, err
	}
	return toSettingsResponse(settings), nil
}

func (s *settingsService) Update(ctx context.Context, req *dto.UpdateSettingsRequest, callerID string) (*dto.SettingsResponse, error) {
	settings, err := s.repo.Settings.Get(ctx)
	if err != nil {
		s.logger.Error("查询规划设置失败", zap.Error(err))
		return nil, err
	}

	if req.ArchiveRetentionDays != nil {
		settings.ArchiveRetentionDays = *req.ArchiveRetentionDays
	}
	if req.ReminderTemplate != nil {
		settings.ReminderTemplate = *req.ReminderTemplate
	}
	if req.TopModulesLimit != nil {
		settings.TopModulesLimit = *req.TopModulesLimit
	}
	settings.UpdatedBy = &callerID

	if err := s.repo.Settings.Update(ctx, settings); err != nil {
		s.logger.Error("更新规划设置失败", zap.Error(err))
		return nil, err
	}
	return toSettingsResponse(settings), nil
}

func toSettingsResponse(settings *model.PlanningSettings) *dto.SettingsResponse {
	return &dto.SettingsResponse{
		ArchiveRetentionDays: settings.ArchiveRetentionDays,
		ReminderTemplate:     settings.ReminderTemplate,
		TopModulesLimit:      settings.TopModulesLimit,
		UpdatedAt:            settings.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

