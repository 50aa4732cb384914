package repository

import (
	"context"

	"gorm.io/gorm"
)

// StatsRepository 统计物化视图维护接口
type StatsRepository interface {
	// RefreshPhaseOverview 刷新阶段统计物化视图
	// 视图是纯缓存优化：调用方对刷新失败仅记日志，不向上传播
	RefreshPhaseOverview(ctx context.Context) error
}

type statsRepo struct {
	db *gorm.DB
}

// NewStatsRepo 创建 StatsRepository 实例
func NewStatsRepo(db *gorm.DB) StatsRepository {
	return &statsRepo{db: db}
}

func (r *statsRepo) RefreshPhaseOverview(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Exec("REFRESH MATERIALIZED VIEW phase_statistics_overview").Error
}

