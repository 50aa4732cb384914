package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"teachload/backend/internal/model"
)

// ArchiveFilter 归档查询过滤条件
// List 与 Count 共用同一份条件构建逻辑，保证计数与数据两条查询谓词一致
type ArchiveFilter struct {
	PhaseID     string
	ProfessorID string
	SemesterID  string
	Status      string
	From        *time.Time
	To          *time.Time
	Offset      int
	Limit       int
}

// ArchiveRepository 归档规划数据访问接口
type ArchiveRepository interface {
	Create(ctx context.Context, archive *model.ArchivedPlanning) error
	GetByID(ctx context.Context, id string) (*model.ArchivedPlanning, error)
	List(ctx context.Context, filter *ArchiveFilter) ([]model.ArchivedPlanning, error)
	Count(ctx context.Context, filter *ArchiveFilter) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, cutoff time.Time, exemptReason string) (int64, error)
}

type archiveRepo struct {
	db *gorm.DB
}

// NewArchiveRepo 创建 ArchiveRepository 实例
func NewArchiveRepo(db *gorm.DB) ArchiveRepository {
	return &archiveRepo{db: db}
}

func (r *archiveRepo) Create(ctx context.Context, archive *model.ArchivedPlanning) error {
	return r.db.WithContext(ctx).Create(archive).Error
}

func (r *archiveRepo) GetByID(ctx context.Context, id string) (*model.ArchivedPlanning, error) {
	var archive model.ArchivedPlanning
	err := r.db.WithContext(ctx).
		Where("archive_id = ?", id).
		First(&archive).Error
	if err != nil {
		return nil, err
	}
	return &archive, nil
}

// applyFilter 将过滤条件施加到查询上 — List/Count 的唯一谓词来源
func (r *archiveRepo) applyFilter(db *gorm.DB, filter *ArchiveFilter) *gorm.DB {
	if filter == nil {
		return db
	}
	if filter.PhaseID != "" {
		db = db.Where("phase_id = ?", filter.PhaseID)
	}
	if filter.ProfessorID != "" {
		db = db.Where("professor_id = ?", filter.ProfessorID)
	}
	if filter.SemesterID != "" {
		db = db.Where("semester_id = ?", filter.SemesterID)
	}
	if filter.Status != "" {
		db = db.Where("status_at_archiving = ?", filter.Status)
	}
	if filter.From != nil {
		db = db.Where("archived_at >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("archived_at <= ?", *filter.To)
	}
	return db
}

func (r *archiveRepo) List(ctx context.Context, filter *ArchiveFilter) ([]model.ArchivedPlanning, error) {
	var archives []model.ArchivedPlanning

	db := r.applyFilter(r.db.WithContext(ctx).Model(&model.ArchivedPlanning{}), filter)
	if filter != nil && filter.Limit > 0 {
		db = db.Offset(filter.Offset).Limit(filter.Limit)
	}

	err := db.Order("archived_at DESC").Find(&archives).Error
	return archives, err
}

func (r *archiveRepo) Count(ctx context.Context, filter *ArchiveFilter) (int64, error) {
	var total int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&model.ArchivedPlanning{}), filter).
		Count(&total).Error
	return total, err
}

func (r *archiveRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("archive_id = ?", id).
		Delete(&model.ArchivedPlanning{}).Error
}

// DeleteExpired 删除 cutoff 之前且归档原因不等于 exemptReason 的记录
// 手动归档（manual）永久豁免自动清理
func (r *archiveRepo) DeleteExpired(ctx context.Context, cutoff time.Time, exemptReason string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("archived_at < ? AND archive_reason <> ?", cutoff, exemptReason).
		Delete(&model.ArchivedPlanning{})
	return result.RowsAffected, result.Error
}

