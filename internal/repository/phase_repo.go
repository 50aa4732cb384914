package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"teachload/backend/internal/model"
)

// SubmissionCounts 阶段提交计数（全量重算结果）
type SubmissionCounts struct {
	Total    int64
	Approved int64
	Rejected int64
}

// PhaseRepository 规划阶段数据访问接口
//
// ForUpdate 变体在当前事务内对目标行加 SELECT ... FOR UPDATE 行锁，
// 用于串行化同一学期上的并发 StartPhase / ClosePhase。
type PhaseRepository interface {
	Create(ctx context.Context, phase *model.PlanningPhase) error
	GetByID(ctx context.Context, id string) (*model.PlanningPhase, error)
	GetByIDForUpdate(ctx context.Context, id string) (*model.PlanningPhase, error)
	GetCurrentActive(ctx context.Context) (*model.PlanningPhase, error)
	GetActiveBySemester(ctx context.Context, semesterID string) (*model.PlanningPhase, error)
	GetActiveBySemesterForUpdate(ctx context.Context, semesterID string) (*model.PlanningPhase, error)
	List(ctx context.Context) ([]model.PlanningPhase, error)
	Update(ctx context.Context, phase *model.PlanningPhase) error
	UpdateCounters(ctx context.Context, phaseID string, counts SubmissionCounts) error
}

type phaseRepo struct {
	db *gorm.DB
}

// NewPhaseRepo 创建 PhaseRepository 实例
func NewPhaseRepo(db *gorm.DB) PhaseRepository {
	return &phaseRepo{db: db}
}

func (r *phaseRepo) Create(ctx context.Context, phase *model.PlanningPhase) error {
	return r.db.WithContext(ctx).Create(phase).Error
}

func (r *phaseRepo) GetByID(ctx context.Context, id string) (*model.PlanningPhase, error) {
	var phase model.PlanningPhase
	err := r.db.WithContext(ctx).
		Preload("Semester").
		Where("phase_id = ?", id).
		First(&phase).Error
	if err != nil {
		return nil, err
	}
	return &phase, nil
}

func (r *phaseRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.PlanningPhase, error) {
	var phase model.PlanningPhase
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("phase_id = ?", id).
		First(&phase).Error
	if err != nil {
		return nil, err
	}
	return &phase, nil
}

// GetCurrentActive 返回当前进行中的阶段（全系同一时间只运行一轮规划）
func (r *phaseRepo) GetCurrentActive(ctx context.Context) (*model.PlanningPhase, error) {
	var phase model.PlanningPhase
	err := r.db.WithContext(ctx).
		Preload("Semester").
		Where("is_active = ?", true).
		Order("start_date DESC").
		First(&phase).Error
	if err != nil {
		return nil, err
	}
	return &phase, nil
}

func (r *phaseRepo) GetActiveBySemester(ctx context.Context, semesterID string) (*model.PlanningPhase, error) {
	var phase model.PlanningPhase
	err := r.db.WithContext(ctx).
		Where("semester_id = ? AND is_active = ?", semesterID, true).
		First(&phase).Error
	if err != nil {
		return nil, err
	}
	return &phase, nil
}

func (r *phaseRepo) GetActiveBySemesterForUpdate(ctx context.Context, semesterID string) (*model.PlanningPhase, error) {
	var phase model.PlanningPhase
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("semester_id = ? AND is_active = ?", semesterID, true).
		First(&phase).Error
	if err != nil {
		return nil, err
	}
	return &phase, nil
}

func (r *phaseRepo) List(ctx context.Context) ([]model.PlanningPhase, error) {
	var phases []model.PlanningPhase
	err := r.db.WithContext(ctx).
		Preload("Semester").
		Order("start_date DESC").
		Find(&phases).Error
	return phases, err
}

func (r *phaseRepo) Update(ctx context.Context, phase *model.PlanningPhase) error {
	return r.db.WithContext(ctx).Save(phase).Error
}

// UpdateCounters 持久化重算后的计数器（仅更新计数列，不触碰状态位）
func (r *phaseRepo) UpdateCounters(ctx context.Context, phaseID string, counts SubmissionCounts) error {
	return r.db.WithContext(ctx).
		Model(&model.PlanningPhase{}).
		Where("phase_id = ?", phaseID).
		Updates(map[string]interface{}{
			"submission_count": counts.Total,
			"approved_count":   counts.Approved,
			"rejected_count":   counts.Rejected,
		}).Error
}

