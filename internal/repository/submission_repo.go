package repository

import (
	"context"

	"gorm.io/gorm"

	"teachload/backend/internal/model"
)

// SubmissionRepository 阶段提交记录数据访问接口
type SubmissionRepository interface {
	Create(ctx context.Context, sub *model.PhaseSubmission) error
	Update(ctx context.Context, sub *model.PhaseSubmission) error
	GetByPhaseProfessorStatus(ctx context.Context, phaseID, professorID, status string) (*model.PhaseSubmission, error)
	GetByPhaseAndProfessor(ctx context.Context, phaseID, professorID string) (*model.PhaseSubmission, error)
	GetByPlanID(ctx context.Context, planID string) (*model.PhaseSubmission, error)
	ListByPhase(ctx context.Context, phaseID string) ([]model.PhaseSubmission, error)
	CountsByPhase(ctx context.Context, phaseID string) (SubmissionCounts, error)
	HasSubmission(ctx context.Context, phaseID, professorID string) (bool, error)
}

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, sub *model.PhaseSubmission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *submissionRepo) Update(ctx context.Context, sub *model.PhaseSubmission) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

func (r *submissionRepo) GetByPhaseProfessorStatus(ctx context.Context, phaseID, professorID, status string) (*model.PhaseSubmission, error) {
	var sub model.PhaseSubmission
	err := r.db.WithContext(ctx).
		Where("phase_id = ? AND professor_id = ? AND status = ?", phaseID, professorID, status).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByPhaseAndProfessor 返回教授在该阶段的提交记录（每阶段每教授同一时刻只持有一条）
func (r *submissionRepo) GetByPhaseAndProfessor(ctx context.Context, phaseID, professorID string) (*model.PhaseSubmission, error) {
	var sub model.PhaseSubmission
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("phase_id = ? AND professor_id = ?", phaseID, professorID).
		Order("submitted_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) GetByPlanID(ctx context.Context, planID string) (*model.PhaseSubmission, error) {
	var sub model.PhaseSubmission
	err := r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("submitted_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) ListByPhase(ctx context.Context, phaseID string) ([]model.PhaseSubmission, error) {
	var subs []model.PhaseSubmission
	err := r.db.WithContext(ctx).
		Preload("Professor").
		Preload("Plan").
		Preload("Plan.Modules").
		Where("phase_id = ?", phaseID).
		Order("submitted_at DESC").
		Find(&subs).Error
	return subs, err
}

// CountsByPhase 从提交表全量重算阶段计数器（计数器是缓存，永远以此为准）
func (r *submissionRepo) CountsByPhase(ctx context.Context, phaseID string) (SubmissionCounts, error) {
	var counts SubmissionCounts

	type row struct {
		Status string
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.PhaseSubmission{}).
		Select("status, COUNT(*) AS n").
		Where("phase_id = ?", phaseID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return counts, err
	}

	for _, rw := range rows {
		counts.Total += rw.N
		switch rw.Status {
		case model.PlanStatusApproved:
			counts.Approved = rw.N
		case model.PlanStatusRejected:
			counts.Rejected = rw.N
		}
	}
	return counts, nil
}

func (r *submissionRepo) HasSubmission(ctx context.Context, phaseID, professorID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.PhaseSubmission{}).
		Where("phase_id = ? AND professor_id = ?", phaseID, professorID).
		Count(&n).Error
	return n > 0, err
}

