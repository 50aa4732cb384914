package repository

import (
	"context"

	"gorm.io/gorm"

	"teachload/backend/internal/model"
)

// PlanRepository 教学计划（活动工作表）数据访问接口
type PlanRepository interface {
	Create(ctx context.Context, plan *model.TeachingPlan) error
	GetByID(ctx context.Context, id string) (*model.TeachingPlan, error)
	ListByProfessor(ctx context.Context, professorID string) ([]model.TeachingPlan, error)
	ListBySemesterStatuses(ctx context.Context, semesterID string, statuses []string) ([]model.TeachingPlan, error)
	Update(ctx context.Context, plan *model.TeachingPlan) error
	ReplaceModules(ctx context.Context, planID string, modules []model.ModuleAssignment) error
	DeleteByID(ctx context.Context, id string) error
}

type planRepo struct {
	db *gorm.DB
}

// NewPlanRepo 创建 PlanRepository 实例
func NewPlanRepo(db *gorm.DB) PlanRepository {
	return &planRepo{db: db}
}

// Create 创建计划及其嵌套模块任务（GORM 关联级联写入）
func (r *planRepo) Create(ctx context.Context, plan *model.TeachingPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *planRepo) GetByID(ctx context.Context, id string) (*model.TeachingPlan, error) {
	var plan model.TeachingPlan
	err := r.db.WithContext(ctx).
		Preload("Modules").
		Preload("Professor").
		Preload("Semester").
		Where("plan_id = ?", id).
		First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepo) ListByProfessor(ctx context.Context, professorID string) ([]model.TeachingPlan, error) {
	var plans []model.TeachingPlan
	err := r.db.WithContext(ctx).
		Preload("Modules").
		Preload("Semester").
		Where("professor_id = ?", professorID).
		Order("created_at DESC").
		Find(&plans).Error
	return plans, err
}

// ListBySemesterStatuses 按学期与状态集合列出计划（阶段关闭时的归档/清理选集）
func (r *planRepo) ListBySemesterStatuses(ctx context.Context, semesterID string, statuses []string) ([]model.TeachingPlan, error) {
	var plans []model.TeachingPlan
	err := r.db.WithContext(ctx).
		Preload("Modules").
		Preload("Professor").
		Preload("Semester").
		Where("semester_id = ? AND status IN ?", semesterID, statuses).
		Order("created_at ASC").
		Find(&plans).Error
	return plans, err
}

// Update 保存计划主行（不触碰模块任务，模块整体替换走 ReplaceModules）
func (r *planRepo) Update(ctx context.Context, plan *model.TeachingPlan) error {
	return r.db.WithContext(ctx).Omit("Modules", "Professor", "Semester").Save(plan).Error
}

// ReplaceModules 整体替换计划的模块任务列表
func (r *planRepo) ReplaceModules(ctx context.Context, planID string, modules []model.ModuleAssignment) error {
	if err := r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Delete(&model.ModuleAssignment{}).Error; err != nil {
		return err
	}
	if len(modules) == 0 {
		return nil
	}
	for i := range modules {
		modules[i].PlanID = planID
	}
	return r.db.WithContext(ctx).Create(&modules).Error
}

// DeleteByID 物理删除计划及其模块任务（归档后移除活动行 / 关闭阶段丢弃草稿）
func (r *planRepo) DeleteByID(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).
		Where("plan_id = ?", id).
		Delete(&model.ModuleAssignment{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("plan_id = ?", id).
		Delete(&model.TeachingPlan{}).Error
}

