package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teachload/backend/internal/dto"
	"teachload/backend/internal/model"
	"teachload/backend/internal/repository"
)

// ── 教学计划模块业务错误 ──

var (
	ErrPlanNotFound     = errors.New("教学计划不存在")
	ErrPlanNotEditable  = errors.New("仅草稿状态的教学计划可以修改")
	ErrPlanNotSubmitted = errors.New("仅已提交的教学计划可以审定")
)

// PlanService 教学计划业务接口（活动工作表的编辑面）
type PlanService interface {
	Create(ctx context.Context, req *dto.CreatePlanRequest, professorID string) (*dto.PlanResponse, error)
	GetByID(ctx context.Context, id string, callerID, callerRole string) (*dto.PlanResponse, error)
	ListMine(ctx context.Context, professorID string) ([]dto.PlanResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdatePlanRequest, professorID string) (*dto.PlanResponse, error)
	Delete(ctx context.Context, id string, professorID string) error
	Approve(ctx context.Context, id string, callerID string) (*dto.PlanResponse, error)
	Reject(ctx context.Context, id string, req *dto.RejectPlanRequest, callerID string) (*dto.PlanResponse, error)
}

type planService struct {
	repo       *repository.Repository
	submission SubmissionService
	logger     *zap.Logger
}

// NewPlanService 创建 PlanService 实例
// 审定结果通过 SubmissionService 的回写钩子同步到提交记录
func NewPlanService(repo *repository.Repository, submission SubmissionService, logger *zap.Logger) PlanService {
	return &planService{repo: repo, submission: submission, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *planService) Create(ctx context.Context, req *dto.CreatePlanRequest, professorID string) (*dto.PlanResponse, error) {
	if _, err := s.repo.Semester.GetByID(ctx, req.SemesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("semester_id", req.SemesterID), zap.Error(err))
		return nil, err
	}

	modules, total := buildModules(req.Modules)
	plan := &model.TeachingPlan{
		SemesterID:  req.SemesterID,
		ProfessorID: professorID,
		Status:      model.PlanStatusDraft,
		TotalSWS:    total,
		Note:        req.Note,
		Modules:     modules,
	}
	plan.CreatedBy = &professorID
	plan.UpdatedBy = &professorID

	if err := s.repo.Plan.Create(ctx, plan); err != nil {
		s.logger.Error("创建教学计划失败", zap.Error(err))
		return nil, err
	}

	return toPlanResponse(plan), nil
}

// ────────────────────── GetByID / ListMine ──────────────────────

func (s *planService) GetByID(ctx context.Context, id string, callerID, callerRole string) (*dto.PlanResponse, error) {
	plan, err := s.repo.Plan.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		s.logger.Error("查询教学计划失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 教授只能查看本人计划；越权按不存在处理
	if callerRole != model.RoleDean && plan.ProfessorID != callerID {
		return nil, ErrPlanNotFound
	}

	return toPlanResponse(plan), nil
}

func (s *planService) ListMine(ctx context.Context, professorID string) ([]dto.PlanResponse, error) {
	plans, err := s.repo.Plan.ListByProfessor(ctx, professorID)
	if err != nil {
		s.logger.Error("列出教学计划失败", zap.String("professor_id", professorID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.PlanResponse, 0, len(plans))
	for i := range plans {
		result = append(result, *toPlanResponse(&plans[i]))
	}
	return result, nil
}

// ────────────────────── Update / Delete ──────────────────────

func (s *planService) Update(ctx context.Context, id string, req *dto.UpdatePlanRequest, professorID string) (*dto.PlanResponse, error) {
	plan, err := s.loadOwnedDraft(ctx, id, professorID)
	if err != nil {
		return nil, err
	}

	if req.Note != nil {
		plan.Note = *req.Note
	}
	if len(req.Modules) > 0 {
		modules, total := buildModules(req.Modules)
		if err := s.repo.Plan.ReplaceModules(ctx, plan.PlanID, modules); err != nil {
			s.logger.Error("替换模块任务失败", zap.String("plan_id", id), zap.Error(err))
			return nil, err
		}
		plan.Modules = modules
		plan.TotalSWS = total
	}
	plan.UpdatedBy = &professorID

	if err := s.repo.Plan.Update(ctx, plan); err != nil {
		s.logger.Error("更新教学计划失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toPlanResponse(plan), nil
}

func (s *planService) Delete(ctx context.Context, id string, professorID string) error {
	if _, err := s.loadOwnedDraft(ctx, id, professorID); err != nil {
		return err
	}

	if err := s.repo.Plan.DeleteByID(ctx, id); err != nil {
		s.logger.Error("删除教学计划失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Approve / Reject ──────────────────────

func (s *planService) Approve(ctx context.Context, id string, callerID string) (*dto.PlanResponse, error) {
	return s.decide(ctx, id, model.PlanStatusApproved, callerID)
}

func (s *planService) Reject(ctx context.Context, id string, req *dto.RejectPlanRequest, callerID string) (*dto.PlanResponse, error) {
	resp, err := s.decide(ctx, id, model.PlanStatusRejected, callerID)
	if err != nil {
		return nil, err
	}
	if req != nil && req.Reason != "" {
		s.logger.Info("教学计划被驳回",
			zap.String("plan_id", id),
			zap.String("reason", req.Reason),
			zap.String("rejected_by", callerID),
		)
	}
	return resp, nil
}

// decide 审定计划并回写提交记录状态（Submission Tracker 的状态镜像钩子）
func (s *planService) decide(ctx context.Context, id, newStatus, callerID string) (*dto.PlanResponse, error) {
	plan, err := s.repo.Plan.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		s.logger.Error("查询教学计划失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if plan.Status != model.PlanStatusSubmitted {
		return nil, ErrPlanNotSubmitted
	}

	plan.Status = newStatus
	plan.UpdatedBy = &callerID
	if err := s.repo.Plan.Update(ctx, plan); err != nil {
		s.logger.Error("更新计划状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 同步提交记录；记录缺失只告警，不阻断审定
	// 状态回写统一走 SubmissionService 钩子，与外部协作方共用一条代码路径
	sub, err := s.repo.Submission.GetByPlanID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询提交记录失败", zap.String("plan_id", id), zap.Error(err))
			return nil, err
		}
		s.logger.Warn("计划无对应提交记录，跳过状态镜像", zap.String("plan_id", id))
	} else {
		req := &dto.UpdateSubmissionStatusRequest{
			PhaseID:     sub.PhaseID,
			ProfessorID: sub.ProfessorID,
			Status:      newStatus,
		}
		if _, err := s.submission.UpdateSubmissionStatus(ctx, req); err != nil {
			s.logger.Error("回写提交状态失败", zap.String("plan_id", id), zap.Error(err))
			return nil, err
		}
	}

	return toPlanResponse(plan), nil
}

// ── 内部辅助方法 ──

func (s *planService) loadOwnedDraft(ctx context.Context, id, professorID string) (*model.TeachingPlan, error) {
	plan, err := s.repo.Plan.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		s.logger.Error("查询教学计划失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if plan.ProfessorID != professorID {
		return nil, ErrPlanNotOwned
	}
	if plan.Status != model.PlanStatusDraft {
		return nil, ErrPlanNotEditable
	}
	return plan, nil
}

// buildModules 由输入构建模块任务并计算负荷：负荷 = SWS × 系数 × 班组数
func buildModules(inputs []dto.ModuleAssignmentInput) ([]model.ModuleAssignment, float64) {
	modules := make([]model.ModuleAssignment, 0, len(inputs))
	total := 0.0
	for _, in := range inputs {
		multiplier := in.Multiplier
		if multiplier == 0 {
			multiplier = 1
		}
		groupCount := in.GroupCount
		if groupCount == 0 {
			groupCount = 1
		}
		load := in.SWS * multiplier * float64(groupCount)
		modules = append(modules, model.ModuleAssignment{
			ModuleCode:   in.ModuleCode,
			ModuleName:   in.ModuleName,
			SWS:          in.SWS,
			Multiplier:   multiplier,
			GroupCount:   groupCount,
			ComputedLoad: load,
		})
		total += load
	}
	return modules, total
}

func toPlanResponse(plan *model.TeachingPlan) *dto.PlanResponse {
	modules := make([]dto.ModuleAssignmentResponse, 0, len(plan.Modules))
	for _, m := range plan.Modules {
		modules = append(modules, dto.ModuleAssignmentResponse{
			ID:           m.AssignmentID,
			ModuleCode:   m.ModuleCode,
			ModuleName:   m.ModuleName,
			SWS:          m.SWS,
			Multiplier:   m.Multiplier,
			GroupCount:   m.GroupCount,
			ComputedLoad: m.ComputedLoad,
		})
	}

	resp := &dto.PlanResponse{
		ID:          plan.PlanID,
		SemesterID:  plan.SemesterID,
		ProfessorID: plan.ProfessorID,
		Status:      plan.Status,
		TotalSWS:    plan.TotalSWS,
		Note:        plan.Note,
		Modules:     modules,
		CreatedAt:   plan.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   plan.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if plan.Semester != nil {
		resp.SemesterName = plan.Semester.Name
	}
	if plan.Professor != nil {
		resp.ProfessorName = plan.Professor.Name
	}
	return resp
}

