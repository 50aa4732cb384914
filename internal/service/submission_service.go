package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teachload/backend/internal/dto"
	"teachload/backend/internal/model"
	"teachload/backend/internal/repository"
)

// ── 阶段提交模块业务错误 ──

var (
	ErrNoActivePhase      = errors.New("当前没有进行中的规划阶段")
	ErrPlanNotOwned       = errors.New("只能操作本人的教学计划")
	ErrSubmissionNotFound = errors.New("提交记录不存在")
)

// SubmissionService 阶段提交业务接口
type SubmissionService interface {
	RecordSubmission(ctx context.Context, planID, professorID string) (*dto.SubmissionResponse, error)
	UpdateSubmissionStatus(ctx context.Context, req *dto.UpdateSubmissionStatusRequest) (*dto.SubmissionResponse, error)
	GetPhaseSubmissions(ctx context.Context, phaseID string) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSubmissionService 创建 SubmissionService 实例
func NewSubmissionService(repo *repository.Repository, logger *zap.Logger) SubmissionService {
	return &submissionService{repo: repo, logger: logger}
}

// ────────────────────── RecordSubmission ──────────────────────

// RecordSubmission 在当前活动阶段内记录一次提交
// 以 (阶段, 教授) 为键 upsert：重复提交（含驳回后重交）复用既有行，
// 每阶段每教授任一时刻只持有一条记录，计数器不会被旧行抬高
func (s *submissionService) RecordSubmission(ctx context.Context, planID, professorID string) (*dto.SubmissionResponse, error) {
	phase, err := s.repo.Phase.GetCurrentActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActivePhase
		}
		s.logger.Error("查询活动阶段失败", zap.Error(err))
		return nil, err
	}

	plan, err := s.repo.Plan.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		s.logger.Error("查询教学计划失败", zap.String("plan_id", planID), zap.Error(err))
		return nil, err
	}
	if plan.ProfessorID != professorID {
		return nil, ErrPlanNotOwned
	}

	now := time.Now()

	sub, err := s.repo.Submission.GetByPhaseAndProfessor(ctx, phase.PhaseID, professorID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询提交记录失败", zap.Error(err))
		return nil, err
	}

	if sub != nil {
		// 同阶段重复提交：计划引用与提交时间以后者为准；
		// 被驳回的旧行翻回 submitted 复用，不新增第二行
		sub.PlanID = planID
		sub.Status = model.PlanStatusSubmitted
		sub.SubmittedAt = now
		sub.UpdatedBy = &professorID
		if err := s.repo.Submission.Update(ctx, sub); err != nil {
			s.logger.Error("更新提交记录失败", zap.Error(err))
			return nil, err
		}
	} else {
		sub = &model.PhaseSubmission{
			PhaseID:     phase.PhaseID,
			ProfessorID: professorID,
			PlanID:      planID,
			Status:      model.PlanStatusSubmitted,
			SubmittedAt: now,
		}
		sub.CreatedBy = &professorID
		if err := s.repo.Submission.Create(ctx, sub); err != nil {
			s.logger.Error("创建提交记录失败", zap.Error(err))
			return nil, err
		}
	}

	// 镜像计划自身状态
	if plan.Status == model.PlanStatusDraft {
		plan.Status = model.PlanStatusSubmitted
		plan.UpdatedBy = &professorID
		if err := s.repo.Plan.Update(ctx, plan); err != nil {
			s.logger.Error("更新计划状态失败", zap.String("plan_id", planID), zap.Error(err))
			return nil, err
		}
	}

	if err := recountPhaseCounters(ctx, s.repo, phase.PhaseID); err != nil {
		s.logger.Error("重算阶段计数器失败", zap.String("phase_id", phase.PhaseID), zap.Error(err))
		return nil, err
	}

	s.refreshStatsView(ctx)

	return toSubmissionResponse(sub), nil
}

// ────────────────────── UpdateSubmissionStatus ──────────────────────

// UpdateSubmissionStatus 审批流回写钩子：计划被批准/驳回后同步提交记录状态
func (s *submissionService) UpdateSubmissionStatus(ctx context.Context, req *dto.UpdateSubmissionStatusRequest) (*dto.SubmissionResponse, error) {
	sub, err := s.repo.Submission.GetByPhaseAndProfessor(ctx, req.PhaseID, req.ProfessorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("查询提交记录失败", zap.Error(err))
		return nil, err
	}

	sub.Status = req.Status
	if err := s.repo.Submission.Update(ctx, sub); err != nil {
		s.logger.Error("更新提交状态失败", zap.Error(err))
		return nil, err
	}

	if err := recountPhaseCounters(ctx, s.repo, sub.PhaseID); err != nil {
		s.logger.Error("重算阶段计数器失败", zap.String("phase_id", sub.PhaseID), zap.Error(err))
		return nil, err
	}

	s.refreshStatsView(ctx)

	return toSubmissionResponse(sub), nil
}

// ────────────────────── GetPhaseSubmissions ──────────────────────

func (s *submissionService) GetPhaseSubmissions(ctx context.Context, phaseID string) ([]dto.SubmissionResponse, error) {
	if _, err := s.repo.Phase.GetByID(ctx, phaseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhaseNotFound
		}
		s.logger.Error("查询规划阶段失败", zap.String("phase_id", phaseID), zap.Error(err))
		return nil, err
	}

	subs, err := s.repo.Submission.ListByPhase(ctx, phaseID)
	if err != nil {
		s.logger.Error("列出阶段提交失败", zap.String("phase_id", phaseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.SubmissionResponse, 0, len(subs))
	for i := range subs {
		result = append(result, *toSubmissionResponse(&subs[i]))
	}
	return result, nil
}

// ── 内部辅助方法 ──

// refreshStatsView 尽力刷新统计物化视图
// 视图是缓存优化，刷新失败（如视图尚未创建）只记日志，绝不使写操作失败
func (s *submissionService) refreshStatsView(ctx context.Context) {
	if err := s.repo.Stats.RefreshPhaseOverview(ctx); err != nil {
		s.logger.Warn("刷新统计视图失败，已忽略", zap.Error(err))
	}
}

// recountPhaseCounters 从提交表全量重算并持久化阶段计数器
// 计数器只是派生缓存：重算消除一整类增量维护漂移缺陷
func recountPhaseCounters(ctx context.Context, repo *repository.Repository, phaseID string) error {
	counts, err := repo.Submission.CountsByPhase(ctx, phaseID)
	if err != nil {
		return err
	}
	return repo.Phase.UpdateCounters(ctx, phaseID, counts)
}

func toSubmissionResponse(sub *model.PhaseSubmission) *dto.SubmissionResponse {
	resp := &dto.SubmissionResponse{
		ID:          sub.SubmissionID,
		PhaseID:     sub.PhaseID,
		ProfessorID: sub.ProfessorID,
		PlanID:      sub.PlanID,
		Status:      sub.Status,
		SubmittedAt: sub.SubmittedAt.Format("2006-01-02T15:04:05Z"),
	}
	if sub.Professor != nil {
		resp.ProfessorName = sub.Professor.Name
	}
	if sub.Plan != nil {
		resp.Plan = &dto.PlanSummaryItem{
			ID:          sub.Plan.PlanID,
			Status:      sub.Plan.Status,
			TotalSWS:    sub.Plan.TotalSWS,
			ModuleCount: len(sub.Plan.Modules),
		}
	}
	return resp
}

