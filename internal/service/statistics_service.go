package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teachload/backend/internal/dto"
	"teachload/backend/internal/model"
	"teachload/backend/internal/repository"
)

const defaultTopModulesLimit = 5

// StatisticsService 阶段统计业务接口
//
// 统计口径同时覆盖活动工作表与归档快照：活动阶段从提交记录关联的
// 在册计划取数，已关闭阶段的计划此时只存在于归档 JSONB 中。
type StatisticsService interface {
	GetPhaseStatistics(ctx context.Context, phaseID string) (*dto.PhaseStatisticsResponse, error)
	GetPhaseHistory(ctx context.Context, professorID string) ([]dto.PhaseHistoryItem, error)
}

type statisticsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStatisticsService 创建 StatisticsService 实例
func NewStatisticsService(repo *repository.Repository, logger *zap.Logger) StatisticsService {
	return &statisticsService{repo: repo, logger: logger}
}

// ────────────────────── GetPhaseStatistics ──────────────────────

func (s *statisticsService) GetPhaseStatistics(ctx context.Context, phaseID string) (*dto.PhaseStatisticsResponse, error) {
	phase, err := s.repo.Phase.GetByID(ctx, phaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhaseNotFound
		}
		s.logger.Error("查询规划阶段失败", zap.String("phase_id", phaseID), zap.Error(err))
		return nil, err
	}

	totalProfessors, err := s.repo.User.CountProfessors(ctx)
	if err != nil {
		s.logger.Error("统计教授总数失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.PhaseStatisticsResponse{
		PhaseID:         phase.PhaseID,
		PhaseName:       phase.Name,
		TotalProfessors: totalProfessors,
		SubmissionCount: phase.SubmissionCount,
		ApprovedCount:   phase.ApprovedCount,
		RejectedCount:   phase.RejectedCount,
		TopModules:      []dto.TopModuleItem{},
	}

	// 比率：分母为 0 一律取 0
	if totalProfessors > 0 {
		resp.SubmissionRate = float64(phase.SubmissionCount) / float64(totalProfessors) * 100
		resp.ApprovalRate = float64(phase.ApprovedCount) / float64(totalProfessors) * 100
	}

	subs, err := s.repo.Submission.ListByPhase(ctx, phaseID)
	if err != nil {
		s.logger.Error("查询阶段提交记录失败", zap.String("phase_id", phaseID), zap.Error(err))
		return nil, err
	}
	resp.AvgProcessingHours = avgProcessingHours(subs)

	totalSWS, planCount, moduleCounts := s.collectWorkload(ctx, phaseID, subs)
	resp.TotalSWS = totalSWS
	if planCount > 0 {
		resp.AvgSWSPerPlan = totalSWS / float64(planCount)
	}
	resp.TopModules = s.rankTopModules(ctx, moduleCounts)

	return resp, nil
}

// ────────────────────── GetPhaseHistory ──────────────────────

// GetPhaseHistory 返回全部阶段（最新在前），附带时长与调用者本人的提交记录
func (s *statisticsService) GetPhaseHistory(ctx context.Context, professorID string) ([]dto.PhaseHistoryItem, error) {
	phases, err := s.repo.Phase.List(ctx)
	if err != nil {
		s.logger.Error("查询阶段列表失败", zap.Error(err))
		return nil, err
	}

	items := make([]dto.PhaseHistoryItem, 0, len(phases))
	for i := range phases {
		phase := &phases[i]
		item := dto.PhaseHistoryItem{
			Phase:        *toPhaseResponse(phase),
			DurationDays: phaseDurationDays(phase, time.Now()),
		}

		if professorID != "" {
			sub, err := s.repo.Submission.GetByPhaseAndProfessor(ctx, phase.PhaseID, professorID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Error("查询本人提交记录失败",
					zap.String("phase_id", phase.PhaseID), zap.Error(err))
				return nil, err
			}
			if sub != nil {
				item.OwnSubmission = toSubmissionResponse(sub)
			}
		}

		items = append(items, item)
	}
	return items, nil
}

// ── 内部辅助方法 ──

// collectWorkload 汇总阶段内教学负荷：在册计划与归档快照各算一次，不重复计数
// （计划归档即从活动表删除，两个来源天然互斥）
func (s *statisticsService) collectWorkload(ctx context.Context, phaseID string, subs []model.PhaseSubmission) (float64, int, map[string]dto.TopModuleItem) {
	totalSWS := 0.0
	planCount := 0
	moduleCounts := make(map[string]dto.TopModuleItem)

	seen := make(map[string]bool)
	for i := range subs {
		plan := subs[i].Plan
		if plan == nil || seen[plan.PlanID] {
			continue
		}
		seen[plan.PlanID] = true
		totalSWS += plan.TotalSWS
		planCount++
		for _, m := range plan.Modules {
			countModule(moduleCounts, m.ModuleCode, m.ModuleName)
		}
	}

	archives, err := s.repo.Archive.List(ctx, &repository.ArchiveFilter{PhaseID: phaseID})
	if err != nil {
		s.logger.Warn("查询阶段归档失败，统计仅含在册计划",
			zap.String("phase_id", phaseID), zap.Error(err))
		return totalSWS, planCount, moduleCounts
	}
	for i := range archives {
		var snapshot model.PlanSnapshot
		if err := json.Unmarshal(archives[i].Snapshot, &snapshot); err != nil {
			s.logger.Warn("归档快照解析失败，已跳过",
				zap.String("archive_id", archives[i].ArchiveID), zap.Error(err))
			continue
		}
		totalSWS += snapshot.TotalSWS
		planCount++
		for _, m := range snapshot.Modules {
			countModule(moduleCounts, m.ModuleCode, m.ModuleName)
		}
	}

	return totalSWS, planCount, moduleCounts
}

// rankTopModules 按出现计划数降序取前 N，N 来自规划设置
func (s *statisticsService) rankTopModules(ctx context.Context, moduleCounts map[string]dto.TopModuleItem) []dto.TopModuleItem {
	limit := defaultTopModulesLimit
	if settings, err := s.repo.Settings.Get(ctx); err == nil && settings.TopModulesLimit > 0 {
		limit = settings.TopModulesLimit
	}

	items := make([]dto.TopModuleItem, 0, len(moduleCounts))
	for _, item := range moduleCounts {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].PlanCount != items[j].PlanCount {
			return items[i].PlanCount > items[j].PlanCount
		}
		return items[i].ModuleCode < items[j].ModuleCode
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func countModule(counts map[string]dto.TopModuleItem, code, name string) {
	item, ok := counts[code]
	if !ok {
		item = dto.TopModuleItem{ModuleCode: code, ModuleName: name}
	}
	item.PlanCount++
	counts[code] = item
}

// avgProcessingHours 平均审定时长：已审定提交的 提交→最后更新 时差均值
func avgProcessingHours(subs []model.PhaseSubmission) float64 {
	total := 0.0
	decided := 0
	for i := range subs {
		if subs[i].Status != model.PlanStatusApproved && subs[i].Status != model.PlanStatusRejected {
			continue
		}
		hours := subs[i].UpdatedAt.Sub(subs[i].SubmittedAt).Hours()
		if hours < 0 {
			hours = 0
		}
		total += hours
		decided++
	}
	if decided == 0 {
		return 0
	}
	return total / float64(decided)
}

// phaseDurationDays 阶段时长（整天，向下取整，下限 0）
// 活动阶段以当前时刻计，已关闭阶段以关闭时刻计
func phaseDurationDays(phase *model.PlanningPhase, now time.Time) int {
	end := now
	if phase.ClosedAt != nil {
		end = *phase.ClosedAt
	}
	days := int(end.Sub(phase.StartDate).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days
}

