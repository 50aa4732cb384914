package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teachload/backend/internal/dto"
	"teachload/backend/internal/model"
	"teachload/backend/internal/repository"
)

// ── 规划阶段模块业务错误 ──

var (
	ErrPhaseNotFound         = errors.New("规划阶段不存在")
	ErrPhaseAlreadyClosed    = errors.New("规划阶段已关闭")
	ErrPhaseDateInvalid      = errors.New("阶段日期格式无效")
	ErrArchiveDraftsRequired = errors.New("必须明确指定草稿的处理方式（归档或删除）")
)

// 关闭原因
const (
	closeReasonNewPhase = "新阶段启动，自动关闭"
	closeReasonDefault  = "阶段关闭"
)

// 事务级瞬时错误最多整体重试次数（含首次执行）
const txMaxAttempts = 2

// isTransientError 判断是否为可安全重试整个事务的瞬时存储错误
// 死锁/序列化冲突由数据库主动中止，重新从头执行一遍事务即可
func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "40001") ||
		strings.Contains(msg, "40P01") ||
		strings.Contains(msg, "connection reset")
}

// PhaseService 规划阶段生命周期业务接口
//
// 两条关闭路径刻意分开，不合并：
//   - StartPhase 的隐式关闭只翻状态位，绝不归档/删除任何计划；
//   - ClosePhase 的显式关闭负责归档与草稿处置。
// 合并成单一"关闭"原语曾导致启动新周期时误删计划，禁止回退到那种写法。
type PhaseService interface {
	StartPhase(ctx context.Context, req *dto.StartPhaseRequest, callerID string) (*dto.PhaseResponse, error)
	ClosePhase(ctx context.Context, phaseID string, req *dto.ClosePhaseRequest, callerID string) (*dto.ClosePhaseResponse, error)
	CheckSubmissionStatus(ctx context.Context, professorID string) (*dto.SubmissionStatusResponse, error)
	GetByID(ctx context.Context, id string) (*dto.PhaseResponse, error)
	List(ctx context.Context) ([]dto.PhaseResponse, error)
	UpdateMeta(ctx context.Context, id string, req *dto.UpdatePhaseRequest, callerID string) (*dto.PhaseResponse, error)
}

type phaseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPhaseService 创建 PhaseService 实例
func NewPhaseService(repo *repository.Repository, logger *zap.Logger) PhaseService {
	return &phaseService{repo: repo, logger: logger}
}

// ────────────────────── StartPhase ──────────────────────

func (s *phaseService) StartPhase(ctx context.Context, req *dto.StartPhaseRequest, callerID string) (*dto.PhaseResponse, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrPhaseDateInvalid
	}

	var endDate *time.Time
	if req.EndDate != "" {
		d, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return nil, ErrPhaseDateInvalid
		}
		if !d.After(startDate) {
			return nil, ErrPhaseDateInvalid
		}
		endDate = &d
	}

	if _, err := s.repo.Semester.GetByID(ctx, req.SemesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("semester_id", req.SemesterID), zap.Error(err))
		return nil, err
	}

	var phase *model.PlanningPhase
	for attempt := 1; ; attempt++ {
		phase, err = s.startPhaseTx(ctx, req.SemesterID, req.Name, startDate, endDate, callerID)
		if err == nil || attempt >= txMaxAttempts || !isTransientError(err) {
			break
		}
		s.logger.Warn("启动阶段事务遇到瞬时错误，整体重试",
			zap.Int("attempt", attempt), zap.Error(err))
	}
	if err != nil {
		return nil, err
	}

	return toPhaseResponse(phase), nil
}

// startPhaseTx 单次启动事务：隐式关闭旧活动阶段 + 插入新阶段，整体成败
// 对旧活动阶段行加 FOR UPDATE 锁，同学期并发 StartPhase 在此串行化
func (s *phaseService) startPhaseTx(ctx context.Context, semesterID, name string, startDate time.Time, endDate *time.Time, callerID string) (*model.PlanningPhase, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	// 1. 隐式关闭当前活动阶段（只翻状态位，不归档）
	prev, err := txRepo.Phase.GetActiveBySemesterForUpdate(ctx, semesterID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("查询活动阶段失败", zap.Error(err))
		return nil, err
	}
	if prev != nil {
		now := time.Now()
		prev.IsActive = false
		prev.ClosedAt = &now
		prev.ClosedBy = &callerID
		prev.CloseReason = closeReasonNewPhase
		prev.UpdatedBy = &callerID
		if err := txRepo.Phase.Update(ctx, prev); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("隐式关闭旧阶段失败", zap.String("phase_id", prev.PhaseID), zap.Error(err))
			return nil, err
		}
	}

	// 2. 插入新活动阶段；失败则整体回滚，旧阶段的活动位原样恢复
	phase := &model.PlanningPhase{
		SemesterID: semesterID,
		Name:       name,
		StartDate:  startDate,
		EndDate:    endDate,
		IsActive:   true,
	}
	phase.CreatedBy = &callerID
	phase.UpdatedBy = &callerID

	if err := txRepo.Phase.Create(ctx, phase); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("创建规划阶段失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	return phase, nil
}

// ────────────────────── ClosePhase ──────────────────────

func (s *phaseService) ClosePhase(ctx context.Context, phaseID string, req *dto.ClosePhaseRequest, callerID string) (*dto.ClosePhaseResponse, error) {
	// 删除草稿不可逆，禁止隐含默认值
	if req.ArchiveDrafts == nil {
		return nil, ErrArchiveDraftsRequired
	}

	var resp *dto.ClosePhaseResponse
	var err error
	for attempt := 1; ; attempt++ {
		resp, err = s.closePhaseTx(ctx, phaseID, *req.ArchiveDrafts, req.Reason, callerID)
		if err == nil || attempt >= txMaxAttempts || !isTransientError(err) {
			break
		}
		s.logger.Warn("关闭阶段事务遇到瞬时错误，整体重试",
			zap.Int("attempt", attempt), zap.Error(err))
	}
	return resp, err
}

// closePhaseTx 单次关闭事务。步骤：
//  1. FOR UPDATE 加载阶段行（并发关闭在此串行化；二次关闭报已关闭）
//  2. 归档全部 submitted/approved/rejected 计划（永不静默丢弃）
//  3. 草稿按 archiveDrafts 归档或永久删除 — 全系统最危险的分支
//  4. 落盘关闭标记
//
// 任一步失败整体回滚：计划绝不会在没有对应归档行的情况下从活动表消失
func (s *phaseService) closePhaseTx(ctx context.Context, phaseID string, archiveDrafts bool, reason, callerID string) (*dto.ClosePhaseResponse, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	// 1. 加载并锁定阶段行
	phase, err := txRepo.Phase.GetByIDForUpdate(ctx, phaseID)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhaseNotFound
		}
		s.logger.Error("查询规划阶段失败", zap.String("phase_id", phaseID), zap.Error(err))
		return nil, err
	}
	if !phase.IsActive {
		if tx != nil {
			tx.Rollback()
		}
		return nil, ErrPhaseAlreadyClosed
	}

	archivedCount := 0
	discardedCount := 0

	// 2. submitted/approved/rejected 一律归档后移出活动表
	finished, err := txRepo.Plan.ListBySemesterStatuses(ctx, phase.SemesterID,
		[]string{model.PlanStatusSubmitted, model.PlanStatusApproved, model.PlanStatusRejected})
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("查询待归档计划失败", zap.Error(err))
		return nil, err
	}
	for i := range finished {
		plan := &finished[i]
		if err := insertArchiveRow(ctx, txRepo, plan, phase.PhaseID, phase.Name, callerID, model.ArchiveReasonPhaseClosed); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("写入归档行失败，事务回滚", zap.String("plan_id", plan.PlanID), zap.Error(err))
			return nil, err
		}
		if err := txRepo.Plan.DeleteByID(ctx, plan.PlanID); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("移除活动计划失败，事务回滚", zap.String("plan_id", plan.PlanID), zap.Error(err))
			return nil, err
		}
		archivedCount++
	}

	// 3. 草稿处置：归档或永久删除（操作者显式决定）
	drafts, err := txRepo.Plan.ListBySemesterStatuses(ctx, phase.SemesterID, []string{model.PlanStatusDraft})
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("查询草稿计划失败", zap.Error(err))
		return nil, err
	}
	for i := range drafts {
		plan := &drafts[i]
		if archiveDrafts {
			if err := insertArchiveRow(ctx, txRepo, plan, phase.PhaseID, phase.Name, callerID, model.ArchiveReasonPhaseClosed); err != nil {
				if tx != nil {
					tx.Rollback()
				}
				s.logger.Error("归档草稿失败，事务回滚", zap.String("plan_id", plan.PlanID), zap.Error(err))
				return nil, err
			}
			archivedCount++
		} else {
			discardedCount++
		}
		if err := txRepo.Plan.DeleteByID(ctx, plan.PlanID); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("删除草稿失败，事务回滚", zap.String("plan_id", plan.PlanID), zap.Error(err))
			return nil, err
		}
	}

	// 4. 落盘关闭标记
	now := time.Now()
	phase.IsActive = false
	phase.ClosedAt = &now
	phase.ClosedBy = &callerID
	phase.CloseReason = reason
	if phase.CloseReason == "" {
		phase.CloseReason = closeReasonDefault
	}
	phase.UpdatedBy = &callerID

	if err := txRepo.Phase.Update(ctx, phase); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("更新阶段关闭状态失败", zap.String("phase_id", phaseID), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("规划阶段已关闭",
		zap.String("phase_id", phaseID),
		zap.Int("archived", archivedCount),
		zap.Int("discarded_drafts", discardedCount),
		zap.Bool("archive_drafts", archiveDrafts),
	)

	return &dto.ClosePhaseResponse{
		Phase:               *toPhaseResponse(phase),
		ArchivedCount:       archivedCount,
		DiscardedDraftCount: discardedCount,
	}, nil
}

// ────────────────────── CheckSubmissionStatus ──────────────────────

// CheckSubmissionStatus 判定表按序评估：
//  1. 无活动阶段 → 不可提交
//  2. 活动阶段已过截止时间 → 不可提交（仍返回阶段信息）
//  3. 本阶段已有 approved 提交 → 不可提交（返回既有提交）
//  4. 否则可提交；有截止时间时返回剩余整分钟数（时钟偏差导致的负值取 0）
func (s *phaseService) CheckSubmissionStatus(ctx context.Context, professorID string) (*dto.SubmissionStatusResponse, error) {
	phase, err := s.repo.Phase.GetCurrentActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.SubmissionStatusResponse{
				CanSubmit: false,
				Reason:    "当前没有进行中的规划阶段",
			}, nil
		}
		s.logger.Error("查询活动阶段失败", zap.Error(err))
		return nil, err
	}

	phaseResp := toPhaseResponse(phase)
	now := time.Now()

	if phase.Expired(now) {
		return &dto.SubmissionStatusResponse{
			CanSubmit:   false,
			Reason:      "规划阶段已截止",
			ActivePhase: phaseResp,
		}, nil
	}

	approved, err := s.repo.Submission.GetByPhaseProfessorStatus(ctx, phase.PhaseID, professorID, model.PlanStatusApproved)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询提交记录失败", zap.Error(err))
		return nil, err
	}
	if approved != nil {
		return &dto.SubmissionStatusResponse{
			CanSubmit:          false,
			Reason:             "教学计划已获批准，无需重复提交",
			ActivePhase:        phaseResp,
			ExistingSubmission: toSubmissionResponse(approved),
		}, nil
	}

	resp := &dto.SubmissionStatusResponse{
		CanSubmit:   true,
		ActivePhase: phaseResp,
	}
	if phase.EndDate != nil {
		minutes := int(phase.EndDate.Sub(now).Minutes())
		if minutes < 0 {
			minutes = 0
		}
		resp.RemainingMinutes = &minutes
	}

	return resp, nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *phaseService) GetByID(ctx context.Context, id string) (*dto.PhaseResponse, error) {
	phase, err := s.repo.Phase.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhaseNotFound
		}
		s.logger.Error("查询规划阶段失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toPhaseResponse(phase), nil
}

func (s *phaseService) List(ctx context.Context) ([]dto.PhaseResponse, error) {
	phases, err := s.repo.Phase.List(ctx)
	if err != nil {
		s.logger.Error("列出规划阶段失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.PhaseResponse, 0, len(phases))
	for i := range phases {
		result = append(result, *toPhaseResponse(&phases[i]))
	}
	return result, nil
}

// ────────────────────── UpdateMeta ──────────────────────

// UpdateMeta 仅允许修改名称与截止日期；对已关闭阶段同样开放，但绝不触碰活动位
func (s *phaseService) UpdateMeta(ctx context.Context, id string, req *dto.UpdatePhaseRequest, callerID string) (*dto.PhaseResponse, error) {
	phase, err := s.repo.Phase.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhaseNotFound
		}
		s.logger.Error("查询规划阶段失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		phase.Name = *req.Name
	}
	if req.EndDate != nil {
		if *req.EndDate == "" {
			phase.EndDate = nil
		} else {
			d, err := time.Parse("2006-01-02", *req.EndDate)
			if err != nil {
				return nil, ErrPhaseDateInvalid
			}
			phase.EndDate = &d
		}
	}
	phase.UpdatedBy = &callerID

	if err := s.repo.Phase.Update(ctx, phase); err != nil {
		s.logger.Error("更新阶段元数据失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toPhaseResponse(phase), nil
}

// ── 内部辅助方法 ──

func toPhaseResponse(phase *model.PlanningPhase) *dto.PhaseResponse {
	resp := &dto.PhaseResponse{
		ID:              phase.PhaseID,
		SemesterID:      phase.SemesterID,
		Name:            phase.Name,
		StartDate:       phase.StartDate.Format("2006-01-02"),
		IsActive:        phase.IsActive,
		CloseReason:     phase.CloseReason,
		SubmissionCount: phase.SubmissionCount,
		ApprovedCount:   phase.ApprovedCount,
		RejectedCount:   phase.RejectedCount,
		CreatedAt:       phase.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if phase.Semester != nil {
		resp.SemesterName = phase.Semester.Name
	}
	if phase.EndDate != nil {
		resp.EndDate = phase.EndDate.Format("2006-01-02")
	}
	if phase.ClosedAt != nil {
		resp.ClosedAt = phase.ClosedAt.Format("2006-01-02T15:04:05Z")
	}
	if phase.ClosedBy != nil {
		resp.ClosedBy = *phase.ClosedBy
	}
	return resp
}

