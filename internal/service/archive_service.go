package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teachload/backend/internal/dto"
	"teachload/backend/internal/model"
	"teachload/backend/internal/repository"
)

// ── 归档模块业务错误 ──

var (
	ErrArchiveNotFound    = errors.New("归档记录不存在")
	ErrSnapshotCorrupt    = errors.New("归档快照数据损坏，无法解析")
	ErrArchiveDateInvalid = errors.New("归档查询日期格式无效")
)

// 阶段行悬空（归档时被并发删除）时的占位名称
const unknownPhaseName = "未知阶段"

// ArchiveService 归档业务接口
type ArchiveService interface {
	ArchivePlan(ctx context.Context, req *dto.ArchivePlanRequest, callerID string) error
	RestoreArchivedPlanning(ctx context.Context, archiveID, callerID string) (*dto.RestoreResponse, error)
	ListArchived(ctx context.Context, req *dto.ArchiveListRequest, callerID, callerRole string) ([]dto.ArchiveListItem, int64, error)
	GetArchivedDetail(ctx context.Context, id, callerID, callerRole string) (*dto.ArchiveDetailResponse, error)
	CleanupOldArchives(ctx context.Context, olderThanDays int, callerID string) (*dto.CleanupResponse, error)
}

type archiveService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewArchiveService 创建 ArchiveService 实例
func NewArchiveService(repo *repository.Repository, logger *zap.Logger) ArchiveService {
	return &archiveService{repo: repo, logger: logger}
}

// ────────────────────── ArchivePlan ──────────────────────

// ArchivePlan 手动归档单份教学计划
//
// 快照在任何删除发生之前采集。非草稿计划归档后移出活动表；
// 草稿计划归档后保留活动行（删除与否由调用方的显式策略决定，
// 与 ClosePhase 的草稿处置选项保持同一不对称语义）。
func (s *archiveService) ArchivePlan(ctx context.Context, req *dto.ArchivePlanRequest, callerID string) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
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

	// 1. 加载活动计划及其上下文
	plan, err := txRepo.Plan.GetByID(ctx, req.PlanID)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlanNotFound
		}
		s.logger.Error("查询教学计划失败", zap.String("plan_id", req.PlanID), zap.Error(err))
		return err
	}

	// 2. 冗余采集阶段名；阶段行悬空时用占位名，归档本身必须可完成
	phaseName := unknownPhaseName
	phase, err := txRepo.Phase.GetByID(ctx, req.PhaseID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("查询规划阶段失败", zap.String("phase_id", req.PhaseID), zap.Error(err))
		return err
	}
	if phase != nil {
		phaseName = phase.Name
	}

	// 3. 先写归档行（快照先于删除）
	if err := insertArchiveRow(ctx, txRepo, plan, req.PhaseID, phaseName, callerID, model.ArchiveReasonManual); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("写入归档行失败", zap.String("plan_id", req.PlanID), zap.Error(err))
		return err
	}

	// 4. 非草稿移出活动表；草稿保留（见方法注释）
	if plan.Status != model.PlanStatusDraft {
		if err := txRepo.Plan.DeleteByID(ctx, plan.PlanID); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("移除活动计划失败", zap.String("plan_id", plan.PlanID), zap.Error(err))
			return err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}

	s.logger.Info("教学计划已手动归档",
		zap.String("plan_id", req.PlanID),
		zap.String("phase_id", req.PhaseID),
		zap.String("archived_by", callerID),
	)
	return nil
}

// ────────────────────── RestoreArchivedPlanning ──────────────────────

// RestoreArchivedPlanning 将归档快照恢复为新的活动计划
//
// 恢复强制产出 draft 状态的可编辑草稿，无论归档时状态为何 —
// 批准必须在恢复后重新走审批，这是刻意的策略而非缺陷。
// 恢复是消费性操作：成功后删除归档行，同一归档不可恢复两次。
func (s *archiveService) RestoreArchivedPlanning(ctx context.Context, archiveID, callerID string) (*dto.RestoreResponse, error) {
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

	// 1. 加载归档行
	archive, err := txRepo.Archive.GetByID(ctx, archiveID)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArchiveNotFound
		}
		s.logger.Error("查询归档记录失败", zap.String("archive_id", archiveID), zap.Error(err))
		return nil, err
	}

	var snapshot model.PlanSnapshot
	if err := json.Unmarshal(archive.Snapshot, &snapshot); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("解析归档快照失败", zap.String("archive_id", archiveID), zap.Error(err))
		return nil, ErrSnapshotCorrupt
	}

	// 2. 重建活动计划，强制 draft；快照缺失字段走防御性默认值
	newPlan := &model.TeachingPlan{
		SemesterID:  archive.SemesterID,
		ProfessorID: archive.ProfessorID,
		Status:      model.PlanStatusDraft,
		TotalSWS:    snapshot.TotalSWS,
		Note:        snapshot.Note,
		Modules:     restoreModules(snapshot.Modules),
	}
	newPlan.CreatedBy = &callerID
	newPlan.UpdatedBy = &callerID

	if err := txRepo.Plan.Create(ctx, newPlan); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("重建活动计划失败", zap.String("archive_id", archiveID), zap.Error(err))
		return nil, err
	}

	// 3. 消费归档行
	if err := txRepo.Archive.Delete(ctx, archive.ArchiveID); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("删除归档行失败", zap.String("archive_id", archiveID), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("归档已恢复为草稿",
		zap.String("archive_id", archiveID),
		zap.String("new_plan_id", newPlan.PlanID),
		zap.String("restored_by", callerID),
	)
	return &dto.RestoreResponse{NewPlanID: newPlan.PlanID}, nil
}

// ────────────────────── ListArchived / GetArchivedDetail ──────────────────────

func (s *archiveService) ListArchived(ctx context.Context, req *dto.ArchiveListRequest, callerID, callerRole string) ([]dto.ArchiveListItem, int64, error) {
	filter, err := buildArchiveFilter(req, callerID, callerRole)
	if err != nil {
		return nil, 0, err
	}
	filter.Offset = req.GetOffset()
	filter.Limit = req.GetPageSize()

	total, err := s.repo.Archive.Count(ctx, filter)
	if err != nil {
		s.logger.Error("统计归档记录失败", zap.Error(err))
		return nil, 0, err
	}

	archives, err := s.repo.Archive.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询归档记录失败", zap.Error(err))
		return nil, 0, err
	}

	items := make([]dto.ArchiveListItem, 0, len(archives))
	for i := range archives {
		items = append(items, toArchiveListItem(&archives[i]))
	}
	return items, total, nil
}

func (s *archiveService) GetArchivedDetail(ctx context.Context, id, callerID, callerRole string) (*dto.ArchiveDetailResponse, error) {
	archive, err := s.repo.Archive.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArchiveNotFound
		}
		s.logger.Error("查询归档记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 教授只能查看本人的归档；越权按不存在处理，不泄露他人记录
	if callerRole != model.RoleDean && archive.ProfessorID != callerID {
		return nil, ErrArchiveNotFound
	}

	var snapshot model.PlanSnapshot
	if err := json.Unmarshal(archive.Snapshot, &snapshot); err != nil {
		s.logger.Error("解析归档快照失败", zap.String("id", id), zap.Error(err))
		return nil, ErrSnapshotCorrupt
	}

	modules := make([]dto.ModuleAssignmentResponse, 0, len(snapshot.Modules))
	for _, m := range snapshot.Modules {
		modules = append(modules, dto.ModuleAssignmentResponse{
			ModuleCode:   m.ModuleCode,
			ModuleName:   m.ModuleName,
			SWS:          m.SWS,
			Multiplier:   m.Multiplier,
			GroupCount:   m.GroupCount,
			ComputedLoad: m.ComputedLoad,
		})
	}

	return &dto.ArchiveDetailResponse{
		ArchiveListItem: toArchiveListItem(archive),
		Snapshot: dto.SnapshotResponse{
			Version:  snapshot.Version,
			Status:   snapshot.Status,
			TotalSWS: snapshot.TotalSWS,
			Note:     snapshot.Note,
			Modules:  modules,
		},
	}, nil
}

// ────────────────────── CleanupOldArchives ──────────────────────

// CleanupOldArchives 按保留期清理归档
// 只删除 archive_reason != manual 的过期行：操作者刻意保留的记录永不被自动清理
func (s *archiveService) CleanupOldArchives(ctx context.Context, olderThanDays int, callerID string) (*dto.CleanupResponse, error) {
	days := olderThanDays
	if days <= 0 {
		settings, err := s.repo.Settings.Get(ctx)
		if err != nil {
			s.logger.Warn("读取规划设置失败，使用默认保留期 365 天", zap.Error(err))
			days = 365
		} else {
			days = settings.ArchiveRetentionDays
		}
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	deleted, err := s.repo.Archive.DeleteExpired(ctx, cutoff, model.ArchiveReasonManual)
	if err != nil {
		s.logger.Error("清理过期归档失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("过期归档已清理",
		zap.Int64("deleted", deleted),
		zap.Int("older_than_days", days),
		zap.String("triggered_by", callerID),
	)
	return &dto.CleanupResponse{DeletedCount: deleted}, nil
}

// ── 包内共享辅助 ──

// buildPlanSnapshot 采集计划的版本化快照文档
func buildPlanSnapshot(plan *model.TeachingPlan) *model.PlanSnapshot {
	modules := make([]model.ModuleSnapshot, 0, len(plan.Modules))
	for _, m := range plan.Modules {
		modules = append(modules, model.ModuleSnapshot{
			ModuleCode:   m.ModuleCode,
			ModuleName:   m.ModuleName,
			SWS:          m.SWS,
			Multiplier:   m.Multiplier,
			GroupCount:   m.GroupCount,
			ComputedLoad: m.ComputedLoad,
		})
	}
	return &model.PlanSnapshot{
		Version:     model.SnapshotVersion,
		PlanID:      plan.PlanID,
		SemesterID:  plan.SemesterID,
		ProfessorID: plan.ProfessorID,
		Status:      plan.Status,
		TotalSWS:    plan.TotalSWS,
		Note:        plan.Note,
		Modules:     modules,
	}
}

// restoreModules 从快照重建模块任务；缺失系数补 1、缺失班组数补 1、计算负荷缺省 0
func restoreModules(snapshots []model.ModuleSnapshot) []model.ModuleAssignment {
	modules := make([]model.ModuleAssignment, 0, len(snapshots))
	for _, m := range snapshots {
		multiplier := m.Multiplier
		if multiplier == 0 {
			multiplier = 1
		}
		groupCount := m.GroupCount
		if groupCount == 0 {
			groupCount = 1
		}
		modules = append(modules, model.ModuleAssignment{
			ModuleCode:   m.ModuleCode,
			ModuleName:   m.ModuleName,
			SWS:          m.SWS,
			Multiplier:   multiplier,
			GroupCount:   groupCount,
			ComputedLoad: m.ComputedLoad,
		})
	}
	return modules
}

// insertArchiveRow 写入一行归档（快照序列化先于任何删除）
// ClosePhase 与手动归档共用，保证两条路径的快照结构完全一致
func insertArchiveRow(ctx context.Context, txRepo *repository.Repository, plan *model.TeachingPlan, phaseID, phaseName, actor, reason string) error {
	raw, err := json.Marshal(buildPlanSnapshot(plan))
	if err != nil {
		return err
	}

	professorName := ""
	if plan.Professor != nil {
		professorName = plan.Professor.Name
	}
	semesterName := ""
	if plan.Semester != nil {
		semesterName = plan.Semester.Name
	}

	archive := &model.ArchivedPlanning{
		OriginalPlanID:    plan.PlanID,
		PhaseID:           phaseID,
		PhaseName:         phaseName,
		ProfessorID:       plan.ProfessorID,
		ProfessorName:     professorName,
		SemesterID:        plan.SemesterID,
		SemesterName:      semesterName,
		StatusAtArchiving: plan.Status,
		ArchiveReason:     reason,
		ArchivedBy:        actor,
		ArchivedAt:        time.Now(),
		Snapshot:          raw,
	}
	return txRepo.Archive.Create(ctx, archive)
}

// buildArchiveFilter 组装归档查询过滤条件
// 教授角色一律强制只看本人记录，忽略请求中的 professor_id
func buildArchiveFilter(req *dto.ArchiveListRequest, callerID, callerRole string) (*repository.ArchiveFilter, error) {
	filter := &repository.ArchiveFilter{
		PhaseID:     req.PhaseID,
		ProfessorID: req.ProfessorID,
		SemesterID:  req.SemesterID,
		Status:      req.Status,
	}

	if req.RestrictToOwnRecords || callerRole != model.RoleDean {
		filter.ProfessorID = callerID
	}

	if req.From != "" {
		d, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			return nil, ErrArchiveDateInvalid
		}
		filter.From = &d
	}
	if req.To != "" {
		d, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			return nil, ErrArchiveDateInvalid
		}
		// 含当日整天
		end := d.Add(24*time.Hour - time.Second)
		filter.To = &end
	}

	return filter, nil
}

func toArchiveListItem(a *model.ArchivedPlanning) dto.ArchiveListItem {
	return dto.ArchiveListItem{
		ID:                a.ArchiveID,
		OriginalPlanID:    a.OriginalPlanID,
		PhaseID:           a.PhaseID,
		PhaseName:         a.PhaseName,
		ProfessorID:       a.ProfessorID,
		ProfessorName:     a.ProfessorName,
		SemesterID:        a.SemesterID,
		SemesterName:      a.SemesterName,
		StatusAtArchiving: a.StatusAtArchiving,
		ArchiveReason:     a.ArchiveReason,
		ArchivedBy:        a.ArchivedBy,
		ArchivedAt:        a.ArchivedAt.Format("2006-01-02T15:04:05Z"),
	}
}

