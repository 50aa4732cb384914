package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teachload/backend/internal/dto"
	"teachload/backend/internal/model"
	"teachload/backend/internal/repository"
	"teachload/backend/pkg/mailer"
)

// ── 催交提醒模块业务错误 ──

var ErrPhaseNotActive = errors.New("规划阶段已关闭，无法催交")

const (
	reminderSubject         = "教学计划提交提醒"
	defaultReminderTemplate = "{professor}您好，规划阶段 {phase} 即将截止，请尽快提交教学计划。"
)

// ReminderService 催交提醒业务接口
//
// 批次发送是尽力而为：单个教授的查询、发送或落库失败只计入
// 失败数，不中断整批，也不使接口返回错误。
type ReminderService interface {
	SendReminders(ctx context.Context, phaseID, callerID string) (*dto.ReminderResultResponse, error)
	ListReminders(ctx context.Context, phaseID string) ([]dto.ReminderLogItem, error)
}

type reminderService struct {
	repo    *repository.Repository
	mailer  mailer.Mailer
	enabled bool
	logger  *zap.Logger
}

// NewReminderService 创建 ReminderService 实例
// enabled 为 false 时不实际发邮件，仅落 skipped 记录（开发/测试环境）
func NewReminderService(repo *repository.Repository, m mailer.Mailer, enabled bool, logger *zap.Logger) ReminderService {
	return &reminderService{repo: repo, mailer: m, enabled: enabled, logger: logger}
}

// ────────────────────── SendReminders ──────────────────────

// SendReminders 向阶段内所有未提交教授发送催交邮件
func (s *reminderService) SendReminders(ctx context.Context, phaseID, callerID string) (*dto.ReminderResultResponse, error) {
	phase, err := s.repo.Phase.GetByID(ctx, phaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhaseNotFound
		}
		s.logger.Error("查询规划阶段失败", zap.String("phase_id", phaseID), zap.Error(err))
		return nil, err
	}
	if !phase.IsActive {
		return nil, ErrPhaseNotActive
	}

	professors, err := s.repo.User.ListProfessors(ctx)
	if err != nil {
		s.logger.Error("查询教授列表失败", zap.Error(err))
		return nil, err
	}

	template := s.reminderTemplate(ctx)
	result := &dto.ReminderResultResponse{}

	for i := range professors {
		prof := &professors[i]

		submitted, err := s.repo.Submission.HasSubmission(ctx, phaseID, prof.UserID)
		if err != nil {
			// 单个教授查询失败不中断整批
			s.logger.Error("查询提交状态失败，继续下一位",
				zap.String("professor_id", prof.UserID), zap.Error(err))
			result.FailedCount++
			continue
		}
		if submitted {
			continue
		}

		body := renderReminder(template, prof.Name, phase.Name)
		status := model.ReminderStatusSent
		message := body

		if !s.enabled {
			// 提醒开关关闭：仅留痕，不计入已催交
			status = model.ReminderStatusSkipped
		} else if err := s.mailer.Send(prof.Email, reminderSubject, body); err != nil {
			status = model.ReminderStatusFailed
			message = err.Error()
			s.logger.Warn("催交邮件发送失败，继续下一位",
				zap.String("professor_id", prof.UserID),
				zap.String("email", prof.Email),
				zap.Error(err),
			)
		}

		log := &model.ReminderLog{
			PhaseID:     phaseID,
			ProfessorID: prof.UserID,
			Status:      status,
			Message:     message,
			SentBy:      callerID,
		}
		if err := s.repo.Reminder.Create(ctx, log); err != nil {
			// 落库失败同样只计失败，批次继续
			s.logger.Error("写入催交记录失败，继续下一位",
				zap.String("professor_id", prof.UserID), zap.Error(err))
			result.FailedCount++
			continue
		}

		switch status {
		case model.ReminderStatusSent:
			result.RemindedCount++
		case model.ReminderStatusFailed:
			result.FailedCount++
		default:
			result.SkippedCount++
		}
	}

	s.logger.Info("催交批次完成",
		zap.String("phase_id", phaseID),
		zap.Int("reminded", result.RemindedCount),
		zap.Int("failed", result.FailedCount),
		zap.Int("skipped", result.SkippedCount),
	)
	return result, nil
}

// ────────────────────── ListReminders ──────────────────────

func (s *reminderService) ListReminders(ctx context.Context, phaseID string) ([]dto.ReminderLogItem, error) {
	logs, err := s.repo.Reminder.ListByPhase(ctx, phaseID)
	if err != nil {
		s.logger.Error("查询催交记录失败", zap.String("phase_id", phaseID), zap.Error(err))
		return nil, err
	}

	items := make([]dto.ReminderLogItem, 0, len(logs))
	for i := range logs {
		item := dto.ReminderLogItem{
			ID:          logs[i].ReminderID,
			ProfessorID: logs[i].ProfessorID,
			Status:      logs[i].Status,
			Message:     logs[i].Message,
			SentAt:      logs[i].CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if logs[i].Professor != nil {
			item.ProfessorName = logs[i].Professor.Name
		}
		items = append(items, item)
	}
	return items, nil
}

// ── 内部辅助方法 ──

func (s *reminderService) reminderTemplate(ctx context.Context) string {
	settings, err := s.repo.Settings.Get(ctx)
	if err != nil || settings.ReminderTemplate == "" {
		return defaultReminderTemplate
	}
	return settings.ReminderTemplate
}

// renderReminder 渲染占位符：{professor} 教授姓名、{phase} 阶段名称
func renderReminder(template, professorName, phaseName string) string {
	body := strings.ReplaceAll(template, "{professor}", professorName)
	return strings.ReplaceAll(body, "{phase}", phaseName)
}

