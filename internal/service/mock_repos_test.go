package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"teachload/backend/internal/model"
	"teachload/backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByStaffID(_ context.Context, staffID string) (*model.User, error) {
	for _, u := range m.users {
		if u.StaffID == staffID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		all = append(all, *u)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) ListProfessors(_ context.Context) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.Role == model.RoleProfessor {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) CountProfessors(_ context.Context) (int64, error) {
	var count int64
	for _, u := range m.users {
		if u.Role == model.RoleProfessor {
			count++
		}
	}
	return count, nil
}

// ── Mock InstituteRepository ──

type mockInstituteRepo struct {
	institutes map[string]*model.Institute
}

func newMockInstituteRepo() *mockInstituteRepo {
	return &mockInstituteRepo{institutes: make(map[string]*model.Institute)}
}

func (m *mockInstituteRepo) Create(_ context.Context, institute *model.Institute) error {
	if institute.InstituteID == "" {
		institute.InstituteID = fmt.Sprintf("inst-%d", len(m.institutes)+1)
	}
	m.institutes[institute.InstituteID] = institute
	return nil
}

func (m *mockInstituteRepo) GetByID(_ context.Context, id string) (*model.Institute, error) {
	if i, ok := m.institutes[id]; ok {
		return i, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInstituteRepo) List(_ context.Context) ([]model.Institute, error) {
	var result []model.Institute
	for _, i := range m.institutes {
		result = append(result, *i)
	}
	return result, nil
}

func (m *mockInstituteRepo) Update(_ context.Context, institute *model.Institute) error {
	m.institutes[institute.InstituteID] = institute
	return nil
}

func (m *mockInstituteRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.institutes, id)
	return nil
}

// ── Mock SemesterRepository ──

type mockSemesterRepo struct {
	semesters map[string]*model.Semester
}

func newMockSemesterRepo() *mockSemesterRepo {
	return &mockSemesterRepo{semesters: make(map[string]*model.Semester)}
}

func (m *mockSemesterRepo) Create(_ context.Context, semester *model.Semester) error {
	if semester.SemesterID == "" {
		semester.SemesterID = fmt.Sprintf("sem-%d", len(m.semesters)+1)
	}
	m.semesters[semester.SemesterID] = semester
	return nil
}

func (m *mockSemesterRepo) GetByID(_ context.Context, id string) (*model.Semester, error) {
	if s, ok := m.semesters[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) List(_ context.Context) ([]model.Semester, error) {
	var result []model.Semester
	for _, s := range m.semesters {
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSemesterRepo) Update(_ context.Context, semester *model.Semester) error {
	m.semesters[semester.SemesterID] = semester
	return nil
}

// ── Mock PhaseRepository ──

type mockPhaseRepo struct {
	phases map[string]*model.PlanningPhase
}

func newMockPhaseRepo() *mockPhaseRepo {
	return &mockPhaseRepo{phases: make(map[string]*model.PlanningPhase)}
}

func (m *mockPhaseRepo) Create(_ context.Context, phase *model.PlanningPhase) error {
	if phase.PhaseID == "" {
		phase.PhaseID = fmt.Sprintf("phase-%d", len(m.phases)+1)
	}
	m.phases[phase.PhaseID] = phase
	return nil
}

func (m *mockPhaseRepo) GetByID(_ context.Context, id string) (*model.PlanningPhase, error) {
	if p, ok := m.phases[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPhaseRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.PlanningPhase, error) {
	return m.GetByID(ctx, id)
}

func (m *mockPhaseRepo) GetCurrentActive(_ context.Context) (*model.PlanningPhase, error) {
	for _, p := range m.phases {
		if p.IsActive {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPhaseRepo) GetActiveBySemester(_ context.Context, semesterID string) (*model.PlanningPhase, error) {
	for _, p := range m.phases {
		if p.IsActive && p.SemesterID == semesterID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPhaseRepo) GetActiveBySemesterForUpdate(ctx context.Context, semesterID string) (*model.PlanningPhase, error) {
	return m.GetActiveBySemester(ctx, semesterID)
}

func (m *mockPhaseRepo) List(_ context.Context) ([]model.PlanningPhase, error) {
	var result []model.PlanningPhase
	for _, p := range m.phases {
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockPhaseRepo) Update(_ context.Context, phase *model.PlanningPhase) error {
	m.phases[phase.PhaseID] = phase
	return nil
}

func (m *mockPhaseRepo) UpdateCounters(_ context.Context, phaseID string, counts repository.SubmissionCounts) error {
	p, ok := m.phases[phaseID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.SubmissionCount = int(counts.Total)
	p.ApprovedCount = int(counts.Approved)
	p.RejectedCount = int(counts.Rejected)
	return nil
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct {
	subs   map[string]*model.PhaseSubmission
	hasErr error // 注入一次性的 HasSubmission 失败
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{subs: make(map[string]*model.PhaseSubmission)}
}

func (m *mockSubmissionRepo) Create(_ context.Context, sub *model.PhaseSubmission) error {
	if sub.SubmissionID == "" {
		sub.SubmissionID = fmt.Sprintf("sub-%d", len(m.subs)+1)
	}
	m.subs[sub.SubmissionID] = sub
	return nil
}

func (m *mockSubmissionRepo) Update(_ context.Context, sub *model.PhaseSubmission) error {
	m.subs[sub.SubmissionID] = sub
	return nil
}

func (m *mockSubmissionRepo) GetByPhaseProfessorStatus(_ context.Context, phaseID, professorID, status string) (*model.PhaseSubmission, error) {
	for _, s := range m.subs {
		if s.PhaseID == phaseID && s.ProfessorID == professorID && s.Status == status {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) GetByPhaseAndProfessor(_ context.Context, phaseID, professorID string) (*model.PhaseSubmission, error) {
	var latest *model.PhaseSubmission
	for _, s := range m.subs {
		if s.PhaseID != phaseID || s.ProfessorID != professorID {
			continue
		}
		if latest == nil || s.SubmittedAt.After(latest.SubmittedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *mockSubmissionRepo) GetByPlanID(_ context.Context, planID string) (*model.PhaseSubmission, error) {
	var latest *model.PhaseSubmission
	for _, s := range m.subs {
		if s.PlanID != planID {
			continue
		}
		if latest == nil || s.SubmittedAt.After(latest.SubmittedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *mockSubmissionRepo) ListByPhase(_ context.Context, phaseID string) ([]model.PhaseSubmission, error) {
	var result []model.PhaseSubmission
	for _, s := range m.subs {
		if s.PhaseID == phaseID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSubmissionRepo) CountsByPhase(_ context.Context, phaseID string) (repository.SubmissionCounts, error) {
	var counts repository.SubmissionCounts
	for _, s := range m.subs {
		if s.PhaseID != phaseID {
			continue
		}
		counts.Total++
		switch s.Status {
		case model.PlanStatusApproved:
			counts.Approved++
		case model.PlanStatusRejected:
			counts.Rejected++
		}
	}
	return counts, nil
}

func (m *mockSubmissionRepo) HasSubmission(_ context.Context, phaseID, professorID string) (bool, error) {
	if m.hasErr != nil {
		err := m.hasErr
		m.hasErr = nil
		return false, err
	}
	for _, s := range m.subs {
		if s.PhaseID == phaseID && s.ProfessorID == professorID {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock PlanRepository ──

type mockPlanRepo struct {
	plans map[string]*model.TeachingPlan
}

func newMockPlanRepo() *mockPlanRepo {
	return &mockPlanRepo{plans: make(map[string]*model.TeachingPlan)}
}

func (m *mockPlanRepo) Create(_ context.Context, plan *model.TeachingPlan) error {
	if plan.PlanID == "" {
		plan.PlanID = fmt.Sprintf("plan-%d", len(m.plans)+1)
	}
	m.plans[plan.PlanID] = plan
	return nil
}

func (m *mockPlanRepo) GetByID(_ context.Context, id string) (*model.TeachingPlan, error) {
	if p, ok := m.plans[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPlanRepo) ListByProfessor(_ context.Context, professorID string) ([]model.TeachingPlan, error) {
	var result []model.TeachingPlan
	for _, p := range m.plans {
		if p.ProfessorID == professorID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPlanRepo) ListBySemesterStatuses(_ context.Context, semesterID string, statuses []string) ([]model.TeachingPlan, error) {
	wanted := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}
	var result []model.TeachingPlan
	for _, p := range m.plans {
		if p.SemesterID == semesterID && wanted[p.Status] {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPlanRepo) Update(_ context.Context, plan *model.TeachingPlan) error {
	m.plans[plan.PlanID] = plan
	return nil
}

func (m *mockPlanRepo) ReplaceModules(_ context.Context, planID string, modules []model.ModuleAssignment) error {
	p, ok := m.plans[planID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Modules = modules
	return nil
}

func (m *mockPlanRepo) DeleteByID(_ context.Context, id string) error {
	delete(m.plans, id)
	return nil
}

// ── Mock ArchiveRepository ──

type mockArchiveRepo struct {
	archives map[string]*model.ArchivedPlanning
}

func newMockArchiveRepo() *mockArchiveRepo {
	return &mockArchiveRepo{archives: make(map[string]*model.ArchivedPlanning)}
}

func (m *mockArchiveRepo) Create(_ context.Context, archive *model.ArchivedPlanning) error {
	if archive.ArchiveID == "" {
		archive.ArchiveID = fmt.Sprintf("arch-%d", len(m.archives)+1)
	}
	m.archives[archive.ArchiveID] = archive
	return nil
}

func (m *mockArchiveRepo) GetByID(_ context.Context, id string) (*model.ArchivedPlanning, error) {
	if a, ok := m.archives[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockArchiveRepo) matches(a *model.ArchivedPlanning, filter *repository.ArchiveFilter) bool {
	if filter == nil {
		return true
	}
	if filter.PhaseID != "" && a.PhaseID != filter.PhaseID {
		return false
	}
	if filter.ProfessorID != "" && a.ProfessorID != filter.ProfessorID {
		return false
	}
	if filter.SemesterID != "" && a.SemesterID != filter.SemesterID {
		return false
	}
	if filter.Status != "" && a.StatusAtArchiving != filter.Status {
		return false
	}
	if filter.From != nil && a.ArchivedAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && a.ArchivedAt.After(*filter.To) {
		return false
	}
	return true
}

func (m *mockArchiveRepo) List(_ context.Context, filter *repository.ArchiveFilter) ([]model.ArchivedPlanning, error) {
	var result []model.ArchivedPlanning
	for _, a := range m.archives {
		if m.matches(a, filter) {
			result = append(result, *a)
		}
	}
	if filter != nil && filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
	}
	if filter != nil && filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (m *mockArchiveRepo) Count(_ context.Context, filter *repository.ArchiveFilter) (int64, error) {
	var count int64
	for _, a := range m.archives {
		if m.matches(a, filter) {
			count++
		}
	}
	return count, nil
}

func (m *mockArchiveRepo) Delete(_ context.Context, id string) error {
	delete(m.archives, id)
	return nil
}

func (m *mockArchiveRepo) DeleteExpired(_ context.Context, cutoff time.Time, exemptReason string) (int64, error) {
	var deleted int64
	for id, a := range m.archives {
		if a.ArchiveReason == exemptReason {
			continue
		}
		if a.ArchivedAt.Before(cutoff) {
			delete(m.archives, id)
			deleted++
		}
	}
	return deleted, nil
}

// ── Mock ReminderRepository ──

type mockReminderRepo struct {
	logs        []*model.ReminderLog
	createErr   error // 注入一次性的落库失败
	createCalls int
}

func newMockReminderRepo() *mockReminderRepo {
	return &mockReminderRepo{}
}

func (m *mockReminderRepo) Create(_ context.Context, log *model.ReminderLog) error {
	m.createCalls++
	if m.createErr != nil {
		err := m.createErr
		m.createErr = nil
		return err
	}
	if log.ReminderID == "" {
		log.ReminderID = fmt.Sprintf("rem-%d", len(m.logs)+1)
	}
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockReminderRepo) ListByPhase(_ context.Context, phaseID string) ([]model.ReminderLog, error) {
	var result []model.ReminderLog
	for _, l := range m.logs {
		if l.PhaseID == phaseID {
			result = append(result, *l)
		}
	}
	return result, nil
}

// ── Mock SettingsRepository ──

type mockSettingsRepo struct {
	settings *model.PlanningSettings
}

func newMockSettingsRepo() *mockSettingsRepo {
	return &mockSettingsRepo{
		settings: &model.PlanningSettings{
			Singleton:            true,
			ArchiveRetentionDays: 365,
			ReminderTemplate:     defaultReminderTemplate,
			TopModulesLimit:      5,
		},
	}
}

func (m *mockSettingsRepo) Get(_ context.Context) (*model.PlanningSettings, error) {
	if m.settings == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return m.settings, nil
}

func (m *mockSettingsRepo) Update(_ context.Context, settings *model.PlanningSettings) error {
	m.settings = settings
	return nil
}

// ── Mock StatsRepository ──

type mockStatsRepo struct {
	refreshCalls int
	refreshErr   error
}

func newMockStatsRepo() *mockStatsRepo {
	return &mockStatsRepo{}
}

func (m *mockStatsRepo) RefreshPhaseOverview(_ context.Context) error {
	m.refreshCalls++
	return m.refreshErr
}

// ── 聚合测试仓储 ──

// testRepos 聚合全部 mock 仓储；db 为空时 BeginTx 返回 nil 事务，
// 事务型服务代码直接走 mock，与生产路径共用同一套业务逻辑
type testRepos struct {
	User       *mockUserRepo
	Institute  *mockInstituteRepo
	Semester   *mockSemesterRepo
	Phase      *mockPhaseRepo
	Submission *mockSubmissionRepo
	Plan       *mockPlanRepo
	Archive    *mockArchiveRepo
	Reminder   *mockReminderRepo
	Settings   *mockSettingsRepo
	Stats      *mockStatsRepo
}

func newTestRepos() *testRepos {
	return &testRepos{
		User:       newMockUserRepo(),
		Institute:  newMockInstituteRepo(),
		Semester:   newMockSemesterRepo(),
		Phase:      newMockPhaseRepo(),
		Submission: newMockSubmissionRepo(),
		Plan:       newMockPlanRepo(),
		Archive:    newMockArchiveRepo(),
		Reminder:   newMockReminderRepo(),
		Settings:   newMockSettingsRepo(),
		Stats:      newMockStatsRepo(),
	}
}

func (t *testRepos) aggregate() *repository.Repository {
	return &repository.Repository{
		User:       t.User,
		Institute:  t.Institute,
		Semester:   t.Semester,
		Phase:      t.Phase,
		Submission: t.Submission,
		Plan:       t.Plan,
		Archive:    t.Archive,
		Reminder:   t.Reminder,
		Settings:   t.Settings,
		Stats:      t.Stats,
	}
}

