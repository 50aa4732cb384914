package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"teachload/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestStatisticsService() (StatisticsService, *testRepos) {
	repos := newTestRepos()
	svc := NewStatisticsService(repos.aggregate(), zap.NewNop())
	return svc, repos
}

func seedProfessor(repos *testRepos, id, name string) {
	repos.User.users[id] = &model.User{
		UserID: id,
		Name:   name,
		Email:  id + "@uni.example",
		Role:   model.RoleProfessor,
	}
}

// ── GetPhaseStatistics 测试 ──

func TestStatisticsService_GetPhaseStatistics_ZeroDenominators(t *testing.T) {
	svc, repos := setupTestStatisticsService()
	seedPhase(repos, "phase-1", "sem-1", true)
	// 零教授、零提交：所有比率与均值取 0，不产生 NaN

	resp, err := svc.GetPhaseStatistics(context.Background(), "phase-1")
	if err != nil {
		t.Fatalf("GetPhaseStatistics 应成功: %v", err)
	}
	if resp.SubmissionRate != 0 || resp.ApprovalRate != 0 {
		t.Errorf("零分母比率应为 0，实际=%v/%v", resp.SubmissionRate, resp.ApprovalRate)
	}
	if resp.AvgProcessingHours != 0 || resp.AvgSWSPerPlan != 0 {
		t.Errorf("零提交均值应为 0，实际=%v/%v", resp.AvgProcessingHours, resp.AvgSWSPerPlan)
	}
	if resp.TopModules == nil || len(resp.TopModules) != 0 {
		t.Error("无数据时高频模块应为空列表")
	}
}

func TestStatisticsService_GetPhaseStatistics_Rates(t *testing.T) {
	svc, repos := setupTestStatisticsService()
	phase := seedPhase(repos, "phase-1", "sem-1", true)
	phase.SubmissionCount = 3
	phase.ApprovedCount = 2
	phase.RejectedCount = 1
	seedProfessor(repos, "prof-1", "张教授")
	seedProfessor(repos, "prof-2", "李教授")
	seedProfessor(repos, "prof-3", "王教授")
	seedProfessor(repos, "prof-4", "赵教授")

	resp, err := svc.GetPhaseStatistics(context.Background(), "phase-1")
	if err != nil {
		t.Fatalf("GetPhaseStatistics 应成功: %v", err)
	}
	if resp.TotalProfessors != 4 {
		t.Errorf("期望教授总数=4，实际=%d", resp.TotalProfessors)
	}
	if resp.SubmissionRate != 75 {
		t.Errorf("期望提交率=75，实际=%v", resp.SubmissionRate)
	}
	if resp.ApprovalRate != 50 {
		t.Errorf("期望批准率=50，实际=%v", resp.ApprovalRate)
	}
}

func TestStatisticsService_GetPhaseStatistics_MergesLiveAndArchived(t *testing.T) {
	svc, repos := setupTestStatisticsService()
	seedPhase(repos, "phase-1", "sem-1", true)

	// 在册计划经由提交记录参与统计
	livePlan := seedPlan(repos, "plan-live", "sem-1", "prof-1", model.PlanStatusSubmitted, 8)
	repos.Submission.subs["sub-1"] = &model.PhaseSubmission{
		SubmissionID: "sub-1",
		PhaseID:      "phase-1",
		ProfessorID:  "prof-1",
		PlanID:       "plan-live",
		Status:       model.PlanStatusSubmitted,
		SubmittedAt:  time.Now(),
		Plan:         livePlan,
	}

	// 已归档计划从 JSONB 快照取数
	snapshot := sampleSnapshot("plan-archived", "prof-2", model.PlanStatusApproved)
	seedArchive(repos, "arch-1", "prof-2", model.ArchiveReasonPhaseClosed, time.Now(), snapshot)

	resp, err := svc.GetPhaseStatistics(context.Background(), "phase-1")
	if err != nil {
		t.Fatalf("GetPhaseStatistics 应成功: %v", err)
	}
	// 8（在册） + 12（归档快照） = 20，两份计划
	if resp.TotalSWS != 20 {
		t.Errorf("期望 TotalSWS=20，实际=%v", resp.TotalSWS)
	}
	if resp.AvgSWSPerPlan != 10 {
		t.Errorf("期望 AvgSWSPerPlan=10，实际=%v", resp.AvgSWSPerPlan)
	}
}

func TestStatisticsService_GetPhaseStatistics_CorruptArchiveSkipped(t *testing.T) {
	svc, repos := setupTestStatisticsService()
	seedPhase(repos, "phase-1", "sem-1", true)
	seedArchive(repos, "arch-ok", "prof-1", model.ArchiveReasonPhaseClosed, time.Now(), sampleSnapshot("plan-1", "prof-1", model.PlanStatusApproved))
	repos.Archive.archives["arch-bad"] = &model.ArchivedPlanning{
		ArchiveID: "arch-bad",
		PhaseID:   "phase-1",
		Snapshot:  []byte("corrupt"),
	}

	resp, err := svc.GetPhaseStatistics(context.Background(), "phase-1")
	if err != nil {
		t.Fatalf("损坏快照应被跳过而非报错: %v", err)
	}
	if resp.TotalSWS != 12 {
		t.Errorf("仅合法快照计入，期望 TotalSWS=12，实际=%v", resp.TotalSWS)
	}
}

func TestStatisticsService_GetPhaseStatistics_TopModulesRanking(t *testing.T) {
	svc, repos := setupTestStatisticsService()
	seedPhase(repos, "phase-1", "sem-1", true)
	repos.Settings.settings.TopModulesLimit = 2

	// 三个模块：INF-101 出现 2 次，INF-102/INF-103 各 1 次
	for i, planID := range []string{"plan-a", "plan-b"} {
		snapshot := sampleSnapshot(planID, "prof-1", model.PlanStatusApproved)
		snapshot.Modules = []model.ModuleSnapshot{
			{ModuleCode: "INF-101", ModuleName: "算法导论", SWS: 4, Multiplier: 1, GroupCount: 1, ComputedLoad: 4},
		}
		if i == 1 {
			snapshot.Modules = append(snapshot.Modules,
				model.ModuleSnapshot{ModuleCode: "INF-102", ModuleName: "程序设计", SWS: 2, Multiplier: 1, GroupCount: 1, ComputedLoad: 2},
				model.ModuleSnapshot{ModuleCode: "INF-103", ModuleName: "离散数学", SWS: 2, Multiplier: 1, GroupCount: 1, ComputedLoad: 2},
			)
		}
		seedArchive(repos, "arch-"+planID, "prof-1", model.ArchiveReasonPhaseClosed, time.Now(), snapshot)
	}

	resp, err := svc.GetPhaseStatistics(context.Background(), "phase-1")
	if err != nil {
		t.Fatalf("GetPhaseStatistics 应成功: %v", err)
	}
	if len(resp.TopModules) != 2 {
		t.Fatalf("上限为 2，实际返回=%d", len(resp.TopModules))
	}
	if resp.TopModules[0].ModuleCode != "INF-101" || resp.TopModules[0].PlanCount != 2 {
		t.Errorf("首位应为 INF-101(2)，实际=%s(%d)", resp.TopModules[0].ModuleCode, resp.TopModules[0].PlanCount)
	}
	// 并列按模块代码升序
	if resp.TopModules[1].ModuleCode != "INF-102" {
		t.Errorf("并列时按代码升序，第二位应为 INF-102，实际=%s", resp.TopModules[1].ModuleCode)
	}
}

func TestStatisticsService_GetPhaseStatistics_AvgProcessingHours(t *testing.T) {
	svc, repos := setupTestStatisticsService()
	seedPhase(repos, "phase-1", "sem-1", true)

	submitted := time.Now().Add(-10 * time.Hour)
	decided := submitted.Add(4 * time.Hour)
	sub := &model.PhaseSubmission{
		SubmissionID: "sub-1",
		PhaseID:      "phase-1",
		ProfessorID:  "prof-1",
		PlanID:       "plan-1",
		Status:       model.PlanStatusApproved,
		SubmittedAt:  submitted,
	}
	sub.UpdatedAt = decided
	repos.Submission.subs["sub-1"] = sub

	// 未审定的提交不计入均值
	pending := &model.PhaseSubmission{
		SubmissionID: "sub-2",
		PhaseID:      "phase-1",
		ProfessorID:  "prof-2",
		PlanID:       "plan-2",
		Status:       model.PlanStatusSubmitted,
		SubmittedAt:  time.Now(),
	}
	repos.Submission.subs["sub-2"] = pending

	resp, err := svc.GetPhaseStatistics(context.Background(), "phase-1")
	if err != nil {
		t.Fatalf("GetPhaseStatistics 应成功: %v", err)
	}
	if resp.AvgProcessingHours < 3.99 || resp.AvgProcessingHours > 4.01 {
		t.Errorf("期望平均审定时长约 4 小时，实际=%v", resp.AvgProcessingHours)
	}
}

func TestStatisticsService_GetPhaseStatistics_NotFound(t *testing.T) {
	svc, _ := setupTestStatisticsService()

	if _, err := svc.GetPhaseStatistics(context.Background(), "phase-missing"); !errors.Is(err, ErrPhaseNotFound) {
		t.Errorf("期望 ErrPhaseNotFound，实际: %v", err)
	}
}

// ── GetPhaseHistory 测试 ──

func TestStatisticsService_GetPhaseHistory_DurationAndOwnSubmission(t *testing.T) {
	svc, repos := setupTestStatisticsService()

	closed := seedPhase(repos, "phase-closed", "sem-1", false)
	closed.StartDate = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	closedAt := closed.StartDate.AddDate(0, 0, 30)
	closed.ClosedAt = &closedAt

	repos.Submission.subs["sub-1"] = &model.PhaseSubmission{
		SubmissionID: "sub-1",
		PhaseID:      "phase-closed",
		ProfessorID:  "prof-1",
		PlanID:       "plan-1",
		Status:       model.PlanStatusApproved,
		SubmittedAt:  closed.StartDate.AddDate(0, 0, 5),
	}

	items, err := svc.GetPhaseHistory(context.Background(), "prof-1")
	if err != nil {
		t.Fatalf("GetPhaseHistory 应成功: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("期望 1 个阶段，实际=%d", len(items))
	}
	if items[0].DurationDays != 30 {
		t.Errorf("已关闭阶段时长应按关闭时刻计为 30 天，实际=%d", items[0].DurationDays)
	}
	if items[0].OwnSubmission == nil || items[0].OwnSubmission.Status != model.PlanStatusApproved {
		t.Error("应附带调用者本人的提交记录")
	}
}

func TestStatisticsService_GetPhaseHistory_NoOwnSubmission(t *testing.T) {
	svc, repos := setupTestStatisticsService()
	seedPhase(repos, "phase-1", "sem-1", true)

	items, err := svc.GetPhaseHistory(context.Background(), "prof-never")
	if err != nil {
		t.Fatalf("GetPhaseHistory 应成功: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("期望 1 个阶段，实际=%d", len(items))
	}
	if items[0].OwnSubmission != nil {
		t.Error("无本人提交时 OwnSubmission 应为空")
	}
}

