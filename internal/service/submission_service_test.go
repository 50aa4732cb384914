package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"teachload/backend/internal/dto"
	"teachload/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestSubmissionService() (SubmissionService, *testRepos) {
	repos := newTestRepos()
	svc := NewSubmissionService(repos.aggregate(), zap.NewNop())
	return svc, repos
}

// ── RecordSubmission 测试 ──

func TestSubmissionService_RecordSubmission_Success(t *testing.T) {
	svc, repos := setupTestSubmissionService()
	phase := seedPhase(repos, "phase-1", "sem-1", true)
	plan := seedPlan(repos, "plan-1", "sem-1", "prof-1", model.PlanStatusDraft, 8)

	resp, err := svc.RecordSubmission(context.Background(), "plan-1", "prof-1")
	if err != nil {
		t.Fatalf("RecordSubmission 应成功: %v", err)
	}
	if resp.Status != model.PlanStatusSubmitted {
		t.Errorf("期望提交状态=submitted，实际=%s", resp.Status)
	}
	if resp.PhaseID != "phase-1" {
		t.Errorf("提交应挂在活动阶段上，实际=%s", resp.PhaseID)
	}

	// 计划状态镜像为 submitted
	if plan.Status != model.PlanStatusSubmitted {
		t.Errorf("计划状态应镜像为 submitted，实际=%s", plan.Status)
	}
	// 计数器从提交表全量重算
	if phase.SubmissionCount != 1 {
		t.Errorf("期望提交计数=1，实际=%d", phase.SubmissionCount)
	}
}

func TestSubmissionService_RecordSubmission_UpsertNoDuplicate(t *testing.T) {
	svc, repos := setupTestSubmissionService()
	phase := seedPhase(repos, "phase-1", "sem-1", true)
	seedPlan(repos, "plan-1", "sem-1", "prof-1", model.PlanStatusDraft, 8)
	seedPlan(repos, "plan-2", "sem-1", "prof-1", model.PlanStatusDraft, 6)

	if _, err := svc.RecordSubmission(context.Background(), "plan-1", "prof-1"); err != nil {
		t.Fatalf("首次提交应成功: %v", err)
	}
	resp, err := svc.RecordSubmission(context.Background(), "plan-2", "prof-1")
	if err != nil {
		t.Fatalf("重复提交应成功: %v", err)
	}

	// 同阶段同教授重复提交走 upsert，不产生第二行
	if len(repos.Submission.subs) != 1 {
		t.Fatalf("期望 1 条提交记录，实际=%d", len(repos.Submission.subs))
	}
	// 计划引用以后者为准
	if resp.PlanID != "plan-2" {
		t.Errorf("重复提交应更新计划引用，实际=%s", resp.PlanID)
	}
	if phase.SubmissionCount != 1 {
		t.Errorf("重复提交不应抬高计数器，实际=%d", phase.SubmissionCount)
	}
}

func TestSubmissionService_RecordSubmission_ReusesRejectedRow(t *testing.T) {
	svc, repos := setupTestSubmissionService()
	phase := seedPhase(repos, "phase-1", "sem-1", true)
	seedPlan(repos, "plan-2", "sem-1", "prof-1", model.PlanStatusDraft, 6)
	repos.Submission.subs["sub-1"] = &model.PhaseSubmission{
		SubmissionID: "sub-1", PhaseID: "phase-1", ProfessorID: "prof-1",
		PlanID: "plan-1", Status: model.PlanStatusRejected, SubmittedAt: time.Now().Add(-time.Hour),
	}

	resp, err := svc.RecordSubmission(context.Background(), "plan-2", "prof-1")
	if err != nil {
		t.Fatalf("驳回后重交应成功: %v", err)
	}
	// 驳回行被复用翻回 submitted，不新增第二行，提交率不会超过 100%
	if len(repos.Submission.subs) != 1 {
		t.Fatalf("期望 1 条提交记录，实际=%d", len(repos.Submission.subs))
	}
	if repos.Submission.subs["sub-1"].Status != model.PlanStatusSubmitted {
		t.Errorf("旧行应翻回 submitted，实际=%s", repos.Submission.subs["sub-1"].Status)
	}
	if resp.PlanID != "plan-2" {
		t.Errorf("计划引用应指向新计划，实际=%s", resp.PlanID)
	}
	if phase.SubmissionCount != 1 || phase.RejectedCount != 0 {
		t.Errorf("计数器应重算为 提交 1/驳回 0，实际=%d/%d", phase.SubmissionCount, phase.RejectedCount)
	}
}

func TestSubmissionService_RecordSubmission_NoActivePhase(t *testing.T) {
	svc, repos := setupTestSubmissionService()
	seedPlan(repos, "plan-1", "sem-1", "prof-1", model.PlanStatusDraft, 8)

	if _, err := svc.RecordSubmission(context.Background(), "plan-1", "prof-1"); !errors.Is(err, ErrNoActivePhase) {
		t.Errorf("期望 ErrNoActivePhase，实际: %v", err)
	}
}

func TestSubmissionService_RecordSubmission_PlanNotOwned(t *testing.T) {
	svc, repos := setupTestSubmissionService()
	seedPhase(repos, "phase-1", "sem-1", true)
	seedPlan(repos, "plan-1", "sem-1", "prof-1", model.PlanStatusDraft, 8)

	if _, err := svc.RecordSubmission(context.Background(), "plan-1", "prof-2"); !errors.Is(err, ErrPlanNotOwned) {
		t.Errorf("期望 ErrPlanNotOwned，实际: %v", err)
	}
}

func TestSubmissionService_RecordSubmission_PlanNotFound(t *testing.T) {
	svc, repos := setupTestSubmissionService()
	seedPhase(repos, "phase-1", "sem-1", true)

	if _, err := svc.RecordSubmission(context.Background(), "plan-missing", "prof-1"); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("期望 ErrPlanNotFound，实际: %v", err)
	}
}

func TestSubmissionService_RecordSubmission_StatsRefreshFailureIgnored(t *testing.T) {
	svc, repos := setupTestSubmissionService()
	seedPhase(repos, "phase-1", "sem-1", true)
	seedPlan(repos, "plan-1", "sem-1", "prof-1", model.PlanStatusDraft, 8)
	// 物化视图刷新失败只记日志，不使提交失败
	repos.Stats.refreshErr = errors.New("relation does not exist")

	if _, err := svc.RecordSubmission(context.Background(), "plan-1", "prof-1"); err != nil {
		t.Fatalf("视图刷新失败不应影响提交: %v", err)
	}
	if repos.Stats.refreshCalls != 1 {
		t.Errorf("应尝试刷新视图 1 次，实际=%d", repos.Stats.refreshCalls)
	}
}

// ── UpdateSubmissionStatus 测试 ──

func TestSubmissionService_UpdateSubmissionStatus_RecountsCounters(t *testing.T) {
	svc, repos := setupTestSubmissionService()
	phase := seedPhase(repos, "phase-1", "sem-1", true)
	repos.Submission.subs["sub-1"] = &model.PhaseSubmission{
		SubmissionID: "sub-1",
		PhaseID:      "phase-1",
		ProfessorID:  "prof-1",
		PlanID:       "plan-1",
		Status:       model.PlanStatusSubmitted,
		SubmittedAt:  time.Now(),
	}

	req := &dto.UpdateSubmissionStatusRequest{
		PhaseID:     "phase-1",
		ProfessorID: "prof-1",
		Status:      model.PlanStatusApproved,
	}
	resp, err := svc.UpdateSubmissionStatus(context.Background(), req)
	if err != nil {
		t.Fatalf("UpdateSubmissionStatus 应成功: %v", err)
	}
	if resp.Status != model.PlanStatusApproved {
		t.Errorf("期望状态=approved，实际=%s", resp.Status)
	}
	if phase.ApprovedCount != 1 {
		t.Errorf("批准计数应为 1，实际=%d", phase.ApprovedCount)
	}
	if phase.SubmissionCount != 1 {
		t.Errorf("总提交计数应为 1，实际=%d", phase.SubmissionCount)
	}
}

func TestSubmissionService_UpdateSubmissionStatus_NotFound(t *testing.T) {
	svc, repos := setupTestSubmissionService()
	seedPhase(repos, "phase-1", "sem-1", true)

	req := &dto.UpdateSubmissionStatusRequest{
		PhaseID:     "phase-1",
		ProfessorID: "prof-unknown",
		Status:      model.PlanStatusApproved,
	}
	if _, err := svc.UpdateSubmissionStatus(context.Background(), req); !errors.Is(err, ErrSubmissionNotFound) {
		t.Errorf("期望 ErrSubmissionNotFound，实际: %v", err)
	}
}

// ── GetPhaseSubmissions 测试 ──

func TestSubmissionService_GetPhaseSubmissions(t *testing.T) {
	svc, repos := setupTestSubmissionService()
	seedPhase(repos, "phase-1", "sem-1", true)
	seedPhase(repos, "phase-2", "sem-1", false)
	repos.Submission.subs["sub-1"] = &model.PhaseSubmission{
		SubmissionID: "sub-1", PhaseID: "phase-1", ProfessorID: "prof-1",
		PlanID: "plan-1", Status: model.PlanStatusSubmitted, SubmittedAt: time.Now(),
	}
	repos.Submission.subs["sub-2"] = &model.PhaseSubmission{
		SubmissionID: "sub-2", PhaseID: "phase-2", ProfessorID: "prof-1",
		PlanID: "plan-2", Status: model.PlanStatusApproved, SubmittedAt: time.Now(),
	}

	result, err := svc.GetPhaseSubmissions(context.Background(), "phase-1")
	if err != nil {
		t.Fatalf("GetPhaseSubmissions 应成功: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("期望 1 条记录，实际=%d", len(result))
	}
	if result[0].PhaseID != "phase-1" {
		t.Errorf("返回了错误阶段的提交: %s", result[0].PhaseID)
	}
}

func TestSubmissionService_GetPhaseSubmissions_PhaseNotFound(t *testing.T) {
	svc, _ := setupTestSubmissionService()

	if _, err := svc.GetPhaseSubmissions(context.Background(), "phase-missing"); !errors.Is(err, ErrPhaseNotFound) {
		t.Errorf("期望 ErrPhaseNotFound，实际: %v", err)
	}
}

