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

func setupTestPlanService() (PlanService, *testRepos) {
	repos := newTestRepos()
	agg := repos.aggregate()
	svc := NewPlanService(agg, NewSubmissionService(agg, zap.NewNop()), zap.NewNop())
	return svc, repos
}

// ── Create 测试 ──

func TestPlanService_Create_ComputesLoad(t *testing.T) {
	svc, repos := setupTestPlanService()
	seedSemester(repos, "sem-1")

	req := &dto.CreatePlanRequest{
		SemesterID: "sem-1",
		Note:       "秋季教学安排",
		Modules: []dto.ModuleAssignmentInput{
			// 4 × 1.5 × 2 = 12
			{ModuleCode: "INF-101", ModuleName: "算法导论", SWS: 4, Multiplier: 1.5, GroupCount: 2},
			// 系数与班组数缺省补 1：6 × 1 × 1 = 6
			{ModuleCode: "INF-102", ModuleName: "程序设计", SWS: 6},
		},
	}

	resp, err := svc.Create(context.Background(), req, "prof-1")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.Status != model.PlanStatusDraft {
		t.Errorf("新计划应为 draft，实际=%s", resp.Status)
	}
	if resp.TotalSWS != 18 {
		t.Errorf("期望 TotalSWS=18，实际=%v", resp.TotalSWS)
	}
	if resp.Modules[0].ComputedLoad != 12 {
		t.Errorf("期望首模块负荷=12，实际=%v", resp.Modules[0].ComputedLoad)
	}
	if resp.Modules[1].Multiplier != 1 || resp.Modules[1].GroupCount != 1 {
		t.Errorf("缺省系数/班组数应补 1，实际=%v/%d", resp.Modules[1].Multiplier, resp.Modules[1].GroupCount)
	}
}

func TestPlanService_Create_SemesterNotFound(t *testing.T) {
	svc, _ := setupTestPlanService()

	req := &dto.CreatePlanRequest{
		SemesterID: "sem-missing",
		Modules:    []dto.ModuleAssignmentInput{{ModuleCode: "M1", ModuleName: "课程", SWS: 2}},
	}
	if _, err := svc.Create(context.Background(), req, "prof-1"); !errors.Is(err, ErrSemesterNotFound) {
		t.Errorf("期望 ErrSemesterNotFound，实际: %v", err)
	}
}

// ── GetByID 测试 ──

func TestPlanService_GetByID_CrossProfessorDenied(t *testing.T) {
	svc, repos := setupTestPlanService()
	seedPlan(repos, "plan-1", "sem-1", "prof-1", model.PlanStatusDraft, 4)

	// 教授越权按不存在处理；系主任可见
	if _, err := svc.GetByID(context.Background(), "plan-1", "prof-2", model.RoleProfessor); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("期望 ErrPlanNotFound，实际: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), "plan-1", "dean-001", model.RoleDean); err != nil {
		t.Errorf("系主任查看应成功: %v", err)
	}
}

// ── Update / Delete 测试 ──

func TestPlanService_Update_DraftOnly(t *testing.T) {
	svc, repos := setupTestPlanService()
	seedPlan(repos, "plan-1", "sem-1", "prof-1", model.PlanStatusSubmitted, 8)

	note := "修改备注"
	if _, err := svc.Update(context.Background(), "plan-1", &dto.UpdatePlanRequest{Note: &note}, "prof-1"); !errors.Is(err, ErrPlanNotEditable) {
		t.Errorf("非草稿修改期望 ErrPlanNotEditable，实际: %v", err)
	}
}

func TestPlanService_Update_ReplacesModulesAndTotal(t *testing.T) {
	svc, repos := setupTestPlanService()
	seedPlan(repos, "plan-1", "sem-1", "prof-1", model.PlanStatusDraft, 4)

	req := &dto.UpdatePlanRequest{
		Modules: []dto.ModuleAssignmentInput{
			{ModuleCode: "INF-201", ModuleName: "数据库系统", SWS: 5, Multiplier: 2, GroupCount: 1},
		},
	}
	resp, err := svc.Update(context.Background(), "plan-1", req, "prof-1")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.TotalSWS != 10 {
		t.Errorf("替换模块后 TotalSWS 应重算为 10，实际=%v", resp.TotalSWS)
	}
	if len(resp.Modules) != 1 || resp.Modules[0].ModuleCode != "INF-201" {
		t.Error("模块列表应被整体替换")
	}
}

func TestPlanService_Update_NotOwned(t *testing.T) {
	svc, repos := setupTestPlanService()
	seedPlan(repos, "plan-1", "sem-1", "prof-1", model.PlanStatusDraft, 4)

	note := "他人修改"
	if _, err := svc.Update(context.Background(), "plan-1", &dto.UpdatePlanRequest{Note: &note}, "prof-2"); !errors.Is(err, ErrPlanNotOwned) {
		t.Errorf("期望 ErrPlanNotOwned，实际: %v", err)
	}
}

func TestPlanService_Delete_DraftOnly(t *testing.T) {
	svc, repos := setupTestPlanService()
	seedPlan(repos, "plan-1", "sem-1", "prof-1", model.PlanStatusDraft, 4)
	seedPlan(repos, "plan-2", "sem-1", "prof-1", model.PlanStatusApproved, 6)

	if err := svc.Delete(context.Background(), "plan-1", "prof-1"); err != nil {
		t.Fatalf("删除草稿应成功: %v", err)
	}
	if _, ok := repos.Plan.plans["plan-1"]; ok {
		t.Error("草稿应被删除")
	}
	if err := svc.Delete(context.Background(), "plan-2", "prof-1"); !errors.Is(err, ErrPlanNotEditable) {
		t.Errorf("删除非草稿期望 ErrPlanNotEditable，实际: %v", err)
	}
}

// ── Approve / Reject 测试 ──

func TestPlanService_Approve_MirrorsSubmission(t *testing.T) {
	svc, repos := setupTestPlanService()
	phase := seedPhase(repos, "phase-1", "sem-1", true)
	plan := seedPlan(repos, "plan-1", "sem-1", "prof-1", model.PlanStatusSubmitted, 8)
	repos.Submission.subs["sub-1"] = &model.PhaseSubmission{
		SubmissionID: "sub-1",
		PhaseID:      "phase-1",
		ProfessorID:  "prof-1",
		PlanID:       "plan-1",
		Status:       model.PlanStatusSubmitted,
		SubmittedAt:  time.Now().Add(-2 * time.Hour),
	}

	resp, err := svc.Approve(context.Background(), "plan-1", "dean-001")
	if err != nil {
		t.Fatalf("Approve 应成功: %v", err)
	}
	if resp.Status != model.PlanStatusApproved {
		t.Errorf("期望状态=approved，实际=%s", resp.Status)
	}
	if plan.Status != model.PlanStatusApproved {
		t.Errorf("计划状态应为 approved，实际=%s", plan.Status)
	}
	// 提交记录状态镜像 + 计数器重算
	if repos.Submission.subs["sub-1"].Status != model.PlanStatusApproved {
		t.Errorf("提交记录应镜像为 approved，实际=%s", repos.Submission.subs["sub-1"].Status)
	}
	if phase.ApprovedCount != 1 {
		t.Errorf("批准计数应为 1，实际=%d", phase.ApprovedCount)
	}
	// 回写钩子会顺带刷新统计视图
	if repos.Stats.refreshCalls != 1 {
		t.Errorf("期望刷新视图 1 次，实际=%d", repos.Stats.refreshCalls)
	}
}

func TestPlanService_Approve_MissingSubmissionTolerated(t *testing.T) {
	svc, repos := setupTestPlanService()
	plan := seedPlan(repos, "plan-1", "sem-1", "prof-1", model.PlanStatusSubmitted, 8)

	// 没有对应提交记录时仅告警，审定仍然生效
	resp, err := svc.Approve(context.Background(), "plan-1", "dean-001")
	if err != nil {
		t.Fatalf("提交记录缺失不应阻断审定: %v", err)
	}
	if resp.Status != model.PlanStatusApproved || plan.Status != model.PlanStatusApproved {
		t.Error("计划仍应被批准")
	}
}

func TestPlanService_Reject_RequiresSubmittedStatus(t *testing.T) {
	svc, repos := setupTestPlanService()
	seedPlan(repos, "plan-1", "sem-1", "prof-1", model.PlanStatusDraft, 8)

	if _, err := svc.Reject(context.Background(), "plan-1", &dto.RejectPlanRequest{Reason: "不完整"}, "dean-001"); !errors.Is(err, ErrPlanNotSubmitted) {
		t.Errorf("期望 ErrPlanNotSubmitted，实际: %v", err)
	}
}

func TestPlanService_Reject_Success(t *testing.T) {
	svc, repos := setupTestPlanService()
	seedPhase(repos, "phase-1", "sem-1", true)
	seedPlan(repos, "plan-1", "sem-1", "prof-1", model.PlanStatusSubmitted, 8)
	repos.Submission.subs["sub-1"] = &model.PhaseSubmission{
		SubmissionID: "sub-1",
		PhaseID:      "phase-1",
		ProfessorID:  "prof-1",
		PlanID:       "plan-1",
		Status:       model.PlanStatusSubmitted,
		SubmittedAt:  time.Now(),
	}

	resp, err := svc.Reject(context.Background(), "plan-1", &dto.RejectPlanRequest{Reason: "学时不足"}, "dean-001")
	if err != nil {
		t.Fatalf("Reject 应成功: %v", err)
	}
	if resp.Status != model.PlanStatusRejected {
		t.Errorf("期望状态=rejected，实际=%s", resp.Status)
	}
	if repos.Submission.subs["sub-1"].Status != model.PlanStatusRejected {
		t.Errorf("提交记录应镜像为 rejected，实际=%s", repos.Submission.subs["sub-1"].Status)
	}
}

