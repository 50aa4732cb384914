package dto

// ── 阶段提交模块 DTO ──

// RecordSubmissionRequest 提交教学计划请求
type RecordSubmissionRequest struct {
	PlanID string `json:"plan_id" binding:"required,uuid"`
}

// UpdateSubmissionStatusRequest 提交状态变更请求（审批流回写钩子）
type UpdateSubmissionStatusRequest struct {
	PhaseID     string `json:"phase_id"     binding:"required,uuid"`
	ProfessorID string `json:"professor_id" binding:"required,uuid"`
	Status      string `json:"status"       binding:"required,oneof=submitted approved rejected"`
}

// SubmissionResponse 提交记录响应
type SubmissionResponse struct {
	ID            string           `json:"id"`
	PhaseID       string           `json:"phase_id"`
	ProfessorID   string           `json:"professor_id"`
	ProfessorName string           `json:"professor_name,omitempty"`
	PlanID        string           `json:"plan_id"`
	Status        string           `json:"status"`
	SubmittedAt   string           `json:"submitted_at"`
	Plan          *PlanSummaryItem `json:"plan,omitempty"`
}

// PlanSummaryItem 提交列表中的计划摘要
type PlanSummaryItem struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	TotalSWS    float64 `json:"total_sws"`
	ModuleCount int     `json:"module_count"`
}

