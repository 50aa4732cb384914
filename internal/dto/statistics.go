package dto

// ── 统计模块 DTO ──

// TopModuleItem 高频模块项
type TopModuleItem struct {
	ModuleCode string `json:"module_code"`
	ModuleName string `json:"module_name"`
	PlanCount  int    `json:"plan_count"`
}

// PhaseStatisticsResponse 阶段统计响应
// 所有比率字段在分母为 0 时取 0，不产生 NaN / 错误
type PhaseStatisticsResponse struct {
	PhaseID            string          `json:"phase_id"`
	PhaseName          string          `json:"phase_name"`
	TotalProfessors    int64           `json:"total_professors"`
	SubmissionCount    int             `json:"submission_count"`
	ApprovedCount      int             `json:"approved_count"`
	RejectedCount      int             `json:"rejected_count"`
	SubmissionRate     float64         `json:"submission_rate"`      // (提交数/教授总数)×100
	ApprovalRate       float64         `json:"approval_rate"`        // (批准数/教授总数)×100
	AvgProcessingHours float64         `json:"avg_processing_hours"` // 提交→审定平均时长
	TotalSWS           float64         `json:"total_sws"`
	AvgSWSPerPlan      float64         `json:"avg_sws_per_plan"`
	TopModules         []TopModuleItem `json:"top_modules"`
}

// PhaseHistoryItem 阶段历史项
type PhaseHistoryItem struct {
	Phase         PhaseResponse       `json:"phase"`
	DurationDays  int                 `json:"duration_days"`
	OwnSubmission *SubmissionResponse `json:"own_submission,omitempty"`
}

