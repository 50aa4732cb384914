package dto

// ── 规划阶段模块 DTO ──

// StartPhaseRequest 启动规划阶段请求
type StartPhaseRequest struct {
	SemesterID string `json:"semester_id" binding:"required,uuid"`
	Name       string `json:"name"        binding:"required,min=2,max=200"`
	StartDate  string `json:"start_date"  binding:"required"` // "2026-09-01"
	EndDate    string `json:"end_date"`                       // 可选截止日期
}

// ClosePhaseRequest 关闭规划阶段请求
// ArchiveDrafts 为必填：删除草稿不可逆，不提供隐含默认值
type ClosePhaseRequest struct {
	ArchiveDrafts *bool  `json:"archive_drafts" binding:"required"`
	Reason        string `json:"reason"         binding:"omitempty,max=200"`
}

// UpdatePhaseRequest 修改阶段元数据请求（仅名称/截止日期，已关闭阶段同样允许）
type UpdatePhaseRequest struct {
	Name    *string `json:"name"     binding:"omitempty,min=2,max=200"`
	EndDate *string `json:"end_date"`
}

// PhaseResponse 规划阶段响应
type PhaseResponse struct {
	ID              string `json:"id"`
	SemesterID      string `json:"semester_id"`
	SemesterName    string `json:"semester_name,omitempty"`
	Name            string `json:"name"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date,omitempty"`
	IsActive        bool   `json:"is_active"`
	ClosedAt        string `json:"closed_at,omitempty"`
	ClosedBy        string `json:"closed_by,omitempty"`
	CloseReason     string `json:"close_reason,omitempty"`
	SubmissionCount int    `json:"submission_count"`
	ApprovedCount   int    `json:"approved_count"`
	RejectedCount   int    `json:"rejected_count"`
	CreatedAt       string `json:"created_at"`
}

// ClosePhaseResponse 关闭阶段结果
type ClosePhaseResponse struct {
	Phase               PhaseResponse `json:"phase"`
	ArchivedCount       int           `json:"archived_count"`
	DiscardedDraftCount int           `json:"discarded_draft_count"`
}

// SubmissionStatusResponse 提交资格检查结果
type SubmissionStatusResponse struct {
	CanSubmit          bool                `json:"can_submit"`
	Reason             string              `json:"reason,omitempty"`
	ActivePhase        *PhaseResponse      `json:"active_phase,omitempty"`
	ExistingSubmission *SubmissionResponse `json:"existing_submission,omitempty"`
	RemainingMinutes   *int                `json:"remaining_minutes,omitempty"`
}

