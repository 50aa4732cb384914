package dto

// ── 归档模块 DTO ──

// ArchivePlanRequest 手动归档请求
type ArchivePlanRequest struct {
	PlanID  string `json:"plan_id"  binding:"required,uuid"`
	PhaseID string `json:"phase_id" binding:"required,uuid"`
}

// ArchiveListRequest 归档查询请求
type ArchiveListRequest struct {
	PaginationRequest
	PhaseID              string `form:"phase_id"     binding:"omitempty,uuid"`
	ProfessorID          string `form:"professor_id" binding:"omitempty,uuid"`
	SemesterID           string `form:"semester_id"  binding:"omitempty,uuid"`
	Status               string `form:"status"       binding:"omitempty,oneof=draft submitted approved rejected"`
	From                 string `form:"from"` // "2026-01-01"
	To                   string `form:"to"`
	RestrictToOwnRecords bool   `form:"restrict_to_own_records"`
}

// CleanupArchivesRequest 归档清理请求
type CleanupArchivesRequest struct {
	OlderThanDays int `json:"older_than_days" binding:"omitempty,min=1"`
}

// ArchiveListItem 归档列表项
type ArchiveListItem struct {
	ID                string `json:"id"`
	OriginalPlanID    string `json:"original_plan_id"`
	PhaseID           string `json:"phase_id"`
	PhaseName         string `json:"phase_name"`
	ProfessorID       string `json:"professor_id"`
	ProfessorName     string `json:"professor_name"`
	SemesterID        string `json:"semester_id"`
	SemesterName      string `json:"semester_name"`
	StatusAtArchiving string `json:"status_at_archiving"`
	ArchiveReason     string `json:"archive_reason"`
	ArchivedBy        string `json:"archived_by"`
	ArchivedAt        string `json:"archived_at"`
}

// ArchiveDetailResponse 归档详情（含解析后的快照）
type ArchiveDetailResponse struct {
	ArchiveListItem
	Snapshot SnapshotResponse `json:"snapshot"`
}

// SnapshotResponse 快照文档响应
type SnapshotResponse struct {
	Version  int                        `json:"version"`
	Status   string                     `json:"status"`
	TotalSWS float64                    `json:"total_sws"`
	Note     string                     `json:"note,omitempty"`
	Modules  []ModuleAssignmentResponse `json:"modules"`
}

// RestoreResponse 恢复归档结果
type RestoreResponse struct {
	NewPlanID string `json:"new_plan_id"`
}

// CleanupResponse 清理结果
type CleanupResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}

