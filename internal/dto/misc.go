package dto

// ── 学期模块 DTO ──

// CreateSemesterRequest 创建学期请求
type CreateSemesterRequest struct {
	Name      string `json:"name"       binding:"required,min=2,max=100"`
	StartDate string `json:"start_date" binding:"required"` // "2026-09-01"
	EndDate   string `json:"end_date"   binding:"required"` // "2027-01-15"
}

// UpdateSemesterRequest 更新学期请求
type UpdateSemesterRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=2,max=100"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// SemesterResponse 学期信息响应
type SemesterResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ── 研究所模块 DTO ──

// CreateInstituteRequest 创建研究所请求
type CreateInstituteRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// UpdateInstituteRequest 更新研究所请求
type UpdateInstituteRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// InstituteDetailResponse 研究所详情响应
type InstituteDetailResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// ── 催交提醒 DTO ──

// ReminderResultResponse 催交批次结果
type ReminderResultResponse struct {
	RemindedCount int `json:"reminded_count"`
	FailedCount   int `json:"failed_count"`
	SkippedCount  int `json:"skipped_count"`
}

// ReminderLogItem 催交记录项
type ReminderLogItem struct {
	ID            string `json:"id"`
	ProfessorID   string `json:"professor_id"`
	ProfessorName string `json:"professor_name,omitempty"`
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
	SentAt        string `json:"sent_at"`
}

// ── 规划设置 DTO ──

// UpdateSettingsRequest 更新规划设置请求
type UpdateSettingsRequest struct {
	ArchiveRetentionDays *int    `json:"archive_retention_days" binding:"omitempty,min=1"`
	ReminderTemplate     *string `json:"reminder_template"      binding:"omitempty,max=2000"`
	TopModulesLimit      *int    `json:"top_modules_limit"      binding:"omitempty,min=1,max=50"`
}

// SettingsResponse 规划设置响应
type SettingsResponse struct {
	ArchiveRetentionDays int    `json:"archive_retention_days"`
	ReminderTemplate     string `json:"reminder_template"`
	TopModulesLimit      int    `json:"top_modules_limit"`
	UpdatedAt            string `json:"updated_at"`
}

// ── 用户模块请求 ──

// UpdateUserRequest 更新用户资料请求
type UpdateUserRequest struct {
	Name        *string `json:"name"         binding:"omitempty,min=2,max=100"`
	Email       *string `json:"email"        binding:"omitempty,email"`
	InstituteID *string `json:"institute_id" binding:"omitempty,uuid"`
}

// AssignRoleRequest 分配角色请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=dean professor"`
}

