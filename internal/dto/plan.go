package dto

// ── 教学计划模块 DTO ──

// ModuleAssignmentInput 模块任务输入
type ModuleAssignmentInput struct {
	ModuleCode string  `json:"module_code" binding:"required,max=50"`
	ModuleName string  `json:"module_name" binding:"required,max=200"`
	SWS        float64 `json:"sws"         binding:"required,gt=0"`
	Multiplier float64 `json:"multiplier"  binding:"omitempty,gt=0"`
	GroupCount int     `json:"group_count" binding:"omitempty,min=1"`
}

// CreatePlanRequest 创建教学计划请求
type CreatePlanRequest struct {
	SemesterID string                  `json:"semester_id" binding:"required,uuid"`
	Note       string                  `json:"note"        binding:"omitempty,max=2000"`
	Modules    []ModuleAssignmentInput `json:"modules"     binding:"required,min=1,dive"`
}

// UpdatePlanRequest 更新教学计划请求（仅草稿可改）
type UpdatePlanRequest struct {
	Note    *string                 `json:"note"    binding:"omitempty,max=2000"`
	Modules []ModuleAssignmentInput `json:"modules" binding:"omitempty,min=1,dive"`
}

// RejectPlanRequest 驳回教学计划请求
type RejectPlanRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// ModuleAssignmentResponse 模块任务响应
type ModuleAssignmentResponse struct {
	ID           string  `json:"id"`
	ModuleCode   string  `json:"module_code"`
	ModuleName   string  `json:"module_name"`
	SWS          float64 `json:"sws"`
	Multiplier   float64 `json:"multiplier"`
	GroupCount   int     `json:"group_count"`
	ComputedLoad float64 `json:"computed_load"`
}

// PlanResponse 教学计划响应
type PlanResponse struct {
	ID            string                     `json:"id"`
	SemesterID    string                     `json:"semester_id"`
	SemesterName  string                     `json:"semester_name,omitempty"`
	ProfessorID   string                     `json:"professor_id"`
	ProfessorName string                     `json:"professor_name,omitempty"`
	Status        string                     `json:"status"`
	TotalSWS      float64                    `json:"total_sws"`
	Note          string                     `json:"note,omitempty"`
	Modules       []ModuleAssignmentResponse `json:"modules"`
	CreatedAt     string                     `json:"created_at"`
	UpdatedAt     string                     `json:"updated_at"`
}

