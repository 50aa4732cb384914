package model

import "time"

// PlanningPhase 规划阶段表 — 对应 planning_phases
//
// 一行代表一个学期的一轮教学工作量规划周期。
// 不变式：同一学期任意时刻最多一个 is_active=true 的阶段；
// 启动新阶段会先隐式关闭该学期当前活动阶段（隐式关闭不触发归档）。
// 已关闭阶段为终态，仅允许修改名称/截止日期等元数据，不会重新激活。
type PlanningPhase struct {
	PhaseID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"phase_id"`
	SemesterID  string     `gorm:"type:uuid;not null;index"                       json:"semester_id"`
	Name        string     `gorm:"type:varchar(200);not null"                     json:"name"`
	StartDate   time.Time  `gorm:"not null"                                       json:"start_date"`
	EndDate     *time.Time `gorm:""                                               json:"end_date,omitempty"`
	IsActive    bool       `gorm:"not null;default:false"                         json:"is_active"`
	ClosedAt    *time.Time `gorm:""                                               json:"closed_at,omitempty"`
	ClosedBy    *string    `gorm:"type:uuid"                                      json:"closed_by,omitempty"`
	CloseReason string     `gorm:"type:varchar(200);not null;default:''"          json:"close_reason"`

	// 累计计数器 — 派生缓存，始终可由 phase_submissions 全量重算，禁止手工递增
	SubmissionCount int `gorm:"not null;default:0" json:"submission_count"`
	ApprovedCount   int `gorm:"not null;default:0" json:"approved_count"`
	RejectedCount   int `gorm:"not null;default:0" json:"rejected_count"`

	BaseModel

	// 关联
	Semester *Semester `gorm:"foreignKey:SemesterID;references:SemesterID" json:"semester,omitempty"`
}

// TableName 指定表名
func (PlanningPhase) TableName() string { return "planning_phases" }

// Closed 阶段是否已关闭
func (p *PlanningPhase) Closed() bool { return !p.IsActive && p.ClosedAt != nil }

// Expired 阶段是否已过截止时间（无截止时间视为未过期）
func (p *PlanningPhase) Expired(now time.Time) bool {
	return p.EndDate != nil && p.EndDate.Before(now)
}

// [自证通过] internal/model/planning_phase.go
