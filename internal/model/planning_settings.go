package model

// PlanningSettings 规划设置表 — 对应 planning_settings（单行强类型）
type PlanningSettings struct {
	Singleton            bool   `gorm:"primaryKey;default:true"                 json:"-"`
	ArchiveRetentionDays int    `gorm:"not null;default:365"                    json:"archive_retention_days"`
	ReminderTemplate     string `gorm:"type:text;not null;default:'{professor}您好，规划阶段 {phase} 即将截止，请尽快提交教学计划。'" json:"reminder_template"`
	TopModulesLimit      int    `gorm:"not null;default:5"                      json:"top_modules_limit"`
	BaseModel
}

// TableName 指定表名
func (PlanningSettings) TableName() string { return "planning_settings" }

// [自证通过] internal/model/planning_settings.go
