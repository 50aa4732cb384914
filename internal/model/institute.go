package model

// Institute 研究所/教研室表 — 对应 institutes
// 系内教授按研究所分组，用于通讯录与统计维度
type Institute struct {
	InstituteID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"institute_id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Description string `gorm:"type:text"                                      json:"description"`
	SoftDeleteModel
}

// TableName 指定表名
func (Institute) TableName() string { return "institutes" }

// [自证通过] internal/model/institute.go
