package model

// 用户角色
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
	RoleAdmin   = "admin"
)

// User 对应 users 表。登录名是学号/工号 reg_no。
type User struct {
	Base
	RegNo        string `gorm:"type:varchar(50);uniqueIndex;not null" json:"reg_no"`
	Name         string `gorm:"type:varchar(100);not null" json:"name"`
	Email        string `gorm:"type:varchar(150)" json:"email"`
	PasswordHash string `gorm:"type:varchar(100);not null" json:"password_hash"`
	Role         string `gorm:"type:varchar(20);not null" json:"role"`
	Department   string `gorm:"type:varchar(100)" json:"department"`
	IsActive     bool   `gorm:"not null" json:"is_active"`
}

func (User) TableName() string {
	return TableUsers
}

// IsPrivileged 判断用户是否可以维护校园数据。
func (u *User) IsPrivileged() bool {
	return u.Role == RoleAdmin || u.Role == RoleFaculty
}

// ValidRole 判断角色名是否合法。
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}
