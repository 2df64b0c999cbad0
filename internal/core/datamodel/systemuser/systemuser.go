package systemuser

import "time"

// SystemUser is a console account. SchoolID is empty only for super-admin
// accounts that operate across schools; for every other role it scopes the
// account to one school.
type SystemUser struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	SchoolID     string     `json:"school_id" gorm:"column:school_id;index"`
	Name         string     `json:"name" gorm:"not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	Role         string     `json:"role" gorm:"not null"`
	IsActive     bool       `json:"is_active" gorm:"column:is_active;default:true"`
	PasswordHash string     `json:"-" gorm:"column:password_hash"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" gorm:"column:last_login_at"`
	CreatedAt    time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (SystemUser) TableName() string {
	return "system_users"
}
