package staff

import "time"

type Teacher struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	SchoolID  string    `json:"school_id" gorm:"column:school_id;index;not null"`
	FullName  string    `json:"full_name" gorm:"column:full_name;not null"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Subject   string    `json:"subject"`
	HiredAt   time.Time `json:"hired_at" gorm:"column:hired_at"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Teacher) TableName() string {
	return "teachers"
}
