package schoolclass

import "time"

type SchoolClass struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	SchoolID      string    `json:"school_id" gorm:"column:school_id;index;not null"`
	Name          string    `json:"name" gorm:"not null"`
	Level         string    `json:"level"`
	HeadTeacherID string    `json:"head_teacher_id" gorm:"column:head_teacher_id"`
	Capacity      int       `json:"capacity"`
	CreatedAt     time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (SchoolClass) TableName() string {
	return "school_classes"
}
