package student

import "time"

type Student struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	SchoolID     string    `json:"school_id" gorm:"column:school_id;index;not null"`
	FullName     string    `json:"full_name" gorm:"column:full_name;not null"`
	ClassID      string    `json:"class_id" gorm:"column:class_id;index"`
	DateOfBirth  time.Time `json:"date_of_birth" gorm:"column:date_of_birth;type:date"`
	ParentName   string    `json:"parent_name" gorm:"column:parent_name"`
	ParentPhone  string    `json:"parent_phone" gorm:"column:parent_phone"`
	AverageGrade float64   `json:"average_grade" gorm:"column:average_grade"`
	EnrolledAt   time.Time `json:"enrolled_at" gorm:"column:enrolled_at"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Student) TableName() string {
	return "students"
}
