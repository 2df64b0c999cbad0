package library

import "time"

type Book struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	SchoolID  string    `json:"school_id" gorm:"column:school_id;index;not null"`
	Title     string    `json:"title" gorm:"not null"`
	Author    string    `json:"author"`
	ISBN      string    `json:"isbn" gorm:"column:isbn"`
	Copies    int       `json:"copies" gorm:"default:1"`
	Available int       `json:"available" gorm:"default:1"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Book) TableName() string {
	return "library_books"
}
