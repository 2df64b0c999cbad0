package audit

import "time"

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// LogEntry is append-only: nothing in the normal flow mutates or deletes
// one. Only a factory reset clears the table.
type LogEntry struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	SchoolID  string    `json:"school_id" gorm:"column:school_id;index"`
	Action    string    `json:"action" gorm:"not null"`
	ActorID   string    `json:"actor_id" gorm:"column:actor_id"`
	ActorName string    `json:"actor_name" gorm:"column:actor_name"`
	Details   string    `json:"details"`
	Severity  string    `json:"severity" gorm:"default:info"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (LogEntry) TableName() string {
	return "audit_logs"
}
