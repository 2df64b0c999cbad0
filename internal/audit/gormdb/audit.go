package gormdb

import (
	"gorm.io/gorm"

	"github.com/scolaris/school-management/internal/audit"
	auditDatamodel "github.com/scolaris/school-management/internal/core/datamodel/audit"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.RepositoryAPI {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(entry *auditDatamodel.LogEntry) error {
	return r.db.Create(entry).Error
}

func (r *AuditRepository) List(schoolID string, limit int) ([]*auditDatamodel.LogEntry, error) {
	var entries []*auditDatamodel.LogEntry
	q := r.db.Order("created_at DESC").Limit(limit)
	if schoolID != "" {
		q = q.Where("school_id = ?", schoolID)
	}
	err := q.Find(&entries).Error
	return entries, err
}
