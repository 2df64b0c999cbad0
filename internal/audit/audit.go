// Package audit records every mutating console action into an append-only
// log. Recording is best-effort: a failed append is logged and swallowed,
// it never blocks or fails the mutation it accompanies.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/scolaris/school-management/internal"
	auditDatamodel "github.com/scolaris/school-management/internal/core/datamodel/audit"
)

type RepositoryAPI interface {
	Append(entry *auditDatamodel.LogEntry) error
	List(schoolID string, limit int) ([]*auditDatamodel.LogEntry, error)
}

type Recorder struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewRecorder(repo RepositoryAPI, logger *slog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record appends an info-level entry attributed to the context actor.
func (r *Recorder) Record(ctx context.Context, schoolID, action, details string) {
	r.RecordWithSeverity(ctx, schoolID, action, details, auditDatamodel.SeverityInfo)
}

func (r *Recorder) RecordWithSeverity(ctx context.Context, schoolID, action, details, severity string) {
	entry := &auditDatamodel.LogEntry{
		ID:        uuid.NewString(),
		SchoolID:  schoolID,
		Action:    action,
		Details:   details,
		Severity:  severity,
		CreatedAt: time.Now(),
	}
	if actor, ok := internal.ActorFromContext(ctx); ok {
		entry.ActorID = actor.ID
		entry.ActorName = actor.Name
	}

	if err := r.repo.Append(entry); err != nil {
		r.logger.Warn("audit append failed",
			"action", action,
			"school_id", schoolID,
			"error", err)
	}
}

// List returns recent entries, newest first. A super-admin passes an empty
// schoolID to see every school.
func (r *Recorder) List(ctx context.Context, schoolID string, limit int) ([]*auditDatamodel.LogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	entries, err := r.repo.List(schoolID, limit)
	if err != nil {
		r.logger.Error("failed to list audit logs", "error", err)
		return nil, err
	}
	return entries, nil
}
