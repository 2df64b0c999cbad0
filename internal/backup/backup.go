// Package backup serializes the whole store into portable exports and
// restores it with all-or-nothing semantics.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/scolaris/school-management/internal"
	auditDatamodel "github.com/scolaris/school-management/internal/core/datamodel/audit"
)

type Format string

const (
	// FormatStructured is the self-describing JSON document, the only
	// format a restore accepts.
	FormatStructured Format = "structured"
	// FormatFlat is a generated sequence of insert statements for external
	// inspection or migration. Restoring from it is refused.
	FormatFlat Format = "flat"
)

type AuditRecorder interface {
	RecordWithSeverity(ctx context.Context, schoolID, action, details, severity string)
}

type Engine struct {
	db       *gorm.DB
	recorder AuditRecorder
	logger   *slog.Logger
	now      func() time.Time
}

func NewEngine(db *gorm.DB, recorder AuditRecorder, logger *slog.Logger) *Engine {
	return &Engine{
		db:       db,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateBackup serializes every managed collection in the requested format.
func (e *Engine) CreateBackup(ctx context.Context, format Format) (string, error) {
	doc, err := collect(e.db.WithContext(ctx), e.now())
	if err != nil {
		e.logger.Error("failed to collect store snapshot", "error", err)
		return "", internal.NewInternalError("failed to read store", err)
	}

	var out string
	switch format {
	case FormatFlat:
		out = renderFlat(doc)
	default:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", internal.NewInternalError("failed to serialize backup", err)
		}
		out = string(data)
	}

	e.recorder.RecordWithSeverity(ctx, "", "backup.create",
		fmt.Sprintf("exported %s backup (%d schools, %d users)",
			format, len(doc.Schools), len(doc.SystemUsers)),
		auditDatamodel.SeverityInfo)
	return out, nil
}

// RestoreBackup parses a structured export and atomically replaces every
// collection with its content. Any parse, version or write failure leaves
// the store exactly as it was. After a successful restore callers must
// reinitialize anything holding references to prior records.
func (e *Engine) RestoreBackup(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if looksLikeFlat(trimmed) {
		return internal.ErrUnsupportedRestoreFormat
	}

	var doc Document
	decoder := json.NewDecoder(strings.NewReader(trimmed))
	if err := decoder.Decode(&doc); err != nil {
		e.logger.Warn("restore rejected: unparseable document", "error", err)
		return internal.ErrRestoreFailed.WithCause(err)
	}
	if doc.Version == 0 {
		e.logger.Warn("restore rejected: missing version marker")
		return internal.ErrRestoreFailed
	}
	if doc.Version != DocumentVersion {
		e.logger.Warn("restore rejected: version mismatch",
			"document_version", doc.Version, "supported_version", DocumentVersion)
		return internal.ErrBackupVersionMismatch
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return apply(tx, &doc)
	})
	if err != nil {
		e.logger.Error("restore transaction failed, store unchanged", "error", err)
		return internal.NewInternalError("failed to restore backup", err)
	}

	e.recorder.RecordWithSeverity(ctx, "", "backup.restore",
		fmt.Sprintf("restored backup exported at %s (%d schools)",
			doc.ExportedAt.Format("2006-01-02"), len(doc.Schools)),
		auditDatamodel.SeverityCritical)
	return nil
}

// FactoryReset clears every collection and reseeds the demo dataset. The
// engine performs the reset unconditionally; confirmation is the caller's
// concern.
func (e *Engine) FactoryReset(ctx context.Context) error {
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearAll(tx); err != nil {
			return err
		}
		return seedDemoData(tx, e.now())
	})
	if err != nil {
		e.logger.Error("factory reset failed", "error", err)
		return internal.NewInternalError("failed to reset store", err)
	}

	e.recorder.RecordWithSeverity(ctx, "", "backup.factory_reset",
		"store cleared and reseeded with demo data", auditDatamodel.SeverityCritical)
	return nil
}

// FileName builds the export filename: ISO date plus the format's
// lowercase extension.
func FileName(format Format, now time.Time) string {
	ext := "json"
	if format == FormatFlat {
		ext = "sql"
	}
	return fmt.Sprintf("school-backup-%s.%s", now.Format("2006-01-02"), ext)
}

func looksLikeFlat(text string) bool {
	upper := strings.ToUpper(text)
	return strings.HasPrefix(upper, "INSERT") || strings.HasPrefix(text, "--")
}
