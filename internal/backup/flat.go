package backup

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// renderFlat produces the statement export: one INSERT per record, headed
// by a comment block. The output is for external inspection and migration
// tooling; RestoreBackup refuses it by design.
func renderFlat(doc *Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "-- school-management flat export\n")
	fmt.Fprintf(&b, "-- exported_at: %s\n", doc.ExportedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "-- version: %d\n", doc.Version)
	fmt.Fprintf(&b, "-- this format cannot be restored; keep a structured export for that\n\n")

	for _, s := range doc.Schools {
		writeInsert(&b, "schools",
			[]string{"id", "name", "address", "school_type", "modules", "config_role_permissions", "config_subjects", "config_pin"},
			sqlString(s.ID), sqlString(s.Name), sqlString(s.Address), sqlString(s.Type),
			sqlJSON(s.Modules), sqlJSON(s.Config.RolePermissions), sqlJSON(s.Config.Subjects), sqlString(s.Config.Pin))
	}
	for _, u := range doc.SystemUsers {
		writeInsert(&b, "system_users",
			[]string{"id", "school_id", "name", "email", "role", "is_active"},
			sqlString(u.ID), sqlString(u.SchoolID), sqlString(u.Name), sqlString(u.Email),
			sqlString(u.Role), sqlBool(u.IsActive))
	}
	for _, st := range doc.Students {
		writeInsert(&b, "students",
			[]string{"id", "school_id", "full_name", "class_id", "average_grade"},
			sqlString(st.ID), sqlString(st.SchoolID), sqlString(st.FullName),
			sqlString(st.ClassID), fmt.Sprintf("%g", st.AverageGrade))
	}
	for _, t := range doc.Teachers {
		writeInsert(&b, "teachers",
			[]string{"id", "school_id", "full_name", "email", "subject"},
			sqlString(t.ID), sqlString(t.SchoolID), sqlString(t.FullName),
			sqlString(t.Email), sqlString(t.Subject))
	}
	for _, c := range doc.Classes {
		writeInsert(&b, "school_classes",
			[]string{"id", "school_id", "name", "level", "capacity"},
			sqlString(c.ID), sqlString(c.SchoolID), sqlString(c.Name),
			sqlString(c.Level), fmt.Sprintf("%d", c.Capacity))
	}
	for _, tr := range doc.Transactions {
		writeInsert(&b, "finance_transactions",
			[]string{"id", "school_id", "student_id", "kind", "label", "amount_cents", "status"},
			sqlString(tr.ID), sqlString(tr.SchoolID), sqlString(tr.StudentID), sqlString(tr.Kind),
			sqlString(tr.Label), fmt.Sprintf("%d", tr.AmountCents), sqlString(tr.Status))
	}
	for _, bk := range doc.Books {
		writeInsert(&b, "library_books",
			[]string{"id", "school_id", "title", "author", "isbn", "copies", "available"},
			sqlString(bk.ID), sqlString(bk.SchoolID), sqlString(bk.Title), sqlString(bk.Author),
			sqlString(bk.ISBN), fmt.Sprintf("%d", bk.Copies), fmt.Sprintf("%d", bk.Available))
	}
	for _, entry := range doc.AuditLogs {
		writeInsert(&b, "audit_logs",
			[]string{"id", "school_id", "action", "actor_name", "details", "severity", "created_at"},
			sqlString(entry.ID), sqlString(entry.SchoolID), sqlString(entry.Action),
			sqlString(entry.ActorName), sqlString(entry.Details), sqlString(entry.Severity),
			sqlString(entry.CreatedAt.Format(time.RFC3339)))
	}

	return b.String()
}

func writeInsert(b *strings.Builder, table string, columns []string, values ...string) {
	fmt.Fprintf(b, "INSERT INTO %s (%s) VALUES (%s);\n",
		table, strings.Join(columns, ", "), strings.Join(values, ", "))
}

func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func sqlBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func sqlJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "'null'"
	}
	return sqlString(string(data))
}
