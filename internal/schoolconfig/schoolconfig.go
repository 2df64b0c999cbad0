// Package schoolconfig mediates every read and write of a school's
// configuration: identity, enabled modules, role permissions, subjects and
// the security PIN. Partial edits go through merge-not-replace semantics so
// an identity save can never erase permissions or subjects it never touched.
package schoolconfig

import (
	"fmt"
	"strings"
	"time"

	schoolDatamodel "github.com/scolaris/school-management/internal/core/datamodel/school"
	"github.com/scolaris/school-management/internal/permission"
)

type RepositoryAPI interface {
	GetAll() ([]*schoolDatamodel.School, error)
	GetByID(id string) (*schoolDatamodel.School, error)
	GetBySchoolOrder() (*schoolDatamodel.School, error)
	Save(school *schoolDatamodel.School) error
}

// Fields a merge can be told to preserve from the base record.
const (
	FieldRolePermissions = "role_permissions"
	FieldSubjects        = "subjects"
	FieldPin             = "pin"
)

// PreservedOnIdentitySave names the config fields an identity-only save
// must carry forward from the stored record. Editing them goes through the
// dedicated save paths, never through SaveSchool.
var PreservedOnIdentitySave = []string{FieldRolePermissions, FieldSubjects, FieldPin}

// Merge copies the overlay over the base, then restores every preserved
// field from the base. The inputs are not mutated.
func Merge(base, overlay schoolDatamodel.School, preserved []string) schoolDatamodel.School {
	out := overlay
	out.ID = base.ID
	out.CreatedAt = base.CreatedAt

	out.Config.RolePermissions = clonePermissions(overlay.Config.RolePermissions)
	out.Config.Subjects = append([]string(nil), overlay.Config.Subjects...)

	for _, field := range preserved {
		switch field {
		case FieldRolePermissions:
			out.Config.RolePermissions = clonePermissions(base.Config.RolePermissions)
		case FieldSubjects:
			out.Config.Subjects = append([]string(nil), base.Config.Subjects...)
		case FieldPin:
			out.Config.Pin = base.Config.Pin
		}
	}

	out.Modules = dedupeModules(out.Modules)
	return out
}

// NewSchoolID derives an identifier from the save instant, matching the
// historical id scheme of existing records.
func NewSchoolID(now time.Time) string {
	return fmt.Sprintf("sch-%d", now.UnixMilli())
}

func clonePermissions(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	out := make(map[string][]string, len(m))
	for role, ids := range m {
		out[role] = append([]string(nil), ids...)
	}
	return out
}

// dedupeModules enforces set semantics on the module list while keeping
// first-seen order.
func dedupeModules(modules []string) []string {
	seen := make(map[string]struct{}, len(modules))
	out := make([]string, 0, len(modules))
	for _, m := range modules {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// containsSubject is case-insensitive so "Maths" and "maths" collide.
func containsSubject(subjects []string, name string) bool {
	for _, s := range subjects {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// DefaultTemplate is the base used when saving a school that has no stored
// record: full default grants and the standard subject list.
func DefaultTemplate(now time.Time) schoolDatamodel.School {
	return schoolDatamodel.School{
		Type: schoolDatamodel.TypeSecondary,
		Config: schoolDatamodel.Config{
			AcademicYear:    academicYear(now),
			Pin:             schoolDatamodel.DefaultPin,
			RolePermissions: permission.Defaults(),
			Subjects:        DefaultSubjects(),
		},
	}
}

// DefaultSubjects returns a fresh copy of the compiled-in subject template.
func DefaultSubjects() []string {
	return []string{
		"Mathématiques",
		"Français",
		"Histoire-Géographie",
		"Sciences de la Vie et de la Terre",
		"Physique-Chimie",
		"Anglais",
		"Éducation Physique et Sportive",
	}
}

// academicYear maps a date to the school year it falls in; the year rolls
// over in September.
func academicYear(now time.Time) string {
	year := now.Year()
	if now.Month() < time.September {
		year--
	}
	return fmt.Sprintf("%d-%d", year, year+1)
}
