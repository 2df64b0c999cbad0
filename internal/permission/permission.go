// Package permission defines the closed catalog of console modules, the
// fine-grained permissions they expose and the default grants per role.
// Permission identifiers are strings of the form "<module>.<action>".
package permission

import (
	"fmt"
	"sort"
	"strings"

	"github.com/scolaris/school-management/internal"
)

type Role string

const (
	RoleSuperAdmin Role = "super-admin"
	RoleAdmin      Role = "admin"
	RoleBursar     Role = "bursar"
	RoleTeacher    Role = "teacher"
	RoleStudent    Role = "student"
	RoleParent     Role = "parent"
	RoleLibrarian  Role = "librarian"
)

var AllRoles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleBursar,
	RoleTeacher,
	RoleStudent,
	RoleParent,
	RoleLibrarian,
}

func ValidRole(r string) bool {
	for _, role := range AllRoles {
		if string(role) == r {
			return true
		}
	}
	return false
}

// RolePermissions maps a role to the set of permission identifiers it holds.
// The slice representation keeps JSON round trips stable; membership is
// checked with Has, not order.
type RolePermissions map[string][]string

// Has reports whether the role holds the permission. A missing role key is
// an empty set, never an error.
func Has(m RolePermissions, role Role, permissionID string) bool {
	for _, id := range m[string(role)] {
		if id == permissionID {
			return true
		}
	}
	return false
}

// Toggle returns a new map with permissionID added to the role's set when
// absent and removed when present. The input map is never mutated, and
// applying Toggle twice with the same arguments returns an equivalent map.
func Toggle(m RolePermissions, role Role, permissionID string) RolePermissions {
	out := make(RolePermissions, len(m))
	for r, ids := range m {
		out[r] = append([]string(nil), ids...)
	}

	key := string(role)
	if Has(m, role, permissionID) {
		kept := make([]string, 0, len(out[key]))
		for _, id := range out[key] {
			if id != permissionID {
				kept = append(kept, id)
			}
		}
		out[key] = kept
		return out
	}

	out[key] = append(out[key], permissionID)
	return out
}

// ValidateRolePermissions rejects maps that reference an unknown role or a
// permission whose module is not in the catalog. The write paths call this
// before persisting, so a malformed map never reaches the store.
func ValidateRolePermissions(m RolePermissions) error {
	for role, ids := range m {
		if !ValidRole(role) {
			return internal.ErrUnknownRole.WithDetails(
				internal.ValidationErrors{Errors: []internal.ValidationError{{
					Field:   "role_permissions",
					Message: fmt.Sprintf("unknown role %q", role),
					Code:    string(internal.ErrCodeUnknownRole),
				}}})
		}
		for _, id := range ids {
			if !knownPermission(id) {
				return internal.ErrUnknownPermission.WithDetails(
					internal.ValidationErrors{Errors: []internal.ValidationError{{
						Field:   "role_permissions",
						Message: fmt.Sprintf("permission %q does not reference a known module action", id),
						Code:    string(internal.ErrCodeUnknownPermission),
					}}})
			}
		}
	}
	return nil
}

func knownPermission(id string) bool {
	moduleID, _, ok := strings.Cut(id, ".")
	if !ok || !ValidModule(moduleID) {
		return false
	}
	for _, def := range PermissionsForModule(moduleID) {
		if def.ID == id {
			return true
		}
	}
	return false
}

// Defaults returns a fresh copy of the compiled-in grant table covering
// every role.
func Defaults() RolePermissions {
	out := make(RolePermissions, len(AllRoles))
	for _, role := range AllRoles {
		out[string(role)] = DefaultsFor(role)
	}
	return out
}

// DefaultsFor returns the compiled-in grants for one role. Unknown roles get
// an empty set.
func DefaultsFor(role Role) []string {
	switch role {
	case RoleSuperAdmin, RoleAdmin:
		return allPermissionIDs()
	case RoleBursar:
		return []string{
			"finance.read", "finance.write", "finance.receipts",
			"students.read", "reports.read",
		}
	case RoleTeacher:
		return []string{
			"students.read", "classes.read",
			"grades.read", "grades.write",
			"reports.read", "reports.write",
			"communication.read",
		}
	case RoleStudent:
		return []string{"grades.read", "library.read", "canteen.read"}
	case RoleParent:
		return []string{"grades.read", "finance.read", "communication.read"}
	case RoleLibrarian:
		return []string{"library.read", "library.write", "library.loans", "students.read"}
	}
	return []string{}
}

func allPermissionIDs() []string {
	var ids []string
	for _, moduleID := range ModuleCatalog {
		for _, def := range PermissionsForModule(moduleID) {
			ids = append(ids, def.ID)
		}
	}
	sort.Strings(ids)
	return ids
}
