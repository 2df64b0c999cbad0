package permission_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scolaris/school-management/internal"
	"github.com/scolaris/school-management/internal/permission"
)

func TestPermission(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Permission Suite")
}

var _ = Describe("Toggle", func() {
	var grants permission.RolePermissions

	BeforeEach(func() {
		grants = permission.RolePermissions{
			"teacher": {"grades.read", "grades.write"},
			"student": {"grades.read"},
		}
	})

	It("adds a permission the role does not hold", func() {
		updated := permission.Toggle(grants, permission.RoleTeacher, "grades.publish")
		Expect(updated["teacher"]).To(ContainElement("grades.publish"))
	})

	It("removes a permission the role already holds", func() {
		updated := permission.Toggle(grants, permission.RoleTeacher, "grades.write")
		Expect(updated["teacher"]).NotTo(ContainElement("grades.write"))
		Expect(updated["teacher"]).To(ContainElement("grades.read"))
	})

	It("never mutates the input map", func() {
		permission.Toggle(grants, permission.RoleTeacher, "grades.write")
		Expect(grants["teacher"]).To(Equal([]string{"grades.read", "grades.write"}))
	})

	It("is involutive", func() {
		once := permission.Toggle(grants, permission.RoleStudent, "library.read")
		twice := permission.Toggle(once, permission.RoleStudent, "library.read")
		Expect(twice["student"]).To(ConsistOf("grades.read"))
	})

	It("creates the role entry when toggling onto an absent role", func() {
		updated := permission.Toggle(grants, permission.RoleParent, "grades.read")
		Expect(updated["parent"]).To(ConsistOf("grades.read"))
	})
})

var _ = Describe("Has", func() {
	grants := permission.RolePermissions{
		"bursar": {"finance.read", "finance.write"},
	}

	It("finds a held permission", func() {
		Expect(permission.Has(grants, permission.RoleBursar, "finance.write")).To(BeTrue())
	})

	It("reports false for a permission the role lacks", func() {
		Expect(permission.Has(grants, permission.RoleBursar, "settings.write")).To(BeFalse())
	})

	It("treats a missing role as an empty set", func() {
		Expect(permission.Has(grants, permission.RoleLibrarian, "library.read")).To(BeFalse())
	})
})

var _ = Describe("ValidateRolePermissions", func() {
	It("accepts the compiled-in defaults", func() {
		Expect(permission.ValidateRolePermissions(permission.Defaults())).To(Succeed())
	})

	It("rejects an unknown role", func() {
		err := permission.ValidateRolePermissions(permission.RolePermissions{
			"janitor": {"settings.read"},
		})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeUnknownRole))
	})

	It("rejects a permission outside the module catalog", func() {
		err := permission.ValidateRolePermissions(permission.RolePermissions{
			"teacher": {"spaceship.fly"},
		})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeUnknownPermission))
	})

	It("accepts synthesized permissions of undeclared modules", func() {
		Expect(permission.ValidateRolePermissions(permission.RolePermissions{
			"teacher": {"canteen.read", "communication.write"},
		})).To(Succeed())
	})
})

var _ = Describe("Defaults", func() {
	It("grants every permission to super-admin and admin", func() {
		defaults := permission.Defaults()
		Expect(defaults["super-admin"]).To(Equal(defaults["admin"]))
		Expect(defaults["super-admin"]).To(ContainElement("settings.write"))
	})

	It("covers every known role", func() {
		defaults := permission.Defaults()
		for _, role := range permission.AllRoles {
			Expect(defaults).To(HaveKey(string(role)))
		}
	})

	It("returns independent copies", func() {
		first := permission.Defaults()
		first["teacher"] = nil
		Expect(permission.Defaults()["teacher"]).NotTo(BeEmpty())
	})
})

var _ = Describe("PermissionsForModule", func() {
	It("returns declared definitions for a cataloged module", func() {
		defs := permission.PermissionsForModule("grades")
		ids := make([]string, len(defs))
		for i, d := range defs {
			ids[i] = d.ID
		}
		Expect(ids).To(ContainElements("grades.read", "grades.write", "grades.publish"))
	})

	It("synthesizes a read/write pair for a module with no declared table", func() {
		defs := permission.PermissionsForModule("canteen")
		Expect(defs).To(HaveLen(2))
		Expect(defs[0].ID).To(Equal("canteen.read"))
		Expect(defs[1].ID).To(Equal("canteen.write"))
	})
})
