package schoolconfig_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scolaris/school-management/internal"
	schoolDatamodel "github.com/scolaris/school-management/internal/core/datamodel/school"
	"github.com/scolaris/school-management/internal/permission"
	"github.com/scolaris/school-management/internal/schoolconfig"
)

func TestSchoolConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SchoolConfig Suite")
}

// Mock repository for testing
type mockSchoolRepository struct {
	schools   map[string]*schoolDatamodel.School
	order     []string
	getError  error
	saveError error
}

func newMockSchoolRepository() *mockSchoolRepository {
	return &mockSchoolRepository{schools: make(map[string]*schoolDatamodel.School)}
}

func (m *mockSchoolRepository) GetAll() ([]*schoolDatamodel.School, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	out := make([]*schoolDatamodel.School, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.schools[id])
	}
	return out, nil
}

func (m *mockSchoolRepository) GetByID(id string) (*schoolDatamodel.School, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	school, ok := m.schools[id]
	if !ok {
		return nil, nil
	}
	copied := *school
	return &copied, nil
}

func (m *mockSchoolRepository) GetBySchoolOrder() (*schoolDatamodel.School, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	if len(m.order) == 0 {
		return nil, nil
	}
	copied := *m.schools[m.order[0]]
	return &copied, nil
}

func (m *mockSchoolRepository) Save(school *schoolDatamodel.School) error {
	if m.saveError != nil {
		return m.saveError
	}
	if _, exists := m.schools[school.ID]; !exists {
		m.order = append(m.order, school.ID)
	}
	copied := *school
	m.schools[school.ID] = &copied
	return nil
}

type recordedAudit struct {
	SchoolID string
	Action   string
	Details  string
}

type mockRecorder struct {
	entries []recordedAudit
}

func (m *mockRecorder) Record(_ context.Context, schoolID, action, details string) {
	m.entries = append(m.entries, recordedAudit{SchoolID: schoolID, Action: action, Details: details})
}

func asSuperAdmin(ctx context.Context) context.Context {
	return internal.ContextWithActor(ctx, &internal.Actor{
		ID:   "usr-test",
		Role: string(permission.RoleSuperAdmin),
	})
}

func asScopedAdmin(ctx context.Context, schoolID string) context.Context {
	return internal.ContextWithActor(ctx, &internal.Actor{
		ID:       "usr-test",
		SchoolID: schoolID,
		Role:     string(permission.RoleAdmin),
	})
}

var _ = Describe("SchoolConfigService", func() {
	var (
		service  *schoolconfig.Service
		repo     *mockSchoolRepository
		recorder *mockRecorder
		ctx      context.Context
	)

	BeforeEach(func() {
		repo = newMockSchoolRepository()
		recorder = &mockRecorder{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = schoolconfig.NewService(repo, recorder, logger)
		ctx = asSuperAdmin(context.Background())
	})

	Describe("LoadActiveSchool", func() {
		It("returns the actor's own school when scoped", func() {
			repo.Save(&schoolDatamodel.School{ID: "sch-1", Name: "Première"})
			repo.Save(&schoolDatamodel.School{ID: "sch-2", Name: "Deuxième"})

			school, err := service.LoadActiveSchool(asScopedAdmin(context.Background(), "sch-2"))
			Expect(err).NotTo(HaveOccurred())
			Expect(school.ID).To(Equal("sch-2"))
		})

		It("falls back to the first stored school for an unscoped super-admin", func() {
			repo.Save(&schoolDatamodel.School{ID: "sch-1", Name: "Première"})
			repo.Save(&schoolDatamodel.School{ID: "sch-2", Name: "Deuxième"})

			school, err := service.LoadActiveSchool(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(school.ID).To(Equal("sch-1"))
		})

		It("reports no school available for an unscoped non-super-admin", func() {
			repo.Save(&schoolDatamodel.School{ID: "sch-1"})

			_, err := service.LoadActiveSchool(internal.ContextWithActor(context.Background(),
				&internal.Actor{ID: "usr-x", Role: string(permission.RoleTeacher)}))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNoSchoolAvailable))
		})

		It("reports no school available on an empty store", func() {
			_, err := service.LoadActiveSchool(ctx)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNoSchoolAvailable))
		})
	})

	Describe("SaveSchool", func() {
		It("creates a new school from the default template", func() {
			school, err := service.SaveSchool(ctx, schoolconfig.SaveSchoolDTO{
				Name:    "Lycée A",
				Modules: []string{"students", "grades"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(school.ID).To(HavePrefix("sch-"))
			Expect(school.Modules).To(Equal([]string{"students", "grades"}))
			Expect(school.Config.Subjects).To(Equal(schoolconfig.DefaultSubjects()))
			Expect(school.Config.RolePermissions).To(Equal(map[string][]string(permission.Defaults())))
			Expect(school.EffectivePin()).To(Equal(schoolDatamodel.DefaultPin))
		})

		It("round-trips: reload returns exactly the saved modules", func() {
			saved, err := service.SaveSchool(ctx, schoolconfig.SaveSchoolDTO{
				Name:    "Lycée A",
				Modules: []string{"students", "grades"},
			})
			Expect(err).NotTo(HaveOccurred())

			reloaded, err := service.LoadActiveSchool(asScopedAdmin(context.Background(), saved.ID))
			Expect(err).NotTo(HaveOccurred())
			Expect(reloaded.Modules).To(ConsistOf("students", "grades"))
		})

		It("preserves permissions, subjects and PIN across an identity edit", func() {
			existing := schoolDatamodel.School{
				ID:   "sch-old",
				Name: "Avant",
				Config: schoolDatamodel.Config{
					Pin:             "4321",
					RolePermissions: map[string][]string{"teacher": {"grades.read"}},
					Subjects:        []string{"Latin"},
				},
			}
			Expect(repo.Save(&existing)).To(Succeed())

			saved, err := service.SaveSchool(ctx, schoolconfig.SaveSchoolDTO{
				ID:      "sch-old",
				Name:    "Après",
				Address: "12 rue Neuve",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Name).To(Equal("Après"))
			Expect(saved.Config.Pin).To(Equal("4321"))
			Expect(saved.Config.RolePermissions).To(Equal(map[string][]string{"teacher": {"grades.read"}}))
			Expect(saved.Config.Subjects).To(Equal([]string{"Latin"}))
		})

		It("deduplicates the module list while keeping order", func() {
			saved, err := service.SaveSchool(ctx, schoolconfig.SaveSchoolDTO{
				Name:    "Lycée B",
				Modules: []string{"students", "grades", "students", "finance"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Modules).To(Equal([]string{"students", "grades", "finance"}))
		})

		It("rejects a nameless school", func() {
			_, err := service.SaveSchool(ctx, schoolconfig.SaveSchoolDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeSchoolNameRequired))
		})

		It("rejects an unknown school type", func() {
			_, err := service.SaveSchool(ctx, schoolconfig.SaveSchoolDTO{Name: "Lycée C", Type: "nursery"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidSchoolType))
		})

		It("records an audit entry", func() {
			_, err := service.SaveSchool(ctx, schoolconfig.SaveSchoolDTO{Name: "Lycée D"})
			Expect(err).NotTo(HaveOccurred())
			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Action).To(Equal("school.save"))
		})
	})

	Describe("SavePermissionsAndSubjects", func() {
		BeforeEach(func() {
			Expect(repo.Save(&schoolDatamodel.School{
				ID:   "sch-1",
				Name: "Lycée",
				Config: schoolDatamodel.Config{
					Pin:      "9999",
					Subjects: []string{"Maths"},
				},
			})).To(Succeed())
		})

		It("overwrites exactly the two fields", func() {
			saved, err := service.SavePermissionsAndSubjects(ctx, "sch-1", schoolconfig.SavePermissionsSubjectsDTO{
				RolePermissions: map[string][]string{"teacher": {"grades.write"}},
				Subjects:        []string{"Maths", "Physique-Chimie"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Config.RolePermissions).To(Equal(map[string][]string{"teacher": {"grades.write"}}))
			Expect(saved.Config.Subjects).To(Equal([]string{"Maths", "Physique-Chimie"}))
			Expect(saved.Config.Pin).To(Equal("9999"))
			Expect(saved.Name).To(Equal("Lycée"))
		})

		It("rejects a map with an unknown role before writing", func() {
			_, err := service.SavePermissionsAndSubjects(ctx, "sch-1", schoolconfig.SavePermissionsSubjectsDTO{
				RolePermissions: map[string][]string{"janitor": {"settings.read"}},
			})
			Expect(err).To(HaveOccurred())

			stored, _ := repo.GetByID("sch-1")
			Expect(stored.Config.Subjects).To(Equal([]string{"Maths"}))
		})

		It("fails with not found for an unknown school", func() {
			_, err := service.SavePermissionsAndSubjects(ctx, "sch-missing", schoolconfig.SavePermissionsSubjectsDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeSchoolNotFound))
		})
	})

	Describe("AddSubject", func() {
		BeforeEach(func() {
			Expect(repo.Save(&schoolDatamodel.School{
				ID:     "sch-1",
				Name:   "Lycée",
				Config: schoolDatamodel.Config{Subjects: []string{"Maths", "Français"}},
			})).To(Succeed())
		})

		It("appends while keeping existing order", func() {
			saved, err := service.AddSubject(ctx, "sch-1", schoolconfig.AddSubjectDTO{Name: "Philosophie"})
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Config.Subjects).To(Equal([]string{"Maths", "Français", "Philosophie"}))
		})

		It("rejects duplicates case-insensitively", func() {
			_, err := service.AddSubject(ctx, "sch-1", schoolconfig.AddSubjectDTO{Name: "maths"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateSubject))
		})

		It("rejects an empty name", func() {
			_, err := service.AddSubject(ctx, "sch-1", schoolconfig.AddSubjectDTO{})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ChangePin", func() {
		BeforeEach(func() {
			Expect(repo.Save(&schoolDatamodel.School{ID: "sch-1", Name: "Lycée"})).To(Succeed())
		})

		It("treats an unset PIN as the default", func() {
			err := service.ChangePin(ctx, "sch-1", schoolconfig.ChangePinDTO{
				CurrentPin: "0000", NewPin: "1234", ConfirmPin: "1234",
			})
			Expect(err).NotTo(HaveOccurred())

			stored, _ := repo.GetByID("sch-1")
			Expect(stored.Config.Pin).To(Equal("1234"))
		})

		It("rejects a wrong current PIN", func() {
			repo.schools["sch-1"].Config.Pin = "1234"

			err := service.ChangePin(ctx, "sch-1", schoolconfig.ChangePinDTO{
				CurrentPin: "0000", NewPin: "5678", ConfirmPin: "5678",
			})
			Expect(err).To(MatchError(internal.ErrIncorrectPin))
		})

		It("rejects a mismatched confirmation", func() {
			err := service.ChangePin(ctx, "sch-1", schoolconfig.ChangePinDTO{
				CurrentPin: "0000", NewPin: "1234", ConfirmPin: "5678",
			})
			Expect(err).To(MatchError(internal.ErrPinMismatch))
		})

		It("rejects a short PIN", func() {
			err := service.ChangePin(ctx, "sch-1", schoolconfig.ChangePinDTO{
				CurrentPin: "0000", NewPin: "12", ConfirmPin: "12",
			})
			Expect(err).To(MatchError(internal.ErrInvalidPinFormat))
		})

		It("rejects a non-numeric PIN", func() {
			err := service.ChangePin(ctx, "sch-1", schoolconfig.ChangePinDTO{
				CurrentPin: "0000", NewPin: "12ab", ConfirmPin: "12ab",
			})
			Expect(err).To(MatchError(internal.ErrInvalidPinFormat))
		})

		It("audits the change without the PIN value", func() {
			err := service.ChangePin(ctx, "sch-1", schoolconfig.ChangePinDTO{
				CurrentPin: "0000", NewPin: "1234", ConfirmPin: "1234",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Details).NotTo(ContainSubstring("1234"))
		})
	})

	Describe("TogglePermission", func() {
		It("delegates to the pure toggle", func() {
			current := permission.RolePermissions{"teacher": {"grades.read"}}
			updated, err := service.TogglePermission("teacher", "grades.write", current)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated["teacher"]).To(ConsistOf("grades.read", "grades.write"))
		})

		It("rejects an unknown role", func() {
			_, err := service.TogglePermission("janitor", "grades.write", nil)
			Expect(err).To(MatchError(internal.ErrUnknownRole))
		})
	})

	Describe("HasPermission", func() {
		BeforeEach(func() {
			Expect(repo.Save(&schoolDatamodel.School{
				ID:   "sch-1",
				Name: "Lycée",
				Config: schoolDatamodel.Config{
					RolePermissions: map[string][]string{"teacher": {"grades.read"}},
				},
			})).To(Succeed())
		})

		It("always authorizes a super-admin", func() {
			actor := &internal.Actor{ID: "usr-1", Role: string(permission.RoleSuperAdmin)}
			Expect(service.HasPermission(context.Background(), actor, "settings.write")).To(BeTrue())
		})

		It("uses the school's declared grants for a declared role", func() {
			actor := &internal.Actor{ID: "usr-2", SchoolID: "sch-1", Role: string(permission.RoleTeacher)}
			Expect(service.HasPermission(context.Background(), actor, "grades.read")).To(BeTrue())
			Expect(service.HasPermission(context.Background(), actor, "grades.write")).To(BeFalse())
		})

		It("falls back to defaults for a role the school never declared", func() {
			actor := &internal.Actor{ID: "usr-3", SchoolID: "sch-1", Role: string(permission.RoleLibrarian)}
			Expect(service.HasPermission(context.Background(), actor, "library.loans")).To(BeTrue())
		})

		It("denies without an actor", func() {
			Expect(service.HasPermission(context.Background(), nil, "grades.read")).To(BeFalse())
		})

		It("judges the actor argument, not whoever the context carries", func() {
			ctx := internal.ContextWithActor(context.Background(),
				&internal.Actor{ID: "usr-root", Role: string(permission.RoleSuperAdmin)})
			actor := &internal.Actor{ID: "usr-2", SchoolID: "sch-1", Role: string(permission.RoleTeacher)}
			Expect(service.HasPermission(ctx, actor, "grades.write")).To(BeFalse())
		})

		It("falls back to defaults when the actor has no school", func() {
			actor := &internal.Actor{ID: "usr-4", Role: string(permission.RoleTeacher)}
			Expect(service.HasPermission(context.Background(), actor, "grades.write")).To(BeTrue())
		})
	})

	Describe("ResetPermissions and ResetSubjects", func() {
		It("returns the compiled-in templates without persisting", func() {
			Expect(repo.Save(&schoolDatamodel.School{
				ID:     "sch-1",
				Name:   "Lycée",
				Config: schoolDatamodel.Config{Subjects: []string{"Latin"}},
			})).To(Succeed())

			Expect(service.ResetPermissions()).To(Equal(permission.Defaults()))
			Expect(service.ResetSubjects()).To(Equal(schoolconfig.DefaultSubjects()))

			stored, _ := repo.GetByID("sch-1")
			Expect(stored.Config.Subjects).To(Equal([]string{"Latin"}))
		})
	})

	Describe("repository failures", func() {
		It("wraps store errors as internal errors", func() {
			repo.getError = errors.New("disk on fire")
			_, err := service.LoadActiveSchool(asScopedAdmin(context.Background(), "sch-1"))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})
	})
})
