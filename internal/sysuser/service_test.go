package sysuser_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scolaris/school-management/internal"
	userDatamodel "github.com/scolaris/school-management/internal/core/datamodel/systemuser"
	"github.com/scolaris/school-management/internal/sysuser"
)

func TestSysUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SysUser Suite")
}

// Mock repository for testing
type mockUserRepository struct {
	users     map[string]*userDatamodel.SystemUser
	getError  error
	saveError error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*userDatamodel.SystemUser)}
}

func (m *mockUserRepository) GetAll() ([]*userDatamodel.SystemUser, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	out := make([]*userDatamodel.SystemUser, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepository) GetByID(id string) (*userDatamodel.SystemUser, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepository) GetByEmail(email string) (*userDatamodel.SystemUser, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) Save(user *userDatamodel.SystemUser) error {
	if m.saveError != nil {
		return m.saveError
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepository) Delete(id string) error {
	delete(m.users, id)
	return nil
}

type mockRecorder struct {
	actions []string
}

func (m *mockRecorder) Record(_ context.Context, _, action, _ string) {
	m.actions = append(m.actions, action)
}

var _ = Describe("SysUserService", func() {
	var (
		service  *sysuser.Service
		repo     *mockUserRepository
		recorder *mockRecorder
		ctx      context.Context
	)

	BeforeEach(func() {
		repo = newMockUserRepository()
		recorder = &mockRecorder{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = sysuser.NewService(repo, recorder, logger)
		ctx = context.Background()
	})

	Describe("Save", func() {
		It("creates a user with a generated id", func() {
			user, err := service.Save(ctx, sysuser.SaveUserDTO{
				SchoolID: "sch-1",
				Name:     "Awa Diop",
				Email:    "awa@lycee.example",
				Role:     "teacher",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(user.ID).NotTo(BeEmpty())
			Expect(user.IsActive).To(BeTrue())
			Expect(recorder.actions).To(ContainElement("user.save"))
		})

		It("merges over the stored record and keeps credentials", func() {
			lastLogin := time.Now().Add(-time.Hour)
			repo.users["usr-1"] = &userDatamodel.SystemUser{
				ID:           "usr-1",
				SchoolID:     "sch-1",
				Name:         "Avant",
				Email:        "avant@lycee.example",
				Role:         "teacher",
				IsActive:     true,
				PasswordHash: "$2a$10$hash",
				LastLoginAt:  &lastLogin,
				CreatedAt:    time.Now().Add(-24 * time.Hour),
			}

			user, err := service.Save(ctx, sysuser.SaveUserDTO{
				ID:       "usr-1",
				SchoolID: "sch-1",
				Name:     "Après",
				Email:    "apres@lycee.example",
				Role:     "admin",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Name).To(Equal("Après"))
			Expect(user.Role).To(Equal("admin"))
			Expect(user.PasswordHash).To(Equal("$2a$10$hash"))
			Expect(user.LastLoginAt).To(Equal(&lastLogin))
		})

		It("accepts a non-super-admin without a school scope", func() {
			user, err := service.Save(ctx, sysuser.SaveUserDTO{
				Name:  "Sans École",
				Email: "nobody@lycee.example",
				Role:  "teacher",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(user.SchoolID).To(BeEmpty())
		})

		It("rejects an unknown role", func() {
			_, err := service.Save(ctx, sysuser.SaveUserDTO{
				Name:  "Inconnu",
				Email: "inconnu@lycee.example",
				Role:  "janitor",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUnknownRole))
		})

		It("can deactivate a user", func() {
			repo.users["usr-1"] = &userDatamodel.SystemUser{
				ID: "usr-1", Name: "Actif", Email: "actif@lycee.example", Role: "teacher", IsActive: true,
			}

			inactive := false
			user, err := service.Save(ctx, sysuser.SaveUserDTO{
				ID: "usr-1", Name: "Actif", Email: "actif@lycee.example", Role: "teacher", IsActive: &inactive,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(user.IsActive).To(BeFalse())
		})
	})

	Describe("Delete", func() {
		It("deletes an existing user and audits it", func() {
			repo.users["usr-1"] = &userDatamodel.SystemUser{
				ID: "usr-1", Name: "Cible", Email: "cible@lycee.example", Role: "teacher",
			}

			Expect(service.Delete(ctx, "usr-1")).To(Succeed())
			Expect(repo.users).NotTo(HaveKey("usr-1"))
			Expect(recorder.actions).To(ContainElement("user.delete"))
		})

		It("fails with not found for a missing user", func() {
			err := service.Delete(ctx, "usr-missing")
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})
})
