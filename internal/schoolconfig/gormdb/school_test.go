package gormdb

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	schoolDatamodel "github.com/scolaris/school-management/internal/core/datamodel/school"
	"github.com/scolaris/school-management/internal/schoolconfig"
)

func TestSchoolRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SchoolRepository Suite")
}

var _ = Describe("SchoolRepository", func() {
	var (
		db   *gorm.DB
		repo schoolconfig.RepositoryAPI
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&schoolDatamodel.School{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewSchoolRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	It("round-trips a school with its serialized config", func() {
		school := &schoolDatamodel.School{
			ID:      "sch-1",
			Name:    "Lycée Moderne",
			Type:    schoolDatamodel.TypeSecondary,
			Modules: []string{"students", "grades"},
			Config: schoolDatamodel.Config{
				Pin:             "1234",
				RolePermissions: map[string][]string{"teacher": {"grades.read"}},
				Subjects:        []string{"Maths", "Français"},
			},
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		Expect(repo.Save(school)).To(Succeed())

		loaded, err := repo.GetByID("sch-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).NotTo(BeNil())
		Expect(loaded.Name).To(Equal("Lycée Moderne"))
		Expect(loaded.Modules).To(Equal([]string{"students", "grades"}))
		Expect(loaded.Config.Pin).To(Equal("1234"))
		Expect(loaded.Config.RolePermissions).To(Equal(map[string][]string{"teacher": {"grades.read"}}))
		Expect(loaded.Config.Subjects).To(Equal([]string{"Maths", "Français"}))
	})

	It("upserts on conflicting id", func() {
		first := &schoolDatamodel.School{ID: "sch-1", Name: "Avant", CreatedAt: time.Now()}
		Expect(repo.Save(first)).To(Succeed())

		second := &schoolDatamodel.School{ID: "sch-1", Name: "Après", CreatedAt: first.CreatedAt}
		Expect(repo.Save(second)).To(Succeed())

		loaded, err := repo.GetByID("sch-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Name).To(Equal("Après"))

		all, err := repo.GetAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(1))
	})

	It("returns nil without error for a missing id", func() {
		loaded, err := repo.GetByID("sch-missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(BeNil())
	})

	It("returns the oldest school first", func() {
		older := &schoolDatamodel.School{ID: "sch-old", Name: "Ancien", CreatedAt: time.Now().Add(-time.Hour)}
		newer := &schoolDatamodel.School{ID: "sch-new", Name: "Récent", CreatedAt: time.Now()}
		Expect(repo.Save(newer)).To(Succeed())
		Expect(repo.Save(older)).To(Succeed())

		first, err := repo.GetBySchoolOrder()
		Expect(err).NotTo(HaveOccurred())
		Expect(first.ID).To(Equal("sch-old"))
	})

	It("reports no school on an empty store", func() {
		first, err := repo.GetBySchoolOrder()
		Expect(err).NotTo(HaveOccurred())
		Expect(first).To(BeNil())
	})
})
