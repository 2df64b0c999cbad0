package backup

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	financeDatamodel "github.com/scolaris/school-management/internal/core/datamodel/finance"
	libraryDatamodel "github.com/scolaris/school-management/internal/core/datamodel/library"
	schoolDatamodel "github.com/scolaris/school-management/internal/core/datamodel/school"
	classDatamodel "github.com/scolaris/school-management/internal/core/datamodel/schoolclass"
	staffDatamodel "github.com/scolaris/school-management/internal/core/datamodel/staff"
	studentDatamodel "github.com/scolaris/school-management/internal/core/datamodel/student"
	userDatamodel "github.com/scolaris/school-management/internal/core/datamodel/systemuser"
	"github.com/scolaris/school-management/internal/permission"
	"github.com/scolaris/school-management/internal/schoolconfig"
)

// DemoPassword is the login password of every seeded account.
const DemoPassword = "demo1234"

// seedDemoData populates the demo dataset a factory reset restores. Runs
// inside the reset transaction.
func seedDemoData(tx *gorm.DB, now time.Time) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	demoSchool := schoolDatamodel.School{
		ID:      "sch-demo",
		Name:    "Lycée Moderne Demo",
		Address: "12 Avenue de la République",
		Type:    schoolDatamodel.TypeSecondary,
		Modules: []string{"students", "teachers", "classes", "grades", "finance", "library", "settings"},
		Config: schoolDatamodel.Config{
			Name:            "Lycée Moderne Demo",
			Address:         "12 Avenue de la République",
			Phone:           "+225 27 20 21 22 23",
			Email:           "contact@lycee-demo.example",
			AcademicYear:    academicYearFor(now),
			DirectorName:    "Mme Kouassi",
			Pin:             schoolDatamodel.DefaultPin,
			RolePermissions: permission.Defaults(),
			Subjects:        schoolconfig.DefaultSubjects(),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Create(&demoSchool).Error; err != nil {
		return err
	}

	users := []userDatamodel.SystemUser{
		{
			ID:           "usr-superadmin",
			Name:         "Super Admin",
			Email:        "superadmin@lycee-demo.example",
			Role:         string(permission.RoleSuperAdmin),
			IsActive:     true,
			PasswordHash: string(hash),
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           "usr-admin",
			SchoolID:     demoSchool.ID,
			Name:         "Awa Diabaté",
			Email:        "admin@lycee-demo.example",
			Role:         string(permission.RoleAdmin),
			IsActive:     true,
			PasswordHash: string(hash),
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           "usr-bursar",
			SchoolID:     demoSchool.ID,
			Name:         "Jean Koffi",
			Email:        "bursar@lycee-demo.example",
			Role:         string(permission.RoleBursar),
			IsActive:     true,
			PasswordHash: string(hash),
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
	if err := tx.Create(&users).Error; err != nil {
		return err
	}

	classes := []classDatamodel.SchoolClass{
		{ID: "cls-6a", SchoolID: demoSchool.ID, Name: "6ème A", Level: "6ème", Capacity: 40, CreatedAt: now, UpdatedAt: now},
		{ID: "cls-3b", SchoolID: demoSchool.ID, Name: "3ème B", Level: "3ème", Capacity: 35, CreatedAt: now, UpdatedAt: now},
	}
	if err := tx.Create(&classes).Error; err != nil {
		return err
	}

	teachers := []staffDatamodel.Teacher{
		{ID: "tch-1", SchoolID: demoSchool.ID, FullName: "M. Traoré", Email: "traore@lycee-demo.example", Subject: "Mathématiques", CreatedAt: now, UpdatedAt: now},
		{ID: "tch-2", SchoolID: demoSchool.ID, FullName: "Mme N'Guessan", Email: "nguessan@lycee-demo.example", Subject: "Français", CreatedAt: now, UpdatedAt: now},
	}
	if err := tx.Create(&teachers).Error; err != nil {
		return err
	}

	students := []studentDatamodel.Student{
		{ID: "std-1", SchoolID: demoSchool.ID, FullName: "Aya Koné", ClassID: "cls-6a", AverageGrade: 14.5, ParentName: "M. Koné", CreatedAt: now, UpdatedAt: now},
		{ID: "std-2", SchoolID: demoSchool.ID, FullName: "Ibrahim Sangaré", ClassID: "cls-6a", AverageGrade: 11.2, ParentName: "Mme Sangaré", CreatedAt: now, UpdatedAt: now},
		{ID: "std-3", SchoolID: demoSchool.ID, FullName: "Fatou Bamba", ClassID: "cls-3b", AverageGrade: 16.8, ParentName: "M. Bamba", CreatedAt: now, UpdatedAt: now},
	}
	if err := tx.Create(&students).Error; err != nil {
		return err
	}

	transactions := []financeDatamodel.Transaction{
		{ID: "trx-1", SchoolID: demoSchool.ID, StudentID: "std-1", Kind: financeDatamodel.KindFee, Label: "Frais de scolarité T1", AmountCents: 15000000, Status: financeDatamodel.StatusPaid, Date: now, CreatedAt: now, UpdatedAt: now},
		{ID: "trx-2", SchoolID: demoSchool.ID, Kind: financeDatamodel.KindExpense, Label: "Fournitures scolaires", AmountCents: 4500000, Status: financeDatamodel.StatusPending, Date: now, CreatedAt: now, UpdatedAt: now},
	}
	if err := tx.Create(&transactions).Error; err != nil {
		return err
	}

	books := []libraryDatamodel.Book{
		{ID: "bok-1", SchoolID: demoSchool.ID, Title: "Le Petit Prince", Author: "Antoine de Saint-Exupéry", ISBN: "978-2070612758", Copies: 5, Available: 4, CreatedAt: now, UpdatedAt: now},
		{ID: "bok-2", SchoolID: demoSchool.ID, Title: "Une si longue lettre", Author: "Mariama Bâ", ISBN: "978-2266121676", Copies: 3, Available: 3, CreatedAt: now, UpdatedAt: now},
	}
	return tx.Create(&books).Error
}

func academicYearFor(now time.Time) string {
	year := now.Year()
	if now.Month() < time.September {
		year--
	}
	return fmt.Sprintf("%d-%d", year, year+1)
}
