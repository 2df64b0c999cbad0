package gormdb

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	schoolDatamodel "github.com/scolaris/school-management/internal/core/datamodel/school"
	"github.com/scolaris/school-management/internal/schoolconfig"
)

type SchoolRepository struct {
	db *gorm.DB
}

func NewSchoolRepository(db *gorm.DB) schoolconfig.RepositoryAPI {
	return &SchoolRepository{db: db}
}

func (r *SchoolRepository) GetAll() ([]*schoolDatamodel.School, error) {
	var schools []*schoolDatamodel.School
	err := r.db.Order("created_at ASC").Find(&schools).Error
	return schools, err
}

func (r *SchoolRepository) GetByID(id string) (*schoolDatamodel.School, error) {
	var school schoolDatamodel.School
	err := r.db.Where("id = ?", id).First(&school).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &school, nil
}

// GetBySchoolOrder returns the oldest school, the one an unscoped
// super-admin session lands on.
func (r *SchoolRepository) GetBySchoolOrder() (*schoolDatamodel.School, error) {
	var school schoolDatamodel.School
	err := r.db.Order("created_at ASC").First(&school).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &school, nil
}

func (r *SchoolRepository) Save(school *schoolDatamodel.School) error {
	return r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(school).Error
}
