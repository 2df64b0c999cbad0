package gormdb

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	userDatamodel "github.com/scolaris/school-management/internal/core/datamodel/systemuser"
	"github.com/scolaris/school-management/internal/sysuser"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) sysuser.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetAll() ([]*userDatamodel.SystemUser, error) {
	var users []*userDatamodel.SystemUser
	err := r.db.Order("name ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) GetByID(id string) (*userDatamodel.SystemUser, error) {
	var user userDatamodel.SystemUser
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*userDatamodel.SystemUser, error) {
	var user userDatamodel.SystemUser
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Save(user *userDatamodel.SystemUser) error {
	return r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(user).Error
}

func (r *UserRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&userDatamodel.SystemUser{}).Error
}
