// Package sysuser manages console accounts across schools.
package sysuser

import (
	"github.com/scolaris/school-management/internal"
	userDatamodel "github.com/scolaris/school-management/internal/core/datamodel/systemuser"
	"github.com/scolaris/school-management/internal/permission"
)

type RepositoryAPI interface {
	GetAll() ([]*userDatamodel.SystemUser, error)
	GetByID(id string) (*userDatamodel.SystemUser, error)
	GetByEmail(email string) (*userDatamodel.SystemUser, error)
	Save(user *userDatamodel.SystemUser) error
	Delete(id string) error
}

// SaveUserDTO is a create-or-update payload; an empty ID means create.
type SaveUserDTO struct {
	ID       string `json:"id"`
	SchoolID string `json:"school_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive *bool  `json:"is_active,omitempty"`
}

func (dto SaveUserDTO) Validate() error {
	if dto.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if dto.Email == "" {
		return internal.NewValidationFieldError("email", "email is required", internal.ErrCodeValidationFailed)
	}
	if !permission.ValidRole(dto.Role) {
		return internal.ErrUnknownRole
	}
	return nil
}

type UserResponse struct {
	ID          string `json:"id"`
	SchoolID    string `json:"school_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsActive    bool   `json:"is_active"`
	LastLoginAt string `json:"last_login_at,omitempty"`
}

func ToResponse(u *userDatamodel.SystemUser) UserResponse {
	resp := UserResponse{
		ID:       u.ID,
		SchoolID: u.SchoolID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
	if u.LastLoginAt != nil {
		resp.LastLoginAt = u.LastLoginAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}
