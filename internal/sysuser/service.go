package sysuser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/scolaris/school-management/internal"
	userDatamodel "github.com/scolaris/school-management/internal/core/datamodel/systemuser"
	"github.com/scolaris/school-management/internal/permission"
)

type AuditRecorder interface {
	Record(ctx context.Context, schoolID, action, details string)
}

type Service struct {
	repo     RepositoryAPI
	recorder AuditRecorder
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo RepositoryAPI, recorder AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]*userDatamodel.SystemUser, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list system users", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}
	return users, nil
}

// Save creates the user when no record with the id exists, otherwise merges
// the payload over the stored record. A non-super-admin without a school
// scope is persisted anyway; the data gap is logged, not rejected.
func (s *Service) Save(ctx context.Context, dto SaveUserDTO) (*userDatamodel.SystemUser, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if dto.SchoolID == "" && dto.Role != string(permission.RoleSuperAdmin) {
		s.logger.Warn("saving non-super-admin user without school scope",
			"user_id", dto.ID, "role", dto.Role, "email", dto.Email)
	}

	now := s.now()
	user := &userDatamodel.SystemUser{
		ID:        dto.ID,
		SchoolID:  dto.SchoolID,
		Name:      dto.Name,
		Email:     dto.Email,
		Role:      dto.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if dto.ID != "" {
		existing, err := s.repo.GetByID(dto.ID)
		if err != nil {
			s.logger.Error("failed to load user for save", "user_id", dto.ID, "error", err)
			return nil, internal.NewInternalError("failed to load user", err)
		}
		if existing != nil {
			user.PasswordHash = existing.PasswordHash
			user.LastLoginAt = existing.LastLoginAt
			user.CreatedAt = existing.CreatedAt
			user.IsActive = existing.IsActive
		}
	} else {
		user.ID = uuid.NewString()
	}

	if dto.IsActive != nil {
		user.IsActive = *dto.IsActive
	}

	if err := s.repo.Save(user); err != nil {
		s.logger.Error("failed to save system user", "user_id", user.ID, "error", err)
		return nil, internal.NewInternalError("failed to save user", err)
	}

	s.recorder.Record(ctx, user.SchoolID, "user.save",
		fmt.Sprintf("saved user %q with role %s", user.Email, user.Role))
	return user, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load user for delete", "user_id", id, "error", err)
		return internal.NewInternalError("failed to load user", err)
	}
	if existing == nil {
		return internal.ErrUserNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete system user", "user_id", id, "error", err)
		return internal.NewInternalError("failed to delete user", err)
	}

	s.recorder.Record(ctx, existing.SchoolID, "user.delete",
		fmt.Sprintf("deleted user %q", existing.Email))
	return nil
}
