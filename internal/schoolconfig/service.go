package schoolconfig

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/scolaris/school-management/internal"
	schoolDatamodel "github.com/scolaris/school-management/internal/core/datamodel/school"
	"github.com/scolaris/school-management/internal/permission"
)

// AuditRecorder is the best-effort side channel every mutation reports to.
// Implementations must never return an error to the caller.
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

// LoadActiveSchool resolves the school the session should display: the
// actor's own school when scoped, else the first school in the store for an
// unscoped super-admin. Callers receiving ErrNoSchoolAvailable render an
// empty view rather than failing.
func (s *Service) LoadActiveSchool(ctx context.Context) (*schoolDatamodel.School, error) {
	actor, ok := internal.ActorFromContext(ctx)
	if !ok {
		return nil, internal.ErrNoSchoolAvailable
	}

	if actor.SchoolID != "" {
		school, err := s.repo.GetByID(actor.SchoolID)
		if err != nil {
			s.logger.Error("failed to load school", "school_id", actor.SchoolID, "error", err)
			return nil, internal.NewInternalError("failed to load school", err)
		}
		if school == nil {
			return nil, internal.ErrNoSchoolAvailable
		}
		return school, nil
	}

	if actor.Role == string(permission.RoleSuperAdmin) {
		school, err := s.repo.GetBySchoolOrder()
		if err != nil {
			s.logger.Error("failed to load first school", "error", err)
			return nil, internal.NewInternalError("failed to load school", err)
		}
		if school == nil {
			return nil, internal.ErrNoSchoolAvailable
		}
		return school, nil
	}

	return nil, internal.ErrNoSchoolAvailable
}

func (s *Service) ListSchools(ctx context.Context) ([]*schoolDatamodel.School, error) {
	schools, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list schools", "error", err)
		return nil, internal.NewInternalError("failed to list schools", err)
	}
	return schools, nil
}

// SaveSchool persists an identity edit. The stored record (or, for a new
// school, the default template) is the merge base; RolePermissions, Subjects
// and the PIN are always carried forward from it regardless of the draft.
func (s *Service) SaveSchool(ctx context.Context, dto SaveSchoolDTO) (*schoolDatamodel.School, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	base := DefaultTemplate(now)
	if dto.ID != "" {
		existing, err := s.repo.GetByID(dto.ID)
		if err != nil {
			s.logger.Error("failed to load school for save", "school_id", dto.ID, "error", err)
			return nil, internal.NewInternalError("failed to load school", err)
		}
		if existing != nil {
			base = *existing
		} else {
			base.ID = dto.ID
		}
	}

	overlay := base
	overlay.Name = dto.Name
	overlay.Address = dto.Address
	overlay.Logo = dto.Logo
	if dto.Type != "" {
		overlay.Type = dto.Type
	}
	overlay.Modules = dto.Modules
	overlay.Config.Name = dto.Name
	overlay.Config.Address = dto.Address
	overlay.Config.Phone = dto.Phone
	overlay.Config.Email = dto.Email
	if dto.AcademicYear != "" {
		overlay.Config.AcademicYear = dto.AcademicYear
	}
	overlay.Config.DirectorName = dto.DirectorName

	merged := Merge(base, overlay, PreservedOnIdentitySave)
	if merged.ID == "" {
		merged.ID = NewSchoolID(now)
	}
	if merged.CreatedAt.IsZero() {
		merged.CreatedAt = now
	}
	merged.UpdatedAt = now

	if err := s.repo.Save(&merged); err != nil {
		s.logger.Error("failed to save school", "school_id", merged.ID, "error", err)
		return nil, internal.NewInternalError("failed to save school", err)
	}

	s.recorder.Record(ctx, merged.ID, "school.save",
		fmt.Sprintf("saved school %q (%d modules)", merged.Name, len(merged.Modules)))
	return &merged, nil
}

// SavePermissionsAndSubjects overwrites exactly these two config fields,
// leaving everything else untouched. The permission map is validated
// against the role and module catalogs before anything is written.
func (s *Service) SavePermissionsAndSubjects(ctx context.Context, schoolID string, dto SavePermissionsSubjectsDTO) (*schoolDatamodel.School, error) {
	if err := permission.ValidateRolePermissions(dto.RolePermissions); err != nil {
		return nil, err
	}

	school, err := s.loadExisting(schoolID)
	if err != nil {
		return nil, err
	}

	school.Config.RolePermissions = dto.RolePermissions
	school.Config.Subjects = dto.Subjects
	school.UpdatedAt = s.now()

	if err := s.repo.Save(school); err != nil {
		s.logger.Error("failed to save permissions and subjects", "school_id", schoolID, "error", err)
		return nil, internal.NewInternalError("failed to save permissions", err)
	}

	s.recorder.Record(ctx, schoolID, "school.permissions.save",
		fmt.Sprintf("updated role permissions (%d roles) and subjects (%d entries)",
			len(dto.RolePermissions), len(dto.Subjects)))
	return school, nil
}

// AddSubject appends a subject, keeping existing order. Duplicates are
// rejected case-insensitively.
func (s *Service) AddSubject(ctx context.Context, schoolID string, dto AddSubjectDTO) (*schoolDatamodel.School, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	school, err := s.loadExisting(schoolID)
	if err != nil {
		return nil, err
	}

	if containsSubject(school.Config.Subjects, dto.Name) {
		return nil, internal.ErrDuplicateSubject
	}

	school.Config.Subjects = append(school.Config.Subjects, dto.Name)
	school.UpdatedAt = s.now()

	if err := s.repo.Save(school); err != nil {
		s.logger.Error("failed to add subject", "school_id", schoolID, "error", err)
		return nil, internal.NewInternalError("failed to add subject", err)
	}

	s.recorder.Record(ctx, schoolID, "school.subject.add", fmt.Sprintf("added subject %q", dto.Name))
	return school, nil
}

// ResetPermissions returns the compiled-in grant table. Pure: nothing is
// persisted until the caller saves it through SavePermissionsAndSubjects.
func (s *Service) ResetPermissions() permission.RolePermissions {
	return permission.Defaults()
}

// ResetSubjects returns the compiled-in subject template; same contract as
// ResetPermissions.
func (s *Service) ResetSubjects() []string {
	return DefaultSubjects()
}

// TogglePermission flips one permission for one role in the given map and
// returns the result. Pure: the caller persists the new map through
// SavePermissionsAndSubjects when it is done editing.
func (s *Service) TogglePermission(role string, permissionID string, current permission.RolePermissions) (permission.RolePermissions, error) {
	if !permission.ValidRole(role) {
		return nil, internal.ErrUnknownRole
	}
	return permission.Toggle(current, permission.Role(role), permissionID), nil
}

// HasPermission checks the actor's role against the actor's own school's
// grant table. A role the school never declared falls back to the
// compiled-in defaults, so a fresh store still authorizes sensibly.
func (s *Service) HasPermission(ctx context.Context, actor *internal.Actor, permissionID string) bool {
	if actor == nil {
		return false
	}
	if actor.Role == string(permission.RoleSuperAdmin) {
		return true
	}

	// The school comes from the actor argument, never from whatever actor
	// the context happens to carry.
	var school *schoolDatamodel.School
	if actor.SchoolID != "" {
		school, _ = s.repo.GetByID(actor.SchoolID)
	}
	if school == nil || school.Config.RolePermissions == nil {
		return permission.Has(permission.Defaults(), permission.Role(actor.Role), permissionID)
	}

	granted := permission.RolePermissions(school.Config.RolePermissions)
	if _, declared := granted[actor.Role]; !declared {
		return permission.Has(permission.Defaults(), permission.Role(actor.Role), permissionID)
	}
	return permission.Has(granted, permission.Role(actor.Role), permissionID)
}

// ChangePin validates in order: current PIN matches the stored one (default
// "0000" when unset), the new pair agrees, and the new PIN is 4 digits.
// The first failing check aborts with no write.
func (s *Service) ChangePin(ctx context.Context, schoolID string, dto ChangePinDTO) error {
	school, err := s.loadExisting(schoolID)
	if err != nil {
		return err
	}

	if dto.CurrentPin != school.EffectivePin() {
		return internal.ErrIncorrectPin
	}
	if dto.NewPin != dto.ConfirmPin {
		return internal.ErrPinMismatch
	}
	if !ValidPinFormat(dto.NewPin) {
		return internal.ErrInvalidPinFormat
	}

	school.Config.Pin = dto.NewPin
	school.UpdatedAt = s.now()

	if err := s.repo.Save(school); err != nil {
		s.logger.Error("failed to change pin", "school_id", schoolID, "error", err)
		return internal.NewInternalError("failed to change pin", err)
	}

	// The PIN value itself never reaches the audit trail.
	s.recorder.Record(ctx, schoolID, "school.pin.change", "security PIN changed")
	return nil
}

func (s *Service) loadExisting(schoolID string) (*schoolDatamodel.School, error) {
	school, err := s.repo.GetByID(schoolID)
	if err != nil {
		s.logger.Error("failed to load school", "school_id", schoolID, "error", err)
		return nil, internal.NewInternalError("failed to load school", err)
	}
	if school == nil {
		return nil, internal.ErrSchoolNotFound
	}
	return school, nil
}
