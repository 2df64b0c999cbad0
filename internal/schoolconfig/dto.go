package schoolconfig

import (
	"regexp"

	"github.com/scolaris/school-management/internal"
	schoolDatamodel "github.com/scolaris/school-management/internal/core/datamodel/school"
)

// SaveSchoolDTO carries an identity edit. Permissions and subjects are
// deliberately absent: whatever a client sends for them is ignored by the
// identity save path.
type SaveSchoolDTO struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Logo         []byte   `json:"logo,omitempty"`
	Type         string   `json:"type"`
	Modules      []string `json:"modules"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email"`
	AcademicYear string   `json:"academic_year"`
	DirectorName string   `json:"director_name"`
}

func (dto SaveSchoolDTO) Validate() error {
	if dto.Name == "" {
		return internal.ErrSchoolNameRequired
	}
	if dto.Type != "" && !schoolDatamodel.ValidType(dto.Type) {
		return internal.ErrInvalidSchoolType
	}
	return nil
}

type SavePermissionsSubjectsDTO struct {
	RolePermissions map[string][]string `json:"role_permissions"`
	Subjects        []string            `json:"subjects"`
}

// TogglePermissionDTO carries one permission flip against the client's
// current in-progress grant table.
type TogglePermissionDTO struct {
	Role            string              `json:"role"`
	PermissionID    string              `json:"permission_id"`
	RolePermissions map[string][]string `json:"role_permissions"`
}

type AddSubjectDTO struct {
	Name string `json:"name"`
}

func (dto AddSubjectDTO) Validate() error {
	if dto.Name == "" {
		return internal.NewValidationFieldError("name", "subject name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type ChangePinDTO struct {
	CurrentPin string `json:"current_pin"`
	NewPin     string `json:"new_pin"`
	ConfirmPin string `json:"confirm_pin"`
}

var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

// ValidPinFormat reports whether a PIN is exactly 4 numeric characters.
func ValidPinFormat(pin string) bool {
	return pinPattern.MatchString(pin)
}

// SchoolResponse is the read model handed to clients; the PIN never leaves
// the server.
type SchoolResponse struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Address         string              `json:"address"`
	Logo            []byte              `json:"logo,omitempty"`
	Type            string              `json:"type"`
	Modules         []string            `json:"modules"`
	Phone           string              `json:"phone"`
	Email           string              `json:"email"`
	AcademicYear    string              `json:"academic_year"`
	DirectorName    string              `json:"director_name"`
	RolePermissions map[string][]string `json:"role_permissions"`
	Subjects        []string            `json:"subjects"`
}

func ToResponse(s *schoolDatamodel.School) SchoolResponse {
	return SchoolResponse{
		ID:              s.ID,
		Name:            s.Name,
		Address:         s.Address,
		Logo:            s.Logo,
		Type:            s.Type,
		Modules:         s.Modules,
		Phone:           s.Config.Phone,
		Email:           s.Config.Email,
		AcademicYear:    s.Config.AcademicYear,
		DirectorName:    s.Config.DirectorName,
		RolePermissions: s.Config.RolePermissions,
		Subjects:        s.Config.Subjects,
	}
}
