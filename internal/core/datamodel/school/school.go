package school

import (
	"time"
)

// School types form a closed enumeration.
const (
	TypePrimary   = "primary"
	TypeSecondary = "secondary"
	TypeHigher    = "higher"
)

// DefaultPin is assumed whenever a school has no PIN stored.
const DefaultPin = "0000"

// School is the persisted school record. The configuration sub-structure
// lives and dies with its owning school; it has no independent lifecycle.
type School struct {
	ID        string   `json:"id" gorm:"primaryKey"`
	Name      string   `json:"name" gorm:"not null"`
	Address   string   `json:"address"`
	Logo      []byte   `json:"logo,omitempty" gorm:"type:blob"`
	Type      string   `json:"type" gorm:"column:school_type;default:secondary"`
	Modules   []string `json:"modules" gorm:"serializer:json"`
	Config    Config   `json:"config" gorm:"embedded;embeddedPrefix:config_"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

// Config carries the displayable identity fields, the security PIN and the
// permission/subject sub-structures of a school.
type Config struct {
	Name            string              `json:"name"`
	Address         string              `json:"address"`
	Phone           string              `json:"phone"`
	Email           string              `json:"email"`
	AcademicYear    string              `json:"academic_year" gorm:"column:academic_year"`
	DirectorName    string              `json:"director_name" gorm:"column:director_name"`
	Pin             string              `json:"-" gorm:"column:pin"`
	RolePermissions map[string][]string `json:"role_permissions" gorm:"column:role_permissions;serializer:json"`
	Subjects        []string            `json:"subjects" gorm:"serializer:json"`
}

func (School) TableName() string {
	return "schools"
}

// EffectivePin returns the stored PIN, falling back to the default when the
// school was saved without one.
func (s *School) EffectivePin() string {
	if s.Config.Pin == "" {
		return DefaultPin
	}
	return s.Config.Pin
}

func ValidType(t string) bool {
	switch t {
	case TypePrimary, TypeSecondary, TypeHigher:
		return true
	}
	return false
}
