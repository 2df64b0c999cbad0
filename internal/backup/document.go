package backup

import (
	"time"

	"gorm.io/gorm"

	auditDatamodel "github.com/scolaris/school-management/internal/core/datamodel/audit"
	financeDatamodel "github.com/scolaris/school-management/internal/core/datamodel/finance"
	libraryDatamodel "github.com/scolaris/school-management/internal/core/datamodel/library"
	schoolDatamodel "github.com/scolaris/school-management/internal/core/datamodel/school"
	classDatamodel "github.com/scolaris/school-management/internal/core/datamodel/schoolclass"
	staffDatamodel "github.com/scolaris/school-management/internal/core/datamodel/staff"
	studentDatamodel "github.com/scolaris/school-management/internal/core/datamodel/student"
	userDatamodel "github.com/scolaris/school-management/internal/core/datamodel/systemuser"
)

// DocumentVersion is stamped into every structured export. Restore accepts
// exactly this version; anything else is refused with the store untouched.
const DocumentVersion = 1

// Document is the structured backup format: one field per managed
// collection, self-describing and restorable.
type Document struct {
	Version      int                             `json:"version"`
	ExportedAt   time.Time                       `json:"exported_at"`
	Schools      []schoolRecord                  `json:"schools"`
	SystemUsers  []userRecord                    `json:"system_users"`
	Students     []studentDatamodel.Student      `json:"students"`
	Teachers     []staffDatamodel.Teacher        `json:"teachers"`
	Classes      []classDatamodel.SchoolClass    `json:"classes"`
	Transactions []financeDatamodel.Transaction  `json:"transactions"`
	Books        []libraryDatamodel.Book         `json:"library_books"`
	AuditLogs    []auditDatamodel.LogEntry       `json:"audit_logs"`
}

// schoolRecord carries the PIN alongside the school fields. The datamodel
// hides the PIN from JSON so it never leaks through an API response, but a
// backup must round-trip it.
type schoolRecord struct {
	schoolDatamodel.School
	Pin string `json:"pin,omitempty"`
}

func newSchoolRecord(s schoolDatamodel.School) schoolRecord {
	return schoolRecord{School: s, Pin: s.Config.Pin}
}

func (r schoolRecord) model() schoolDatamodel.School {
	s := r.School
	s.Config.Pin = r.Pin
	return s
}

// userRecord does the same for the password hash: redacted everywhere else,
// preserved in a backup so restored accounts can still log in.
type userRecord struct {
	userDatamodel.SystemUser
	PasswordHash string `json:"password_hash,omitempty"`
}

func newUserRecord(u userDatamodel.SystemUser) userRecord {
	return userRecord{SystemUser: u, PasswordHash: u.PasswordHash}
}

func (r userRecord) model() userDatamodel.SystemUser {
	u := r.SystemUser
	u.PasswordHash = r.PasswordHash
	return u
}

// collect reads every collection into a document.
func collect(db *gorm.DB, now time.Time) (*Document, error) {
	doc := &Document{
		Version:    DocumentVersion,
		ExportedAt: now,
	}

	var schools []schoolDatamodel.School
	if err := db.Order("created_at ASC").Find(&schools).Error; err != nil {
		return nil, err
	}
	for _, s := range schools {
		doc.Schools = append(doc.Schools, newSchoolRecord(s))
	}

	var users []userDatamodel.SystemUser
	if err := db.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		doc.SystemUsers = append(doc.SystemUsers, newUserRecord(u))
	}
	if err := db.Order("created_at ASC").Find(&doc.Students).Error; err != nil {
		return nil, err
	}
	if err := db.Order("created_at ASC").Find(&doc.Teachers).Error; err != nil {
		return nil, err
	}
	if err := db.Order("created_at ASC").Find(&doc.Classes).Error; err != nil {
		return nil, err
	}
	if err := db.Order("created_at ASC").Find(&doc.Transactions).Error; err != nil {
		return nil, err
	}
	if err := db.Order("created_at ASC").Find(&doc.Books).Error; err != nil {
		return nil, err
	}
	if err := db.Order("created_at ASC").Find(&doc.AuditLogs).Error; err != nil {
		return nil, err
	}

	return doc, nil
}

// apply replaces every collection with the document's content. Runs inside
// the caller's transaction so a failure leaves nothing half-written.
func apply(tx *gorm.DB, doc *Document) error {
	if err := clearAll(tx); err != nil {
		return err
	}

	if len(doc.Schools) > 0 {
		schools := make([]schoolDatamodel.School, 0, len(doc.Schools))
		for _, r := range doc.Schools {
			schools = append(schools, r.model())
		}
		if err := tx.CreateInBatches(schools, 100).Error; err != nil {
			return err
		}
	}
	if len(doc.SystemUsers) > 0 {
		users := make([]userDatamodel.SystemUser, 0, len(doc.SystemUsers))
		for _, r := range doc.SystemUsers {
			users = append(users, r.model())
		}
		if err := tx.CreateInBatches(users, 100).Error; err != nil {
			return err
		}
	}
	if len(doc.Students) > 0 {
		if err := tx.CreateInBatches(doc.Students, 100).Error; err != nil {
			return err
		}
	}
	if len(doc.Teachers) > 0 {
		if err := tx.CreateInBatches(doc.Teachers, 100).Error; err != nil {
			return err
		}
	}
	if len(doc.Classes) > 0 {
		if err := tx.CreateInBatches(doc.Classes, 100).Error; err != nil {
			return err
		}
	}
	if len(doc.Transactions) > 0 {
		if err := tx.CreateInBatches(doc.Transactions, 100).Error; err != nil {
			return err
		}
	}
	if len(doc.Books) > 0 {
		if err := tx.CreateInBatches(doc.Books, 100).Error; err != nil {
			return err
		}
	}
	if len(doc.AuditLogs) > 0 {
		if err := tx.CreateInBatches(doc.AuditLogs, 100).Error; err != nil {
			return err
		}
	}

	return nil
}

func clearAll(tx *gorm.DB) error {
	// Session with AllowGlobalUpdate because these are deliberate
	// whole-table deletes.
	session := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{
		&auditDatamodel.LogEntry{},
		&libraryDatamodel.Book{},
		&financeDatamodel.Transaction{},
		&classDatamodel.SchoolClass{},
		&staffDatamodel.Teacher{},
		&studentDatamodel.Student{},
		&userDatamodel.SystemUser{},
		&schoolDatamodel.School{},
	} {
		if err := session.Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
