package permission

import "fmt"

// ModuleCatalog lists every functional area a school can enable. The
// permission table below must stay in sync with it.
var ModuleCatalog = []string{
	"students",
	"teachers",
	"classes",
	"grades",
	"finance",
	"library",
	"canteen",
	"communication",
	"reports",
	"settings",
}

func ValidModule(moduleID string) bool {
	for _, id := range ModuleCatalog {
		if id == moduleID {
			return true
		}
	}
	return false
}

// Def describes one grantable capability shown in the settings screen.
type Def struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// modulePermissions declares the fine-grained permissions per module.
// Modules absent from this table fall back to a synthesized read/write pair
// (see PermissionsForModule); that is how newly added modules gain usable
// permissions before anyone authors a definition.
var modulePermissions = map[string][]Def{
	"students": {
		{ID: "students.read", Label: "Consulter les élèves", Description: "View student records and enrollment details"},
		{ID: "students.write", Label: "Gérer les élèves", Description: "Create, edit and archive student records"},
		{ID: "students.export", Label: "Exporter les élèves", Description: "Export student lists"},
	},
	"teachers": {
		{ID: "teachers.read", Label: "Consulter les enseignants", Description: "View teacher records"},
		{ID: "teachers.write", Label: "Gérer les enseignants", Description: "Create and edit teacher records"},
	},
	"classes": {
		{ID: "classes.read", Label: "Consulter les classes", Description: "View classes and their composition"},
		{ID: "classes.write", Label: "Gérer les classes", Description: "Create classes and assign students"},
	},
	"grades": {
		{ID: "grades.read", Label: "Consulter les notes", Description: "View grades and averages"},
		{ID: "grades.write", Label: "Saisir les notes", Description: "Enter and edit grades"},
		{ID: "grades.publish", Label: "Publier les bulletins", Description: "Publish report cards to families"},
	},
	"finance": {
		{ID: "finance.read", Label: "Consulter la comptabilité", Description: "View fees and transactions"},
		{ID: "finance.write", Label: "Gérer la comptabilité", Description: "Record fees and expenses"},
		{ID: "finance.receipts", Label: "Émettre des reçus", Description: "Issue payment receipts"},
	},
	"library": {
		{ID: "library.read", Label: "Consulter la bibliothèque", Description: "Browse the book catalog"},
		{ID: "library.write", Label: "Gérer la bibliothèque", Description: "Add and remove books"},
		{ID: "library.loans", Label: "Gérer les prêts", Description: "Check books in and out"},
	},
	"reports": {
		{ID: "reports.read", Label: "Consulter les rapports", Description: "View generated reports and analyses"},
		{ID: "reports.write", Label: "Générer des rapports", Description: "Run report generation and class analysis"},
	},
	"settings": {
		{ID: "settings.read", Label: "Consulter les paramètres", Description: "View school configuration"},
		{ID: "settings.write", Label: "Gérer les paramètres", Description: "Edit configuration, permissions and backups"},
	},
}

// PermissionsForModule returns the declared permissions for a module, or the
// synthesized {module}.read / {module}.write pair when none are declared.
func PermissionsForModule(moduleID string) []Def {
	if defs, ok := modulePermissions[moduleID]; ok {
		return defs
	}
	return []Def{
		{
			ID:          fmt.Sprintf("%s.read", moduleID),
			Label:       fmt.Sprintf("Consulter %s", moduleID),
			Description: fmt.Sprintf("Read access to the %s module", moduleID),
		},
		{
			ID:          fmt.Sprintf("%s.write", moduleID),
			Label:       fmt.Sprintf("Gérer %s", moduleID),
			Description: fmt.Sprintf("Write access to the %s module", moduleID),
		},
	}
}
