package schoolconfig

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/scolaris/school-management/internal"
	schoolDatamodel "github.com/scolaris/school-management/internal/core/datamodel/school"
	"github.com/scolaris/school-management/internal/permission"
	"github.com/scolaris/school-management/internal/transport"
	"github.com/scolaris/school-management/pkg/logger"
)

type ServiceAPI interface {
	LoadActiveSchool(ctx context.Context) (*schoolDatamodel.School, error)
	ListSchools(ctx context.Context) ([]*schoolDatamodel.School, error)
	SaveSchool(ctx context.Context, dto SaveSchoolDTO) (*schoolDatamodel.School, error)
	SavePermissionsAndSubjects(ctx context.Context, schoolID string, dto SavePermissionsSubjectsDTO) (*schoolDatamodel.School, error)
	AddSubject(ctx context.Context, schoolID string, dto AddSubjectDTO) (*schoolDatamodel.School, error)
	ResetPermissions() permission.RolePermissions
	ResetSubjects() []string
	TogglePermission(role string, permissionID string, current permission.RolePermissions) (permission.RolePermissions, error)
	ChangePin(ctx context.Context, schoolID string, dto ChangePinDTO) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// GetActiveSchool resolves the school for the current session. A session
// with no reachable school gets a null payload, not an error: the console
// renders an empty view.
func (h *Handler) GetActiveSchool(w http.ResponseWriter, r *http.Request) {
	school, err := h.Service.LoadActiveSchool(r.Context())
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Code == internal.ErrCodeNoSchoolAvailable {
			h.WriteJSON(w, http.StatusOK, map[string]interface{}{"school": nil})
			return
		}
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"school": ToResponse(school)})
}

func (h *Handler) ListSchools(w http.ResponseWriter, r *http.Request) {
	schools, err := h.Service.ListSchools(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	responses := make([]SchoolResponse, 0, len(schools))
	for _, s := range schools {
		responses = append(responses, ToResponse(s))
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"schools": responses})
}

func (h *Handler) SaveSchool(w http.ResponseWriter, r *http.Request) {
	var dto SaveSchoolDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	school, err := h.Service.SaveSchool(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToResponse(school))
}

func (h *Handler) SavePermissionsAndSubjects(w http.ResponseWriter, r *http.Request) {
	schoolID := chi.URLParam(r, "id")

	var dto SavePermissionsSubjectsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	school, err := h.Service.SavePermissionsAndSubjects(r.Context(), schoolID, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToResponse(school))
}

func (h *Handler) AddSubject(w http.ResponseWriter, r *http.Request) {
	schoolID := chi.URLParam(r, "id")

	var dto AddSubjectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	school, err := h.Service.AddSubject(r.Context(), schoolID, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToResponse(school))
}

// GetPermissionDefaults serves the compiled-in grant table. The settings
// screen uses it for its "reset permissions" action; nothing is persisted
// until the client saves the result.
func (h *Handler) GetPermissionDefaults(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"role_permissions": h.Service.ResetPermissions(),
	})
}

func (h *Handler) GetSubjectDefaults(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"subjects": h.Service.ResetSubjects(),
	})
}

// GetPermissionCatalog lists every module with its fine-grained permission
// definitions, synthesized pairs included.
func (h *Handler) GetPermissionCatalog(w http.ResponseWriter, r *http.Request) {
	catalog := make(map[string][]permission.Def, len(permission.ModuleCatalog))
	for _, moduleID := range permission.ModuleCatalog {
		catalog[moduleID] = permission.PermissionsForModule(moduleID)
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"modules":     permission.ModuleCatalog,
		"permissions": catalog,
		"roles":       permission.AllRoles,
	})
}

// TogglePermission computes the edited grant table for the settings screen.
// Nothing is persisted; the client saves the whole map once editing is done.
func (h *Handler) TogglePermission(w http.ResponseWriter, r *http.Request) {
	var dto TogglePermissionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.TogglePermission(dto.Role, dto.PermissionID, dto.RolePermissions)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"role_permissions": updated})
}

func (h *Handler) ChangePin(w http.ResponseWriter, r *http.Request) {
	schoolID := chi.URLParam(r, "id")

	var dto ChangePinDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.ChangePin(r.Context(), schoolID, dto); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
