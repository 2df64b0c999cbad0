package reportgen

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/scolaris/school-management/internal/transport"
	"github.com/scolaris/school-management/pkg/logger"
)

// ClientAPI is what the HTTP handler needs from the generation client.
type ClientAPI interface {
	GenerateReport(ctx context.Context, data StudentReportData) string
	AnalyzeCohort(ctx context.Context, students []StudentSummary) string
}

type Handler struct {
	*transport.BaseHandler
	Client ClientAPI
}

func NewHandler(client ClientAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Client:      client,
	}
}

// GenerateStudentReport always answers 200: the client fails closed to
// fallback prose, so there is no error path to surface.
func (h *Handler) GenerateStudentReport(w http.ResponseWriter, r *http.Request) {
	var data StudentReportData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if data.FullName == "" {
		h.WriteError(w, http.StatusBadRequest, "full_name is required")
		return
	}

	report := h.Client.GenerateReport(r.Context(), data)
	h.WriteJSON(w, http.StatusOK, map[string]string{"report": report})
}

func (h *Handler) AnalyzeClass(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Students []StudentSummary `json:"students"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(payload.Students) == 0 {
		h.WriteError(w, http.StatusBadRequest, "students list is empty")
		return
	}

	analysis := h.Client.AnalyzeCohort(r.Context(), payload.Students)
	h.WriteJSON(w, http.StatusOK, map[string]string{"analysis_html": analysis})
}
