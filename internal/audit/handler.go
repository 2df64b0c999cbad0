package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/scolaris/school-management/internal/transport"
	"github.com/scolaris/school-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Recorder *Recorder
}

func NewHandler(recorder *Recorder) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Recorder:    recorder,
	}
}

// ListEntries returns recent audit entries, optionally scoped to one school
// via the school_id query parameter.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	schoolID := r.URL.Query().Get("school_id")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.Recorder.List(r.Context(), schoolID, limit)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
