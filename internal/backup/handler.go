package backup

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/scolaris/school-management/internal/transport"
	"github.com/scolaris/school-management/pkg/logger"
)

type EngineAPI interface {
	CreateBackup(ctx context.Context, format Format) (string, error)
	RestoreBackup(ctx context.Context, text string) error
	FactoryReset(ctx context.Context) error
}

type Handler struct {
	*transport.BaseHandler
	Engine EngineAPI
}

func NewHandler(engine EngineAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Engine:      engine,
	}
}

// CreateBackup streams the export with a download filename. Format comes
// from the query string; anything but "flat" means structured.
func (h *Handler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	format := FormatStructured
	if r.URL.Query().Get("format") == string(FormatFlat) {
		format = FormatFlat
	}

	out, err := h.Engine.CreateBackup(r.Context(), format)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	contentType := "application/json"
	if format == FormatFlat {
		contentType = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+FileName(format, time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if err := h.Engine.RestoreBackup(r.Context(), string(body)); err != nil {
		h.WriteAppError(w, err)
		return
	}

	// reinitialize tells clients to drop every cached record: the prior
	// objects no longer exist in the store.
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"restored":     true,
		"reinitialize": true,
	})
}

// FactoryReset expects an explicit confirmation in the payload; the double
// confirmation dialog is the UI's concern, this is the API-side latch.
func (h *Handler) FactoryReset(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Confirm string `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Confirm != "RESET" {
		h.WriteError(w, http.StatusBadRequest, `factory reset requires {"confirm": "RESET"}`)
		return
	}

	if err := h.Engine.FactoryReset(r.Context()); err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reset":        true,
		"reinitialize": true,
	})
}
