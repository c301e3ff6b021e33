package admin

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jonny/kubot/internal/domain/model"
	"github.com/jonny/kubot/internal/domain/port/outbound"
	"github.com/jonny/kubot/internal/domain/service"
	"github.com/jonny/kubot/pkg/apierror"
)

// Handler serves the read-only operations API.
type Handler struct {
	jobs    *service.JobRegistry
	history outbound.HistoryRepository
	audits  outbound.AuditRepository
}

// NewHandler creates a new Handler over the job registry and repositories.
func NewHandler(jobs *service.JobRegistry, history outbound.HistoryRepository, audits outbound.AuditRepository) *Handler {
	return &Handler{jobs: jobs, history: history, audits: audits}
}

// ListJobs returns all known async jobs, newest first.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"jobs": h.jobs.List(),
	})
}

// GetJob returns one job by ID.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, ok := h.jobs.Get(id)
	if !ok {
		writeError(w, apierror.NotFound("job"))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ListHistory returns paginated command history, newest first.
// Query parameters: user, kind, page, size.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	filter := outbound.HistoryFilter{
		UserID: r.URL.Query().Get("user"),
		Kind:   model.IntentKind(r.URL.Query().Get("kind")),
	}

	page, err := h.history.List(r.Context(), filter, pageFromQuery(r))
	if err != nil {
		writeError(w, apierror.Internal("listing history"))
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ListAudit returns paginated audit logs, newest first.
// Query parameters: user, event, page, size.
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	filter := outbound.AuditFilter{
		UserID:    r.URL.Query().Get("user"),
		EventType: model.AuditEventType(r.URL.Query().Get("event")),
	}

	page, err := h.audits.List(r.Context(), filter, pageFromQuery(r))
	if err != nil {
		writeError(w, apierror.Internal("listing audit logs"))
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func pageFromQuery(r *http.Request) outbound.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 200 {
		size = 50
	}
	return outbound.PageRequest{Page: page, Size: size, Desc: true}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, e *apierror.Error) {
	writeJSON(w, e.Code, e)
}
