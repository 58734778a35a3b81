package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bayline/queue-service/internal/events"
	"bayline/queue-service/internal/metrics"
	"bayline/queue-service/internal/models"
	"bayline/queue-service/internal/queue"
	"bayline/queue-service/internal/store"
)

type Handler struct {
	store      store.RecordStore
	events     events.Producer
	workingDay queue.WorkingDay
	capacity   queue.Capacity
	minBuffer  time.Duration
	now        func() time.Time
}

type Options struct {
	Events     events.Producer
	WorkingDay queue.WorkingDay
	Capacity   queue.Capacity
	MinBuffer  time.Duration
	Now        func() time.Time
}

func NewHandler(store store.RecordStore, options Options) *Handler {
	producer := options.Events
	if producer == nil {
		producer = events.NopProducer{}
	}
	now := options.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Handler{
		store:      store,
		events:     producer,
		workingDay: options.WorkingDay,
		capacity:   options.Capacity,
		minBuffer:  options.MinBuffer,
		now:        now,
	}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/records", h.handleRecords)
	mux.HandleFunc("/api/records/today", h.handleTodayRecords)
	mux.HandleFunc("/api/records/", h.handleRecordByID)
	mux.HandleFunc("/api/queue", h.handleQueueView)
	mux.HandleFunc("/api/slots", h.handleSlots)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type createRecordRequest struct {
	Title         string     `json:"title"`
	Comment       string     `json:"comment"`
	AppointmentAt *time.Time `json:"appointment_at"`
}

func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req createRecordRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Comment = strings.TrimSpace(req.Comment)
	if req.Title == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "title is required")
		return
	}
	if req.AppointmentAt != nil {
		if err := h.workingDay.ValidateAppointmentTime(*req.AppointmentAt, h.now(), h.minBuffer); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
	}

	record, err := h.store.CreateRecord(r.Context(), store.CreateRecordInput{
		Title:         req.Title,
		Comment:       req.Comment,
		AppointmentAt: req.AppointmentAt,
		CreatedAt:     h.now(),
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return
	}

	kind := "walk_in"
	if record.IsAppointment() {
		kind = "appointment"
	}
	metrics.RecordsCreatedTotal.WithLabelValues(kind).Inc()
	h.events.RecordChanged(r.Context(), "record_created", record)
	writeJSON(w, http.StatusOK, withTicketNumber(record))
}

func (h *Handler) handleTodayRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	records, err := h.store.TodayRecords(r.Context(), h.now())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return
	}

	for i := range records {
		records[i] = withTicketNumber(records[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (h *Handler) handleQueueView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	records, err := h.store.TodayRecords(r.Context(), h.now())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, queue.BuildView(records))
}

func (h *Handler) handleRecordByID(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/records/"), "/")
	parts := strings.Split(path, "/")

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "record id must be a positive integer")
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.handleGetRecord(w, r, id)
		case http.MethodPut:
			h.handleUpdateRecord(w, r, id)
		case http.MethodDelete:
			h.handleDeleteRecord(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case len(parts) == 2 && parts[1] == "status":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleUpdateStatus(w, r, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request, id int64) {
	record, err := h.store.GetRecord(r.Context(), id)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, withTicketNumber(record))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request, id int64) {
	var req updateStatusRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	req.Status = strings.TrimSpace(req.Status)
	if !models.ValidStatus(req.Status) {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "unknown status")
		return
	}

	record, err := h.store.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return
	}

	metrics.StatusChangesTotal.WithLabelValues(record.Status).Inc()
	h.events.RecordChanged(r.Context(), "status_changed", record)
	writeJSON(w, http.StatusOK, withTicketNumber(record))
}

type updateRecordRequest struct {
	Title         string     `json:"title"`
	Comment       string     `json:"comment"`
	Status        string     `json:"status"`
	AppointmentAt *time.Time `json:"appointment_at"`
}

func (h *Handler) handleUpdateRecord(w http.ResponseWriter, r *http.Request, id int64) {
	var req updateRecordRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Comment = strings.TrimSpace(req.Comment)
	req.Status = strings.TrimSpace(req.Status)
	if req.Title == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "title is required")
		return
	}
	if !models.ValidStatus(req.Status) {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "unknown status")
		return
	}
	if req.AppointmentAt != nil {
		if err := h.workingDay.ValidateAppointmentTime(*req.AppointmentAt, h.now(), h.minBuffer); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
	}

	record, err := h.store.UpdateRecord(r.Context(), store.UpdateRecordInput{
		ID:            id,
		Title:         req.Title,
		Comment:       req.Comment,
		Status:        req.Status,
		AppointmentAt: req.AppointmentAt,
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return
	}

	h.events.RecordChanged(r.Context(), "record_updated", record)
	writeJSON(w, http.StatusOK, withTicketNumber(record))
}

func (h *Handler) handleDeleteRecord(w http.ResponseWriter, r *http.Request, id int64) {
	record, err := h.store.GetRecord(r.Context(), id)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return
	}

	if err := h.store.DeleteRecord(r.Context(), id); err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return
	}

	h.events.RecordChanged(r.Context(), "record_deleted", record)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) handleSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	now := h.now()
	date := now
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, now.Location())
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	candidates, err := h.store.CandidateSlots(r.Context(), date)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return
	}

	backlog, err := h.store.CountWaitingWalkIns(r.Context(), now)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return
	}

	slots, err := queue.AvailableSlots(candidates, backlog, h.capacity, now, h.minBuffer)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return
	}
	if slots == nil {
		slots = []time.Time{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
}

func withTicketNumber(record models.ServiceRecord) models.ServiceRecord {
	record.TicketNumber = queue.TicketLabel(record.ID, record.IsAppointment())
	return record
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		return http.StatusNotFound, "record_not_found", "record not found"
	case errors.Is(err, store.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition", "record status does not allow this change"
	case errors.Is(err, store.ErrEmptyTitle):
		return http.StatusBadRequest, "invalid_request", "title is required"
	case errors.Is(err, store.ErrSlotTaken):
		return http.StatusConflict, "slot_taken", "appointment slot already taken"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}
