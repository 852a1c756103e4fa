package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eugenenazirov/seating-planner/internal/export"
	"github.com/eugenenazirov/seating-planner/internal/metrics"
	"github.com/eugenenazirov/seating-planner/internal/seating"
	"github.com/eugenenazirov/seating-planner/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const defaultMaxUploadBytes = 10 << 20

// Handler wires the seat assigner, storage and metrics into HTTP handlers.
type Handler struct {
	assigner seating.Assigner
	storage  storage.Storage
	metrics  metrics.Recorder
	logger   *zap.Logger

	clock          func() time.Time
	newID          func() string
	maxUploadBytes int64

	mu                sync.RWMutex
	settingsUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithIDGenerator overrides how arrangement IDs are minted, primarily for tests.
func WithIDGenerator(newID func() string) HandlerOption {
	return func(h *Handler) {
		h.newID = newID
	}
}

// WithMetrics sets the recorder notified about arrangements and exports.
func WithMetrics(rec metrics.Recorder) HandlerOption {
	return func(h *Handler) {
		if rec != nil {
			h.metrics = rec
		}
	}
}

// WithHandlerLogger sets the logger used for domain events.
func WithHandlerLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMaxUploadBytes limits the size of arrangement request bodies.
func WithMaxUploadBytes(limit int64) HandlerOption {
	return func(h *Handler) {
		if limit > 0 {
			h.maxUploadBytes = limit
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(assigner seating.Assigner, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		assigner: assigner,
		storage:  store,
		metrics:  metrics.Nop{},
		logger:   zap.NewNop(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
		newID:          uuid.NewString,
		maxUploadBytes: defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.settingsUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	_ = r
	settings, err := h.storage.GetSettings()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.settingsResponse(settings, ""))
}

func (h *Handler) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	settings, err := h.storage.GetSettings()
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if req.SeatsPerTable != nil {
		settings.SeatsPerTable = *req.SeatsPerTable
	}
	if req.Diversify != nil {
		settings.Diversify = *req.Diversify
	}

	if err := h.storage.SetSettings(settings); err != nil {
		if errors.Is(err, storage.ErrInvalidSettings) {
			writeError(w, http.StatusBadRequest, "Invalid settings", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markSettingsUpdated()
	writeJSON(w, http.StatusOK, h.settingsResponse(settings, "Settings updated successfully"))
}

func (h *Handler) handleCreateArrangement(w http.ResponseWriter, r *http.Request) {
	in, err := decodeArrangementRequest(w, r, h.maxUploadBytes)
	if err != nil {
		h.writeDecodeError(w, err)
		return
	}

	settings, err := h.storage.GetSettings()
	if err != nil {
		writeInternalError(w, err)
		return
	}
	seatsPerTable := settings.SeatsPerTable
	if in.seatsPerTable != nil {
		seatsPerTable = *in.seatsPerTable
	}
	diversify := settings.Diversify
	if in.diversify != nil {
		diversify = *in.diversify
	}

	assigner := h.assigner
	if in.seed != nil {
		assigner = seating.New(seating.WithSeed(*in.seed))
	}

	start := time.Now()
	arr, err := seating.Arrange(assigner, in.people, seatsPerTable, diversify)
	elapsed := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, seating.ErrNoPeople), errors.Is(err, seating.ErrInvalidSeatsPerTable):
			h.metrics.ObserveArrangementFailure("invalid_configuration")
			writeError(w, http.StatusBadRequest, "Invalid configuration", err.Error(),
				"Upload a roster with at least one person and set seats per table to a positive number")
		case errors.Is(err, seating.ErrCapacityShortfall):
			h.metrics.ObserveArrangementFailure("capacity_shortfall")
			h.logger.Error("table capacities cannot hold everyone",
				zap.Int("people", len(in.people)),
				zap.Int("seats_per_table", seatsPerTable),
				zap.String("request_id", requestIDFromContext(r.Context())),
			)
			writeInternalError(w, err)
		default:
			h.metrics.ObserveArrangementFailure("internal")
			writeInternalError(w, err)
		}
		return
	}

	record := storage.Record{
		ID:            h.newID(),
		CreatedAt:     h.clock(),
		SeatsPerTable: seatsPerTable,
		Diversify:     diversify,
		Seed:          in.seed,
		Arrangement:   arr,
	}
	if err := h.storage.SaveArrangement(record); err != nil {
		writeInternalError(w, err)
		return
	}

	pairs := arr.SameDepartmentPairs()
	h.metrics.ObserveArrangement(diversify, len(in.people), len(arr.Tables), pairs, elapsed)
	h.logger.Info("arrangement generated",
		zap.String("arrangement_id", record.ID),
		zap.Int("people", len(in.people)),
		zap.Int("tables", len(arr.Tables)),
		zap.Bool("diversify", diversify),
		zap.Int("same_department_pairs", pairs),
		zap.String("request_id", requestIDFromContext(r.Context())),
	)

	resp := newArrangementResponse(record)
	resp.CalculationTimeMs = elapsed.Milliseconds()
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleGetArrangement(w http.ResponseWriter, r *http.Request) {
	record, ok := h.lookupArrangement(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newArrangementResponse(record))
}

func (h *Handler) handleExportArrangement(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid format", err.Error())
		return
	}

	record, ok := h.lookupArrangement(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, record.Arrangement, format); err != nil {
		writeInternalError(w, err)
		return
	}

	h.metrics.ObserveExport(string(format))
	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) lookupArrangement(w http.ResponseWriter, r *http.Request) (storage.Record, bool) {
	id := r.PathValue("id")
	record, err := h.storage.GetArrangement(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Arrangement not found", err.Error(),
				"Only the most recently generated arrangement is kept; generate a new one")
			return storage.Record{}, false
		}
		writeInternalError(w, err)
		return storage.Record{}, false
	}
	return record, true
}

func (h *Handler) settingsResponse(settings storage.Settings, message string) settingsResponse {
	return settingsResponse{
		SeatsPerTable: settings.SeatsPerTable,
		Diversify:     settings.Diversify,
		UpdatedAt:     h.currentSettingsUpdatedAt(),
		Message:       message,
	}
}

func (h *Handler) currentSettingsUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settingsUpdatedAt
}

func (h *Handler) markSettingsUpdated() {
	h.mu.Lock()
	h.settingsUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
