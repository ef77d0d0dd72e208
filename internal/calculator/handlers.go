package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"keypad-calculator/internal/handlers"
	"keypad-calculator/internal/keypad"
	"keypad-calculator/internal/observability"
	"keypad-calculator/internal/session"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Handler serves the calculator endpoints on top of a session store.
type Handler struct {
	store *session.Store
}

// NewHandler creates a handler backed by store.
func NewHandler(store *session.Store) *Handler {
	return &Handler{store: store}
}

// ---------------------------------------------------------------------------
// Handlers: sessions
// ---------------------------------------------------------------------------

// CreateSession handles POST /calculator/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "create_session")
	defer span.End()

	id, snap, err := h.store.Create()
	if err != nil {
		recordError(ctx, span, logger, "create_session", err, w)
		return
	}

	sessionsCounter.Add(ctx, 1)
	span.SetAttributes(attribute.String("calculator.session_id", id))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session created", zap.String("session_id", id))

	handlers.WriteJSON(w, http.StatusCreated, SessionResponse{SessionID: id, Display: newDisplay(snap)})
}

// GetSession handles GET /calculator/sessions/{sessionID}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "get_session")
	defer span.End()

	id := chi.URLParam(r, "sessionID")
	span.SetAttributes(attribute.String("calculator.session_id", id))

	var snap keypad.Snapshot
	err := h.store.Do(id, func(m *keypad.Machine) error {
		snap = m.Snapshot()
		return nil
	})
	if err != nil {
		recordError(ctx, span, logger, "get_session", err, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, SessionResponse{SessionID: id, Display: newDisplay(snap)})
}

// PressKeys handles POST /calculator/sessions/{sessionID}/keys. Either every
// key in the batch is applied or, when one is unknown, none is.
func (h *Handler) PressKeys(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "press_keys")
	defer span.End()

	id := chi.URLParam(r, "sessionID")
	span.SetAttributes(attribute.String("calculator.session_id", id))

	req, actions, err := decodeKeys(r)
	if err != nil {
		recordError(ctx, span, logger, "press_keys", err, w)
		return
	}
	span.SetAttributes(attribute.Int("calculator.keys_count", len(req.Keys)))

	var snap keypad.Snapshot
	start := time.Now()
	err = h.store.Do(id, func(m *keypad.Machine) error {
		for i, a := range actions {
			outcome := m.Apply(a)
			recordKey(ctx, logger, m, a, outcome, req.Keys[i])
		}
		snap = m.Snapshot()
		return nil
	})
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	if err != nil {
		recordError(ctx, span, logger, "press_keys", err, w)
		return
	}

	batchHistogram.Record(ctx, elapsed, metric.WithAttributes(attribute.String("operation", "press_keys")))

	span.AddEvent("keys.applied", trace.WithAttributes(
		attribute.String("display.current", snap.Current),
		attribute.String("display.phase", string(snap.Phase)),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetStatus(codes.Ok, "")

	handlers.WriteJSON(w, http.StatusOK, SessionResponse{SessionID: id, Display: newDisplay(snap)})
}

// DeleteSession handles DELETE /calculator/sessions/{sessionID}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "delete_session")
	defer span.End()

	id := chi.URLParam(r, "sessionID")
	span.SetAttributes(attribute.String("calculator.session_id", id))

	if err := h.store.Delete(id); err != nil {
		recordError(ctx, span, logger, "delete_session", err, w)
		return
	}

	sessionsCounter.Add(ctx, -1)
	span.SetStatus(codes.Ok, "")
	logger.Info("calculator session deleted", zap.String("session_id", id))

	w.WriteHeader(http.StatusNoContent)
}

// SessionsEvicted accounts for sessions the store evicted after idling past
// their TTL.
func SessionsEvicted(ctx context.Context, removed int) {
	if removed == 0 {
		return
	}
	sessionsCounter.Add(ctx, int64(-removed))
	observability.Logger.Info("idle calculator sessions evicted", zap.Int("removed", removed))
}

// ---------------------------------------------------------------------------
// Handler: replay (one child span per key)
// ---------------------------------------------------------------------------

// Replay handles POST /calculator/replay. It runs the keys against a fresh
// calculator, creating a child span for every key and returning the display
// after each one.
func (h *Handler) Replay(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "replay")
	defer span.End()

	req, actions, err := decodeKeys(r)
	if err != nil {
		recordError(ctx, span, logger, "replay", err, w)
		return
	}
	span.SetAttributes(attribute.Int("calculator.keys_count", len(req.Keys)))

	m := keypad.New()
	steps := make([]ReplayStep, 0, len(actions))
	start := time.Now()

	for i, a := range actions {
		stepCtx, stepSpan := tracer.Start(ctx, fmt.Sprintf("calculator.replay.step.%d.%s", i, a.Kind),
			trace.WithAttributes(
				attribute.Int("replay.step.index", i),
				attribute.String("replay.step.key", req.Keys[i]),
				attribute.String("replay.step.current_before", m.Snapshot().Current),
			),
		)

		outcome := m.Apply(a)
		recordKey(stepCtx, logger, m, a, outcome, req.Keys[i])
		snap := m.Snapshot()

		stepSpan.SetAttributes(
			attribute.String("replay.step.outcome", outcome.String()),
			attribute.String("replay.step.current_after", snap.Current),
		)
		if outcome == keypad.DivideByZero {
			stepSpan.AddEvent("division.by_zero")
		}
		stepSpan.SetStatus(codes.Ok, "")
		stepSpan.End()

		steps = append(steps, ReplayStep{
			Key:     req.Keys[i],
			Outcome: outcome.String(),
			Display: newDisplay(snap),
		})
	}

	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	batchHistogram.Record(ctx, elapsed, metric.WithAttributes(attribute.String("operation", "replay")))

	final := m.Snapshot()
	span.AddEvent("replay.complete", trace.WithAttributes(
		attribute.String("display.current", final.Current),
		attribute.Int("total_steps", len(steps)),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("replay completed",
		zap.Int("steps", len(steps)),
		zap.String("current", final.Current),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, ReplayResponse{Steps: steps, Display: newDisplay(final)})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var errInvalidBody = errors.New("invalid request body")

func startSpan(r *http.Request, opName string) (context.Context, trace.Span, *zap.Logger) {
	ctx := r.Context()
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator."+opName,
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", requestID),
		),
	)
	logger := observability.LoggerWithTrace(ctx).With(zap.String("request_id", requestID))

	return ctx, span, logger
}

// decodeKeys decodes, validates and parses a key batch. No key is applied
// unless every key is known.
func decodeKeys(r *http.Request) (KeysRequest, []keypad.Action, error) {
	var req KeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, nil, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	if err := validateRequest(req); err != nil {
		return req, nil, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	actions, err := keypad.ParseKeys(req.Keys)
	if err != nil {
		return req, nil, err
	}
	return req, actions, nil
}

// recordKey counts one applied key and logs evaluations.
func recordKey(ctx context.Context, logger *zap.Logger, m *keypad.Machine, a keypad.Action, outcome keypad.Outcome, key string) {
	keysCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", string(a.Kind)),
		attribute.String("operator", a.Operator.Name()),
		attribute.String("outcome", outcome.String()),
	))

	switch outcome {
	case keypad.Evaluated, keypad.DivideByZero, keypad.ParseFailure:
	default:
		return
	}

	evalCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("trigger", string(a.Kind)),
		attribute.String("outcome", outcome.String()),
	))

	current := m.Snapshot().Current
	if outcome == keypad.Evaluated {
		logger.Info("calculation evaluated",
			zap.String("key", key),
			zap.String("result", current),
		)
		return
	}
	logger.Warn("calculation absorbed into state",
		zap.String("key", key),
		zap.String("outcome", outcome.String()),
		zap.String("current", current),
	)
}

// recordError maps domain errors to HTTP statuses.
func recordError(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, err error, w http.ResponseWriter) {
	status, msg := http.StatusInternalServerError, "internal error"

	switch {
	case errors.Is(err, session.ErrNotFound):
		status, msg = http.StatusNotFound, "session not found"
	case errors.Is(err, session.ErrCapacity):
		status, msg = http.StatusServiceUnavailable, "too many calculator sessions"
	case errors.Is(err, keypad.ErrUnknownKey), errors.Is(err, errInvalidBody):
		status, msg = http.StatusBadRequest, err.Error()
	}

	observability.RecordError(ctx, span, logger, errorCounter, opName, msg, err, status, w)
}
