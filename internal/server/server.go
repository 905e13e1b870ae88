// Package server exposes the ledger service over an HTTP JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/roadsplit/internal/render"
	"github.com/Sumatoshi-tech/roadsplit/internal/service"
	"github.com/Sumatoshi-tech/roadsplit/pkg/calendar"
	"github.com/Sumatoshi-tech/roadsplit/pkg/ledger"
	"github.com/Sumatoshi-tech/roadsplit/pkg/observability"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Deps holds the server collaborators. Only Service is required.
type Deps struct {
	Service *service.Service
	Logger  *slog.Logger
	Tracer  trace.Tracer
	RED     *observability.REDMetrics
	// Metrics serves /metrics when set.
	Metrics http.Handler
	Ready   []observability.ReadyCheck
}

// Server routes API requests to the service.
type Server struct {
	svc       *service.Service
	logger    *slog.Logger
	validator *validator
	handler   http.Handler
}

// UpdateRequest is the body of POST /api/updates.
type UpdateRequest struct {
	Section int    `json:"section"`
	Day     *int64 `json:"day,omitempty"`
	Date    string `json:"date,omitempty"`
	Cost    int64  `json:"cost"`
}

// QueryRequest is the body of POST /api/queries.
type QueryRequest struct {
	Start     *int64 `json:"start,omitempty"`
	End       *int64 `json:"end,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// SectionTotalResponse is the body of GET /api/sections/{idx}/total.
type SectionTotalResponse struct {
	Section int   `json:"section"`
	Start   int64 `json:"start"`
	End     int64 `json:"end"`
	Total   int64 `json:"total"`
}

// LedgerResponse is the body of GET /api/ledger.
type LedgerResponse struct {
	Sections int    `json:"sections"`
	LastDay  int64  `json:"last_day"`
	LastDate string `json:"last_date,omitempty"`
	Entries  []int  `json:"entries"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New builds the server and its routes.
func New(deps Deps) (*Server, error) {
	if deps.Service == nil {
		return nil, errors.New("server requires a service")
	}

	v, err := newValidator()
	if err != nil {
		return nil, err
	}

	s := &Server{svc: deps.Service, logger: deps.Logger, validator: v}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}

	tracer := deps.Tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer("roadsplit")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/updates", s.handleUpdate)
	mux.HandleFunc("POST /api/queries", s.handleQuery)
	mux.HandleFunc("GET /api/sections/{idx}/total", s.handleSectionTotal)
	mux.HandleFunc("GET /api/ledger", s.handleLedger)
	mux.Handle("GET /healthz", observability.HealthHandler())
	mux.Handle("GET /readyz", observability.ReadyHandler(deps.Ready...))

	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	s.handler = observability.HTTPMiddleware(tracer, deps.RED, mux)

	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Timeouts bound the lifetime of HTTP connections.
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

// ListenAndServe serves h on addr until ctx is done, then shuts down gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, timeouts Timeouts, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  timeouts.Read,
		WriteTimeout: timeouts.Write,
		IdleTimeout:  timeouts.Idle,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.InfoContext(ctx, "server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	logger.InfoContext(ctx, "server shutting down")

	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func (s *Server) handleUpdate(rw http.ResponseWriter, hr *http.Request) {
	var req UpdateRequest

	if !s.decode(rw, hr, schemaUpdate, &req) {
		return
	}

	day, err := dayOf(req.Day, req.Date)
	if err != nil {
		s.writeError(hr.Context(), rw, http.StatusBadRequest, err)

		return
	}

	err = s.svc.Update(hr.Context(), service.Update{Section: req.Section, Day: day, Cost: req.Cost})
	if err != nil {
		s.writeError(hr.Context(), rw, statusFor(err), err)

		return
	}

	rw.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleQuery(rw http.ResponseWriter, hr *http.Request) {
	var req QueryRequest

	if !s.decode(rw, hr, schemaQuery, &req) {
		return
	}

	start, err := dayOf(req.Start, req.StartDate)
	if err != nil {
		s.writeError(hr.Context(), rw, http.StatusBadRequest, err)

		return
	}

	end, err := dayOf(req.End, req.EndDate)
	if err != nil {
		s.writeError(hr.Context(), rw, http.StatusBadRequest, err)

		return
	}

	res, err := s.svc.Query(hr.Context(), start, end)
	if err != nil {
		s.writeError(hr.Context(), rw, statusFor(err), err)

		return
	}

	s.writeJSON(hr.Context(), rw, http.StatusOK, render.NewView(res))
}

func (s *Server) handleSectionTotal(rw http.ResponseWriter, hr *http.Request) {
	idx, err := strconv.Atoi(hr.PathValue("idx"))
	if err != nil {
		s.writeError(hr.Context(), rw, http.StatusBadRequest, fmt.Errorf("section index: %w", err))

		return
	}

	query := hr.URL.Query()

	start, err := parseDayParam(query.Get("start"))
	if err != nil {
		s.writeError(hr.Context(), rw, http.StatusBadRequest, fmt.Errorf("start: %w", err))

		return
	}

	end, err := parseDayParam(query.Get("end"))
	if err != nil {
		s.writeError(hr.Context(), rw, http.StatusBadRequest, fmt.Errorf("end: %w", err))

		return
	}

	total, err := s.svc.SectionTotal(hr.Context(), idx, start, end)
	if errors.Is(err, ledger.ErrSectionOutOfRange) {
		s.writeError(hr.Context(), rw, http.StatusNotFound, err)

		return
	}

	if err != nil {
		s.writeError(hr.Context(), rw, statusFor(err), err)

		return
	}

	s.writeJSON(hr.Context(), rw, http.StatusOK, SectionTotalResponse{Section: idx, Start: start, End: end, Total: total})
}

func (s *Server) handleLedger(rw http.ResponseWriter, hr *http.Request) {
	snap := s.svc.Snapshot()

	resp := LedgerResponse{
		Sections: len(snap.Sections),
		LastDay:  snap.LastDay,
		Entries:  make([]int, len(snap.Sections)),
	}

	for i, entries := range snap.Sections {
		resp.Entries[i] = len(entries)
	}

	if snap.LastDay >= 0 {
		date, err := calendar.FromDayNumber(snap.LastDay)
		if err == nil {
			resp.LastDate = date.String()
		}
	}

	s.writeJSON(hr.Context(), rw, http.StatusOK, resp)
}

// decode reads, validates, and unmarshals the request body. It writes the
// error response itself and reports whether the handler may continue.
func (s *Server) decode(rw http.ResponseWriter, hr *http.Request, schema string, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(rw, hr.Body, maxBodyBytes))
	if err != nil {
		s.writeError(hr.Context(), rw, http.StatusRequestEntityTooLarge, fmt.Errorf("read body: %w", err))

		return false
	}

	err = s.validator.validate(schema, body)
	if err != nil {
		s.writeError(hr.Context(), rw, http.StatusBadRequest, err)

		return false
	}

	err = json.Unmarshal(body, dst)
	if err != nil {
		s.writeError(hr.Context(), rw, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrInvalidRequest, err))

		return false
	}

	return true
}

func dayOf(day *int64, date string) (int64, error) {
	if day != nil {
		return *day, nil
	}

	n, err := calendar.ParseDay(date)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	return n, nil
}

// parseDayParam accepts a day number or a YYYY-MM-DD date.
func parseDayParam(raw string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: missing day", ErrInvalidRequest)
	}

	if strings.Contains(raw, "-") {
		return dayOf(nil, raw)
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	return n, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNonMonotonicDay):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrSectionOutOfRange),
		errors.Is(err, ledger.ErrInvalidCost),
		errors.Is(err, ledger.ErrDayOutOfRange),
		errors.Is(err, service.ErrInvalidRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(ctx context.Context, rw http.ResponseWriter, code int, err error) {
	if code >= http.StatusInternalServerError {
		s.logger.ErrorContext(ctx, "request failed", "error", err)
	}

	s.writeJSON(ctx, rw, code, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(ctx context.Context, rw http.ResponseWriter, code int, value any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)

	err := json.NewEncoder(rw).Encode(value)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to encode JSON response", "error", err)
	}
}
