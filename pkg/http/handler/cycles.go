package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/logrotd/pkg/appcontext"
	"github.com/yurykabanov/logrotd/pkg/domain"
)

const (
	DefaultCyclesLimit = 20
	MaxCyclesLimit     = 500
)

type CycleRepository interface {
	FindRecent(ctx context.Context, limit int) ([]domain.CycleSummary, error)
}

type CycleRunner interface {
	RunCycle(ctx context.Context, trigger time.Time) domain.CycleReport
}

// RecentCyclesHandler lists journaled cycles, newest first.
type RecentCyclesHandler struct {
	logger logrus.FieldLogger
	repo   CycleRepository
}

func NewRecentCyclesHandler(logger logrus.FieldLogger, repo CycleRepository) *RecentCyclesHandler {
	return &RecentCyclesHandler{
		logger: logger,
		repo:   repo,
	}
}

func (h *RecentCyclesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	logger := appcontext.LoggerFromContext(h.logger, ctx)

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	cycles, err := h.repo.FindRecent(ctx, limit)
	if err != nil {
		logger.WithError(err).Error("Unable to query recent cycles")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if cycles == nil {
		cycles = []domain.CycleSummary{}
	}

	writeJson(w, logger, cycles)
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return DefaultCyclesLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, strconv.ErrSyntax
	}

	if limit > MaxCyclesLimit {
		limit = MaxCyclesLimit
	}

	return limit, nil
}

// RunCycleHandler triggers a cycle outside of the schedule and answers with
// its summary once it is done.
type RunCycleHandler struct {
	logger logrus.FieldLogger
	runner CycleRunner
	now    func() time.Time
}

func NewRunCycleHandler(logger logrus.FieldLogger, runner CycleRunner) *RunCycleHandler {
	return &RunCycleHandler{
		logger: logger,
		runner: runner,
		now:    time.Now,
	}
}

func (h *RunCycleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := appcontext.LoggerFromContext(h.logger, r.Context())

	logger.Info("Running rotation cycle on request")

	// The cycle outlives a client that hangs up.
	ctx := appcontext.WithRequestId(context.Background(), appcontext.RequestId(r.Context()))

	report := h.runner.RunCycle(ctx, h.now())

	writeJson(w, logger, report.Summary())
}

func writeJson(w http.ResponseWriter, logger logrus.FieldLogger, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	// Headers are gone once encoding starts, a failure can only be logged.
	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		logger.WithError(err).Error("Unable to encode response")
	}
}
