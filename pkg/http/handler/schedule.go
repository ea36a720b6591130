package handler

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/logrotd/pkg/appcontext"
)

type NextTriggerProvider interface {
	Next() time.Time
}

type ScheduleHandler struct {
	logger      logrus.FieldLogger
	description string
	timer       NextTriggerProvider
}

func NewScheduleHandler(logger logrus.FieldLogger, description string, timer NextTriggerProvider) *ScheduleHandler {
	return &ScheduleHandler{
		logger:      logger,
		description: description,
		timer:       timer,
	}
}

type scheduleResponse struct {
	Schedule string     `json:"schedule"`
	Next     *time.Time `json:"next,omitempty"`
}

func (h *ScheduleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := appcontext.LoggerFromContext(h.logger, r.Context())

	resp := scheduleResponse{Schedule: h.description}

	// Zero until the timer has computed its first trigger.
	if next := h.timer.Next(); !next.IsZero() {
		resp.Next = &next
	}

	writeJson(w, logger, resp)
}
