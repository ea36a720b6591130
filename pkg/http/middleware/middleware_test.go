package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurykabanov/logrotd/pkg/appcontext"
)

// region Test: WithRequestId
func TestWithRequestId_KeepsClientId(t *testing.T) {
	var seen string

	h := WithRequestId(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = appcontext.RequestId(r.Context())
	}), func() string { return "generated" })

	req := httptest.NewRequest(http.MethodGet, "/status/cycles", nil)
	req.Header.Set(RequestIdHeader, "from-client")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "from-client", seen)
	assert.Equal(t, "from-client", rec.Header().Get(RequestIdHeader))
}

func TestWithRequestId_GeneratesId(t *testing.T) {
	var seen string

	h := WithRequestId(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = appcontext.RequestId(r.Context())
	}), DefaultRequestIdProvider)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status/cycles", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(RequestIdHeader))
}

// endregion

// region Test: WithRequestLogging
func TestWithRequestLogging(t *testing.T) {
	logger, hook := test.NewNullLogger()

	h := WithRequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("queued"))
	}), logger)

	h = WithRequestId(h, func() string { return "req-1" })

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/cycles", nil))

	entry := hook.LastEntry()
	require.NotNil(t, entry)

	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, http.StatusAccepted, entry.Data["status"])
	assert.Equal(t, 6, entry.Data["content_length"])
	assert.Equal(t, "req-1", entry.Data["request_id"])
}

func TestWithRequestLogging_ServerError(t *testing.T) {
	logger, hook := test.NewNullLogger()

	h := WithRequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), logger)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/status/cycles", nil))

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

// endregion
