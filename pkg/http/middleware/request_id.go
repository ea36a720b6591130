package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/yurykabanov/logrotd/pkg/appcontext"
)

const RequestIdHeader = "X-Request-Id"

// WithRequestId keeps the id a client sent or assigns a new one, stores it in
// the request context and echoes it back.
func WithRequestId(next http.Handler, nextRequestId func() string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get(RequestIdHeader)

		if requestId == "" {
			requestId = nextRequestId()
		}

		ctx := appcontext.WithRequestId(r.Context(), requestId)

		w.Header().Set(RequestIdHeader, requestId)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func DefaultRequestIdProvider() string {
	return uuid.New().String()
}
