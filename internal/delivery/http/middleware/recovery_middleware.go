package middleware

import (
	"net/http"
	"runtime/debug"

	"healthsure/pkg/response"

	"github.com/sirupsen/logrus"
)

type RecoveryMiddleware struct {
	log *logrus.Logger
}

func NewRecoveryMiddleware(log *logrus.Logger) *RecoveryMiddleware {
	return &RecoveryMiddleware{log: log}
}

// Handle turns a handler panic into a 500 envelope.
func (m *RecoveryMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			entry := m.log.WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"panic":  rec,
			})
			if id, ok := GetRequestIDFromContext(r.Context()); ok {
				entry = entry.WithField("request_id", id)
			}
			entry.Errorf("Recovered from panic: %s", debug.Stack())

			response.InternalServerError(w, "")
		}()

		next.ServeHTTP(w, r)
	})
}
