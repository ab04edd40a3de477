package middleware

import (
	"net/http"

	"healthsure/pkg/response"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware is one token bucket shared by every client.
type RateLimitMiddleware struct {
	limiter *rate.Limiter
	log     *logrus.Logger
}

// NewRateLimitMiddleware returns a pass-through middleware when rps is not
// positive.
func NewRateLimitMiddleware(rps float64, burst int, log *logrus.Logger) *RateLimitMiddleware {
	m := &RateLimitMiddleware{log: log}
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		m.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return m
}

func (m *RateLimitMiddleware) Enabled() bool {
	return m.limiter != nil
}

func (m *RateLimitMiddleware) Handle(next http.Handler) http.Handler {
	if m.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow() {
			m.log.WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
			}).Warn("Too many requests")
			response.TooManyRequests(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
