package server

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zipfinder_http_requests_total",
		Help: "The total number of handled http requests by status code",
	}, []string{"code"})
	noResults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zipfinder_returned_records_total",
		Help: "The total number of postal records returned by lookups",
	})
)

type requestIdKey struct{}

// RequestId returns the id assigned to r by WithRequestLog.
func RequestId(r *http.Request) string {
	if id, ok := r.Context().Value(requestIdKey{}).(string); ok {
		return id
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.size += n
	return n, err
}

// WithRequestLog tags each request with an X-Request-Id and logs one line per
// request: method, path, status, duration and response size.
func WithRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIdKey{}, id)))
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		noRequests.WithLabelValues(strconv.Itoa(rec.status)).Inc()
		log.Printf("%s %s %d %s - %d", r.Method, r.URL.Path, rec.status, time.Since(start).Truncate(time.Microsecond), rec.size)
	})
}
