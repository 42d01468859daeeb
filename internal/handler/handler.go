// Package handler serves the view counter over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/tckz/view-counter/internal/counter"
	"github.com/tckz/view-counter/internal/metrics"
)

var corsHeaders = map[string]string{
	"Content-Type":                 "application/json",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET,OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type",
}

const preflightMessage = "CORS preflight success"

type CounterHandler struct {
	counter counter.Counter
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

var _ http.Handler = (*CounterHandler)(nil)

// New returns a handler that increments c on every non-OPTIONS request.
// m may be nil.
func New(c counter.Counter, logger *zap.SugaredLogger, m *metrics.Metrics) *CounterHandler {
	return &CounterHandler{counter: c, logger: logger, metrics: m}
}

func (h *CounterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		h.respond(w, r, http.StatusOK, "message", preflightMessage)
		return
	}

	now := time.Now()
	n, err := h.counter.Up(r.Context())
	h.observeStore(now, err)
	if err != nil {
		logger := h.logger
		var se *counter.StoreError
		if errors.As(err, &se) {
			logger = logger.With(zap.String("backend", se.Backend), zap.String("op", se.Op))
		}
		logger.With(zap.Error(err)).Errorf("Up: %v", err)
		h.respond(w, r, http.StatusInternalServerError, "error", err.Error())
		return
	}

	h.respond(w, r, http.StatusOK, "totalViews", n)
}

// respond writes the body as {"key": value}, with a space after the colon.
func (h *CounterHandler) respond(w http.ResponseWriter, r *http.Request, status int, key string, value interface{}) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}
	w.WriteHeader(status)
	if _, err := w.Write(encodeMember(key, value)); err != nil {
		h.logger.Warnf("Write: %v", err)
	}

	if h.metrics != nil {
		h.metrics.Requests.WithLabelValues(methodLabel(r.Method), strconv.Itoa(status)).Inc()
	}
}

func encodeMember(key string, value interface{}) []byte {
	k, _ := json.Marshal(key)
	v, err := json.Marshal(value)
	if err != nil {
		v, _ = json.Marshal(err.Error())
	}
	b := make([]byte, 0, len(k)+len(v)+4)
	b = append(b, '{')
	b = append(b, k...)
	b = append(b, ':', ' ')
	b = append(b, v...)
	return append(b, '}')
}

var knownMethods = []string{http.MethodGet, http.MethodOptions}

// methodLabel keeps the method label bounded; any method is accepted.
func methodLabel(method string) string {
	return lo.Ternary(lo.Contains(knownMethods, method), method, "other")
}

func (h *CounterHandler) observeStore(start time.Time, err error) {
	if h.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	h.metrics.StoreLatency.WithLabelValues(result).Observe(time.Since(start).Seconds())
}
