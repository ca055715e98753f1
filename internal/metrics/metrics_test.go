package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New("vet", prometheus.NewRegistry())

	m.Booking("create", "ok")
	m.Booking("create", "ok")
	m.Booking("create", "conflict")
	m.Transition("confirmed")
	m.Payment("succeeded", "duplicate")
	m.SlotQuery()
	m.ObserveHTTP(http.MethodGet, "/api/available-slots", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingAttempts.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingAttempts.WithLabelValues("create", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusTransitions.WithLabelValues("confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentEvents.WithLabelValues("succeeded", "duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SlotQueries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/available-slots", "200")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Booking("create", "ok")
		m.Transition("completed")
		m.Payment("failed", "recorded")
		m.SlotQuery()
		m.ObserveHTTP("GET", "/", 200, time.Second)
	})
}
