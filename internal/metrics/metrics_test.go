package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersArePerInstance(t *testing.T) {
	a := New()
	b := New()

	a.TicketsSold.WithLabelValues("Session10").Inc()
	a.Revenue.Add(30)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.TicketsSold.WithLabelValues("Session10")))
	assert.Equal(t, 30.0, testutil.ToFloat64(a.Revenue))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Revenue))
}

func TestSnapshot(t *testing.T) {
	m := New()
	m.TicketsSold.WithLabelValues("Session14").Add(2)
	m.TicketsReturned.WithLabelValues("Session14").Inc()
	m.DaysSeeded.Inc()
	m.ObserveSince("sell", time.Now())

	lines, err := m.Snapshot()
	require.NoError(t, err)

	assert.Contains(t, lines, `boxoffice_tickets_sold_total{showing="Session14"} 2`)
	assert.Contains(t, lines, `boxoffice_tickets_returned_total{showing="Session14"} 1`)
	assert.Contains(t, lines, `boxoffice_days_seeded_total 1`)
	assert.Contains(t, lines, `boxoffice_revenue_total 0`)
	assert.Contains(t, lines, `boxoffice_store_op_seconds_count{op="sell"} 1`)
}
