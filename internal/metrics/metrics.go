package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Ledger holds the box office counters. Each instance owns its registry, so
// tests and tools never collide on the global one.
type Ledger struct {
	registry *prometheus.Registry

	TicketsSold     *prometheus.CounterVec
	TicketsReturned *prometheus.CounterVec
	Revenue         prometheus.Counter
	DaysSeeded      prometheus.Counter
	StoreOps        *prometheus.HistogramVec
}

func New() *Ledger {
	m := &Ledger{
		registry: prometheus.NewRegistry(),
		TicketsSold: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boxoffice_tickets_sold_total",
			Help: "Tickets sold, by showing.",
		}, []string{"showing"}),
		TicketsReturned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boxoffice_tickets_returned_total",
			Help: "Tickets returned, by showing.",
		}, []string{"showing"}),
		Revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boxoffice_revenue_total",
			Help: "Sum of ticket prices taken at sale time.",
		}),
		DaysSeeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boxoffice_days_seeded_total",
			Help: "Days initialized with a fresh seat grid.",
		}),
		StoreOps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "boxoffice_store_op_seconds",
			Help:    "Ledger store operation latency.",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
		}, []string{"op"}),
	}

	m.registry.MustRegister(m.TicketsSold, m.TicketsReturned, m.Revenue, m.DaysSeeded, m.StoreOps)
	return m
}

// ObserveSince records the time elapsed since start for op.
func (m *Ledger) ObserveSince(op string, start time.Time) {
	m.StoreOps.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Ledger) Registry() *prometheus.Registry {
	return m.registry
}

// Snapshot renders the gathered families as "name{labels} value" lines,
// sorted. Histograms are reduced to their count and sum.
func (m *Ledger) Snapshot() ([]string, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			name := mf.GetName() + formatLabels(metric.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				lines = append(lines, fmt.Sprintf("%s %g", name, metric.GetCounter().GetValue()))
			case dto.MetricType_HISTOGRAM:
				h := metric.GetHistogram()
				lines = append(lines,
					fmt.Sprintf("%s_count%s %d", mf.GetName(), formatLabels(metric.GetLabel()), h.GetSampleCount()),
					fmt.Sprintf("%s_sum%s %g", mf.GetName(), formatLabels(metric.GetLabel()), h.GetSampleSum()))
			}
		}
	}

	sort.Strings(lines)
	return lines, nil
}

func formatLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
