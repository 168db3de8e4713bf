package aodv

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/loraaodv/node/internal/address"
)

func collectMetric(t *testing.T, m *Metrics, desc *prometheus.Desc) *dto.Metric {
	t.Helper()
	ch := make(chan prometheus.Metric, 32)
	m.Collect(ch)
	close(ch)
	for metric := range ch {
		if metric.Desc() == desc {
			var out dto.Metric
			if err := metric.Write(&out); err != nil {
				t.Fatalf("writing metric: %v", err)
			}
			return &out
		}
	}
	t.Fatalf("metric with desc %v not collected", desc)
	return nil
}

func TestMetricsReportsRoutingTableSize(t *testing.T) {
	own := address.MustParse("4290")
	table := NewRoutingTable(own)
	m := NewMetrics(table, prometheus.Labels{"node": own.String()})

	got := collectMetric(t, m, m.routingTableSize)
	if got.GetGauge().GetValue() != 1 {
		t.Fatalf("expected routing table size 1 (own address only), got %v", got.GetGauge().GetValue())
	}

	table.AddRoute(address.MustParse("ABCD"), 1, address.MustParse("ABCD"), 1)

	got = collectMetric(t, m, m.routingTableSize)
	if got.GetGauge().GetValue() != 2 {
		t.Fatalf("expected routing table size 2, got %v", got.GetGauge().GetValue())
	}
	got = collectMetric(t, m, m.neighborCount)
	if got.GetGauge().GetValue() != 1 {
		t.Fatalf("expected 1 neighbor, got %v", got.GetGauge().GetValue())
	}
}

func TestMetricsCountersAccumulate(t *testing.T) {
	table := NewRoutingTable(address.MustParse("4290"))
	m := NewMetrics(table, nil)

	m.rreqSent.Add(3)
	m.dataForwarded.Add(1)

	got := collectMetric(t, m, m.rreqSentDesc)
	if got.GetCounter().GetValue() != 3 {
		t.Fatalf("expected rreq_sent_total 3, got %v", got.GetCounter().GetValue())
	}
	got = collectMetric(t, m, m.dataForwardedDesc)
	if got.GetCounter().GetValue() != 1 {
		t.Fatalf("expected data_forwarded_total 1, got %v", got.GetCounter().GetValue())
	}
}
