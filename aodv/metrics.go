package aodv

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a Prometheus collector for the AODV controller, adapted
// from runZeroInc-sockstats's TCPInfoCollector: a handful of descriptors
// computed at scrape time in Collect, plus atomic counters bumped inline
// by the controller as packets move through it. Unlike the teacher's
// collector there is no per-connection map to guard — routing-table size
// and neighbor count are read straight from the table under its own lock.
type Metrics struct {
	table       *RoutingTable
	constLabels prometheus.Labels

	routingTableSize *prometheus.Desc
	neighborCount    *prometheus.Desc

	rreqSent      atomic.Uint64
	rreqForwarded atomic.Uint64
	rrepSent      atomic.Uint64
	rrepForwarded atomic.Uint64
	rerrSent      atomic.Uint64
	dataSent      atomic.Uint64
	dataForwarded atomic.Uint64
	helloTicks    atomic.Uint64
	dropped       atomic.Uint64

	rreqSentDesc      *prometheus.Desc
	rreqForwardedDesc *prometheus.Desc
	rrepSentDesc      *prometheus.Desc
	rrepForwardedDesc *prometheus.Desc
	rerrSentDesc      *prometheus.Desc
	dataSentDesc      *prometheus.Desc
	dataForwardedDesc *prometheus.Desc
	helloTicksDesc    *prometheus.Desc
	droppedDesc       *prometheus.Desc
}

// NewMetrics builds a Metrics collector reporting on table, with
// constLabels attached to every exported series (e.g. node address,
// instance ID), the same role constLabels plays in NewTCPInfoCollector.
func NewMetrics(table *RoutingTable, constLabels prometheus.Labels) *Metrics {
	const ns = "meshnode"

	return &Metrics{
		table:       table,
		constLabels: constLabels,

		routingTableSize: prometheus.NewDesc(ns+"_routing_table_size", "Number of destinations with a known entry.", nil, constLabels),
		neighborCount:    prometheus.NewDesc(ns+"_neighbor_count", "Number of one-hop neighbors currently live.", nil, constLabels),

		rreqSentDesc:      prometheus.NewDesc(ns+"_rreq_sent_total", "RREQ packets originated by this node.", nil, constLabels),
		rreqForwardedDesc: prometheus.NewDesc(ns+"_rreq_forwarded_total", "RREQ packets rebroadcast on behalf of another node.", nil, constLabels),
		rrepSentDesc:      prometheus.NewDesc(ns+"_rrep_sent_total", "RREP packets originated by this node (including HELLO).", nil, constLabels),
		rrepForwardedDesc: prometheus.NewDesc(ns+"_rrep_forwarded_total", "RREP packets forwarded toward a request origin.", nil, constLabels),
		rerrSentDesc:      prometheus.NewDesc(ns+"_rerr_sent_total", "RERR packets sent (originated or rebroadcast).", nil, constLabels),
		dataSentDesc:      prometheus.NewDesc(ns+"_data_sent_total", "DATA packets originated by this node.", nil, constLabels),
		dataForwardedDesc: prometheus.NewDesc(ns+"_data_forwarded_total", "DATA packets forwarded toward their destination.", nil, constLabels),
		helloTicksDesc:    prometheus.NewDesc(ns+"_hello_ticks_total", "HELLO task ticks observed.", nil, constLabels),
		droppedDesc:       prometheus.NewDesc(ns+"_dropped_total", "Packets dropped as duplicate, stale, or route-less.", nil, constLabels),
	}
}

func (m *Metrics) Describe(descs chan<- *prometheus.Desc) {
	descs <- m.routingTableSize
	descs <- m.neighborCount
	descs <- m.rreqSentDesc
	descs <- m.rreqForwardedDesc
	descs <- m.rrepSentDesc
	descs <- m.rrepForwardedDesc
	descs <- m.rerrSentDesc
	descs <- m.dataSentDesc
	descs <- m.dataForwardedDesc
	descs <- m.helloTicksDesc
	descs <- m.droppedDesc
}

func (m *Metrics) Collect(metrics chan<- prometheus.Metric) {
	m.table.mu.RLock()
	tableSize := len(m.table.entries)
	m.table.mu.RUnlock()

	metrics <- prometheus.MustNewConstMetric(m.routingTableSize, prometheus.GaugeValue, float64(tableSize))
	metrics <- prometheus.MustNewConstMetric(m.neighborCount, prometheus.GaugeValue, float64(len(m.table.Neighbors())))

	metrics <- prometheus.MustNewConstMetric(m.rreqSentDesc, prometheus.CounterValue, float64(m.rreqSent.Load()))
	metrics <- prometheus.MustNewConstMetric(m.rreqForwardedDesc, prometheus.CounterValue, float64(m.rreqForwarded.Load()))
	metrics <- prometheus.MustNewConstMetric(m.rrepSentDesc, prometheus.CounterValue, float64(m.rrepSent.Load()))
	metrics <- prometheus.MustNewConstMetric(m.rrepForwardedDesc, prometheus.CounterValue, float64(m.rrepForwarded.Load()))
	metrics <- prometheus.MustNewConstMetric(m.rerrSentDesc, prometheus.CounterValue, float64(m.rerrSent.Load()))
	metrics <- prometheus.MustNewConstMetric(m.dataSentDesc, prometheus.CounterValue, float64(m.dataSent.Load()))
	metrics <- prometheus.MustNewConstMetric(m.dataForwardedDesc, prometheus.CounterValue, float64(m.dataForwarded.Load()))
	metrics <- prometheus.MustNewConstMetric(m.helloTicksDesc, prometheus.CounterValue, float64(m.helloTicks.Load()))
	metrics <- prometheus.MustNewConstMetric(m.droppedDesc, prometheus.CounterValue, float64(m.dropped.Load()))
}
