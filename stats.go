// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// nodeSize is sizeof(node): six int32 fields, used to approximate mem_bytes.
const nodeSize = 24

// Statistics reports a snapshot of a Manager's internal counters (spec §6
// "statistics() -> dict with at minimum: n_vars, n_nodes, peak_nodes,
// peak_live_nodes, reordering_time_sec, n_reorderings, mem_bytes,
// unique_size, unique_used_fraction, cache_size, cache_used_fraction,
// cache_lookups, cache_hits, cache_insertions, cache_collisions,
// cache_deletions").
type Statistics struct {
	Varnum         int
	NodeCount      int
	NodeTableSize  int
	FreeNodes      int
	ProducedNodes  int64
	GCCount        int
	ReorderCount   int
	ITEHitRate     float64
	QuantHitRate   float64
	AppExHitRate   float64
	ReplaceHitRate float64

	PeakNodes          int
	PeakLiveNodes      int
	ReorderTimeSec     float64
	MemBytes           int64
	UniqueSize         int
	UniqueUsedFraction float64
	CacheSize          int
	CacheUsedFraction  float64
	CacheLookups       uint64
	CacheHits          uint64
	CacheInsertions    uint64
	CacheCollisions    uint64
	CacheDeletions     uint64
}

// Statistics returns a point-in-time snapshot of m's counters.
func (m *Manager) Statistics() Statistics {
	lookups, hits, inserts, collisions, deletions := m.cacheAggregate()
	uniqueSize := len(m.nodes)
	uniqueUsed := uniqueSize - int(m.freenum)

	return Statistics{
		Varnum:         int(m.varnum),
		NodeCount:      m.liveNodeCount(),
		NodeTableSize:  len(m.nodes),
		FreeNodes:      int(m.freenum),
		ProducedNodes:  m.produced,
		GCCount:        len(m.gcstat.history),
		ReorderCount:   m.reorderCount,
		ITEHitRate:     m.itecache.hitrate(),
		QuantHitRate:   m.quantcache.hitrate(),
		AppExHitRate:   m.appexcache.hitrate(),
		ReplaceHitRate: m.replacecache.hitrate(),

		PeakNodes:          m.peakNodes,
		PeakLiveNodes:      m.peakLiveNodes,
		ReorderTimeSec:     m.reorderTimeSec,
		MemBytes:           int64(len(m.nodes)) * nodeSize,
		UniqueSize:         uniqueSize,
		UniqueUsedFraction: float64(uniqueUsed) / float64(uniqueSize),
		CacheSize:          m.cacheSize(),
		CacheUsedFraction:  m.cacheUsedFraction(),
		CacheLookups:       lookups,
		CacheHits:          hits,
		CacheInsertions:    inserts,
		CacheCollisions:    collisions,
		CacheDeletions:     deletions,
	}
}

// Stats formats a Statistics snapshot as a locale-aware human-readable
// report (spec §6: "a textual statistics report").
func (m *Manager) Stats() string {
	s := m.Statistics()
	p := message.NewPrinter(language.English)
	return p.Sprintf(
		"robdd manager %s: %d variables, %d/%d live nodes (%d free, peak %d live / %d total), "+
			"%d nodes produced, %d GC, %d reorder passes (%.3fs); hit rates ite=%.1f%% quant=%.1f%% appex=%.1f%% replace=%.1f%%; "+
			"cache %d slots (%.1f%% used, %d lookups, %d hits, %d inserts, %d collisions, %d deletions); ~%d bytes",
		m.id, s.Varnum, s.NodeCount, s.NodeTableSize, s.FreeNodes, s.PeakLiveNodes, s.PeakNodes,
		s.ProducedNodes, s.GCCount, s.ReorderCount, s.ReorderTimeSec,
		s.ITEHitRate, s.QuantHitRate, s.AppExHitRate, s.ReplaceHitRate,
		s.CacheSize, 100*s.CacheUsedFraction, s.CacheLookups, s.CacheHits, s.CacheInsertions, s.CacheCollisions, s.CacheDeletions,
		s.MemBytes,
	)
}

// statCollector exposes Statistics as Prometheus gauges, wired into a
// Manager via Manager.Collector so a host application can register it
// alongside its own metrics (spec §11 "DOMAIN STACK": prometheus/client_golang).
type statCollector struct {
	m *Manager
}

// Collector returns a prometheus.Collector reporting m's node-table, cache,
// and reordering counters.
func (m *Manager) Collector() prometheus.Collector {
	return &statCollector{m: m}
}

var (
	descNodeCount     = prometheus.NewDesc("robdd_live_nodes", "Live BDD nodes currently allocated.", []string{"manager"}, nil)
	descTableSize     = prometheus.NewDesc("robdd_node_table_size", "Total capacity of the node table.", []string{"manager"}, nil)
	descProduced      = prometheus.NewDesc("robdd_nodes_produced_total", "Nodes produced over the manager's lifetime.", []string{"manager"}, nil)
	descGCCount       = prometheus.NewDesc("robdd_gc_total", "Garbage collections performed.", []string{"manager"}, nil)
	descReorder       = prometheus.NewDesc("robdd_reorder_total", "Sifting passes performed.", []string{"manager"}, nil)
	descReorderTime   = prometheus.NewDesc("robdd_reorder_seconds_total", "Cumulative time spent sifting.", []string{"manager"}, nil)
	descHitRate       = prometheus.NewDesc("robdd_cache_hit_rate", "Computed table hit rate, percent.", []string{"manager", "cache"}, nil)
	descPeakNodes     = prometheus.NewDesc("robdd_peak_nodes", "High-water mark of the node table size.", []string{"manager"}, nil)
	descPeakLive      = prometheus.NewDesc("robdd_peak_live_nodes", "High-water mark of live node count.", []string{"manager"}, nil)
	descMemBytes      = prometheus.NewDesc("robdd_mem_bytes", "Approximate memory held by the node table.", []string{"manager"}, nil)
	descUniqueSize    = prometheus.NewDesc("robdd_unique_table_size", "Unique table slot count.", []string{"manager"}, nil)
	descUniqueUsedFr  = prometheus.NewDesc("robdd_unique_table_used_fraction", "Fraction of the unique table currently occupied.", []string{"manager"}, nil)
	descCacheSize     = prometheus.NewDesc("robdd_cache_size", "Total computed-table slot count.", []string{"manager"}, nil)
	descCacheUsedFr   = prometheus.NewDesc("robdd_cache_used_fraction", "Fraction of computed-table slots currently valid.", []string{"manager"}, nil)
	descCacheLookups  = prometheus.NewDesc("robdd_cache_lookups_total", "Computed-table lookups.", []string{"manager"}, nil)
	descCacheHits     = prometheus.NewDesc("robdd_cache_hits_total", "Computed-table hits.", []string{"manager"}, nil)
	descCacheInserts  = prometheus.NewDesc("robdd_cache_insertions_total", "Computed-table insertions.", []string{"manager"}, nil)
	descCacheCollide  = prometheus.NewDesc("robdd_cache_collisions_total", "Computed-table insertions that overwrote a different valid key.", []string{"manager"}, nil)
	descCacheDeletes  = prometheus.NewDesc("robdd_cache_deletions_total", "Computed-table entries cleared by GC.", []string{"manager"}, nil)
)

func (c *statCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descNodeCount
	ch <- descTableSize
	ch <- descProduced
	ch <- descGCCount
	ch <- descReorder
	ch <- descReorderTime
	ch <- descHitRate
	ch <- descPeakNodes
	ch <- descPeakLive
	ch <- descMemBytes
	ch <- descUniqueSize
	ch <- descUniqueUsedFr
	ch <- descCacheSize
	ch <- descCacheUsedFr
	ch <- descCacheLookups
	ch <- descCacheHits
	ch <- descCacheInserts
	ch <- descCacheCollide
	ch <- descCacheDeletes
}

func (c *statCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.m.Statistics()
	id := c.m.ID()
	ch <- prometheus.MustNewConstMetric(descNodeCount, prometheus.GaugeValue, float64(s.NodeCount), id)
	ch <- prometheus.MustNewConstMetric(descTableSize, prometheus.GaugeValue, float64(s.NodeTableSize), id)
	ch <- prometheus.MustNewConstMetric(descProduced, prometheus.CounterValue, float64(s.ProducedNodes), id)
	ch <- prometheus.MustNewConstMetric(descGCCount, prometheus.CounterValue, float64(s.GCCount), id)
	ch <- prometheus.MustNewConstMetric(descReorder, prometheus.CounterValue, float64(s.ReorderCount), id)
	ch <- prometheus.MustNewConstMetric(descReorderTime, prometheus.CounterValue, s.ReorderTimeSec, id)
	ch <- prometheus.MustNewConstMetric(descHitRate, prometheus.GaugeValue, s.ITEHitRate, id, "ite")
	ch <- prometheus.MustNewConstMetric(descHitRate, prometheus.GaugeValue, s.QuantHitRate, id, "quant")
	ch <- prometheus.MustNewConstMetric(descHitRate, prometheus.GaugeValue, s.AppExHitRate, id, "appex")
	ch <- prometheus.MustNewConstMetric(descHitRate, prometheus.GaugeValue, s.ReplaceHitRate, id, "replace")
	ch <- prometheus.MustNewConstMetric(descPeakNodes, prometheus.GaugeValue, float64(s.PeakNodes), id)
	ch <- prometheus.MustNewConstMetric(descPeakLive, prometheus.GaugeValue, float64(s.PeakLiveNodes), id)
	ch <- prometheus.MustNewConstMetric(descMemBytes, prometheus.GaugeValue, float64(s.MemBytes), id)
	ch <- prometheus.MustNewConstMetric(descUniqueSize, prometheus.GaugeValue, float64(s.UniqueSize), id)
	ch <- prometheus.MustNewConstMetric(descUniqueUsedFr, prometheus.GaugeValue, s.UniqueUsedFraction, id)
	ch <- prometheus.MustNewConstMetric(descCacheSize, prometheus.GaugeValue, float64(s.CacheSize), id)
	ch <- prometheus.MustNewConstMetric(descCacheUsedFr, prometheus.GaugeValue, s.CacheUsedFraction, id)
	ch <- prometheus.MustNewConstMetric(descCacheLookups, prometheus.CounterValue, float64(s.CacheLookups), id)
	ch <- prometheus.MustNewConstMetric(descCacheHits, prometheus.CounterValue, float64(s.CacheHits), id)
	ch <- prometheus.MustNewConstMetric(descCacheInserts, prometheus.CounterValue, float64(s.CacheInsertions), id)
	ch <- prometheus.MustNewConstMetric(descCacheCollide, prometheus.CounterValue, float64(s.CacheCollisions), id)
	ch <- prometheus.MustNewConstMetric(descCacheDeletes, prometheus.CounterValue, float64(s.CacheDeletions), id)
}

var _ fmt.Stringer = (*statCollector)(nil)

func (c *statCollector) String() string {
	return fmt.Sprintf("robdd.Collector(%s)", c.m.ID())
}
