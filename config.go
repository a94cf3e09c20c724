// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd

import "go.opentelemetry.io/otel/trace"

// configs stores the tunable parameters of a Manager, exactly the options
// table in spec §6, layered onto the teacher's config.go functional-options
// pattern (Nodesize, Cachesize, Cacheratio, Minfreenodes, Maxnodesize,
// Maxnodeincrease).
type configs struct {
	varnum          int // number of BDD variables declared up front
	nodesize        int // initial number of nodes in the table
	cachesize       int // initial cache size (per computed table)
	cacheratio      int // ratio (%) between cache size and node table, 0 = fixed
	maxnodesize     int // maximum total number of nodes (0 = no limit); spec's max_memory is advisory on top of this
	maxnodeincrease int // maximum node-table growth per resize (0 = no limit)
	minfreenodes    int // stored only; allocNode does not read it
	maxMemoryBytes  int // advisory; stored only, not enforced or reported

	reordering         bool    // dynamic sifting on/off
	garbageCollection  bool    // GC on/off (disabling it only disables automatic triggers)
	maxGrowth          float64 // sifting tolerance: abort a swap direction once size grows by this factor
	maxSwaps           int     // sifting swap budget per variable
	maxVars            int     // sifting breadth: max variables considered per sifting pass
	minHitRate         float64 // stored only; no code path reads it
	reorderGrowthRatio float64 // trigger sifting once live nodes grow by this ratio since last reorder

	tracer trace.Tracer // nil unless set via WithTracer; New falls back to a no-op tracer
}

const _MINFREENODES int = 20
const _DEFAULTMAXNODEINC int = 1 << 20
const _DEFAULTMAXGROWTH float64 = 2.0
const _DEFAULTMAXSWAPS int = 1_000_000
const _DEFAULTREORDERGROWTH float64 = 2.0

func makeconfigs(varnum int) *configs {
	c := &configs{varnum: varnum}
	c.minfreenodes = _MINFREENODES
	c.maxnodeincrease = _DEFAULTMAXNODEINC
	c.nodesize = 2*varnum + 2
	c.cachesize = 10000
	c.maxGrowth = _DEFAULTMAXGROWTH
	c.maxSwaps = _DEFAULTMAXSWAPS
	c.maxVars = 0 // 0 == no limit, consider every variable
	c.minHitRate = 0
	c.reorderGrowthRatio = _DEFAULTREORDERGROWTH
	c.garbageCollection = true
	return c
}

// Option configures a Manager at construction time.
type Option func(*configs)

// Nodesize sets a preferred initial size for the node table.
func Nodesize(size int) Option {
	return func(c *configs) {
		if size >= 2*c.varnum+2 {
			c.nodesize = size
		}
	}
}

// Maxnodesize caps the number of nodes the manager will ever allocate. An
// operation that would need to grow past this limit fails with ErrOutOfMemory
// instead. Zero (the default) means no limit.
func Maxnodesize(size int) Option {
	return func(c *configs) { c.maxnodesize = size }
}

// Maxnodeincrease caps how many nodes a single resize may add.
func Maxnodeincrease(size int) Option {
	return func(c *configs) { c.maxnodeincrease = size }
}

// Minfreenodes records a % of free nodes to keep after a GC. The value is
// stored but not read: the node table is resized only when a GC leaves no
// free node at all.
func Minfreenodes(ratio int) Option {
	return func(c *configs) { c.minfreenodes = ratio }
}

// Cachesize sets the initial size of each computed table (spec's max_cache is
// the ceiling; Cachesize is the starting point).
func Cachesize(size int) Option {
	return func(c *configs) { c.cachesize = size }
}

// Cacheratio makes the computed tables grow proportionally to the node table
// on every resize (ratio available entries per 100 node-table slots).
func Cacheratio(ratio int) Option {
	return func(c *configs) { c.cacheratio = ratio }
}

// MaxMemory records an advisory memory ceiling in bytes. The value is stored
// but neither enforced nor reported in Statistics; Maxnodesize is the limit
// the manager enforces.
func MaxMemory(bytes int) Option {
	return func(c *configs) { c.maxMemoryBytes = bytes }
}

// MaxCache is an alias for Cachesize kept to match spec §6's option name
// (max_cache).
func MaxCache(entries int) Option {
	return Cachesize(entries)
}

// MinHitRate records a cache hit-rate threshold in percent. The value is
// stored but not read: computed tables are never resized on account of
// their hit rate (they grow only with the node table, via Cacheratio).
func MinHitRate(percent float64) Option {
	return func(c *configs) { c.minHitRate = percent }
}

// Reordering enables or disables automatic sifting between top-level kernel
// calls (spec's reordering bool).
func Reordering(on bool) Option {
	return func(c *configs) { c.reordering = on }
}

// GarbageCollection enables or disables automatic GC triggers. Explicit calls
// to Manager.GC always run regardless of this setting.
func GarbageCollection(on bool) Option {
	return func(c *configs) { c.garbageCollection = on }
}

// MaxGrowth bounds how far sifting lets the live node count grow, relative to
// the best size seen so far, before abandoning a swap direction (spec's
// max_growth).
func MaxGrowth(ratio float64) Option {
	return func(c *configs) { c.maxGrowth = ratio }
}

// MaxSwaps bounds the number of adjacent-level swaps sifting will perform for
// a single variable (spec's max_swaps).
func MaxSwaps(n int) Option {
	return func(c *configs) { c.maxSwaps = n }
}

// MaxVars bounds how many variables a single sifting pass considers, taken in
// descending order of per-level node count (spec's max_vars). Zero means no
// limit.
func MaxVars(n int) Option {
	return func(c *configs) { c.maxVars = n }
}

// ReorderGrowthRatio sets the live-node growth ratio (relative to the count
// observed at the last reordering) that triggers automatic sifting, when
// Reordering is enabled.
func ReorderGrowthRatio(ratio float64) Option {
	return func(c *configs) { c.reorderGrowthRatio = ratio }
}
