// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Manager owns one BDD: its node table, computed tables, variable registry,
// and configuration. There is no package-global state (spec §9 "Global
// manager state"): every operation takes an explicit *Manager receiver, and
// multiple managers may coexist, each its own island (spec §5 "Shared
// resources").
type Manager struct {
	id uuid.UUID // stable identity, reported by ID and written into DumpJSON documents

	varnum int32 // number of declared variables

	nodes   []node
	freepos int32
	freenum int32
	produced int64

	levelCount []int32 // live node count per level, maintained incrementally for sifting
	level2var  []int32 // level -> variable index
	var2level  []int32 // variable index -> level
	varnames   []string
	varset     [][2]edge // [v] = {positive literal edge, negative literal edge}

	refstack []int32 // protects transient nodes from GC while a recursion is in flight

	gen uint64 // generation counter, bumped by GC and by reordering

	deadCount int32 // heuristic count of nodes whose refcou dropped to 0 since the last GC

	err error

	cfg configs

	itecache      *itecache
	quantcache    *quantcache
	appexcache    *appexcache
	replacecache  *replacecache
	composecache  *composecache
	restrictcache *restrictcache

	gcstat gcstat

	reorderCount   int
	reorderTimeSec float64
	liveAtLastSift int

	peakNodes     int // high-water mark of len(m.nodes)
	peakLiveNodes int // high-water mark of live (non-free) node count

	tracer trace.Tracer
}

// New creates a Manager with varnum variables (indices [0, varnum)). Options
// configure node-table and cache sizing, GC/reordering behavior, and
// observability; see Nodesize, Cachesize, Reordering, and friends.
func New(varnum int, options ...Option) (*Manager, error) {
	if varnum < 1 || varnum > int(_MAXVAR) {
		return nil, fmt.Errorf("bad number of variables (%d): %w", varnum, ErrInvalidInput)
	}
	cfg := makeconfigs(varnum)
	for _, f := range options {
		f(cfg)
	}

	tracer := cfg.tracer
	if tracer == nil {
		tracer = otel.Tracer("github.com/dstane/robdd")
	}
	m := &Manager{id: uuid.New(), cfg: *cfg, tracer: tracer}
	m.refstack = make([]int32, 0, 2*varnum+4)

	nodesize := cfg.nodesize
	if nodesize < 2 {
		nodesize = 2
	}
	m.nodes = make([]node, nodesize)
	for k := range m.nodes {
		m.nodes[k] = node{low: freeSentinel, next: int32(k + 1)}
	}
	m.nodes[nodesize-1].next = 0
	// node 0 is the terminal, pinned forever; FALSE = edge(0,false), TRUE =
	// edge(0,true).
	m.nodes[0] = node{level: 0, low: falseEdge, high: falseEdge, refcou: _MAXREFCOUNT}
	m.freepos = 1
	m.freenum = int32(nodesize - 1)

	m.cacheinit(cfg)

	if err := m.SetVarnum(varnum); err != nil {
		return nil, err
	}
	if _LOGLEVEL > 0 {
		log.Printf("robdd: new manager %s with %d variables\n", m.id, varnum)
	}
	return m, nil
}

// Varnum returns the number of declared variables.
func (m *Manager) Varnum() int { return int(m.varnum) }

// ID returns the manager's stable identity. Handles from another manager are
// rejected by comparing their *Manager, not by this value.
func (m *Manager) ID() string { return m.id.String() }

// SetVarnum grows the number of declared variables; it may only increase
// Varnum, never decrease it (spec §6 "declare(name...) assigns indices
// contiguously").
func (m *Manager) SetVarnum(num int) error {
	old := int(m.varnum)
	if num < 1 || num > int(_MAXVAR) {
		return m.errorf(ErrInvalidInput, "bad number of variables (%d)", num)
	}
	if num < old {
		return m.errorf(ErrPrecondition, "cannot decrease varnum from %d to %d", old, num)
	}
	if num == old {
		return nil
	}

	level2var := make([]int32, num)
	var2level := make([]int32, num)
	copy(level2var, m.level2var)
	copy(var2level, m.var2level)
	for v := old; v < num; v++ {
		level2var[v] = int32(v)
		var2level[v] = int32(v)
	}
	m.level2var = level2var
	m.var2level = var2level

	varnames := make([]string, num)
	copy(varnames, m.varnames)
	m.varnames = varnames

	levelCount := make([]int32, num+1) // +1 for the terminal's level
	copy(levelCount, m.levelCount)
	m.levelCount = levelCount

	varset := make([][2]edge, num)
	copy(varset, m.varset)
	m.varset = varset

	m.varnum = int32(num)
	// the terminal's level is past every variable's (the bottom of the order)
	m.nodes[0].level = int32(num)

	for v := old; v < num; v++ {
		lo, err := m.findOrAdd(int32(v), falseEdge, trueEdge)
		if err != nil {
			m.varnum = int32(old)
			return m.errorf(ErrOutOfMemory, "cannot allocate variable %d", v)
		}
		m.incref(lo.node())
		hi, err := m.findOrAdd(int32(v), trueEdge, falseEdge)
		if err != nil {
			m.varnum = int32(old)
			return m.errorf(ErrOutOfMemory, "cannot allocate variable %d", v)
		}
		m.incref(hi.node())
		m.varset[v] = [2]edge{lo, hi}
	}
	return nil
}
