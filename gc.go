// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd

import "log"

// gcstat stores status information about garbage collections, a stack
// (slice) of snapshots recorded at each occurrence. Grounded on the
// teacher's gc.go gcstat/gcpoint.
type gcstat struct {
	setfinalizers    uint64
	calledfinalizers uint64
	history          []gcpoint
}

type gcpoint struct {
	nodes     int
	freenodes int
	deadCount int
}

// incref increases the external reference count on node index n. It never
// fails, even on the terminal or an out-of-range index, mirroring the
// teacher's AddRef ergonomics (spec §4.4: "increment/decrement never fail").
func (m *Manager) incref(n int32) {
	if n <= 0 || int(n) >= len(m.nodes) {
		return
	}
	if m.nodes[n].low == freeSentinel {
		return
	}
	if m.nodes[n].refcou < _MAXREFCOUNT {
		m.nodes[n].refcou++
	}
}

// decref decreases the external reference count on node index n. A node
// whose count reaches zero becomes collectible but is not immediately
// reclaimed; it is swept on the next gc() pass.
func (m *Manager) decref(n int32) {
	if n <= 0 || int(n) >= len(m.nodes) {
		return
	}
	if m.nodes[n].low == freeSentinel {
		return
	}
	if m.nodes[n].refcou <= 0 {
		return
	}
	if m.nodes[n].refcou < _MAXREFCOUNT {
		m.nodes[n].refcou--
		if m.nodes[n].refcou == 0 {
			m.deadCount++
		}
	}
}

// gc runs a full mark-sweep pass: every node reachable from a node with a
// positive external refcount, or from the transient refstack protecting an
// in-flight recursion, survives; everything else is swept back onto the free
// list. Every computed table is invalidated, since their entries name nodes
// by index and those indices are about to be reused (spec §4.4, §5 "all
// computed tables are invalidated").
func (m *Manager) gc() {
	if _LOGLEVEL > 0 {
		log.Println("robdd: starting GC")
	}

	m.gcstat.history = append(m.gcstat.history, gcpoint{
		nodes:     len(m.nodes),
		freenodes: int(m.freenum),
		deadCount: int(m.deadCount),
	})

	for _, r := range m.refstack {
		m.markrec(r)
	}
	for k := range m.nodes {
		if m.nodes[k].refcou > 0 {
			m.markrec(int32(k))
		}
		m.nodes[k].hash = 0
	}

	m.freepos = 0
	m.freenum = 0
	for n := int32(len(m.nodes) - 1); n > 0; n-- {
		if m.ismarked(n) && m.nodes[n].low != freeSentinel {
			m.unmarknode(n)
			h := m.ptrhash(n)
			m.nodes[n].next = m.nodes[h].hash
			m.nodes[h].hash = n
		} else if m.nodes[n].low != freeSentinel {
			m.levelCount[m.nodes[n].level_()]--
			m.nodes[n].low = freeSentinel
			m.nodes[n].next = m.freepos
			m.freepos = n
			m.freenum++
		} else {
			m.nodes[n].next = m.freepos
			m.freepos = n
			m.freenum++
		}
	}
	m.deadCount = 0
	m.gen++
	m.cachereset()

	if _LOGLEVEL > 0 {
		log.Printf("robdd: end GC; freenum: %d\n", m.freenum)
	}
}

func (m *Manager) markrec(n int32) {
	if n <= 0 || m.ismarked(n) || m.nodes[n].low == freeSentinel {
		return
	}
	m.marknode(n)
	m.markrec(m.nodes[n].low.node())
	m.markrec(m.nodes[n].high.node())
}

// initref resets the transient-protection stack at the start of a top-level
// kernel call.
func (m *Manager) initref() {
	m.refstack = m.refstack[:0]
}

// pushref protects node index n from collection for the remainder of the
// current recursion and returns n unchanged, so calls compose naturally:
// low := m.pushref(m.ite(...).node()).
func (m *Manager) pushref(n int32) int32 {
	m.refstack = append(m.refstack, n)
	return n
}

// popref pops the last k entries pushed by pushref.
func (m *Manager) popref(k int) {
	if k > len(m.refstack) {
		k = len(m.refstack)
	}
	m.refstack = m.refstack[:len(m.refstack)-k]
}

// GC forces an immediate mark-sweep pass regardless of the GarbageCollection
// option (spec §6: "explicit calls to GC always run").
func (m *Manager) GC() {
	m.gc()
}
