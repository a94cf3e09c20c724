// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd

// findOrAdd is the unique table's sole entry point (spec §4.1). It returns
// the canonical edge denoting ite(var_at_level(level), high, low), applying
// three reductions in order:
//
//  1. redundancy: if low == high, the node is skipped entirely.
//  2. complement canonicalization: the high child of an interior node is
//     never complemented, so if high carries the complement bit we flip both
//     children and push the complement onto the result instead.
//  3. hash-consing: look the (level, low, high) triple up in the table; if
//     absent, allocate a new node and insert it into its hash chain.
func (m *Manager) findOrAdd(level int32, low, high edge) (edge, error) {
	if low == high {
		return low, nil
	}
	if high.comp() {
		e, err := m.findOrAddRaw(level, low.negate(), high.negate())
		if err != nil {
			return 0, err
		}
		return e.negate(), nil
	}
	return m.findOrAddRaw(level, low, high)
}

// findOrAddRaw performs the hash-consing lookup/allocate step only; callers
// must already have applied the low==high and complement-canonicalization
// reductions.
func (m *Manager) findOrAddRaw(level int32, low, high edge) (edge, error) {
	hash := m.nodehash(level, low, high)
	n := m.nodes[hash].hash
	for n != 0 {
		cur := &m.nodes[n]
		if cur.level_() == level && cur.low == low && cur.high == high {
			return mkedge(n, false), nil
		}
		n = cur.next
	}

	idx, err := m.allocNode()
	if err != nil {
		return 0, err
	}
	m.nodes[idx] = node{level: level, low: low, high: high, refcou: 0}
	hash = m.nodehash(level, low, high)
	m.nodes[idx].next = m.nodes[hash].hash
	m.nodes[hash].hash = idx
	if int(level) < len(m.levelCount) {
		m.levelCount[level]++
	}
	m.produced++
	return mkedge(idx, false), nil
}

// allocNode pops a slot off the free list, triggering GC and, if that still
// doesn't yield enough headroom, a resize.
func (m *Manager) allocNode() (int32, error) {
	if m.freepos == 0 {
		if m.cfg.garbageCollection {
			m.gc()
		}
		if m.freepos == 0 {
			if err := m.noderesize(); err != nil {
				return 0, err
			}
		}
		if m.freepos == 0 {
			return 0, m.errorf(ErrOutOfMemory, "no free nodes after GC and resize")
		}
	}
	idx := m.freepos
	m.freepos = m.nodes[idx].next
	m.freenum--

	if len(m.nodes) > m.peakNodes {
		m.peakNodes = len(m.nodes)
	}
	if live := len(m.nodes) - int(m.freenum); live > m.peakLiveNodes {
		m.peakLiveNodes = live
	}
	return idx, nil
}

// noderesize grows the node table. The new size is bounded by Maxnodesize and
// Maxnodeincrease; every node's hash chain is rebuilt since nodehash depends
// on len(m.nodes).
func (m *Manager) noderesize() error {
	old := len(m.nodes)
	grow := old
	if m.cfg.maxnodeincrease > 0 && grow > m.cfg.maxnodeincrease {
		grow = m.cfg.maxnodeincrease
	}
	newsize := primeGte(old + grow)
	if m.cfg.maxnodesize > 0 && newsize > m.cfg.maxnodesize {
		newsize = m.cfg.maxnodesize
	}
	if newsize <= old {
		return m.errorf(ErrOutOfMemory, "node table at its configured maximum (%d)", old)
	}

	grown := make([]node, newsize)
	copy(grown, m.nodes)
	for k := old; k < newsize; k++ {
		grown[k] = node{low: freeSentinel, next: int32(k + 1)}
	}
	grown[newsize-1].next = 0
	m.nodes = grown
	m.freepos = int32(old)
	m.freenum += int32(newsize - old)

	// hash chains depend on len(m.nodes); rebuild them all
	for k := range m.nodes {
		m.nodes[k].hash = 0
	}
	for k := len(m.nodes) - 1; k > 0; k-- {
		if m.nodes[k].low == freeSentinel {
			continue
		}
		h := m.ptrhash(int32(k))
		m.nodes[k].next = m.nodes[h].hash
		m.nodes[h].hash = int32(k)
	}
	m.cacheresize(newsize)
	return nil
}
