// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd

// Each computed table memoizes one kernel operation, cleared on every GC
// (spec §4.4 "cleared in full on every GC pass", §5 "Computed tables").
// Grounded on the teacher's cache.go table-of-slots design generalized from
// int keys to edge keys.
//
// cacheStats is embedded in every table below so hit/miss/insert/collision/
// deletion counts are tracked uniformly and can be summed for the
// cache_lookups/cache_hits/cache_insertions/cache_collisions/cache_deletions
// statistics (spec §6). Unlike the per-slot contents, hit/miss/inserts are
// lifetime counters: they are not zeroed by reset(), since the spec's
// counters are cumulative across the manager's life, not since-last-GC.
// deletions is bumped once per previously-valid slot actually cleared by
// reset(), since those slots name node indices that GC may have just
// invalidated.
type cacheStats struct {
	hit        uint64
	miss       uint64
	inserts    uint64
	collisions uint64
	deletions  uint64
}

func (s *cacheStats) recordHit()  { s.hit++ }
func (s *cacheStats) recordMiss() { s.miss++ }

func (s *cacheStats) hitrate() float64 {
	total := s.hit + s.miss
	if total == 0 {
		return 0
	}
	return 100 * float64(s.hit) / float64(total)
}

type itecacheEntry struct {
	valid   bool
	f, g, h edge
	res     edge
}

type itecache struct {
	cacheStats
	slots []itecacheEntry
}

func newitecache(n int) *itecache {
	if n < 1 {
		n = 1
	}
	return &itecache{slots: make([]itecacheEntry, n)}
}

func (c *itecache) lookup(f, g, h edge) (edge, bool) {
	i := _TRIPLE(int(f), int(g), int(h), len(c.slots))
	e := &c.slots[i]
	if e.valid && e.f == f && e.g == g && e.h == h {
		c.recordHit()
		return e.res, true
	}
	c.recordMiss()
	return 0, false
}

func (c *itecache) insert(f, g, h, res edge) {
	i := _TRIPLE(int(f), int(g), int(h), len(c.slots))
	if c.slots[i].valid && (c.slots[i].f != f || c.slots[i].g != g || c.slots[i].h != h) {
		c.collisions++
	}
	c.inserts++
	c.slots[i] = itecacheEntry{valid: true, f: f, g: g, h: h, res: res}
}

func (c *itecache) reset() {
	for i := range c.slots {
		if c.slots[i].valid {
			c.deletions++
		}
		c.slots[i] = itecacheEntry{}
	}
}

// quantcache memoizes Exist/Forall. Entries are additionally keyed by the
// quantified variable set: quantGen holds the edge of the cube being
// quantified over, so a different set never matches.
type quantcacheEntry struct {
	valid    bool
	kind     quantKind
	e        edge
	quantGen int64
	res      edge
}

type quantcache struct {
	cacheStats
	slots []quantcacheEntry
}

func newquantcache(n int) *quantcache {
	if n < 1 {
		n = 1
	}
	return &quantcache{slots: make([]quantcacheEntry, n)}
}

func (c *quantcache) lookup(kind quantKind, e edge, gen int64) (edge, bool) {
	i := _TRIPLE(int(kind), int(e), int(gen), len(c.slots))
	s := &c.slots[i]
	if s.valid && s.kind == kind && s.e == e && s.quantGen == gen {
		c.recordHit()
		return s.res, true
	}
	c.recordMiss()
	return 0, false
}

func (c *quantcache) insert(kind quantKind, e edge, gen int64, res edge) {
	i := _TRIPLE(int(kind), int(e), int(gen), len(c.slots))
	if c.slots[i].valid && (c.slots[i].kind != kind || c.slots[i].e != e || c.slots[i].quantGen != gen) {
		c.collisions++
	}
	c.inserts++
	c.slots[i] = quantcacheEntry{valid: true, kind: kind, e: e, quantGen: gen, res: res}
}

func (c *quantcache) reset() {
	for i := range c.slots {
		if c.slots[i].valid {
			c.deletions++
		}
		c.slots[i] = quantcacheEntry{}
	}
}

// appexcache memoizes AppEx (apply-then-quantify fused in one pass, a
// teacher hoperations.go idiom kept to avoid building the full apply result
// before quantifying it away).
type appexcacheEntry struct {
	valid    bool
	op       Op
	kind     quantKind
	f, g     edge
	quantGen int64
	res      edge
}

type appexcache struct {
	cacheStats
	slots []appexcacheEntry
}

func newappexcache(n int) *appexcache {
	if n < 1 {
		n = 1
	}
	return &appexcache{slots: make([]appexcacheEntry, n)}
}

func (c *appexcache) lookup(op Op, kind quantKind, f, g edge, gen int64) (edge, bool) {
	i := _TRIPLE(int(f), int(g), _PAIR(int(op)<<1|int(kind), int(gen), 1<<30), len(c.slots))
	s := &c.slots[i]
	if s.valid && s.op == op && s.kind == kind && s.f == f && s.g == g && s.quantGen == gen {
		c.recordHit()
		return s.res, true
	}
	c.recordMiss()
	return 0, false
}

func (c *appexcache) insert(op Op, kind quantKind, f, g edge, gen int64, res edge) {
	i := _TRIPLE(int(f), int(g), _PAIR(int(op)<<1|int(kind), int(gen), 1<<30), len(c.slots))
	old := &c.slots[i]
	if old.valid && (old.op != op || old.kind != kind || old.f != f || old.g != g || old.quantGen != gen) {
		c.collisions++
	}
	c.inserts++
	c.slots[i] = appexcacheEntry{valid: true, op: op, kind: kind, f: f, g: g, quantGen: gen, res: res}
}

func (c *appexcache) reset() {
	for i := range c.slots {
		if c.slots[i].valid {
			c.deletions++
		}
		c.slots[i] = appexcacheEntry{}
	}
}

// replacecache memoizes Replace (variable-to-variable renaming), keyed by
// the edge being rewritten plus the generation of the replacement pair
// table. Compose has its own cache below: the two operations are distinct
// (spec §4.3 "compose(f, var, g)" substitutes a variable by an arbitrary
// edge, while rename/Replace only ever substitutes variables for other
// variables).
type replacecacheEntry struct {
	valid   bool
	e       edge
	pairGen int64
	res     edge
}

type replacecache struct {
	cacheStats
	slots []replacecacheEntry
}

func newreplacecache(n int) *replacecache {
	if n < 1 {
		n = 1
	}
	return &replacecache{slots: make([]replacecacheEntry, n)}
}

func (c *replacecache) lookup(e edge, gen int64) (edge, bool) {
	i := _PAIR(int(e), int(gen), len(c.slots))
	s := &c.slots[i]
	if s.valid && s.e == e && s.pairGen == gen {
		c.recordHit()
		return s.res, true
	}
	c.recordMiss()
	return 0, false
}

func (c *replacecache) insert(e edge, gen int64, res edge) {
	i := _PAIR(int(e), int(gen), len(c.slots))
	if c.slots[i].valid && (c.slots[i].e != e || c.slots[i].pairGen != gen) {
		c.collisions++
	}
	c.inserts++
	c.slots[i] = replacecacheEntry{valid: true, e: e, pairGen: gen, res: res}
}

func (c *replacecache) reset() {
	for i := range c.slots {
		if c.slots[i].valid {
			c.deletions++
		}
		c.slots[i] = replacecacheEntry{}
	}
}

// composecache memoizes Compose(f, varLevel, g) (spec §4.3 "compose(f, var,
// g)"), triple-keyed directly on the three concrete values: unlike
// replacecache's association-table generation, f, varLevel and g are all
// stable values on their own, so no extra indirection is needed.
type composecacheEntry struct {
	valid           bool
	f, g            edge
	varLevel        int32
	res             edge
}

type composecache struct {
	cacheStats
	slots []composecacheEntry
}

func newcomposecache(n int) *composecache {
	if n < 1 {
		n = 1
	}
	return &composecache{slots: make([]composecacheEntry, n)}
}

func (c *composecache) lookup(f edge, varLevel int32, g edge) (edge, bool) {
	i := _TRIPLE(int(f), int(varLevel), int(g), len(c.slots))
	s := &c.slots[i]
	if s.valid && s.f == f && s.varLevel == varLevel && s.g == g {
		c.recordHit()
		return s.res, true
	}
	c.recordMiss()
	return 0, false
}

func (c *composecache) insert(f edge, varLevel int32, g, res edge) {
	i := _TRIPLE(int(f), int(varLevel), int(g), len(c.slots))
	if c.slots[i].valid && (c.slots[i].f != f || c.slots[i].varLevel != varLevel || c.slots[i].g != g) {
		c.collisions++
	}
	c.inserts++
	c.slots[i] = composecacheEntry{valid: true, f: f, g: g, varLevel: varLevel, res: res}
}

func (c *composecache) reset() {
	for i := range c.slots {
		if c.slots[i].valid {
			c.deletions++
		}
		c.slots[i] = composecacheEntry{}
	}
}

// restrictcache memoizes restrict(f, c) (Coudert/Madre care-set
// minimization, spec §4.3 "cofactor(f, assignment) ... uses Coudert's
// restrict when the assignment is expressed as a care-set BDD"), pair-keyed
// on the two edges involved.
type restrictcacheEntry struct {
	valid bool
	f, c  edge
	res   edge
}

type restrictcache struct {
	cacheStats
	slots []restrictcacheEntry
}

func newrestrictcache(n int) *restrictcache {
	if n < 1 {
		n = 1
	}
	return &restrictcache{slots: make([]restrictcacheEntry, n)}
}

func (rc *restrictcache) lookup(f, c edge) (edge, bool) {
	i := _PAIR(int(f), int(c), len(rc.slots))
	s := &rc.slots[i]
	if s.valid && s.f == f && s.c == c {
		rc.recordHit()
		return s.res, true
	}
	rc.recordMiss()
	return 0, false
}

func (rc *restrictcache) insert(f, c, res edge) {
	i := _PAIR(int(f), int(c), len(rc.slots))
	if rc.slots[i].valid && (rc.slots[i].f != f || rc.slots[i].c != c) {
		rc.collisions++
	}
	rc.inserts++
	rc.slots[i] = restrictcacheEntry{valid: true, f: f, c: c, res: res}
}

func (rc *restrictcache) reset() {
	for i := range rc.slots {
		if rc.slots[i].valid {
			rc.deletions++
		}
		rc.slots[i] = restrictcacheEntry{}
	}
}

// cacheinit allocates the six computed tables at construction time.
func (m *Manager) cacheinit(cfg *configs) {
	n := cfg.cachesize
	if n < 1 {
		n = 1000
	}
	m.itecache = newitecache(n)
	m.quantcache = newquantcache(n)
	m.appexcache = newappexcache(n)
	m.replacecache = newreplacecache(n)
	m.composecache = newcomposecache(n)
	m.restrictcache = newrestrictcache(n)
}

// cachereset clears every computed table; called on every GC pass since
// table entries name nodes by index and those indices may be reused.
func (m *Manager) cachereset() {
	m.itecache.reset()
	m.quantcache.reset()
	m.appexcache.reset()
	m.replacecache.reset()
	m.composecache.reset()
	m.restrictcache.reset()
}

// cacheresize grows each computed table proportionally to the node table
// when Cacheratio is set, keeping the memoization load factor roughly
// constant as the BDD grows (spec §6 "cache_ratio").
func (m *Manager) cacheresize(nodesize int) {
	if m.cfg.cacheratio <= 0 {
		return
	}
	n := (nodesize * m.cfg.cacheratio) / 100
	if n < 1 {
		n = 1
	}
	n = primeGte(n)
	m.itecache.slots = make([]itecacheEntry, n)
	m.quantcache.slots = make([]quantcacheEntry, n)
	m.appexcache.slots = make([]appexcacheEntry, n)
	m.replacecache.slots = make([]replacecacheEntry, n)
	m.composecache.slots = make([]composecacheEntry, n)
	m.restrictcache.slots = make([]restrictcacheEntry, n)
}

// cacheSize returns the total number of slots across every computed table
// (spec §6 "cache_size").
func (m *Manager) cacheSize() int {
	return len(m.itecache.slots) + len(m.quantcache.slots) + len(m.appexcache.slots) +
		len(m.replacecache.slots) + len(m.composecache.slots) + len(m.restrictcache.slots)
}

// cacheUsedFraction returns the fraction of computed-table slots currently
// holding a valid entry (spec §6 "cache_used_fraction").
func (m *Manager) cacheUsedFraction() float64 {
	used, total := 0, 0
	for _, v := range m.itecache.slots {
		total++
		if v.valid {
			used++
		}
	}
	for _, v := range m.quantcache.slots {
		total++
		if v.valid {
			used++
		}
	}
	for _, v := range m.appexcache.slots {
		total++
		if v.valid {
			used++
		}
	}
	for _, v := range m.replacecache.slots {
		total++
		if v.valid {
			used++
		}
	}
	for _, v := range m.composecache.slots {
		total++
		if v.valid {
			used++
		}
	}
	for _, v := range m.restrictcache.slots {
		total++
		if v.valid {
			used++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total)
}

// cacheAggregate sums lookups/hits/inserts/collisions/deletions across every
// computed table (spec §6 "cache_lookups, cache_hits, cache_insertions,
// cache_collisions, cache_deletions").
func (m *Manager) cacheAggregate() (lookups, hits, inserts, collisions, deletions uint64) {
	tables := []*cacheStats{
		&m.itecache.cacheStats,
		&m.quantcache.cacheStats,
		&m.appexcache.cacheStats,
		&m.replacecache.cacheStats,
		&m.composecache.cacheStats,
		&m.restrictcache.cacheStats,
	}
	for _, s := range tables {
		lookups += s.hit + s.miss
		hits += s.hit
		inserts += s.inserts
		collisions += s.collisions
		deletions += s.deletions
	}
	return
}
