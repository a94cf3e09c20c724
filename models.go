// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd

import (
	"math/big"

	"github.com/bits-and-blooms/bitset"
)

// Satcount counts the satisfying assignments of h over its full declared
// variable set, using arbitrary-precision arithmetic to avoid overflow
// (spec's model-enumeration component, grounded on the teacher's
// operations.go Satcount/satcount generalized to complement edges — the
// edge itself, comp bit included, is a valid memoization key since
// satcount(not e) and satcount(e) are cached at different keys).
func (m *Manager) Satcount(h Handle) (*big.Int, error) {
	if err := m.checkHandle(h); err != nil {
		return nil, err
	}
	memo := make(map[edge]*big.Int)
	res := m.satcountrec(h.e, memo)
	full := new(big.Int).Lsh(res, uint(m.level(h.e)))
	return full, nil
}

func (m *Manager) satcountrec(e edge, memo map[edge]*big.Int) *big.Int {
	if e == falseEdge {
		return big.NewInt(0)
	}
	if e == trueEdge {
		return big.NewInt(1)
	}
	if res, ok := memo[e]; ok {
		return res
	}
	n := &m.nodes[e.node()]
	level := n.level_()
	low, high := n.low, n.high
	if e.comp() {
		low, high = low.negate(), high.negate()
	}

	res := big.NewInt(0)
	lowCount := m.satcountrec(low, memo)
	gapLow := uint(m.level(low) - level - 1)
	res.Add(res, new(big.Int).Lsh(lowCount, gapLow))

	highCount := m.satcountrec(high, memo)
	gapHigh := uint(m.level(high) - level - 1)
	res.Add(res, new(big.Int).Lsh(highCount, gapHigh))

	memo[e] = res
	return res
}

// Allsat calls f once per satisfying assignment of h, passing a slice of
// length Varnum where entry v is 0 (false), 1 (true), or -1 (don't care).
// Iteration stops and returns f's error the first time it returns one.
func (m *Manager) Allsat(h Handle, f func([]int) error) error {
	if err := m.checkHandle(h); err != nil {
		return err
	}
	prof := make([]int, m.varnum)
	for k := range prof {
		prof[k] = -1
	}
	return m.allsat(h.e, prof, f)
}

func (m *Manager) allsat(e edge, prof []int, f func([]int) error) error {
	if e == falseEdge {
		return nil
	}
	if e == trueEdge {
		return f(prof)
	}
	n := &m.nodes[e.node()]
	level := n.level_()
	low, high := n.low, n.high
	if e.comp() {
		low, high = low.negate(), high.negate()
	}
	v := m.level2var[level]

	prof[v] = 0
	for lv := m.level(low) - 1; lv > level; lv-- {
		prof[m.level2var[lv]] = -1
	}
	if err := m.allsat(low, prof, f); err != nil {
		return err
	}

	prof[v] = 1
	for lv := m.level(high) - 1; lv > level; lv-- {
		prof[m.level2var[lv]] = -1
	}
	if err := m.allsat(high, prof, f); err != nil {
		return err
	}
	return nil
}

// Allnodes applies f to every node reachable from roots (or every live node
// in the table if roots is empty), passing its table index as id, its level,
// and its low/high successors as packed edges (node index<<1 | complement
// bit, so 0 is false and 1 is true). The terminal, at index 0, is never
// visited; index 1 is an ordinary node. Iteration order is unspecified.
func (m *Manager) Allnodes(f func(id, level, low, high int) error, roots ...Handle) error {
	for _, h := range roots {
		if err := m.checkHandle(h); err != nil {
			return err
		}
	}
	if len(roots) == 0 {
		for i := range m.nodes {
			if i == 0 || m.nodes[i].low == freeSentinel {
				continue
			}
			n := &m.nodes[i]
			if err := f(i, int(n.level_()), int(n.low), int(n.high)); err != nil {
				return err
			}
		}
		return nil
	}
	visited := make(map[int32]bool)
	var walk func(n int32) error
	walk = func(n int32) error {
		if n == 0 || visited[n] {
			return nil
		}
		visited[n] = true
		nd := &m.nodes[n]
		if err := f(int(n), int(nd.level_()), int(nd.low), int(nd.high)); err != nil {
			return err
		}
		if err := walk(nd.low.node()); err != nil {
			return err
		}
		return walk(nd.high.node())
	}
	for _, h := range roots {
		if err := walk(h.e.node()); err != nil {
			return err
		}
	}
	return nil
}

// Support returns the Handle for the cube of variables h syntactically
// depends on.
func (m *Manager) Support(h Handle) (Handle, error) {
	if err := m.checkHandle(h); err != nil {
		return Handle{}, err
	}
	seen := bitset.New(uint(m.varnum))
	visited := make(map[int32]bool)
	var walk func(n int32)
	walk = func(n int32) {
		if n == 0 || visited[n] {
			return
		}
		visited[n] = true
		nd := &m.nodes[n]
		seen.Set(uint(m.level2var[nd.level_()]))
		walk(nd.low.node())
		walk(nd.high.node())
	}
	walk(h.e.node())
	var vars []int
	for v := uint(0); v < uint(m.varnum); v++ {
		if seen.Test(v) {
			vars = append(vars, int(v))
		}
	}
	return m.Makeset(vars)
}
