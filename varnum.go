// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd

import (
	"context"
	"fmt"
)

// Declare assigns contiguous variable indices to names, growing Varnum as
// needed (spec §6 "declare(name...) assigns indices contiguously unless
// explicit index is given"). It returns the assigned indices in the same
// order as names.
func (m *Manager) Declare(names ...string) ([]int, error) {
	if len(names) == 0 {
		return nil, nil
	}
	start := int(m.varnum)
	// Declare always grows past the current varnum: existing indices are
	// never reassigned, so repeated calls are additive.
	if err := m.SetVarnum(start + len(names)); err != nil {
		return nil, err
	}
	idx := make([]int, len(names))
	for k, name := range names {
		v := start + k
		m.varnames[v] = name
		idx[k] = v
	}
	return idx, nil
}

// VarByName returns the index assigned to name by Declare, or an error if no
// such variable exists.
func (m *Manager) VarByName(name string) (int, error) {
	for v, n := range m.varnames {
		if n == name {
			return v, nil
		}
	}
	return -1, fmt.Errorf("unknown variable %q: %w", name, ErrInvalidInput)
}

// LevelOfVar returns the current level of variable v (spec §6).
func (m *Manager) LevelOfVar(v int) int {
	if v < 0 || v >= int(m.varnum) {
		return -1
	}
	return int(m.var2level[v])
}

// VarAtLevel returns the variable currently sitting at level.
func (m *Manager) VarAtLevel(level int) int {
	if level < 0 || level >= int(m.varnum) {
		return -1
	}
	return int(m.level2var[level])
}

// VarLevels returns the current level of every variable, indexed by variable
// index (the "index -> level" half of spec §3's permutation).
func (m *Manager) VarLevels() []int {
	res := make([]int, m.varnum)
	for v := range res {
		res[v] = int(m.var2level[v])
	}
	return res
}

func (m *Manager) checkvar(v int) error {
	if v < 0 || v >= int(m.varnum) {
		return m.errorf(ErrInvalidInput, "variable %d out of range [0,%d)", v, m.varnum)
	}
	return nil
}

// Ithvar returns the Handle for the positive literal of variable v.
func (m *Manager) Ithvar(v int) (Handle, error) {
	if err := m.checkvar(v); err != nil {
		return Handle{}, err
	}
	return m.retnode(m.varset[v][0]), nil
}

// NIthvar returns the Handle for the negative literal of variable v.
func (m *Manager) NIthvar(v int) (Handle, error) {
	if err := m.checkvar(v); err != nil {
		return Handle{}, err
	}
	return m.retnode(m.varset[v][1]), nil
}

// Makeset returns the Handle for the conjunction (the cube) of the positive
// literals of varset, such that Scanset(Makeset(a)) == a (spec §6).
func (m *Manager) Makeset(varset []int) (Handle, error) {
	res := trueEdge
	// folded from varset's last element to its first; ite places each literal
	// at its own level, so the resulting cube threads through levels in
	// increasing order regardless of varset's input order
	ordered := append([]int(nil), varset...)
	for i := len(ordered) - 1; i >= 0; i-- {
		v := ordered[i]
		if err := m.checkvar(v); err != nil {
			return Handle{}, err
		}
		e, err := m.ite(context.Background(), m.varset[v][0], res, falseEdge)
		if err != nil {
			return Handle{}, err
		}
		res = e
	}
	return m.retnode(res), nil
}

// Scanset returns the variables found while following the high branch of h,
// the dual of Makeset.
func (m *Manager) Scanset(h Handle) ([]int, error) {
	if err := m.checkHandle(h); err != nil {
		return nil, err
	}
	var res []int
	e := h.e
	for e.node() > 0 {
		n := &m.nodes[e.node()]
		res = append(res, int(m.level2var[n.level_()]))
		e = n.high
	}
	return res, nil
}
