// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd

import "context"

// apply reduces every binary connective to a single ite call (spec §4.3:
// "all binary and unary operators are expressed in terms of ITE"), choosing
// operand polarity so that each maps onto ite without an extra negation
// pass, following the teacher's hoperations.go dispatch table.
func (m *Manager) apply(ctx context.Context, op Op, a, b edge) (edge, error) {
	switch op {
	case OpAnd:
		return m.ite(ctx, a, b, falseEdge)
	case OpOr:
		return m.ite(ctx, a, trueEdge, b)
	case OpXor:
		return m.ite(ctx, a, b.negate(), b)
	case OpImplies:
		return m.ite(ctx, a, b, trueEdge)
	case OpEquiv:
		return m.ite(ctx, a, b, b.negate())
	case OpNand:
		return m.ite(ctx, a, b.negate(), trueEdge)
	case OpNor:
		return m.ite(ctx, a, falseEdge, b.negate())
	case OpDiff:
		return m.ite(ctx, a, b.negate(), falseEdge)
	default:
		return 0, m.errorf(ErrInvalidInput, "unsupported operator %v", op)
	}
}

// level returns the variable level of e's node, m.varnum for either
// constant (the terminal always sits below every real variable, at the
// bottom of the order).
func (m *Manager) level(e edge) int32 {
	return m.nodes[e.node()].level_()
}

// cofactor returns the pair (low, high) of e with respect to the variable at
// lvl. If e's node sits at a lower level (i.e. doesn't depend on that
// variable), both cofactors are e itself.
func (m *Manager) cofactor(e edge, lvl int32) (low, high edge) {
	n := &m.nodes[e.node()]
	if n.level_() != lvl {
		return e, e
	}
	if e.comp() {
		return n.low.negate(), n.high.negate()
	}
	return n.low, n.high
}

func min3(a, b, c int32) int32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// ite is the kernel recursion (spec §4.3 "Apply/ITE kernel"). It implements
// the standard terminal shortcuts, the complement-edge canonicalization that
// halves the computed table's working set (ite(f,g,h) with h complemented
// is computed as not ite(f, not g, not h)), top-variable cofactoring, and
// computed-table memoization. ctx is polled once per recursive call (spec
// §5), below the terminal fast paths so the common case pays no extra cost.
func (m *Manager) ite(ctx context.Context, f, g, h edge) (edge, error) {
	switch {
	case f == trueEdge:
		return g, nil
	case f == falseEdge:
		return h, nil
	case g == h:
		return g, nil
	case g == trueEdge && h == falseEdge:
		return f, nil
	case g == falseEdge && h == trueEdge:
		return f.negate(), nil
	}

	if err := m.checkctx(ctx); err != nil {
		return 0, err
	}

	comp := false
	if h.comp() {
		g, h = g.negate(), h.negate()
		comp = true
	}

	if res, ok := m.itecache.lookup(f, g, h); ok {
		if comp {
			return res.negate(), nil
		}
		return res, nil
	}

	lvl := min3(m.level(f), m.level(g), m.level(h))
	flow, fhigh := m.cofactor(f, lvl)
	glow, ghigh := m.cofactor(g, lvl)
	hlow, hhigh := m.cofactor(h, lvl)

	low, err := m.ite(ctx, flow, glow, hlow)
	if err != nil {
		return 0, err
	}
	m.pushref(low.node())
	high, err := m.ite(ctx, fhigh, ghigh, hhigh)
	if err != nil {
		m.popref(1)
		return 0, err
	}
	m.pushref(high.node())

	res, err := m.findOrAdd(lvl, low, high)
	m.popref(2)
	if err != nil {
		return 0, err
	}

	m.itecache.insert(f, g, h, res)
	if comp {
		return res.negate(), nil
	}
	return res, nil
}
