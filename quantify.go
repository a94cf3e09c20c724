// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd

import "context"

// Quantification walks a cube (the Handle built by Makeset: a chain of
// nodes linked only through their high edges, spec §6 "Makeset/Scanset")
// alongside the function being quantified, exactly the teacher's
// operations.go quant/appquant recursion generalized to complement edges
// and to both Exist and Forall.

// advanceVarset skips cube entries above lvl: variables the recursion has
// already passed without finding a matching level in f.
func (m *Manager) advanceVarset(vs edge, lvl int32) edge {
	for vs.node() != 0 && m.nodes[vs.node()].level_() < lvl {
		vs = m.nodes[vs.node()].high
	}
	return vs
}

func (m *Manager) quant(ctx context.Context, kind quantKind, e, varset edge) (edge, error) {
	if e.isConstant() {
		return e, nil
	}
	level := m.level(e)
	varset = m.advanceVarset(varset, level)
	if varset.node() == 0 {
		return e, nil
	}
	if err := m.checkctx(ctx); err != nil {
		return 0, err
	}
	gen := int64(varset)
	if res, ok := m.quantcache.lookup(kind, e, gen); ok {
		return res, nil
	}

	low, high := m.cofactor(e, level)

	lowR, err := m.quant(ctx, kind, low, varset)
	if err != nil {
		return 0, err
	}
	m.pushref(lowR.node())
	highR, err := m.quant(ctx, kind, high, varset)
	if err != nil {
		m.popref(1)
		return 0, err
	}
	m.pushref(highR.node())

	var res edge
	if m.nodes[varset.node()].level_() == level {
		if kind == quantExists {
			res, err = m.ite(ctx, lowR, trueEdge, highR)
		} else {
			res, err = m.ite(ctx, lowR, highR, falseEdge)
		}
	} else {
		res, err = m.findOrAdd(level, lowR, highR)
	}
	m.popref(2)
	if err != nil {
		return 0, err
	}
	m.quantcache.insert(kind, e, gen, res)
	return res, nil
}

// Exist returns the Handle for the existential quantification of h over the
// variables in varset (a cube built by Makeset).
func (m *Manager) Exist(h, varset Handle) (Handle, error) {
	return m.ExistContext(context.Background(), h, varset)
}

// ExistContext is Exist with ctx polled for cancellation during the cube
// recursion.
func (m *Manager) ExistContext(ctx context.Context, h, varset Handle) (Handle, error) {
	if err := m.checkHandle(h); err != nil {
		return Handle{}, err
	}
	if err := m.checkHandle(varset); err != nil {
		return Handle{}, err
	}
	e, err := m.quant(ctx, quantExists, h.e, varset.e)
	if err != nil {
		return Handle{}, err
	}
	return m.retnode(e), nil
}

// Forall returns the Handle for the universal quantification of h over the
// variables in varset.
func (m *Manager) Forall(h, varset Handle) (Handle, error) {
	return m.ForallContext(context.Background(), h, varset)
}

// ForallContext is Forall with ctx polled for cancellation during the cube
// recursion.
func (m *Manager) ForallContext(ctx context.Context, h, varset Handle) (Handle, error) {
	if err := m.checkHandle(h); err != nil {
		return Handle{}, err
	}
	if err := m.checkHandle(varset); err != nil {
		return Handle{}, err
	}
	e, err := m.quant(ctx, quantForall, h.e, varset.e)
	if err != nil {
		return Handle{}, err
	}
	return m.retnode(e), nil
}

// appex fuses apply(op, f, g) with quantification over varset in a single
// recursion, avoiding materializing the (potentially much larger)
// un-quantified apply result before discarding most of it (the teacher's
// operations.go appquant rationale).
func (m *Manager) appex(ctx context.Context, op Op, kind quantKind, f, g, varset edge) (edge, error) {
	if varset.node() == 0 {
		return m.apply(ctx, op, f, g)
	}
	if f.isConstant() && g.isConstant() {
		return m.apply(ctx, op, f, g)
	}
	if err := m.checkctx(ctx); err != nil {
		return 0, err
	}

	lvl := min3(m.level(f), m.level(g), m.level(varset))
	varset = m.advanceVarset(varset, lvl)
	if varset.node() == 0 {
		return m.apply(ctx, op, f, g)
	}

	gen := int64(varset)
	if res, ok := m.appexcache.lookup(op, kind, f, g, gen); ok {
		return res, nil
	}

	flow, fhigh := m.cofactor(f, lvl)
	glow, ghigh := m.cofactor(g, lvl)

	quantified := m.nodes[varset.node()].level_() == lvl
	nextvs := varset
	if quantified {
		nextvs = m.nodes[varset.node()].high
	}

	low, err := m.appex(ctx, op, kind, flow, glow, nextvs)
	if err != nil {
		return 0, err
	}
	m.pushref(low.node())
	high, err := m.appex(ctx, op, kind, fhigh, ghigh, nextvs)
	if err != nil {
		m.popref(1)
		return 0, err
	}
	m.pushref(high.node())

	var res edge
	if quantified {
		if kind == quantExists {
			res, err = m.ite(ctx, low, trueEdge, high)
		} else {
			res, err = m.ite(ctx, low, high, falseEdge)
		}
	} else {
		res, err = m.findOrAdd(lvl, low, high)
	}
	m.popref(2)
	if err != nil {
		return 0, err
	}
	m.appexcache.insert(op, kind, f, g, gen, res)
	return res, nil
}

// AppEx applies op to a and b, then existentially quantifies the result over
// varset, in one fused pass (spec's AndExists is AppEx with op == OpAnd).
func (m *Manager) AppEx(op Op, a, b, varset Handle) (Handle, error) {
	return m.AppExContext(context.Background(), op, a, b, varset)
}

// AppExContext is AppEx with ctx polled for cancellation during the fused
// recursion.
func (m *Manager) AppExContext(ctx context.Context, op Op, a, b, varset Handle) (Handle, error) {
	if err := m.checkHandle(a); err != nil {
		return Handle{}, err
	}
	if err := m.checkHandle(b); err != nil {
		return Handle{}, err
	}
	if err := m.checkHandle(varset); err != nil {
		return Handle{}, err
	}
	e, err := m.appex(ctx, op, quantExists, a.e, b.e, varset.e)
	if err != nil {
		return Handle{}, err
	}
	return m.retnode(e), nil
}

// AndExists is AppEx(OpAnd, a, b, varset), the most common fused operation,
// central to image computation in model checking.
func (m *Manager) AndExists(a, b, varset Handle) (Handle, error) {
	return m.AppEx(OpAnd, a, b, varset)
}
