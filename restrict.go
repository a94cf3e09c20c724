// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd

import "context"

// restrict implements Coudert and Madre's restrict algorithm (spec §4.3
// "cofactor(f, assignment) ... uses Coudert's restrict when the assignment
// is expressed as a care-set BDD to minimize result size"): c is an
// arbitrary BDD denoting the set of inputs the caller actually cares about,
// not merely a conjunction of literals, and the result need only agree with
// f wherever c holds — it is free to pick whichever agreeing value yields
// the smaller BDD elsewhere. Not present in the teacher; this generalizes
// the restrict.go cofactoring walk to an arbitrary care set instead of a
// single cube.
//
// The recursion:
//   - c == falseEdge: the care set is empty, so any result agrees with f
//     vacuously; by convention this is reported as a precondition failure,
//     since callers asking to restrict against an impossible care set
//     almost always have a bug upstream.
//   - c == trueEdge or f constant: nothing left to minimize against.
//   - f == c: f already agrees with the care set everywhere it matters.
//   - f == not c: f disagrees everywhere c holds; there is no assignment
//     that would make them equal there other than flipping to false.
//   - otherwise cofactor both f and c at the lower of their two top levels;
//     if c is unsatisfiable along one branch, the result doesn't need to
//     depend on that variable at all and recurses on the other branch
//     alone (the size-reducing step, absent from a plain cofactor).
func (m *Manager) restrict(ctx context.Context, f, c edge) (edge, error) {
	if c == falseEdge {
		return 0, m.errorf(ErrPrecondition, "restrict against an unsatisfiable care set")
	}
	if c == trueEdge || f.isConstant() {
		return f, nil
	}
	if f == c {
		return trueEdge, nil
	}
	if f == c.negate() {
		return falseEdge, nil
	}
	if err := m.checkctx(ctx); err != nil {
		return 0, err
	}
	if res, ok := m.restrictcache.lookup(f, c); ok {
		return res, nil
	}

	lvl := m.level(f)
	if cl := m.level(c); cl < lvl {
		lvl = cl
	}
	flow, fhigh := m.cofactor(f, lvl)
	clow, chigh := m.cofactor(c, lvl)

	var res edge
	var err error
	switch {
	case chigh == falseEdge:
		res, err = m.restrict(ctx, flow, clow)
	case clow == falseEdge:
		res, err = m.restrict(ctx, fhigh, chigh)
	default:
		var lowR, highR edge
		lowR, err = m.restrict(ctx, flow, clow)
		if err != nil {
			return 0, err
		}
		m.pushref(lowR.node())
		highR, err = m.restrict(ctx, fhigh, chigh)
		if err != nil {
			m.popref(1)
			return 0, err
		}
		m.pushref(highR.node())
		res, err = m.findOrAdd(lvl, lowR, highR)
		m.popref(2)
	}
	if err != nil {
		return 0, err
	}
	m.restrictcache.insert(f, c, res)
	return res, nil
}

// Restrict returns the Handle for h minimized against the care-set BDD care
// (Coudert's restrict): the result agrees with h everywhere care holds, and
// is otherwise free to take whichever value makes the BDD smaller. A
// conjunction-of-literals cube (e.g. built with And over Ithvar/NIthvar
// Handles) is a valid, if unambitious, care set — this is what Cofactor
// below builds.
func (m *Manager) Restrict(h, care Handle) (Handle, error) {
	return m.RestrictContext(context.Background(), h, care)
}

// RestrictContext is Restrict with ctx polled for cancellation during the
// recursion.
func (m *Manager) RestrictContext(ctx context.Context, h, care Handle) (Handle, error) {
	if err := m.checkHandle(h); err != nil {
		return Handle{}, err
	}
	if err := m.checkHandle(care); err != nil {
		return Handle{}, err
	}
	e, err := m.restrict(ctx, h.e, care.e)
	if err != nil {
		return Handle{}, err
	}
	return m.retnode(e), nil
}

// Cofactor returns the Handle for h with variable v fixed to val, a
// single-variable specialization of Restrict: the care set is exactly the
// literal asserting v == val.
func (m *Manager) Cofactor(h Handle, v int, val bool) (Handle, error) {
	if err := m.checkHandle(h); err != nil {
		return Handle{}, err
	}
	if err := m.checkvar(v); err != nil {
		return Handle{}, err
	}
	lit := m.varset[v][0]
	if !val {
		lit = m.varset[v][1]
	}
	e, err := m.restrict(context.Background(), h.e, lit)
	if err != nil {
		return Handle{}, err
	}
	return m.retnode(e), nil
}
