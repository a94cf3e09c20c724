// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd

import (
	"context"
	"runtime"
)

// Handle is a safe external reference to a BDD: an edge paired with the
// Manager that owns it (spec §4.6 "Handle/Manager façade"). Handles returned
// by a Manager's public operations are already reference-counted; callers
// that keep a Handle beyond the call that produced it, or that copy one
// explicitly, must say so with Clone, and must call Drop when done.
//
// The zero Handle is not valid; it is only returned alongside a non-nil
// error.
type Handle struct {
	m   *Manager
	e   edge
	gen uint64 // manager generation at capture time; checkHandle does not consult it
}

// retnode wraps e as a Handle owned by m, incrementing e's refcount and
// arming a finalizer as a safety net (teacher's set.go convention: the
// finalizer is a backstop, not the primary memory-management contract,
// which is the explicit Clone/Drop pair below).
func (m *Manager) retnode(e edge) Handle {
	m.incref(e.node())
	h := Handle{m: m, e: e, gen: m.gen}
	runtime.SetFinalizer(&h, func(h *Handle) {
		if h.m != nil {
			h.m.decref(h.e.node())
		}
	})
	return h
}

func (m *Manager) checkHandle(h Handle) error {
	if h.m == nil {
		return m.errorf(ErrInvalidInput, "zero-value handle")
	}
	if h.m != m {
		return m.errorf(ErrInvalidInput, "handle belongs to a different manager")
	}
	if int(h.e.node()) >= len(m.nodes) || m.nodes[h.e.node()].low == freeSentinel {
		return m.errorf(ErrPrecondition, "handle refers to a collected node")
	}
	return nil
}

// checkctx reports ErrCancelled once ctx has been cancelled, the
// cancellation-polling check threaded through every recursive kernel call
// (spec §5 "configurable per-call timeout or explicit cancel"). ctx.Err()
// is a plain field read, not a channel receive, so polling it at every
// recursion step costs no more than the hashing already done there.
func (m *Manager) checkctx(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return m.errorf(ErrCancelled, "operation cancelled: %v", err)
	}
	return nil
}

// Manager returns the Handle's owning manager.
func (h Handle) Manager() *Manager { return h.m }

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.m == nil }

// Clone increments h's refcount and returns an independent Handle to the
// same node; Drop must be called on the clone exactly once.
func (h Handle) Clone() Handle {
	if h.m == nil {
		return h
	}
	return h.m.retnode(h.e)
}

// Drop releases h's reference. Calling Drop more than once on the same
// Handle value is a bug; the refcount floor at zero makes it harmless but
// it should never happen in correct code.
func (h Handle) Drop() {
	if h.m == nil {
		return
	}
	h.m.decref(h.e.node())
	runtime.SetFinalizer(&h, nil)
}

// IsConst reports whether h denotes one of the two Boolean constants.
func (h Handle) IsConst() bool { return h.e.isConstant() }

// BoolValue returns h's constant value; only meaningful when IsConst(h).
func (h Handle) BoolValue() bool { return h.e.boolValue() }

// True returns the Handle for the Boolean constant true in m.
func (m *Manager) True() Handle { return m.retnode(trueEdge) }

// False returns the Handle for the Boolean constant false in m.
func (m *Manager) False() Handle { return m.retnode(falseEdge) }

// Not returns the Handle for the negation of h.
func (m *Manager) Not(h Handle) (Handle, error) {
	if err := m.checkHandle(h); err != nil {
		return Handle{}, err
	}
	return m.retnode(h.e.negate()), nil
}

func (m *Manager) binopContext(ctx context.Context, op Op, a, b Handle) (Handle, error) {
	if err := m.checkHandle(a); err != nil {
		return Handle{}, err
	}
	if err := m.checkHandle(b); err != nil {
		return Handle{}, err
	}
	e, err := m.apply(ctx, op, a.e, b.e)
	if err != nil {
		return Handle{}, err
	}
	h := m.retnode(e)
	m.autoReorder()
	return h, nil
}

func (m *Manager) binop(op Op, a, b Handle) (Handle, error) {
	return m.binopContext(context.Background(), op, a, b)
}

// variadicBinop folds op over n, following the teacher's set.go And/Or
// recursion: zero arguments returns op's identity, one argument returns
// itself unchanged.
func (m *Manager) variadicBinop(ctx context.Context, op Op, identity Handle, n []Handle) (Handle, error) {
	if len(n) == 0 {
		return identity, nil
	}
	if len(n) == 1 {
		if err := m.checkHandle(n[0]); err != nil {
			return Handle{}, err
		}
		return n[0], nil
	}
	rest, err := m.variadicBinop(ctx, op, identity, n[1:])
	if err != nil {
		return Handle{}, err
	}
	return m.binopContext(ctx, op, n[0], rest)
}

// autoReorder runs maybeReorder and records any failure on the manager's
// sticky error instead of propagating it: automatic sifting is a
// best-effort optimization, never a correctness requirement, so a caller's
// And/Or/Ite call should not fail just because a background reorder pass
// hit a resource limit.
func (m *Manager) autoReorder() {
	if err := m.maybeReorder(); err != nil {
		m.seterror(err)
	}
}

// And returns the conjunction of a sequence of Handles (teacher's set.go
// variadic And); the empty conjunction is True.
func (m *Manager) And(n ...Handle) (Handle, error) {
	return m.variadicBinop(context.Background(), OpAnd, m.True(), n)
}

// AndContext is And with ctx polled for cancellation between recursive
// steps.
func (m *Manager) AndContext(ctx context.Context, n ...Handle) (Handle, error) {
	return m.variadicBinop(ctx, OpAnd, m.True(), n)
}

// Or returns the disjunction of a sequence of Handles (teacher's set.go
// variadic Or); the empty disjunction is False.
func (m *Manager) Or(n ...Handle) (Handle, error) {
	return m.variadicBinop(context.Background(), OpOr, m.False(), n)
}

// OrContext is Or with ctx polled for cancellation between recursive steps.
func (m *Manager) OrContext(ctx context.Context, n ...Handle) (Handle, error) {
	return m.variadicBinop(ctx, OpOr, m.False(), n)
}

// Xor returns a XOR b.
func (m *Manager) Xor(a, b Handle) (Handle, error) { return m.binop(OpXor, a, b) }

// XorContext is Xor with ctx polled for cancellation.
func (m *Manager) XorContext(ctx context.Context, a, b Handle) (Handle, error) {
	return m.binopContext(ctx, OpXor, a, b)
}

// Imp returns a => b.
func (m *Manager) Imp(a, b Handle) (Handle, error) { return m.binop(OpImplies, a, b) }

// ImpContext is Imp with ctx polled for cancellation.
func (m *Manager) ImpContext(ctx context.Context, a, b Handle) (Handle, error) {
	return m.binopContext(ctx, OpImplies, a, b)
}

// Equiv returns a <=> b.
func (m *Manager) Equiv(a, b Handle) (Handle, error) { return m.binop(OpEquiv, a, b) }

// EquivContext is Equiv with ctx polled for cancellation.
func (m *Manager) EquivContext(ctx context.Context, a, b Handle) (Handle, error) {
	return m.binopContext(ctx, OpEquiv, a, b)
}

// Nand returns not(a AND b).
func (m *Manager) Nand(a, b Handle) (Handle, error) { return m.binop(OpNand, a, b) }

// NandContext is Nand with ctx polled for cancellation.
func (m *Manager) NandContext(ctx context.Context, a, b Handle) (Handle, error) {
	return m.binopContext(ctx, OpNand, a, b)
}

// Nor returns not(a OR b).
func (m *Manager) Nor(a, b Handle) (Handle, error) { return m.binop(OpNor, a, b) }

// NorContext is Nor with ctx polled for cancellation.
func (m *Manager) NorContext(ctx context.Context, a, b Handle) (Handle, error) {
	return m.binopContext(ctx, OpNor, a, b)
}

// Diff returns a AND not(b).
func (m *Manager) Diff(a, b Handle) (Handle, error) { return m.binop(OpDiff, a, b) }

// DiffContext is Diff with ctx polled for cancellation.
func (m *Manager) DiffContext(ctx context.Context, a, b Handle) (Handle, error) {
	return m.binopContext(ctx, OpDiff, a, b)
}

// Ite returns the Handle for if f then g else h.
func (m *Manager) Ite(f, g, h Handle) (Handle, error) {
	return m.IteContext(context.Background(), f, g, h)
}

// IteContext is Ite with ctx polled for cancellation at every recursive
// step of the underlying ite kernel (spec §5; SPEC_FULL.md §5).
func (m *Manager) IteContext(ctx context.Context, f, g, h Handle) (Handle, error) {
	if err := m.checkHandle(f); err != nil {
		return Handle{}, err
	}
	if err := m.checkHandle(g); err != nil {
		return Handle{}, err
	}
	if err := m.checkHandle(h); err != nil {
		return Handle{}, err
	}
	e, err := m.ite(ctx, f.e, g.e, h.e)
	if err != nil {
		return Handle{}, err
	}
	res := m.retnode(e)
	m.autoReorder()
	return res, nil
}
