// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd

import (
	"context"
	"fmt"
	"math"

	"github.com/bits-and-blooms/bitset"
)

var replacerSeq int64 = 1

// Replacer is an association list for substituting variables in a BDD,
// grounded on the teacher's replace.go. Unlike the teacher, the image is
// indexed by variable rather than level: level assignments shift under
// reordering but variable identity does not.
type Replacer interface {
	Replace(v int) (int, bool)
	id() int64
}

type replacer struct {
	gen   int64
	image []int32 // [v] = new variable index, defaults to v
	last  int32   // highest variable actually remapped, for a fast no-op check
}

func (r *replacer) Replace(v int) (int, bool) {
	if v > int(r.last) || v >= len(r.image) {
		return v, false
	}
	return int(r.image[v]), true
}

func (r *replacer) id() int64 { return r.gen }

// NewReplacer returns a Replacer substituting oldvars[k] with newvars[k] for
// every k. The two slices must have equal length, contain no repeats within
// themselves, and every index must be a declared variable.
func (m *Manager) NewReplacer(oldvars, newvars []int) (Replacer, error) {
	if len(oldvars) != len(newvars) {
		return nil, m.errorf(ErrInvalidInput, "unmatched length of slices (%d vs %d)", len(oldvars), len(newvars))
	}
	if replacerSeq == math.MaxInt64 {
		return nil, m.errorf(ErrOutOfMemory, "too many replacers created")
	}
	varnum := int(m.varnum)
	res := &replacer{gen: replacerSeq, image: make([]int32, varnum)}
	replacerSeq++
	for k := range res.image {
		res.image[k] = int32(k)
	}
	seen := bitset.New(uint(varnum))
	for k, v := range oldvars {
		if v < 0 || v >= varnum {
			return nil, m.errorf(ErrInvalidInput, "invalid variable in oldvars (%d)", v)
		}
		if newvars[k] < 0 || newvars[k] >= varnum {
			return nil, m.errorf(ErrInvalidInput, "invalid variable in newvars (%d)", newvars[k])
		}
		if seen.Test(uint(v)) {
			return nil, m.errorf(ErrInvalidInput, "duplicate variable (%d) in oldvars", v)
		}
		seen.Set(uint(v))
		res.image[v] = int32(newvars[k])
		if int32(v) > res.last {
			res.last = int32(v)
		}
	}
	return res, nil
}

// replace performs the substitution, walking e top-down and rebuilding
// bottom-up with correctify restoring a legal level ordering, since the
// renamed variables need not preserve the original level order.
func (m *Manager) replace(ctx context.Context, e edge, r Replacer) (edge, error) {
	if e.isConstant() {
		return e, nil
	}
	if err := m.checkctx(ctx); err != nil {
		return 0, err
	}
	gen := r.id()
	if res, ok := m.replacecache.lookup(e, gen); ok {
		return res, nil
	}

	n := &m.nodes[e.node()]
	v := int(m.level2var[n.level_()])
	newv, _ := r.Replace(v)
	newLevel := m.var2level[newv]

	low, high := n.low, n.high
	if e.comp() {
		low, high = low.negate(), high.negate()
	}

	lowR, err := m.replace(ctx, low, r)
	if err != nil {
		return 0, err
	}
	m.pushref(lowR.node())
	highR, err := m.replace(ctx, high, r)
	if err != nil {
		m.popref(1)
		return 0, err
	}
	m.pushref(highR.node())

	res, err := m.correctify(newLevel, lowR, highR)
	m.popref(2)
	if err != nil {
		return 0, err
	}
	m.replacecache.insert(e, gen, res)
	return res, nil
}

// correctify inserts a node at level between low and high, recursing when
// level's target position is not already strictly above both children
// (teacher's operations.go correctify, generalized to Replace's variable
// renaming).
func (m *Manager) correctify(level int32, low, high edge) (edge, error) {
	ll, lh := m.level(low), m.level(high)
	if level < ll && level < lh {
		return m.findOrAdd(level, low, high)
	}
	if level == ll || level == lh {
		return 0, m.fatalf("replace produced a variable collision at level %d", level)
	}

	switch {
	case ll == lh:
		lo, hi := m.cofactor(low, ll)
		ho, hi2 := m.cofactor(high, lh)
		left, err := m.correctify(level, lo, ho)
		if err != nil {
			return 0, err
		}
		m.pushref(left.node())
		right, err := m.correctify(level, hi, hi2)
		m.popref(1)
		if err != nil {
			return 0, err
		}
		m.pushref(right.node())
		res, err := m.findOrAdd(ll, left, right)
		m.popref(1)
		return res, err
	case ll < lh:
		lo, hi := m.cofactor(low, ll)
		left, err := m.correctify(level, lo, high)
		if err != nil {
			return 0, err
		}
		m.pushref(left.node())
		right, err := m.correctify(level, hi, high)
		m.popref(1)
		if err != nil {
			return 0, err
		}
		m.pushref(right.node())
		res, err := m.findOrAdd(ll, left, right)
		m.popref(1)
		return res, err
	default:
		ho, hi2 := m.cofactor(high, lh)
		left, err := m.correctify(level, low, ho)
		if err != nil {
			return 0, err
		}
		m.pushref(left.node())
		right, err := m.correctify(level, low, hi2)
		m.popref(1)
		if err != nil {
			return 0, err
		}
		m.pushref(right.node())
		res, err := m.findOrAdd(lh, left, right)
		m.popref(1)
		return res, err
	}
}

func (m *Manager) fatalf(format string, a ...interface{}) error {
	return fmt.Errorf(format+": %w", append(a, errConsistency)...)
}

// Replace returns the Handle for h with every variable renamed per r
// (spec §4.3 "rename is compose by a map of variables to variables").
func (m *Manager) Replace(h Handle, r Replacer) (Handle, error) {
	return m.ReplaceContext(context.Background(), h, r)
}

// ReplaceContext is Replace with ctx polled for cancellation during the
// recursion.
func (m *Manager) ReplaceContext(ctx context.Context, h Handle, r Replacer) (Handle, error) {
	if err := m.checkHandle(h); err != nil {
		return Handle{}, err
	}
	m.initref()
	e, err := m.replace(ctx, h.e, r)
	if err != nil {
		return Handle{}, err
	}
	return m.retnode(e), nil
}

// compose implements spec §4.3 "compose(f, var, g)": replaces every
// occurrence of the variable sitting at varLevel in f by the edge g.
// Recurses on the structure of f: above varLevel, rebuild both branches
// unchanged; at varLevel, cofactor f and return ite(g, high, low) directly
// (the ROBDD single-occurrence-per-path invariant means no further
// recursion under the substituted variable is needed); below varLevel, f
// cannot mention the variable at all, so f is returned unchanged. Unlike
// replace/correctify, no re-leveling pass is needed: the "above varLevel"
// case recombines the rebuilt branches with ite on the variable at f's
// level, so g's variables may sit at any level relative to f's.
func (m *Manager) compose(ctx context.Context, f edge, varLevel int32, g edge) (edge, error) {
	if f.isConstant() {
		return f, nil
	}
	flevel := m.level(f)
	if flevel > varLevel {
		return f, nil
	}
	if err := m.checkctx(ctx); err != nil {
		return 0, err
	}
	if res, ok := m.composecache.lookup(f, varLevel, g); ok {
		return res, nil
	}

	low, high := m.cofactor(f, flevel)

	var res edge
	var err error
	if flevel == varLevel {
		res, err = m.ite(ctx, g, high, low)
	} else {
		var lowR, highR edge
		lowR, err = m.compose(ctx, low, varLevel, g)
		if err != nil {
			return 0, err
		}
		m.pushref(lowR.node())
		highR, err = m.compose(ctx, high, varLevel, g)
		if err != nil {
			m.popref(1)
			return 0, err
		}
		m.pushref(highR.node())
		var x edge
		x, err = m.findOrAdd(flevel, falseEdge, trueEdge)
		if err == nil {
			res, err = m.ite(ctx, x, highR, lowR)
		}
		m.popref(2)
	}
	if err != nil {
		return 0, err
	}
	m.composecache.insert(f, varLevel, g, res)
	return res, nil
}

// Compose returns the Handle for f with every occurrence of variable v
// replaced by g (spec §4.3 "compose(f, var, g)"), distinct from Replace:
// Replace only ever substitutes a variable for another variable, while
// Compose substitutes a variable for an arbitrary edge.
func (m *Manager) Compose(f Handle, v int, g Handle) (Handle, error) {
	return m.ComposeContext(context.Background(), f, v, g)
}

// ComposeContext is Compose with ctx polled for cancellation during the
// recursion.
func (m *Manager) ComposeContext(ctx context.Context, f Handle, v int, g Handle) (Handle, error) {
	if err := m.checkHandle(f); err != nil {
		return Handle{}, err
	}
	if err := m.checkHandle(g); err != nil {
		return Handle{}, err
	}
	if err := m.checkvar(v); err != nil {
		return Handle{}, err
	}
	e, err := m.compose(ctx, f.e, m.var2level[v], g.e)
	if err != nil {
		return Handle{}, err
	}
	return m.retnode(e), nil
}
