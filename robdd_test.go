// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd_test

import (
	"testing"

	"github.com/dstane/robdd"
)

func mustVars(t *testing.T, m *robdd.Manager, n int) []robdd.Handle {
	t.Helper()
	vars := make([]robdd.Handle, n)
	for i := 0; i < n; i++ {
		h, err := m.Ithvar(i)
		if err != nil {
			t.Fatalf("Ithvar(%d): %v", i, err)
		}
		vars[i] = h
	}
	return vars
}

func TestNotNotIsIdentity(t *testing.T) {
	m, err := robdd.New(4)
	if err != nil {
		t.Fatal(err)
	}
	x, _ := m.Ithvar(0)
	nx, err := m.Not(x)
	if err != nil {
		t.Fatal(err)
	}
	nnx, err := m.Not(nx)
	if err != nil {
		t.Fatal(err)
	}
	if nnx != x {
		t.Fatalf("not(not(x)) should be the same Handle as x, structural sharing via complement edges was expected to make this O(1)")
	}
}

func TestAndCommutesAndIsCanonical(t *testing.T) {
	m, err := robdd.New(4)
	if err != nil {
		t.Fatal(err)
	}
	vars := mustVars(t, m, 4)
	ab, err := m.And(vars[0], vars[1])
	if err != nil {
		t.Fatal(err)
	}
	ba, err := m.And(vars[1], vars[0])
	if err != nil {
		t.Fatal(err)
	}
	if ab != ba {
		t.Fatalf("and(a,b) and and(b,a) should hash-cons to the same node")
	}
}

func TestXorSelfIsFalse(t *testing.T) {
	m, _ := robdd.New(3)
	x, _ := m.Ithvar(0)
	r, err := m.Xor(x, x)
	if err != nil {
		t.Fatal(err)
	}
	f := m.False()
	if r != f {
		t.Fatalf("x xor x should reduce to False")
	}
}

func TestSatcountMatchesTruthTable(t *testing.T) {
	m, _ := robdd.New(3)
	vars := mustVars(t, m, 3)
	f, err := m.And(vars[0], vars[1])
	if err != nil {
		t.Fatal(err)
	}
	count, err := m.Satcount(f)
	if err != nil {
		t.Fatal(err)
	}
	// x0 & x1, free x2: 2 assignments (x2 true/false) satisfy it.
	if count.Int64() != 2 {
		t.Fatalf("Satcount(x0 & x1) over 3 variables = %s, want 2", count)
	}
}

func TestCofactorRestrictsVariable(t *testing.T) {
	m, _ := robdd.New(2)
	vars := mustVars(t, m, 2)
	f, err := m.And(vars[0], vars[1])
	if err != nil {
		t.Fatal(err)
	}
	r, err := m.Cofactor(f, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if r != m.False() {
		t.Fatalf("(x0 & x1) with x0 fixed to false should be False")
	}
	r2, err := m.Cofactor(f, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	if r2 != vars[1] {
		t.Fatalf("(x0 & x1) with x0 fixed to true should be x1")
	}
}

func TestReorderPreservesSatcount(t *testing.T) {
	m, err := robdd.New(8)
	if err != nil {
		t.Fatal(err)
	}
	vars := mustVars(t, m, 8)
	f := vars[0]
	for i := 1; i < 8; i++ {
		var e error
		f, e = m.Xor(f, vars[i])
		if e != nil {
			t.Fatal(e)
		}
	}
	before, err := m.Satcount(f)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Reorder(); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	after, err := m.Satcount(f)
	if err != nil {
		t.Fatal(err)
	}
	if before.Cmp(after) != 0 {
		t.Fatalf("reordering changed the counted function: before=%s after=%s", before, after)
	}
}

func TestHandleFromAnotherManagerRejected(t *testing.T) {
	m1, _ := robdd.New(2)
	m2, _ := robdd.New(2)
	x, _ := m1.Ithvar(0)
	y, _ := m2.Ithvar(0)
	if _, err := m1.And(x, y); err == nil {
		t.Fatalf("And across managers should fail")
	}
}

func TestDeclareAssignsContiguousIndices(t *testing.T) {
	m, err := robdd.New(1)
	if err != nil {
		t.Fatal(err)
	}
	idx, err := m.Declare("a", "b", "c")
	if err != nil {
		t.Fatal(err)
	}
	if idx[0] != 1 || idx[1] != 2 || idx[2] != 3 {
		t.Fatalf("Declare after an initial 1-variable manager should assign [1,2,3], got %v", idx)
	}
	v, err := m.VarByName("b")
	if err != nil {
		t.Fatal(err)
	}
	if v != 2 {
		t.Fatalf("VarByName(b) = %d, want 2", v)
	}
}

func TestEvalBooleanExpression(t *testing.T) {
	m, err := robdd.New(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Declare("a", "b"); err != nil {
		t.Fatal(err)
	}
	h, err := m.Eval("a and not b", nil)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := m.Ithvar(1)
	nb, _ := m.NIthvar(2)
	want, err := m.And(a, nb)
	if err != nil {
		t.Fatal(err)
	}
	if h != want {
		t.Fatalf("Eval(\"a and not b\") did not match the equivalent handle built directly")
	}
}
