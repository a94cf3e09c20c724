// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd_test

import (
	"testing"

	"github.com/dstane/robdd"
)

// Restrict against a literal cube still behaves like Cofactor, the special
// case the earlier draft handled directly.
func TestRestrictLiteralCubeMatchesCofactor(t *testing.T) {
	m, err := robdd.New(3)
	if err != nil {
		t.Fatal(err)
	}
	vars := mustVars(t, m, 3)
	f, err := m.And(vars[0], vars[1])
	if err != nil {
		t.Fatal(err)
	}
	nx0, err := m.Not(vars[0])
	if err != nil {
		t.Fatal(err)
	}

	got, err := m.Restrict(f, nx0)
	if err != nil {
		t.Fatal(err)
	}
	want, err := m.Cofactor(f, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("Restrict(f, !x0) = %v, want Cofactor(f, 0, false) = %v", got, want)
	}
}

// Restrict against a genuinely non-cube care set exercises Coudert/Madre's
// algorithm beyond a single-variable cofactor: wherever the care set is true,
// f agrees with x0, so f restricted to it simplifies to x0 without ever
// fixing a single variable to a constant.
func TestRestrictAgainstGeneralCareSet(t *testing.T) {
	m, err := robdd.New(2)
	if err != nil {
		t.Fatal(err)
	}
	vars := mustVars(t, m, 2)

	// f = x0 | x1, care = x0 <=> x1 (i.e. !(x0 xor x1)).
	f, err := m.Or(vars[0], vars[1])
	if err != nil {
		t.Fatal(err)
	}
	xorxy, err := m.Xor(vars[0], vars[1])
	if err != nil {
		t.Fatal(err)
	}
	care, err := m.Not(xorxy)
	if err != nil {
		t.Fatal(err)
	}

	got, err := m.Restrict(f, care)
	if err != nil {
		t.Fatal(err)
	}
	// Wherever care holds (x0==x1), f=(x0|x1) reduces to x0 (equivalently x1):
	// when x0=x1=0, f=0; when x0=x1=1, f=1. So the minimized result is x0.
	if got != vars[0] {
		t.Fatalf("Restrict(x0|x1, x0<=>x1) = %v, want x0 (%v)", got, vars[0])
	}
}

// A care set of False is a precondition violation: no assignment is ever
// relevant, so there is nothing meaningful to restrict against.
func TestRestrictAgainstUnsatisfiableCareSetErrors(t *testing.T) {
	m, err := robdd.New(1)
	if err != nil {
		t.Fatal(err)
	}
	x, _ := m.Ithvar(0)
	if _, err := m.Restrict(x, m.False()); err == nil {
		t.Fatalf("Restrict against an unsatisfiable care set should return an error")
	}
}
