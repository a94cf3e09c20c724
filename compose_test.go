// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd_test

import (
	"testing"

	"github.com/dstane/robdd"
)

// Compose(f, v, g) substitutes an arbitrary edge g for v, unlike Replace
// which only ever substitutes another variable.
func TestComposeSubstitutesArbitraryEdge(t *testing.T) {
	m, err := robdd.New(3)
	if err != nil {
		t.Fatal(err)
	}
	vars := mustVars(t, m, 3)

	// f = x0 & x1
	f, err := m.And(vars[0], vars[1])
	if err != nil {
		t.Fatal(err)
	}
	// g = x2 (substituted for x0)
	// want = x2 & x1
	got, err := m.Compose(f, 0, vars[2])
	if err != nil {
		t.Fatal(err)
	}
	want, err := m.And(vars[2], vars[1])
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("Compose(x0&x1, x0, x2) = %v, want the same Handle as x2&x1 (%v)", got, want)
	}
}

// Composing with a constant edge behaves like Restrict/Cofactor to that
// constant.
func TestComposeWithConstantMatchesCofactor(t *testing.T) {
	m, err := robdd.New(2)
	if err != nil {
		t.Fatal(err)
	}
	vars := mustVars(t, m, 2)
	f, err := m.And(vars[0], vars[1])
	if err != nil {
		t.Fatal(err)
	}

	got, err := m.Compose(f, 0, m.True())
	if err != nil {
		t.Fatal(err)
	}
	want, err := m.Cofactor(f, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("Compose(f, 0, True) = %v, want Cofactor(f, 0, true) = %v", got, want)
	}
}
