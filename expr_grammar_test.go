// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd_test

import (
	"testing"

	"github.com/dstane/robdd"
)

func mustEval(t *testing.T, m *robdd.Manager, source string) robdd.Handle {
	t.Helper()
	h, err := m.Eval(source, nil)
	if err != nil {
		t.Fatalf("Eval(%q): %v", source, err)
	}
	return h
}

// The infix synonyms for equiv and implies, plus xor's ^ and # spellings,
// should all parse to the same BDD as the canonical word form.
func TestEvalInfixSynonyms(t *testing.T) {
	m, err := robdd.New(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Declare("a", "b"); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		synonym, canonical string
	}{
		{"a <=> b", "equiv(a, b)"},
		{"a <-> b", "equiv(a, b)"},
		{"a => b", "implies(a, b)"},
		{"a -> b", "implies(a, b)"},
		{"a ^ b", "xor(a, b)"},
		{"a # b", "xor(a, b)"},
		{"a & b", "a and b"},
		{"a | b", "a or b"},
		{"~a", "not a"},
		{"a /\\ b", "a and b"},
		{"a \\/ b", "a or b"},
	}
	for _, c := range cases {
		got := mustEval(t, m, c.synonym)
		want := mustEval(t, m, c.canonical)
		if got != want {
			t.Fatalf("Eval(%q) = %v, want the same Handle as Eval(%q) = %v", c.synonym, got, c.canonical, want)
		}
	}
}

// The TLA-style quantifier prefixes and the forall/exists call forms should
// agree with the equivalent Exist/Forall kernel calls.
func TestEvalQuantifiers(t *testing.T) {
	m, err := robdd.New(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Declare("a", "b"); err != nil {
		t.Fatal(err)
	}
	a, _ := m.VarByName("a")
	b, _ := m.VarByName("b")

	forallPrefix := mustEval(t, m, `\A a : a or b`)
	forallCall := mustEval(t, m, "forall(a, a or b)")
	if forallPrefix != forallCall {
		t.Fatalf(`Eval("\\A a : a or b") = %v, want same as forall(a, a or b) = %v`, forallPrefix, forallCall)
	}

	body, err := m.Eval("a or b", nil)
	if err != nil {
		t.Fatal(err)
	}
	varset, err := m.Makeset([]int{a})
	if err != nil {
		t.Fatal(err)
	}
	wantForall, err := m.Forall(body, varset)
	if err != nil {
		t.Fatal(err)
	}
	if forallPrefix != wantForall {
		t.Fatalf("quantifier prefix form disagreed with Manager.Forall: %v vs %v", forallPrefix, wantForall)
	}

	existsPrefix := mustEval(t, m, `\E b : a and b`)
	varsetB, err := m.Makeset([]int{b})
	if err != nil {
		t.Fatal(err)
	}
	bodyAB, err := m.Eval("a and b", nil)
	if err != nil {
		t.Fatal(err)
	}
	wantExists, err := m.Exist(bodyAB, varsetB)
	if err != nil {
		t.Fatal(err)
	}
	if existsPrefix != wantExists {
		t.Fatalf(`Eval("\\E b : a and b") disagreed with Manager.Exist: %v vs %v`, existsPrefix, wantExists)
	}
}

// ite(f, g, h) should agree with Manager.Ite.
func TestEvalIte(t *testing.T) {
	m, err := robdd.New(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Declare("a", "b", "c"); err != nil {
		t.Fatal(err)
	}
	got := mustEval(t, m, "ite(a, b, c)")

	a, _ := m.VarByName("a")
	b, _ := m.VarByName("b")
	c, _ := m.VarByName("c")
	fa, _ := m.Ithvar(a)
	fb, _ := m.Ithvar(b)
	fc, _ := m.Ithvar(c)
	want, err := m.Ite(fa, fb, fc)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("Eval(\"ite(a, b, c)\") = %v, want same as Manager.Ite(a,b,c) = %v", got, want)
	}
}
