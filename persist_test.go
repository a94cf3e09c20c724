// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd_test

import (
	"bytes"
	"testing"

	"github.com/dstane/robdd"
)

// A JSON dump loaded back into a manager whose variables end up at
// different levels must still reconstruct an equivalent function: the
// dumped variable_order, not the loading manager's own var_levels, governs
// how nodes are resolved.
func TestJSONRoundTripAcrossDivergedOrders(t *testing.T) {
	src, err := robdd.New(4)
	if err != nil {
		t.Fatal(err)
	}
	vars := mustVars(t, src, 4)
	f, err := src.And(vars[0], vars[1])
	if err != nil {
		t.Fatal(err)
	}
	g, err := src.Or(f, vars[2])
	if err != nil {
		t.Fatal(err)
	}
	wantCount, err := src.Satcount(g)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := src.DumpJSON(&buf, g); err != nil {
		t.Fatalf("DumpJSON: %v", err)
	}

	dst, err := robdd.New(4)
	if err != nil {
		t.Fatal(err)
	}
	// Perturb dst's variable order before loading, so a naive resolve keyed
	// off dst's own var2level would reconstruct the wrong function.
	if err := dst.Reorder(); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	dstVars := mustVars(t, dst, 4)
	if _, err := dst.Xor(dstVars[0], dstVars[3]); err != nil {
		t.Fatal(err)
	}
	if err := dst.Reorder(); err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	roots, err := dst.LoadJSON(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if len(roots) != 1 {
		t.Fatalf("LoadJSON returned %d roots, want 1", len(roots))
	}
	gotCount, err := dst.Satcount(roots[0])
	if err != nil {
		t.Fatal(err)
	}
	if gotCount.Cmp(wantCount) != 0 {
		t.Fatalf("round-tripped function has %s satisfying assignments, want %s", gotCount, wantCount)
	}
}

// The textual Dump/Load format round-trips the same way, into a fresh
// manager that has never declared any variables.
func TestTextRoundTrip(t *testing.T) {
	src, err := robdd.New(3)
	if err != nil {
		t.Fatal(err)
	}
	vars := mustVars(t, src, 3)
	f, err := src.Xor(vars[0], vars[1])
	if err != nil {
		t.Fatal(err)
	}
	f, err = src.Or(f, vars[2])
	if err != nil {
		t.Fatal(err)
	}
	wantCount, err := src.Satcount(f)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := src.Dump(&buf, f); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	dst, err := robdd.New(1)
	if err != nil {
		t.Fatal(err)
	}
	roots, err := dst.Load(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(roots) != 1 {
		t.Fatalf("Load returned %d roots, want 1", len(roots))
	}
	gotCount, err := dst.Satcount(roots[0])
	if err != nil {
		t.Fatal(err)
	}
	if gotCount.Cmp(wantCount) != 0 {
		t.Fatalf("round-tripped function has %s satisfying assignments, want %s", gotCount, wantCount)
	}
}

// A document whose variable_order disagrees with its own varnum is
// rejected before any node is resolved.
func TestLoadJSONRejectsMismatchedVariableOrder(t *testing.T) {
	m, err := robdd.New(2)
	if err != nil {
		t.Fatal(err)
	}
	bad := `{"format":"robdd/v1","varnum":2,"variable_order":[0],"roots":[1],"nodes":[]}`
	if _, err := m.LoadJSON(bytes.NewReader([]byte(bad))); err == nil {
		t.Fatalf("LoadJSON with a mismatched variable_order length should fail")
	}
}
