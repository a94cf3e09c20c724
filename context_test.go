// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dstane/robdd"
)

// A pre-cancelled context should be observed at the first recursion
// boundary of every *Context kernel entry point and surface as ErrCancelled,
// not silently run to completion.
func TestCancelledContextRejectsIteContext(t *testing.T) {
	m, err := robdd.New(4)
	if err != nil {
		t.Fatal(err)
	}
	vars := mustVars(t, m, 4)
	f, err := m.And(vars[0], vars[1])
	if err != nil {
		t.Fatal(err)
	}
	g, err := m.Or(vars[2], vars[3])
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.IteContext(ctx, f, g, m.False()); !errors.Is(err, robdd.ErrCancelled) {
		t.Fatalf("IteContext with a cancelled context: got %v, want ErrCancelled", err)
	}
}

func TestCancelledContextRejectsReorderContext(t *testing.T) {
	m, err := robdd.New(6)
	if err != nil {
		t.Fatal(err)
	}
	vars := mustVars(t, m, 6)
	f := vars[0]
	for i := 1; i < 6; i++ {
		var e error
		f, e = m.Xor(f, vars[i])
		if e != nil {
			t.Fatal(e)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := m.ReorderContext(ctx); !errors.Is(err, robdd.ErrCancelled) {
		t.Fatalf("ReorderContext with a cancelled context: got %v, want ErrCancelled", err)
	}
}

// A not-yet-cancelled context must not interfere with an otherwise normal
// call: And/Or/... delegating to context.Background() should behave exactly
// like their *Context counterpart given a live context.
func TestLiveContextBehavesLikePlainCall(t *testing.T) {
	m, err := robdd.New(3)
	if err != nil {
		t.Fatal(err)
	}
	vars := mustVars(t, m, 3)

	plain, err := m.And(vars[0], vars[1])
	if err != nil {
		t.Fatal(err)
	}
	withCtx, err := m.AndContext(context.Background(), vars[0], vars[1])
	if err != nil {
		t.Fatal(err)
	}
	if plain != withCtx {
		t.Fatalf("And and AndContext(context.Background(), ...) should agree: %v vs %v", plain, withCtx)
	}
}
