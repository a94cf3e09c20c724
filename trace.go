// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// WithTracer installs a tracer used to emit a span around each ReorderContext
// pass; no other operation is traced. The default, installed by New, is the
// global otel tracer, a no-op unless a provider is registered (spec §11 "DOMAIN STACK": opentelemetry/otel).
func WithTracer(t trace.Tracer) Option {
	return func(c *configs) { c.tracer = t }
}

// ReorderContext runs one sifting pass like Reorder, but checks ctx for
// cancellation between (and within) variable swaps and returns ErrCancelled
// instead of running the whole swap budget to completion. Unlike the other
// context-aware variants (IteContext, AndContext and the like), it also
// starts a tracing span.
func (m *Manager) ReorderContext(ctx context.Context) error {
	_, span := m.tracer.Start(ctx, "robdd.Reorder")
	defer span.End()

	return m.reorderContext(ctx)
}
