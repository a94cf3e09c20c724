// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

/*
Package robdd implements a Reduced Ordered Binary Decision Diagram (ROBDD)
engine: a canonical representation of Boolean functions over a fixed,
reorderable set of variables, built on complement edges and dynamic variable
reordering by sifting.

Basics

A Manager owns a fixed, growable set of variables, each represented by a
stable index in [0, Varnum). The position of a variable in the current
variable order is called its level; levels change under reordering but
indices never do. Most operations take and return a Handle, a safe wrapper
around an internal edge that keeps the underlying node alive for as long as
the Handle exists.

Complement edges

Every edge carries one extra bit of information, the complement flag, on top
of a reference to a node. This halves the average number of nodes needed to
represent a function (negation becomes a constant-time bit flip) at the cost
of one extra invariant: the "high" (then) branch of every interior node is
never itself complemented, which keeps node identity canonical — two edges
denote the same function if and only if they are bit-for-bit equal.

Automatic memory management

Like its teacher, this package takes care of node table resizing and
reference-counted garbage collection internally; callers only need to Clone a
Handle to keep a reference alive and Drop it when done. Handles dropped by the
Go garbage collector without an explicit Drop are still reclaimed via a
finalizer, as a safety net, but Drop is the documented, preferred path.

Dynamic reordering

When enabled, a Manager periodically runs Rudell's sifting algorithm between
top-level operations: each variable is walked up and down the current order,
in turn, to the position that minimizes total live node count. Reordering
never changes the Boolean function denoted by a Handle; it only changes how
many nodes are needed to represent it.
*/
package robdd
