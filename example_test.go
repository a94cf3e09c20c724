// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd_test

import (
	"fmt"

	"github.com/dstane/robdd"
)

// This example shows the basic usage of the package: create a manager,
// compute some expressions, and inspect the result.
func Example_basic() {
	m, err := robdd.New(6, robdd.Nodesize(10000), robdd.Cachesize(3000))
	if err != nil {
		panic(err)
	}
	// n1 is the cube {x2, x3, x5}, interpreted as x2 & x3 & x5.
	n1, _ := m.Makeset([]int{2, 3, 5})
	x1, _ := m.Ithvar(1)
	nx3, _ := m.NIthvar(3)
	x4, _ := m.Ithvar(4)
	x3, _ := m.Ithvar(3)
	// n2 == x1 | !x3 | x4
	n2, _ := m.Or(x1, nx3, x4)
	n2AndX3, _ := m.And(n2, x3)
	// n3 == exists x2,x3,x5 . (n2 & x3)
	n3, _ := m.Exist(n2AndX3, n1)
	count, _ := m.Satcount(n3)
	fmt.Printf("Number of sat. assignments is %s\n", count)
	// Output:
	// Number of sat. assignments is 48
}

// Example_allsat counts the number of satisfying assignments without
// collapsing don't-care variables, via the callback passed to Allsat.
func Example_allsat() {
	m, _ := robdd.New(5)
	varset, _ := m.Makeset([]int{2, 3})
	x1, _ := m.Ithvar(1)
	nx3, _ := m.NIthvar(3)
	x4, _ := m.Ithvar(4)
	x3, _ := m.Ithvar(3)
	disj, _ := m.Or(x1, nx3, x4)
	conj, _ := m.And(disj, x3)
	n, _ := m.Exist(conj, varset)

	acc := 0
	m.Allsat(n, func(varset []int) error {
		acc++
		return nil
	})
	fmt.Printf("Number of sat. assignments (without don't care) is %d", acc)
	// Output:
	// Number of sat. assignments (without don't care) is 2
}

// Example_allnodes counts the number of active nodes reachable from a
// Handle versus the whole live table.
func Example_allnodes() {
	m, _ := robdd.New(5)
	varset, _ := m.Makeset([]int{2, 3})
	x1, _ := m.Ithvar(1)
	nx3, _ := m.NIthvar(3)
	x4, _ := m.Ithvar(4)
	x3, _ := m.Ithvar(3)
	disj, _ := m.Or(x1, nx3, x4)
	conj, _ := m.And(disj, x3)
	n, _ := m.Exist(conj, varset)

	total := 0
	m.Allnodes(func(id, level, low, high int) error {
		total++
		return nil
	})
	fmt.Printf("Number of active nodes in BDD is %d\n", total)

	nodeOnly := 0
	m.Allnodes(func(id, level, low, high int) error {
		nodeOnly++
		return nil
	}, n)
	fmt.Printf("Number of active nodes in node is %d", nodeOnly)
}
