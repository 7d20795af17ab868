package partition_test

import (
	"context"
	"fmt"

	"github.com/hsnlab/SLAMBUC/pkg/partition"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

func ExampleLeftRight() {
	// platform -> 1 -> 2 -> 3, three functions of 2 memory units each
	t := tree.New("chain")
	for id := tree.NodeID(1); id <= 3; id++ {
		_ = t.AddNode(tree.Node{ID: id, Runtime: 10, Memory: 2})
	}
	_ = t.AddEdge(tree.Edge{From: tree.Platform, To: 1, Rate: 1})
	_ = t.AddEdge(tree.Edge{From: 1, To: 2, Rate: 1})
	_ = t.AddEdge(tree.Edge{From: 2, To: 3, Rate: 1})

	p := partition.DefaultParams()
	p.CPEnd, p.Delay = 3, 5

	for _, m := range []int64{6, 4, 1} {
		p.M = m
		res, err := partition.LeftRight(context.Background(), t, p)
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		if !res.Feasible {
			fmt.Printf("M=%d: infeasible\n", m)
			continue
		}
		fmt.Printf("M=%d: %d blocks, cost=%d latency=%d\n", m, len(res.Partition), res.Cost, res.Latency)
	}
	// Output:
	// M=6: 1 blocks, cost=30 latency=30
	// M=4: 2 blocks, cost=30 latency=35
	// M=1: infeasible
}

func ExampleLookup() {
	for _, name := range partition.Algorithms() {
		_, err := partition.Lookup(name)
		fmt.Println(name, err == nil, partition.Exact(name))
	}
	// Output:
	// btree true false
	// exhaustive true true
	// greedy true false
	// ltree true true
}
