// Package tree provides the annotated call tree of a serverless application.
//
// # Overview
//
// A call tree is a rooted out-tree of functions. The synthetic [Platform]
// node invokes the root; every other function has exactly one caller. Nodes
// carry a per-invocation runtime and a memory demand, edges carry the
// invocation rate of the callee and the data overhead paid when caller and
// callee end up in different blocks.
//
// # Basic Usage
//
//	t := tree.New("chain")
//	_ = t.AddNode(tree.Node{ID: 1, Runtime: 10, Memory: 2})
//	_ = t.AddNode(tree.Node{ID: 2, Runtime: 10, Memory: 2})
//	_ = t.AddEdge(tree.Edge{From: tree.Platform, To: 1, Rate: 1})
//	_ = t.AddEdge(tree.Edge{From: 1, To: 2, Rate: 1, Data: 3})
//	if err := t.Validate(1); err != nil {
//	    // malformed tree
//	}
//
// # Traversals
//
// [Tree.PostOrder] and [Tree.LeftRight] drive the partitioning engines.
// Both run on an explicit stack, so very deep chains do not exhaust the
// goroutine stack. [Tree.Heights] groups nodes into levels that can be
// processed concurrently.
//
// # Critical Path
//
// [Tree.CriticalPath] extracts the root-first chain whose end-to-end latency
// is bounded by the partitioning constraints.
//
// # Concurrency
//
// Trees are built once and then only read. Concurrent readers are safe;
// concurrent mutation is not.
package tree
