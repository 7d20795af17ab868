// Package partition computes cost-optimal partitionings of serverless call
// trees into deployable blocks under memory, vCPU and critical-path latency
// limits.
//
// # Algorithms
//
//   - [BottomUp] merges per-node frontiers in post-order. Optimal when every
//     rate is a multiple of its caller's rate and N is 1.
//   - [LeftRight] runs one left-right pass per subtree root and reuses the
//     closed summaries of the callees. Optimal for every N.
//   - [Approximate] runs either engine on trimmed summaries, trading a
//     bounded cost or latency error for smaller frontiers.
//   - [Greedy] is a fast heuristic without guarantees.
//   - [Exhaustive] enumerates every barrier set of small trees.
//
// [Lookup] resolves an algorithm by its registered name.
//
// # Results
//
// An instance without a feasible partition yields a [Result] with Feasible
// unset; this is not an error. Errors are reserved for caller-contract
// violations (see [github.com/hsnlab/SLAMBUC/pkg/errors]) and cancellation.
//
// # Concurrency
//
// All algorithms treat the tree as read-only; concurrent calls on the same
// tree are safe. With [Params.Workers] above one, the DP engines process
// the nodes of each tree level concurrently.
package partition
