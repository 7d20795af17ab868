// Package pkg holds the libraries behind slambuc, a partitioner for the
// call trees of serverless applications.
//
// # Overview
//
// A call tree lists the functions of an application with their runtime and
// memory demand, and the invocations between them with their rate and data
// overhead. Partitioning groups the functions into blocks, each deployed as
// one function instance, so that the billed cost is minimal while every
// block fits the memory limit and the chosen critical path stays within
// the latency limit.
//
// # Layout
//
//  1. [tree] - Call tree model, traversals and random generation
//  2. [metrics] - Cost and latency of blocks and partitions
//  3. [partition] - The algorithms, their registry and result checking
//  4. [io] - JSON and YAML tree files
//  5. [render] - DOT, SVG and PNG diagrams of partitions
//  6. [cache], [store] - Result cache and run archive backends
//  7. [pipeline] - Orchestration (hash, partition, render, archive)
//  8. [config], [observability], [errors], [buildinfo] - Ambient support
//
// # Data Flow
//
//	JSON/YAML file
//	     ↓
//	[io] package (decode and validate)
//	     ↓
//	[pipeline] package (cache lookup)
//	     ↓
//	[partition] package (search)
//	     ↓
//	[render] / [store] packages
//
// # Quick Start
//
//	t, err := io.ImportFile("app.json")
//	if err != nil {
//	    return err
//	}
//	p := partition.DefaultParams()
//	p.M, p.CPEnd = 512, t.DeepestLeaf(t.Root())
//	res, err := partition.LeftRight(ctx, t, p)
//
// [tree]: github.com/hsnlab/SLAMBUC/pkg/tree
// [metrics]: github.com/hsnlab/SLAMBUC/pkg/metrics
// [partition]: github.com/hsnlab/SLAMBUC/pkg/partition
// [io]: github.com/hsnlab/SLAMBUC/pkg/io
// [render]: github.com/hsnlab/SLAMBUC/pkg/render
// [cache]: github.com/hsnlab/SLAMBUC/pkg/cache
// [store]: github.com/hsnlab/SLAMBUC/pkg/store
// [pipeline]: github.com/hsnlab/SLAMBUC/pkg/pipeline
// [config]: github.com/hsnlab/SLAMBUC/pkg/config
// [observability]: github.com/hsnlab/SLAMBUC/pkg/observability
// [errors]: github.com/hsnlab/SLAMBUC/pkg/errors
// [buildinfo]: github.com/hsnlab/SLAMBUC/pkg/buildinfo
package pkg
