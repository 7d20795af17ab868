// Package io provides JSON and YAML import and export for serverless call
// trees.
//
// # JSON Format
//
// The format has two required top-level arrays and an optional name:
//
//	{
//	  "name": "checkout",
//	  "nodes": [
//	    {"id": 1, "runtime": 120, "memory": 128},
//	    {"id": 2, "runtime": 40, "memory": 64}
//	  ],
//	  "edges": [
//	    {"from": 0, "to": 1, "rate": 1, "data": 5},
//	    {"from": 1, "to": 2, "rate": 3, "data": 2}
//	  ]
//	}
//
// Node 0 is the platform and must not be listed among the nodes; exactly
// one edge leaves it and points at the tree root. Every other node has
// exactly one incoming edge.
//
// # Import
//
// Use [ImportJSON] to read a tree from a file path, or [ReadJSON] to read
// from any io.Reader. Both validate the structure: duplicate IDs, unknown
// endpoints, second callers, non-positive rates and unreachable functions
// are rejected with the offending node or edge named in the error.
//
// # YAML
//
// [ReadYAML], [ImportYAML] and [WriteYAML] accept the same document in YAML;
// unknown keys are rejected. [ImportFile] and [ExportFile] pick the format
// from the file extension.
//
// # Export
//
// Use [ExportJSON] or [WriteJSON]. Nodes are written in ID order and edges
// in call order from the root, so export is deterministic and the sibling
// order survives a round trip through [ReadJSON].
package io
