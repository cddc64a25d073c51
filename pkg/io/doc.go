// Package io reads and writes skill trees and build results as JSON files.
//
// # Tree Format
//
// Trees use a node/edge format that external graph tools can consume
// without knowing about tree parents:
//
//	{
//	  "category": "fire",
//	  "root": "spark",
//	  "nodes": [
//	    {"id": "spark", "name": "Spark", "tier": 0, "theme": "flame"},
//	    {"id": "flame", "name": "Flame Burst", "tier": 1, "theme": "flame"}
//	  ],
//	  "edges": [
//	    {"from": "spark", "to": "flame", "kind": "child"}
//	  ]
//	}
//
// An edge points from a prerequisite to the node it unlocks. Kind "child"
// marks the tree edge; "convergence" marks an extra prerequisite. Each node
// has at most one child edge pointing at it.
//
// # Import and Export
//
// [ImportTree] and [ExportTree] work on file paths, [ReadTree] and
// [WriteTree] on readers and writers. [ReadTree] rebuilds the tree through
// tree.Link and tree.AddPrereq, so a file that would create a cycle or a
// second parent is rejected. After import a node's tree parent is listed
// first among its prerequisites.
//
// Build results round-trip through [ExportResult] and [ImportResult] in the
// same JSON shape the build command prints.
package io
