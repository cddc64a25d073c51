// Package nodelink renders skill trees and their placements as Graphviz
// node-link diagrams.
//
// Two views are available:
//
//   - [TreeDOT]: the logical tree, top-down, with convergence
//     prerequisites drawn dashed
//   - [PlacementDOT]: nodes pinned at their grid coordinates with the
//     drawn parent edges
//
// Nodes are filled by theme and the root gets a heavier outline.
//
//	dot := nodelink.PlacementDOT("fire", res.Categories["fire"].Nodes, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot, nodelink.EngineNeato)
//
// Rendering uses the embedded Graphviz from go-graphviz, so no system
// installation is needed.
package nodelink
