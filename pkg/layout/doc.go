// Package layout places the nodes of a prerequisite tree on grid points.
//
// # Overview
//
// [Layout] assigns every node of a [tree.Tree] to a unique point of a
// [grid.Graph]. It runs in four phases:
//
//  1. Seed: the root snaps to the free point nearest the primary anchor.
//     Extra anchors start their own groups, and first-level subtrees are
//     spread across groups by size.
//  2. Wave BFS: one tree depth per wave, in seeded random order. Each node
//     searches outward from its parent's point and takes the best free point
//     by direction, radial bias, hop distance, density, tier zone and theme.
//  3. Deferred retry: nodes that found no acceptable point are attached to
//     whichever placed node offers the best spot, for up to RetryPasses.
//  4. Force placement: leftovers take the free point nearest their best
//     neighbor. A full grid is densified; placement gives up only after two
//     densifications that add nothing.
//
// Nothing is dropped silently: every node ends up in [Placement.Nodes] or
// [Placement.Unplaced].
//
// # Geometry
//
// Radii are measured from Options.Origin and expressed as a percentage of
// the grid radius (the largest origin distance of any point when layout
// starts). Tier zones are bands of that percentage.
package layout
