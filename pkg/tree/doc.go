// Package tree provides the prerequisite tree built for one category.
//
// # Overview
//
// A [Tree] is an arena of [Node] values keyed by item ID. Two relations are
// kept side by side:
//
//   - Child edges ([Node.Children], [Node.Parent]) form a single-parent tree
//     rooted at [Tree.Root]. Layout walks these edges.
//   - Prerequisite edges ([Node.Prereqs]) are the unlock order. Every child
//     edge is also a prerequisite edge; convergence adds extra prerequisites
//     without touching child lists, so a node may require several others.
//
// [Tree.Link] creates or moves a child edge, [Tree.AddPrereq] adds a
// convergence edge. Both refuse edges that would make a node transitively
// require itself.
//
// # Queries
//
// [Tree.Reachable] walks child edges from the root. [Tree.SimulateUnlocks]
// replays the unlock order: a node unlocks once all of its prerequisites have
// unlocked. A well-formed tree has every node reachable and unlockable.
// [Validate] reports every structural problem it finds instead of stopping at
// the first one.
//
// All walks are iterative with explicit visited sets, so malformed input
// (cycles, dangling IDs) cannot cause unbounded recursion.
//
// A Tree is not safe for concurrent mutation. Builds run one goroutine per
// category, each with its own Tree.
package tree
