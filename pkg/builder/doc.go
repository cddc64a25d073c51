// Package builder derives a prerequisite tree for each category of items.
//
// # Overview
//
// [BuildCategory] turns a flat item list into a [tree.Tree] in five steps:
//
//  1. Pick a root: a configured override, else the lowest-tier item with a
//     seeded tie-break.
//  2. Queue items per theme and connect them round-robin, one item per theme
//     per round, each under the best-scoring connected parent.
//  3. Rescue items that found no parent with a relaxed score.
//  4. Add convergence prerequisites so the top tiers need several unlocked
//     items before they unlock.
//  5. Repair prerequisite chains that can never unlock.
//
// All scoring constants live in [Weights] and can be overridden.
//
// # Determinism
//
// The only randomness is a small per-candidate jitter and the root
// tie-break, both drawn from the *rand.Rand passed in. [CategoryRand]
// derives that generator from a seed and the category name so categories can
// be built in any order or in parallel with identical results.
package builder
