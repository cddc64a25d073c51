// Package item defines the input records of a skill-tree build.
//
// # Overview
//
// An [Item] is one learnable entry: an opaque ID, the [Item.Category] it
// belongs to (each category gets its own tree and layout), an ordinal
// [Tier], a display name and free-text fields consumed by similarity and
// theme discovery. Items are immutable once loaded.
//
// # Catalogs
//
// A [Catalog] bundles items with an optional list of declared categories.
// Declared categories without items surface as EMPTY_CATEGORY results
// downstream instead of silently disappearing. Catalogs are read from JSON or
// YAML with [ReadFile] / [Read]:
//
//	cat, err := item.ReadFile("spells.yaml")
//	groups := cat.ByCategory()
//
// Tiers may be written as integers or as the names returned by [Tier.String]
// (novice, apprentice, adept, expert, master).
package item
