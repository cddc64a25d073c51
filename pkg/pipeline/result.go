package pipeline

import (
	"maps"
	"slices"

	"github.com/matzehuels/skilltree/pkg/layout"
)

// Status is the outcome of one category.
type Status string

// Category outcomes.
const (
	StatusPlaced  Status = "placed"
	StatusPartial Status = "partial"
	StatusSkipped Status = "skipped"
)

// Result is the output of a build, keyed by category.
type Result struct {
	Categories map[string]*CategoryResult `json:"categories" bson:"categories"`
}

// CategoryResult is the placement of one category.
type CategoryResult struct {
	RootID   string              `json:"root_id,omitempty" bson:"root_id,omitempty"`
	Status   Status              `json:"status" bson:"status"`
	Error    string              `json:"error,omitempty" bson:"error,omitempty"`
	Nodes    []layout.PlacedNode `json:"nodes" bson:"nodes"`
	Unplaced []string            `json:"unplaced,omitempty" bson:"unplaced,omitempty"`
	Warnings []string            `json:"warnings,omitempty" bson:"warnings,omitempty"`
	Metrics  layout.Metrics      `json:"metrics" bson:"metrics"`
	Stats    CategoryStats       `json:"stats" bson:"stats"`
}

// CategoryStats counts what each stage did.
type CategoryStats struct {
	Items            int `json:"items" bson:"items"`
	Themes           int `json:"themes" bson:"themes"`
	Rescued          int `json:"rescued" bson:"rescued"`
	ConvergenceEdges int `json:"convergence_edges" bson:"convergence_edges"`
	Reparented       int `json:"reparented" bson:"reparented"`
	Deferred         int `json:"deferred" bson:"deferred"`
	Forced           int `json:"forced" bson:"forced"`
	GridPoints       int `json:"grid_points" bson:"grid_points"`
}

// Names returns the category names, sorted.
func (r *Result) Names() []string {
	return slices.Sorted(maps.Keys(r.Categories))
}

// Totals sums placed and unplaced nodes over every category.
func (r *Result) Totals() (placed, unplaced int) {
	for _, c := range r.Categories {
		placed += len(c.Nodes)
		unplaced += len(c.Unplaced)
	}
	return placed, unplaced
}

// Count returns how many categories ended with status s.
func (r *Result) Count(s Status) int {
	n := 0
	for _, c := range r.Categories {
		if c.Status == s {
			n++
		}
	}
	return n
}
