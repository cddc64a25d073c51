// Package store keeps a history of pipeline runs.
//
// A [Run] records when a build happened, the hash of its inputs, a per
// category summary and the full result. Backends:
//   - [MemoryStore]: process-local, for tests and one-shot commands
//   - [FileStore]: one JSON file per run, the CLI default
//   - [MongoStore]: a MongoDB collection, for shared history
//
// # Usage
//
//	st, err := store.NewMongoStore(ctx, "mongodb://localhost:27017", "skilltree")
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	run := store.NewRun(inputHash, settings.Seed, result)
//	if err := st.Save(ctx, run); err != nil {
//	    return err
//	}
//	recent, err := st.List(ctx, 10)
//
// Lookups of unknown run IDs fail with an errors.ErrCodeNotFound error.
package store

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/skilltree/pkg/buildinfo"
	"github.com/matzehuels/skilltree/pkg/errors"
	"github.com/matzehuels/skilltree/pkg/pipeline"
)

// DefaultListLimit bounds [Store.List] when the caller passes zero.
const DefaultListLimit = 20

// Run is one recorded build.
type Run struct {
	ID         string            `json:"id" bson:"_id"`
	CreatedAt  time.Time         `json:"created_at" bson:"created_at"`
	InputHash  string            `json:"input_hash" bson:"input_hash"`
	Seed       uint64            `json:"seed" bson:"seed"`
	Builder    string            `json:"builder,omitempty" bson:"builder,omitempty"`
	Categories []CategorySummary `json:"categories" bson:"categories"`
	Result     *pipeline.Result  `json:"result,omitempty" bson:"result,omitempty"`
}

// CategorySummary is the per-category outcome of a run.
type CategorySummary struct {
	Name     string          `json:"name" bson:"name"`
	Status   pipeline.Status `json:"status" bson:"status"`
	Placed   int             `json:"placed" bson:"placed"`
	Unplaced int             `json:"unplaced" bson:"unplaced"`
	Warnings int             `json:"warnings" bson:"warnings"`
}

// NewRun stamps a result with a fresh ID, the current time and the
// skilltree build that produced it.
func NewRun(inputHash string, seed uint64, res *pipeline.Result) *Run {
	return &Run{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		InputHash:  inputHash,
		Seed:       seed,
		Builder:    buildinfo.Short(),
		Categories: Summarize(res),
		Result:     res,
	}
}

// Summarize returns one summary per category, sorted by name.
func Summarize(res *pipeline.Result) []CategorySummary {
	if res == nil {
		return nil
	}
	out := make([]CategorySummary, 0, len(res.Categories))
	for _, name := range res.Names() {
		c := res.Categories[name]
		out = append(out, CategorySummary{
			Name:     name,
			Status:   c.Status,
			Placed:   len(c.Nodes),
			Unplaced: len(c.Unplaced),
			Warnings: len(c.Warnings),
		})
	}
	return out
}

// Totals sums placed and unplaced nodes over the run's categories.
func (r *Run) Totals() (placed, unplaced int) {
	for _, c := range r.Categories {
		placed += c.Placed
		unplaced += c.Unplaced
	}
	return placed, unplaced
}

// Store is the interface for run history backends.
type Store interface {
	// Save records a run. The run must have an ID.
	Save(ctx context.Context, run *Run) error

	// Get returns the run with the given ID.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns up to limit runs, newest first. Results are omitted.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Delete removes a run.
	Delete(ctx context.Context, id string) error

	Close() error
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "run %q not found", id)
}

func checkRun(run *Run) error {
	if run == nil {
		return errors.New(errors.ErrCodeInvalidInput, "run is nil")
	}
	return errors.ValidateID("run id", run.ID)
}

// newestFirst sorts runs by creation time descending, then ID.
func newestFirst(runs []*Run) {
	slices.SortFunc(runs, func(a, b *Run) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

// header copies a run without its result.
func header(r *Run) *Run {
	cp := *r
	cp.Categories = slices.Clone(r.Categories)
	cp.Result = nil
	return &cp
}
