// Package archive persists a record of layout runs.
//
// Each run captures what was computed (graph hash, strategy, tool,
// depth), what came out (node and edge counts, bounding box, duration)
// and optionally the layout document itself, so past runs can be listed
// and reopened without recomputing. Implementations cover:
//   - memory: in-process storage for tests
//   - sqlite: local single-file archive for CLI use
//   - mongo: shared archive for server deployments
//
// # Usage
//
// Create a store and record a run:
//
//	store, err := archive.NewSQLiteStore("runs.db")
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	run := archive.NewRun(graphHash)
//	run.Strategy = "hierarchical"
//	run.Nodes = store.NodeCount()
//	if err := store.Put(ctx, run); err != nil {
//		return err
//	}
package archive

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Run is one archived layout computation.
type Run struct {
	ID        string        `json:"id" bson:"_id"`
	GraphHash string        `json:"graph_hash" bson:"graph_hash"`
	GraphName string        `json:"graph_name" bson:"graph_name"`
	Strategy  string        `json:"strategy" bson:"strategy"`
	Tool      string        `json:"tool" bson:"tool"`
	Depth     int           `json:"depth" bson:"depth"`
	Zoom      bool          `json:"zoom" bson:"zoom"`
	Workers   int           `json:"workers" bson:"workers"`
	Nodes     int           `json:"nodes" bson:"nodes"`
	Edges     int           `json:"edges" bson:"edges"`
	Width     float64       `json:"width" bson:"width"`
	Height    float64       `json:"height" bson:"height"`
	Duration  time.Duration `json:"duration" bson:"duration"`
	CacheHit  bool          `json:"cache_hit" bson:"cache_hit"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	Layout    []byte        `json:"layout,omitempty" bson:"layout,omitempty"`
}

// NewRun creates a run record with a fresh ID and timestamp. The caller
// fills in the remaining fields as the run completes.
func NewRun(graphHash string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		GraphHash: graphHash,
		CreatedAt: time.Now().UTC(),
	}
}

// Store is the interface for run archive backends.
type Store interface {
	// Put stores a run record, replacing any record with the same ID.
	Put(ctx context.Context, run *Run) error

	// Get retrieves a run by ID. Unknown IDs yield a RUN_NOT_FOUND
	// coded error.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns runs newest first. A limit of 0 returns all runs.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Delete removes a run. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}
