// Package store archives partitioning runs.
//
// A [Run] records the request, the tree it ran on and the result, under a
// random UUID. Backends:
//   - [FileStore]: one JSON file per run, for the CLI
//   - [MongoStore]: a MongoDB collection shared by API instances
//
// Usage:
//
//	st, err := store.NewFileStore("")
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	run := store.NewRun(t.Name(), treeHash, req, res)
//	if err := st.Save(ctx, run); err != nil {
//	    return err
//	}
//	runs, err := st.List(ctx, store.Filter{TreeHash: treeHash})
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hsnlab/SLAMBUC/pkg/errors"
	"github.com/hsnlab/SLAMBUC/pkg/partition"
)

// Store persists runs.
type Store interface {
	// Save stores run, assigning an ID and creation time when unset.
	Save(ctx context.Context, run *Run) error

	// Get returns the run with the given ID or an ErrCodeRunNotFound error.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns matching runs, newest first.
	List(ctx context.Context, f Filter) ([]*Run, error)

	// Delete removes a run; a missing run is an ErrCodeRunNotFound error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// Request is the archived form of the partitioning request.
type Request struct {
	Algorithm     string  `json:"algorithm" bson:"algorithm"`
	Root          int     `json:"root,omitempty" bson:"root"`
	CPEnd         int     `json:"cp_end,omitempty" bson:"cp_end"`
	M             int64   `json:"M" bson:"m"`
	L             int64   `json:"L" bson:"l"`
	N             int     `json:"N" bson:"n"`
	Delay         int64   `json:"delay" bson:"delay"`
	Unit          int64   `json:"unit" bson:"unit"`
	Bidirectional bool    `json:"bidirectional" bson:"bidirectional"`
	Epsilon       float64 `json:"epsilon,omitempty" bson:"epsilon"`
	Lambda        float64 `json:"lambda,omitempty" bson:"lambda"`
}

// Run is one archived partitioning.
type Run struct {
	ID        string           `json:"id" bson:"_id"`
	TreeName  string           `json:"tree_name" bson:"tree_name"`
	TreeHash  string           `json:"tree_hash" bson:"tree_hash"`
	Request   Request          `json:"request" bson:"request"`
	Result    partition.Result `json:"result" bson:"result"`
	Duration  time.Duration    `json:"duration" bson:"duration"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
}

// NewRun builds a run with a fresh ID.
func NewRun(treeName, treeHash string, req Request, res partition.Result) *Run {
	return &Run{
		ID:        uuid.NewString(),
		TreeName:  treeName,
		TreeHash:  treeHash,
		Request:   req,
		Result:    res,
		CreatedAt: time.Now().UTC(),
	}
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	TreeHash  string
	Algorithm string
	Limit     int
}

func (f Filter) match(r *Run) bool {
	return (f.TreeHash == "" || r.TreeHash == f.TreeHash) &&
		(f.Algorithm == "" || r.Request.Algorithm == f.Algorithm)
}

// ValidateID rejects anything but a canonical UUID.
func ValidateID(id string) error {
	u, err := uuid.Parse(id)
	if err != nil || u.String() != id {
		return errors.New(errors.ErrCodeInvalidInput, "invalid run id %q", id)
	}
	return nil
}

// prepare fills the ID and timestamp of a run about to be saved.
func prepare(run *Run) error {
	if run == nil {
		return errors.New(errors.ErrCodeInvalidInput, "run is nil")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	} else if err := ValidateID(run.ID); err != nil {
		return err
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeRunNotFound, "run %s not found", id)
}
