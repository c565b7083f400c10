// Package storage persists named graphs.
//
// Two backends implement [Store]:
//
//   - [FileStore]: one text record file per graph in a directory (CLI)
//   - [MongoStore]: one document per graph in a MongoDB collection (server)
//
// Names are validated with errors.ValidateGraphName before they reach a
// backend, so they are always safe as file names and document keys.
package storage

import (
	"context"
	"time"

	"github.com/matzehuels/sptree/pkg/planar"
)

// Info describes a stored graph.
type Info struct {
	Name      string    `json:"name"`
	Vertices  int       `json:"vertices"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store saves and loads graphs by name.
type Store interface {
	// Save writes records under name, replacing any previous graph.
	Save(ctx context.Context, name string, records []planar.Record) error

	// Load returns the records stored under name.
	// Returns NOT_FOUND if there is no such graph.
	Load(ctx context.Context, name string) ([]planar.Record, error)

	// List returns every stored graph ordered by name.
	List(ctx context.Context) ([]Info, error)

	// Delete removes the graph. Deleting an unknown name is not an error.
	Delete(ctx context.Context, name string) error

	// Close releases backend resources.
	Close() error
}

// LoadGraph loads name from s into a new graph.
func LoadGraph(ctx context.Context, s Store, name string) (*planar.Graph, error) {
	records, err := s.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	g := planar.New()
	if err := g.Load(records); err != nil {
		return nil, err
	}
	return g, nil
}
