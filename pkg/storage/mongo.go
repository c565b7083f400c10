package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/matzehuels/sptree/pkg/errors"
	"github.com/matzehuels/sptree/pkg/planar"
)

// Default MongoDB locations.
const (
	DefaultMongoDatabase   = "sptree"
	DefaultMongoCollection = "graphs"
)

// MongoOptions configures [NewMongoStore].
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
	// Timeout bounds connecting and pinging. Zero means 10s.
	Timeout time.Duration
}

// graphDocument is the stored form of one graph.
type graphDocument struct {
	Name      string          `bson:"name"`
	Vertices  int             `bson:"vertices"`
	Records   []planar.Record `bson:"records"`
	UpdatedAt time.Time       `bson:"updated_at"`
}

// MongoStore keeps graphs in a MongoDB collection keyed by a unique name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures a
// unique index on the graph name.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.Database == "" {
		opts.Database = DefaultMongoDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultMongoCollection
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create name index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// Save implements Store.
func (s *MongoStore) Save(ctx context.Context, name string, records []planar.Record) error {
	if err := errs.ValidateGraphName(name); err != nil {
		return err
	}
	doc := newGraphDocument(name, records, time.Now())
	_, err := s.coll.ReplaceOne(ctx, bson.M{"name": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save graph %s: %w", name, err)
	}
	return nil
}

// Load implements Store.
func (s *MongoStore) Load(ctx context.Context, name string) ([]planar.Record, error) {
	if err := errs.ValidateGraphName(name); err != nil {
		return nil, err
	}
	var doc graphDocument
	err := s.coll.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.New(errs.ErrCodeNotFound, "graph %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", name, err)
	}
	return doc.records(), nil
}

// List implements Store.
func (s *MongoStore) List(ctx context.Context) ([]Info, error) {
	opts := options.Find().
		SetProjection(bson.M{"records": 0}).
		SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	var docs []graphDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	out := make([]Info, len(docs))
	for i, d := range docs {
		out[i] = Info{Name: d.Name, Vertices: d.Vertices, UpdatedAt: d.UpdatedAt}
	}
	return out, nil
}

// Delete implements Store.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := errs.ValidateGraphName(name); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"name": name}); err != nil {
		return fmt.Errorf("delete graph %s: %w", name, err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func newGraphDocument(name string, records []planar.Record, now time.Time) graphDocument {
	return graphDocument{
		Name:      name,
		Vertices:  len(records),
		Records:   records,
		UpdatedAt: now.UTC().Truncate(time.Millisecond),
	}
}

// records returns the stored records with nil neighbor lists normalized to
// empty ones.
func (d graphDocument) records() []planar.Record {
	for i := range d.Records {
		if d.Records[i].Neighbors == nil {
			d.Records[i].Neighbors = []int{}
		}
	}
	return d.Records
}

var _ Store = (*MongoStore)(nil)
