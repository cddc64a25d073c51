package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/skilltree/pkg/observability"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "skilltree"
	DefaultMongoCollection = "runs"
	mongoTimeout           = 10 * time.Second
)

// MongoStore keeps runs in a MongoDB collection, keyed by run ID.
type MongoStore struct {
	client *mongo.Client
	runs   *mongo.Collection
}

// NewMongoStore connects to uri, pings the primary and ensures the
// created_at index exists.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	runs := client.Database(database).Collection(DefaultMongoCollection)
	_, err = runs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &MongoStore{client: client, runs: runs}, nil
}

func (s *MongoStore) Save(ctx context.Context, run *Run) error {
	if err := checkRun(run); err != nil {
		return err
	}
	start := time.Now()
	if _, err := s.runs.InsertOne(ctx, run); err != nil {
		observability.Store().OnStoreError(ctx, "save", err)
		return fmt.Errorf("insert run: %w", err)
	}
	observability.Store().OnRunSaved(ctx, run.ID, time.Since(start))
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.runs.FindOne(ctx, bson.M{"_id": id}).Decode(&run)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(id)
	}
	if err != nil {
		observability.Store().OnStoreError(ctx, "get", err)
		return nil, fmt.Errorf("find run: %w", err)
	}
	return &run, nil
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]*Run, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(listLimit(limit))).
		SetProjection(bson.M{"result": 0})
	cur, err := s.runs.Find(ctx, bson.M{}, opts)
	if err != nil {
		observability.Store().OnStoreError(ctx, "list", err)
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var out []*Run
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode runs: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.runs.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		observability.Store().OnStoreError(ctx, "delete", err)
		return fmt.Errorf("delete run: %w", err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
