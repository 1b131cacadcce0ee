package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cschone/bikefit/pkg/errors"
)

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	// URI is the connection string, e.g. "mongodb://localhost:27017".
	URI string

	// Database name. Defaults to "bikefit".
	Database string

	// Collection name. Defaults to "bikes".
	Collection string
}

// MongoStore persists bikes in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "bikefit"
	}
	if cfg.Collection == "" {
		cfg.Collection = "bikes"
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to connect to mongodb")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to ping mongodb")
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Get retrieves a bike by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*Bike, error) {
	var bike Bike
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&bike)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeNotFound, "bike not found: %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "mongodb get failed")
	}
	return &bike, nil
}

// List returns all stored bikes, newest first.
func (s *MongoStore) List(ctx context.Context) ([]*Bike, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "mongodb list failed")
	}
	defer cursor.Close(ctx)

	var bikes []*Bike
	if err := cursor.All(ctx, &bikes); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "mongodb decode failed")
	}
	return bikes, nil
}

// Put inserts or replaces a bike.
func (s *MongoStore) Put(ctx context.Context, bike *Bike) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": bike.ID}, bike, opts)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "mongodb put failed")
	}
	return nil
}

// Delete removes a bike.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "mongodb delete failed")
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
