package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoService struct {
	db *mongo.Database
}

func New(db *mongo.Database) *MongoService {
	return &MongoService{db: db}
}

// Connect dials the database and returns the service plus a disconnect
// function for shutdown.
func Connect(ctx context.Context, uri, dbName string) (*MongoService, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return New(client.Database(dbName)), client.Disconnect, nil
}

func (s *MongoService) GetDatabase() *mongo.Database {
	return s.db
}

func (s *MongoService) GetCollection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func ObjectIDFromString(s string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(s)
}

func NewObjectID() primitive.ObjectID {
	return primitive.NewObjectID()
}

func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}
