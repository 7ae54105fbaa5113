package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "blobs"

type mongoBlob struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoBlobs stores one document per key. Values are kept as JSON text so the
// documents stay readable from the mongo shell.
type MongoBlobs struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoBlobs(ctx context.Context, uri, database string) (*MongoBlobs, error) {
	if database == "" {
		database = "idledger"
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &MongoBlobs{
		client: client,
		coll:   client.Database(database).Collection(mongoCollection),
	}, nil
}

func (m *MongoBlobs) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc mongoBlob
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("mongo find %s: %w", key, err)
	}
	return []byte(doc.Value), true, nil
}

func (m *MongoBlobs) Put(ctx context.Context, key string, data []byte) error {
	doc := mongoBlob{Key: key, Value: string(data), UpdatedAt: time.Now().UTC()}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo upsert %s: %w", key, err)
	}
	return nil
}

func (m *MongoBlobs) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
