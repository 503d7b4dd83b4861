package docstore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoWriter stores each path segment pair's collection as a Mongo
// collection and the full path as _id. Parent ids are kept on the document
// for querying.
type MongoWriter struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoWriter(ctx context.Context, uri, database string) (*MongoWriter, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoWriter{client: client, db: client.Database(database)}, nil
}

func (w *MongoWriter) Put(ctx context.Context, path Path, doc map[string]any) error {
	body := bson.M{}
	for k, v := range doc {
		body[k] = v
	}
	body["_id"] = path.ID()
	if len(path) > 2 {
		body["_parent"] = Path(path[:len(path)-2]).ID()
	}

	_, err := w.db.Collection(path.Collection()).ReplaceOne(ctx,
		bson.M{"_id": path.ID()},
		body,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", path.ID(), err)
	}
	return nil
}

func (w *MongoWriter) Close(ctx context.Context) error {
	return w.client.Disconnect(ctx)
}
