package mongo

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexDefinition defines a MongoDB index
type IndexDefinition struct {
	Collection string
	Keys       bson.D
	Options    *options.IndexOptions
}

// ArchiveIndexes returns the indexes the report archive collection needs.
// The unique (run_time, ou_name) pair makes re-archiving a run a no-op.
func ArchiveIndexes(collection string) []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: collection,
			Keys:       bson.D{{Key: "run_time", Value: 1}, {Key: "ou_name", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("run_time_ou_name_unique"),
		},
		{
			Collection: collection,
			Keys:       bson.D{{Key: "ou_name", Value: 1}, {Key: "run_time", Value: -1}},
		},
	}
}

// EnsureIndexes creates indexes, logging and skipping any that fail
func (c *Client) EnsureIndexes(ctx context.Context, indexes []IndexDefinition) {
	for _, idx := range indexes {
		model := mongo.IndexModel{Keys: idx.Keys, Options: idx.Options}
		if _, err := c.Collection(idx.Collection).Indexes().CreateOne(ctx, model); err != nil {
			slog.Warn("Failed to create index (may already exist)",
				"error", err,
				"collection", idx.Collection)
		}
	}
	slog.Debug("Index initialization complete", "count", len(indexes))
}
