// Package mongo provides the MongoDB-backed callback journal: an append-only
// record of every inbound webhook delivery, kept for audit and dispute
// investigation.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/momo-payment-gateway/internal/domain/callback"
)

// CallbackCollectionName is the name of the callback journal collection
const CallbackCollectionName = "callback_events"

// CallbackJournal implements the callback.Journal interface for MongoDB
type CallbackJournal struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewCallbackJournal creates a new MongoDB callback journal
func NewCallbackJournal(logger *slog.Logger, db *mongo.Database) callback.Journal {
	return &CallbackJournal{
		db:     db,
		logger: logger,
	}
}

// Append stores one webhook delivery. Duplicates are welcome: the journal
// records what the sender actually delivered.
func (j *CallbackJournal) Append(ctx context.Context, event *callback.Event) error {
	collection := j.db.Collection(CallbackCollectionName)

	_, err := collection.InsertOne(ctx, event)
	if err != nil {
		j.logger.Error("Failed to append callback event",
			"external_ref", event.ExternalRef,
			"error", err)
		return fmt.Errorf("failed to append callback event: %w", err)
	}

	return nil
}

// GetByExternalRef retrieves journaled deliveries for a reference, newest first
func (j *CallbackJournal) GetByExternalRef(ctx context.Context, externalRef string, limit int) ([]*callback.Event, error) {
	collection := j.db.Collection(CallbackCollectionName)

	findOptions := options.Find().
		SetSort(bson.D{{Key: "received_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.M{"external_ref": externalRef}, findOptions)
	if err != nil {
		j.logger.Error("Failed to query callback journal",
			"external_ref", externalRef,
			"error", err)
		return nil, fmt.Errorf("failed to query callback journal: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*callback.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode callback events: %w", err)
	}

	return events, nil
}
