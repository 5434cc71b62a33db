package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"intervue/internal/model"
)

// ProcessLogRepo is the append-only process log store
type ProcessLogRepo interface {
	EnsureIndexes(ctx context.Context) error
	Append(ctx context.Context, entry *model.ProcessLogEntry) error
	// ListByRoomCode returns entries oldest first; ties keep insertion order.
	ListByRoomCode(ctx context.Context, code string) ([]*model.ProcessLogEntry, error)
}

type processLogRepo struct {
	collection *mongo.Collection
}

// NewProcessLogRepo creates a new process log repository
func NewProcessLogRepo(db *mongo.Database) ProcessLogRepo {
	return &processLogRepo{
		collection: db.Collection("process_logs"),
	}
}

func (r *processLogRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "roomCode", Value: 1}, {Key: "loggedAt", Value: 1}, {Key: "_id", Value: 1}},
	})
	return err
}

func (r *processLogRepo) Append(ctx context.Context, entry *model.ProcessLogEntry) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

func (r *processLogRepo) ListByRoomCode(ctx context.Context, code string) ([]*model.ProcessLogEntry, error) {
	// ObjectIDs generated in one process increase monotonically, so _id breaks loggedAt ties.
	opts := options.Find().SetSort(bson.D{{Key: "loggedAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"roomCode": code}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []*model.ProcessLogEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
