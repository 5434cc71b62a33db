package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"intervue/internal/model"
)

// ErrDuplicateRoomCode is returned by Create when the room code is taken
var ErrDuplicateRoomCode = errors.New("room code already exists")

// SessionRepo is the durable interview session store
type SessionRepo interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, session *model.Session) error
	GetByCode(ctx context.Context, code string) (*model.Session, error)
	// UpdateStatus moves the session to `to` only if its current status is one of `from`.
	UpdateStatus(ctx context.Context, code string, from []model.SessionStatus, to model.SessionStatus) (bool, error)
	// MarkEnded sets ENDED, endedAt and the report reference unless the session already ended.
	MarkEnded(ctx context.Context, code string, endedAt time.Time, reportRef string) (bool, error)
	ListEnded(ctx context.Context, interviewerID string) ([]*model.Session, error)
}

type sessionRepo struct {
	collection *mongo.Collection
}

// NewSessionRepo creates a new session repository
func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{
		collection: db.Collection("interview_sessions"),
	}
}

func (r *sessionRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "roomCode", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "interviewerId", Value: 1}, {Key: "status", Value: 1}, {Key: "endedAt", Value: -1}},
		},
	})
	return err
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, session)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateRoomCode
	}
	return err
}

func (r *sessionRepo) GetByCode(ctx context.Context, code string) (*model.Session, error) {
	var session model.Session
	err := r.collection.FindOne(ctx, bson.M{"roomCode": code}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) UpdateStatus(ctx context.Context, code string, from []model.SessionStatus, to model.SessionStatus) (bool, error) {
	filter := bson.M{
		"roomCode": code,
		"status":   bson.M{"$in": from},
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"status": to}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *sessionRepo) MarkEnded(ctx context.Context, code string, endedAt time.Time, reportRef string) (bool, error) {
	filter := bson.M{
		"roomCode": code,
		"status":   bson.M{"$ne": model.SessionEnded},
	}
	update := bson.M{"$set": bson.M{
		"status":    model.SessionEnded,
		"endedAt":   endedAt,
		"reportRef": reportRef,
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *sessionRepo) ListEnded(ctx context.Context, interviewerID string) ([]*model.Session, error) {
	filter := bson.M{"interviewerId": interviewerID, "status": model.SessionEnded}
	opts := options.Find().SetSort(bson.D{{Key: "endedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []*model.Session{}
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
