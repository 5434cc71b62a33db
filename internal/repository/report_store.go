package repository

import (
	"bytes"
	"context"
	"errors"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrReportNotFound is returned when a report reference does not resolve
var ErrReportNotFound = errors.New("report not found")

// ReportStore is write-once blob storage for compiled reports.
// References are opaque strings handed out by Put.
type ReportStore interface {
	Put(ctx context.Context, roomCode, name string, content []byte) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Delete(ctx context.Context, ref string) error
}

type gridFSReportStore struct {
	db     *mongo.Database
	bucket string
}

// NewReportStore creates a GridFS backed report store
func NewReportStore(db *mongo.Database, bucket string) ReportStore {
	return &gridFSReportStore{db: db, bucket: bucket}
}

// Bucket deadlines are per instance, so every call gets its own bucket.
func (s *gridFSReportStore) open(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(s.bucket))
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := b.SetWriteDeadline(deadline); err != nil {
			return nil, err
		}
		if err := b.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (s *gridFSReportStore) Put(ctx context.Context, roomCode, name string, content []byte) (string, error) {
	b, err := s.open(ctx)
	if err != nil {
		return "", err
	}
	opts := options.GridFSUpload().SetMetadata(bson.M{
		"roomCode":    roomCode,
		"contentType": "text/plain; charset=utf-8",
	})
	id, err := b.UploadFromStream(name, bytes.NewReader(content), opts)
	if err != nil {
		return "", err
	}
	return id.Hex(), nil
}

func (s *gridFSReportStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	id, err := primitive.ObjectIDFromHex(ref)
	if err != nil {
		return nil, ErrReportNotFound
	}
	b, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	stream, err := b.OpenDownloadStream(id)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (s *gridFSReportStore) Delete(ctx context.Context, ref string) error {
	id, err := primitive.ObjectIDFromHex(ref)
	if err != nil {
		return ErrReportNotFound
	}
	b, err := s.open(ctx)
	if err != nil {
		return err
	}
	err = b.DeleteContext(ctx, id)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return ErrReportNotFound
	}
	return err
}
