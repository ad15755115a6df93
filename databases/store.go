package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store lists the reads and writes every typed database supports
type Store[T any] interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*T, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]T, error)
	InsertOne(ctx context.Context, doc *T) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}) (*mongo.DeleteResult, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}) (*T, error)
}

// compareAndSetStatus applies update only while the stored status still equals from.
// It returns ErrNotFound for a missing document and ErrStatusChanged when another
// write got there first.
func (c collection[T]) compareAndSetStatus(ctx context.Context, id primitive.ObjectID, from string, update bson.M) (*T, error) {
	doc, err := c.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, update)
	if err == nil {
		return doc, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}
	n, cerr := c.CountDocuments(ctx, bson.M{"_id": id})
	if cerr != nil {
		return nil, cerr
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrStatusChanged
}
