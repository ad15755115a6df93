package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Paginate turns 1-based page/limit query values into find options, newest first
func Paginate(page, limit int) *options.FindOptions {
	mp := newMongoPaginate(limit, page)
	return mp.getPaginatedOpts().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

type mongoPaginate struct {
	limit int64
	page  int64
}

func newMongoPaginate(limit, page int) *mongoPaginate {
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if page < 1 {
		page = 1
	}
	return &mongoPaginate{
		limit: int64(limit),
		page:  int64(page),
	}
}

func (mp *mongoPaginate) getPaginatedOpts() *options.FindOptions {
	l := mp.limit
	skip := mp.page*mp.limit - mp.limit
	fOpt := options.FindOptions{Limit: &l, Skip: &skip}

	return &fOpt
}

// collection holds the generic reads and writes shared by every typed database
type collection[T any] struct {
	db   DatabaseHelper
	name string
}

func (c collection[T]) coll() CollectionHelper {
	return c.db.Collection(c.name)
}

func (c collection[T]) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*T, error) {
	doc := new(T)
	if err := c.coll().FindOne(ctx, filter, opts...).Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c collection[T]) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cur, err := c.coll().Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	docs := []T{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c collection[T]) InsertOne(ctx context.Context, doc *T) (InsertOneResultHelper, error) {
	return c.coll().InsertOne(ctx, doc)
}

func (c collection[T]) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.coll().UpdateOne(ctx, filter, update, opts...)
}

func (c collection[T]) DeleteOne(ctx context.Context, filter interface{}) (*mongo.DeleteResult, error) {
	return c.coll().DeleteOne(ctx, filter)
}

func (c collection[T]) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return c.coll().CountDocuments(ctx, filter)
}

// FindOneAndUpdate applies update and returns the document as it is afterwards
func (c collection[T]) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}) (*T, error) {
	doc := new(T)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := c.coll().FindOneAndUpdate(ctx, filter, update, opts).Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// updateByID sets fields on one document, ErrNotFound when it does not exist
func (c collection[T]) updateByID(ctx context.Context, id interface{}, set bson.M) error {
	res, err := c.coll().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
