package databases

// go generate: mockery --name BusinessDatabase --name ReviewDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alumnihub/alumni-api/models"
)

const (
	businessName = "businesses"
	reviewName   = "businessReviews"
)

// BusinessDatabase contains the methods to use with the business database
type BusinessDatabase interface {
	Store[models.Business]
	SetRating(ctx context.Context, id primitive.ObjectID, summary models.RatingSummary, at time.Time) error
}

// ReviewDatabase contains the methods to use with the business review database
type ReviewDatabase interface {
	Store[models.BusinessReview]
	Summarize(ctx context.Context, businessID primitive.ObjectID) (models.RatingSummary, error)
}

type businessDatabase struct {
	collection[models.Business]
}

type reviewDatabase struct {
	collection[models.BusinessReview]
}

// NewBusinessDatabase initializes a new instance of business database with the provided db connection
func NewBusinessDatabase(db DatabaseHelper) BusinessDatabase {
	return &businessDatabase{collection[models.Business]{db: db, name: businessName}}
}

// NewReviewDatabase initializes a new instance of review database with the provided db connection
func NewReviewDatabase(db DatabaseHelper) ReviewDatabase {
	return &reviewDatabase{collection[models.BusinessReview]{db: db, name: reviewName}}
}

func (b *businessDatabase) SetRating(ctx context.Context, id primitive.ObjectID, summary models.RatingSummary, at time.Time) error {
	return b.updateByID(ctx, id, bson.M{
		"averageRating": summary.AverageRating,
		"reviewCount":   summary.ReviewCount,
		"updatedAt":     at,
	})
}

// Summarize averages every review of one business, rounded to one decimal
func (r *reviewDatabase) Summarize(ctx context.Context, businessID primitive.ObjectID) (models.RatingSummary, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"business": businessID}},
		{"$group": bson.M{
			"_id":           "$business",
			"averageRating": bson.M{"$avg": "$rating"},
			"reviewCount":   bson.M{"$sum": 1},
		}},
		{"$project": bson.M{
			"averageRating": bson.M{"$round": bson.A{"$averageRating", 1}},
			"reviewCount":   1,
		}},
	}
	cur, err := r.coll().Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingSummary{}, err
	}
	defer cur.Close(ctx)

	var out []models.RatingSummary
	if err := cur.All(ctx, &out); err != nil {
		return models.RatingSummary{}, err
	}
	if len(out) == 0 {
		return models.RatingSummary{}, nil
	}
	return out[0], nil
}
