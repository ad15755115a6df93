package databases

// go generate: mockery --name SubscriptionDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alumnihub/alumni-api/models"
)

const subscriptionName = "jobSubscriptions"

// SubscriptionDatabase contains the methods to use with the job subscription database
type SubscriptionDatabase interface {
	Store[models.JobSubscription]
	MarkNotified(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

type subscriptionDatabase struct {
	collection[models.JobSubscription]
}

// NewSubscriptionDatabase initializes a new instance of subscription database with the provided db connection
func NewSubscriptionDatabase(db DatabaseHelper) SubscriptionDatabase {
	return &subscriptionDatabase{collection[models.JobSubscription]{db: db, name: subscriptionName}}
}

func (s *subscriptionDatabase) MarkNotified(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return s.updateByID(ctx, id, bson.M{"lastNotificationSent": at})
}
