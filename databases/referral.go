package databases

// go generate: mockery --name ReferralDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alumnihub/alumni-api/models"
)

const referralName = "jobReferrals"

// ReferralDatabase contains the methods to use with the job referral database
type ReferralDatabase interface {
	Store[models.JobReferral]
	UpdateStatus(ctx context.Context, id primitive.ObjectID, change models.StatusChange) (*models.JobReferral, error)
	MarkReminded(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

type referralDatabase struct {
	collection[models.JobReferral]
}

// NewReferralDatabase initializes a new instance of referral database with the provided db connection
func NewReferralDatabase(db DatabaseHelper) ReferralDatabase {
	return &referralDatabase{collection[models.JobReferral]{db: db, name: referralName}}
}

// UpdateStatus records change.To and appends change to the history, as long as the
// referral is still in change.From
func (r *referralDatabase) UpdateStatus(ctx context.Context, id primitive.ObjectID, change models.StatusChange) (*models.JobReferral, error) {
	update := bson.M{
		"$set":  bson.M{"status": change.To, "updatedAt": change.ChangedAt},
		"$push": bson.M{"statusHistory": change},
	}
	return r.compareAndSetStatus(ctx, id, change.From, update)
}

// MarkReminded flags a referral whose job poster has been nudged
func (r *referralDatabase) MarkReminded(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return r.updateByID(ctx, id, bson.M{"reminderSent": true, "lastNotificationSent": at})
}
