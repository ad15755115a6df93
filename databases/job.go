package databases

// go generate: mockery --name JobDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alumnihub/alumni-api/models"
)

const jobName = "jobs"

// JobDatabase contains the methods to use with the job database
type JobDatabase interface {
	Store[models.Job]
	AddApplicant(ctx context.Context, jobID, userID primitive.ObjectID, at time.Time) error
	SetApplicantStatus(ctx context.Context, jobID, userID primitive.ObjectID, from, to models.ApplicationStatus, at time.Time) error
}

type jobDatabase struct {
	collection[models.Job]
}

// NewJobDatabase initializes a new instance of job database with the provided db connection
func NewJobDatabase(db DatabaseHelper) JobDatabase {
	return &jobDatabase{collection[models.Job]{db: db, name: jobName}}
}

// AddApplicant pushes a pending application unless the user already applied.
// The duplicate check is part of the update filter so two concurrent applies
// cannot both land.
func (j *jobDatabase) AddApplicant(ctx context.Context, jobID, userID primitive.ObjectID, at time.Time) error {
	filter := bson.M{"_id": jobID, "applicants.user": bson.M{"$ne": userID}}
	update := bson.M{
		"$push": bson.M{"applicants": models.Applicant{User: userID, Status: models.ApplicationPending, AppliedAt: at}},
		"$set":  bson.M{"updatedAt": at},
	}
	res, err := j.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := j.CountDocuments(ctx, bson.M{"_id": jobID})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrDuplicate
}

// SetApplicantStatus moves one embedded application from one status to another
func (j *jobDatabase) SetApplicantStatus(ctx context.Context, jobID, userID primitive.ObjectID, from, to models.ApplicationStatus, at time.Time) error {
	filter := bson.M{
		"_id":        jobID,
		"applicants": bson.M{"$elemMatch": bson.M{"user": userID, "status": from}},
	}
	update := bson.M{"$set": bson.M{
		"applicants.$.status":    to,
		"applicants.$.updatedAt": at,
		"updatedAt":              at,
	}}
	res, err := j.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStatusChanged
	}
	return nil
}
