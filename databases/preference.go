package databases

// go generate: mockery --name PreferenceDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alumnihub/alumni-api/models"
)

const preferenceName = "jobPreferences"

// PreferenceDatabase contains the methods to use with the job preference database
type PreferenceDatabase interface {
	Store[models.JobPreference]
	Upsert(ctx context.Context, pref models.JobPreference) (*models.JobPreference, error)
}

type preferenceDatabase struct {
	collection[models.JobPreference]
}

// NewPreferenceDatabase initializes a new instance of preference database with the provided db connection
func NewPreferenceDatabase(db DatabaseHelper) PreferenceDatabase {
	return &preferenceDatabase{collection[models.JobPreference]{db: db, name: preferenceName}}
}

// Upsert replaces the user's preferences, creating them on first save
func (p *preferenceDatabase) Upsert(ctx context.Context, pref models.JobPreference) (*models.JobPreference, error) {
	update := bson.M{
		"$set": bson.M{
			"skills":     pref.Skills,
			"jobTypes":   pref.JobTypes,
			"locations":  pref.Locations,
			"remoteOnly": pref.RemoteOnly,
			"minSalary":  pref.MinSalary,
			"updatedAt":  pref.UpdatedAt,
		},
		"$setOnInsert": bson.M{"user": pref.User, "createdAt": pref.UpdatedAt},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	doc := &models.JobPreference{}
	if err := p.coll().FindOneAndUpdate(ctx, bson.M{"user": pref.User}, update, opts).Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}
