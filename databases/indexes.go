package databases

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func unique(keys ...string) mongo.IndexModel {
	d := bson.D{}
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: 1})
	}
	return mongo.IndexModel{Keys: d, Options: options.Index().SetUnique(true)}
}

func plain(keys ...string) mongo.IndexModel {
	d := bson.D{}
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: 1})
	}
	return mongo.IndexModel{Keys: d}
}

// Indexes lists, per collection, the indexes the api relies on. The unique ones
// carry the one-per-key rules of the data model.
var Indexes = map[string][]mongo.IndexModel{
	userName:         {unique("email"), plain("type", "isDeleted")},
	jobName:          {plain("isActive", "createdAt"), plain("applicants.user")},
	referralName:     {plain("job"), plain("referrer"), plain("status", "reminderSent")},
	interactionName:  {unique("user", "job")},
	preferenceName:   {unique("user")},
	subscriptionName: {plain("user"), plain("isActive")},
	mentorName:       {unique("user")},
	matchName:        {unique("mentor", "mentee")},
	sessionName:      {plain("match", "scheduledAt")},
	messageName:      {plain("match", "createdAt")},
	businessName:     {unique("owner")},
	reviewName:       {unique("business", "reviewer")},
	endorsementName:  {unique("user", "endorser", "skill")},
	newsletterName:   {unique("email")},
	newsName:         {plain("isPublished", "publishedAt")},
	forumName:        {plain("isDeleted", "createdAt")},
	contactName:      {plain("isRead")},
	achievementName:  {plain("user"), plain("isFeatured")},
}

// EnsureIndexes creates every index in Indexes, existing identical indexes are left alone
func EnsureIndexes(ctx context.Context, db DatabaseHelper) error {
	for name, models := range Indexes {
		created, err := db.Collection(name).CreateIndexes(ctx, models)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
		zap.S().Debugw("ensured indexes", "collection", name, "indexes", created)
	}
	return nil
}
