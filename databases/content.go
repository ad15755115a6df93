package databases

// go generate: mockery --name AchievementDatabase --name NewsDatabase --name EndorsementDatabase --name ForumDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alumnihub/alumni-api/models"
)

const (
	achievementName = "achievements"
	newsName        = "news"
	endorsementName = "endorsements"
	forumName       = "forumPosts"
)

// AchievementDatabase contains the methods to use with the achievement database
type AchievementDatabase interface {
	Store[models.Achievement]
}

// NewsDatabase contains the methods to use with the news database
type NewsDatabase interface {
	Store[models.News]
}

// EndorsementDatabase contains the methods to use with the endorsement database
type EndorsementDatabase interface {
	Store[models.Endorsement]
}

// ForumDatabase contains the methods to use with the forum post database
type ForumDatabase interface {
	Store[models.ForumPost]
	AddReply(ctx context.Context, postID primitive.ObjectID, reply models.ForumReply) (*models.ForumPost, error)
	Like(ctx context.Context, postID, userID primitive.ObjectID, at time.Time) (*models.ForumPost, error)
}

type achievementDatabase struct {
	collection[models.Achievement]
}

type newsDatabase struct {
	collection[models.News]
}

type endorsementDatabase struct {
	collection[models.Endorsement]
}

type forumDatabase struct {
	collection[models.ForumPost]
}

// NewAchievementDatabase initializes a new instance of achievement database with the provided db connection
func NewAchievementDatabase(db DatabaseHelper) AchievementDatabase {
	return &achievementDatabase{collection[models.Achievement]{db: db, name: achievementName}}
}

// NewNewsDatabase initializes a new instance of news database with the provided db connection
func NewNewsDatabase(db DatabaseHelper) NewsDatabase {
	return &newsDatabase{collection[models.News]{db: db, name: newsName}}
}

// NewEndorsementDatabase initializes a new instance of endorsement database with the provided db connection
func NewEndorsementDatabase(db DatabaseHelper) EndorsementDatabase {
	return &endorsementDatabase{collection[models.Endorsement]{db: db, name: endorsementName}}
}

// NewForumDatabase initializes a new instance of forum database with the provided db connection
func NewForumDatabase(db DatabaseHelper) ForumDatabase {
	return &forumDatabase{collection[models.ForumPost]{db: db, name: forumName}}
}

func (f *forumDatabase) AddReply(ctx context.Context, postID primitive.ObjectID, reply models.ForumReply) (*models.ForumPost, error) {
	update := bson.M{
		"$push": bson.M{"replies": reply},
		"$set":  bson.M{"updatedAt": reply.CreatedAt},
	}
	return f.FindOneAndUpdate(ctx, bson.M{"_id": postID, "isDeleted": false}, update)
}

// Like adds userID to the post's likes, liking twice is a no-op
func (f *forumDatabase) Like(ctx context.Context, postID, userID primitive.ObjectID, at time.Time) (*models.ForumPost, error) {
	update := bson.M{
		"$addToSet": bson.M{"likes": userID},
		"$set":      bson.M{"updatedAt": at},
	}
	return f.FindOneAndUpdate(ctx, bson.M{"_id": postID, "isDeleted": false}, update)
}
