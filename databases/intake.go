package databases

// go generate: mockery --name ContactDatabase --name NewsletterDatabase

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alumnihub/alumni-api/models"
)

const (
	contactName    = "contacts"
	newsletterName = "newsletterSubscribers"
)

// ContactDatabase contains the methods to use with the contact message database
type ContactDatabase interface {
	Store[models.ContactMessage]
}

// NewsletterDatabase contains the methods to use with the newsletter subscriber database
type NewsletterDatabase interface {
	Store[models.NewsletterSubscriber]
	Subscribe(ctx context.Context, email string, at time.Time) (*models.NewsletterSubscriber, error)
	Unsubscribe(ctx context.Context, email string, at time.Time) error
}

type contactDatabase struct {
	collection[models.ContactMessage]
}

type newsletterDatabase struct {
	collection[models.NewsletterSubscriber]
}

// NewContactDatabase initializes a new instance of contact database with the provided db connection
func NewContactDatabase(db DatabaseHelper) ContactDatabase {
	return &contactDatabase{collection[models.ContactMessage]{db: db, name: contactName}}
}

// NewNewsletterDatabase initializes a new instance of newsletter database with the provided db connection
func NewNewsletterDatabase(db DatabaseHelper) NewsletterDatabase {
	return &newsletterDatabase{collection[models.NewsletterSubscriber]{db: db, name: newsletterName}}
}

// Subscribe creates the subscriber or reactivates a previous one
func (n *newsletterDatabase) Subscribe(ctx context.Context, email string, at time.Time) (*models.NewsletterSubscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	update := bson.M{
		"$set":   bson.M{"isActive": true, "subscribedAt": at},
		"$unset": bson.M{"unsubscribedAt": ""},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	doc := &models.NewsletterSubscriber{}
	if err := n.coll().FindOneAndUpdate(ctx, bson.M{"email": email}, update, opts).Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Unsubscribe deactivates the subscriber, ErrNotFound when the address never subscribed
func (n *newsletterDatabase) Unsubscribe(ctx context.Context, email string, at time.Time) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := n.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"isActive": false, "unsubscribedAt": at}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
