package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Achievement holds the structure for the achievements collection in mongo
type Achievement struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User        primitive.ObjectID `json:"user" bson:"user"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Category    string             `json:"category" bson:"category"`
	Date        *time.Time         `json:"date,omitempty" bson:"date,omitempty"`
	IsFeatured  bool               `json:"isFeatured" bson:"isFeatured"`
	IsPublished bool               `json:"isPublished" bson:"isPublished"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// AchievementRequest holds the body for creating or editing an achievement
type AchievementRequest struct {
	UserID      string     `json:"userId" validate:"required"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"required"`
	Category    string     `json:"category" validate:"omitempty,oneof=academic professional award publication community other"`
	Date        *time.Time `json:"date"`
	IsPublished *bool      `json:"isPublished"`
}

// News holds the structure for the news collection in mongo
type News struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Author      primitive.ObjectID `json:"author" bson:"author"`
	Title       string             `json:"title" bson:"title"`
	Content     string             `json:"content" bson:"content"`
	Category    string             `json:"category" bson:"category"`
	Tags        []string           `json:"tags" bson:"tags"`
	IsPublished bool               `json:"isPublished" bson:"isPublished"`
	IsFeatured  bool               `json:"isFeatured" bson:"isFeatured"`
	PublishedAt *time.Time         `json:"publishedAt,omitempty" bson:"publishedAt,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// NewsRequest holds the body for creating or editing news
type NewsRequest struct {
	AuthorID string   `json:"authorId" validate:"required"`
	Title    string   `json:"title" validate:"required,max=200"`
	Content  string   `json:"content" validate:"required"`
	Category string   `json:"category" validate:"omitempty,oneof=general events alumni careers campus"`
	Tags     []string `json:"tags"`
}

// PublishRequest toggles publication
type PublishRequest struct {
	IsPublished bool `json:"isPublished"`
}

// NewsletterSubscriber holds the structure for the newsletterSubscribers collection, one per email
type NewsletterSubscriber struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email          string             `json:"email" bson:"email"`
	IsActive       bool               `json:"isActive" bson:"isActive"`
	SubscribedAt   time.Time          `json:"subscribedAt" bson:"subscribedAt"`
	UnsubscribedAt *time.Time         `json:"unsubscribedAt,omitempty" bson:"unsubscribedAt,omitempty"`
}

// NewsletterRequest holds the body for (un)subscribing
type NewsletterRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// NewsletterSendRequest holds the body of an admin newsletter blast
type NewsletterSendRequest struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"body" validate:"required"`
}

// NewsletterSendResult reports how many subscribers a blast was queued for
type NewsletterSendResult struct {
	Recipients int `json:"recipients"`
}

// Endorsement holds the structure for the endorsements collection, one per (user, endorser, skill)
type Endorsement struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Endorser  primitive.ObjectID `json:"endorser" bson:"endorser"`
	Skill     string             `json:"skill" bson:"skill"`
	Comment   string             `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// EndorsementRequest holds the body for endorsing a skill
type EndorsementRequest struct {
	EndorserID string `json:"endorserId" validate:"required"`
	Skill      string `json:"skill" validate:"required,max=100"`
	Comment    string `json:"comment" validate:"max=1000"`
}

// ContactMessage holds the structure for the contacts collection in mongo
type ContactMessage struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Subject   string             `json:"subject" bson:"subject"`
	Message   string             `json:"message" bson:"message"`
	IsRead    bool               `json:"isRead" bson:"isRead"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ContactRequest holds the body of the contact form
type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// ForumReply is embedded in ForumPost.Replies
type ForumReply struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Author    primitive.ObjectID `json:"author" bson:"author"`
	Content   string             `json:"content" bson:"content"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// ForumPost holds the structure for the forumPosts collection in mongo
type ForumPost struct {
	ID        primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Author    primitive.ObjectID   `json:"author" bson:"author"`
	Title     string               `json:"title" bson:"title"`
	Content   string               `json:"content" bson:"content"`
	Category  string               `json:"category" bson:"category"`
	Tags      []string             `json:"tags" bson:"tags"`
	Replies   []ForumReply         `json:"replies" bson:"replies"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	IsDeleted bool                 `json:"isDeleted" bson:"isDeleted"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// ForumPostRequest holds the body for starting a thread
type ForumPostRequest struct {
	AuthorID string   `json:"authorId" validate:"required"`
	Title    string   `json:"title" validate:"required,max=300"`
	Content  string   `json:"content" validate:"required"`
	Category string   `json:"category" validate:"omitempty,oneof=general careers mentorship events off-topic"`
	Tags     []string `json:"tags"`
}

// ForumReplyRequest holds the body for replying to a thread
type ForumReplyRequest struct {
	AuthorID string `json:"authorId" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

// UserRef is a body carrying just a user id
type UserRef struct {
	UserID string `json:"userId" validate:"required"`
}

// Notification is pushed over the notifications websocket
type Notification struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// AdminStats are the collection counts shown in the back office
type AdminStats struct {
	Users        int64 `json:"users"`
	Students     int64 `json:"students"`
	Alumni       int64 `json:"alumni"`
	Jobs         int64 `json:"jobs"`
	Referrals    int64 `json:"referrals"`
	Mentorships  int64 `json:"mentorships"`
	Businesses   int64 `json:"businesses"`
	Achievements int64 `json:"achievements"`
	News         int64 `json:"news"`
	Subscribers  int64 `json:"subscribers"`
	UnreadInbox  int64 `json:"unreadContacts"`
}
