package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InteractionType is what a user did with a job
type InteractionType string

// Interaction types
const (
	InteractionViewed    InteractionType = "viewed"
	InteractionSaved     InteractionType = "saved"
	InteractionApplied   InteractionType = "applied"
	InteractionDismissed InteractionType = "dismissed"
)

// JobInteraction holds the structure for the jobInteractions collection, one per (user, job)
type JobInteraction struct {
	ID              primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User            primitive.ObjectID `json:"user" bson:"user"`
	Job             primitive.ObjectID `json:"job" bson:"job"`
	Type            InteractionType    `json:"type" bson:"type"`
	MatchPercentage int                `json:"matchPercentage" bson:"matchPercentage"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// InteractionRequest holds the body for recording an interaction
type InteractionRequest struct {
	UserID string          `json:"userId" validate:"required"`
	Type   InteractionType `json:"type" validate:"required,oneof=viewed saved applied dismissed"`
}

// JobPreference holds the structure for the jobPreferences collection, one per user
type JobPreference struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User       primitive.ObjectID `json:"user" bson:"user"`
	Skills     []string           `json:"skills" bson:"skills"`
	JobTypes   []string           `json:"jobTypes" bson:"jobTypes"`
	Locations  []string           `json:"locations" bson:"locations"`
	RemoteOnly bool               `json:"remoteOnly" bson:"remoteOnly"`
	MinSalary  int                `json:"minSalary,omitempty" bson:"minSalary,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PreferenceRequest holds the body for saving job preferences
type PreferenceRequest struct {
	Skills     []string `json:"skills"`
	JobTypes   []string `json:"jobTypes" validate:"dive,oneof=full-time part-time internship contract"`
	Locations  []string `json:"locations"`
	RemoteOnly bool     `json:"remoteOnly"`
	MinSalary  int      `json:"minSalary" validate:"gte=0"`
}

// NotificationFrequency is how often a subscription digest goes out
type NotificationFrequency string

// Notification frequencies
const (
	FrequencyDaily  NotificationFrequency = "daily"
	FrequencyWeekly NotificationFrequency = "weekly"
)

// Interval returns the minimum gap between two digests
func (f NotificationFrequency) Interval() time.Duration {
	if f == FrequencyWeekly {
		return 7 * 24 * time.Hour
	}
	return 24 * time.Hour
}

// JobSubscription holds the structure for the jobSubscriptions collection
type JobSubscription struct {
	ID                   primitive.ObjectID    `json:"_id" bson:"_id,omitempty"`
	User                 primitive.ObjectID    `json:"user" bson:"user"`
	Email                string                `json:"email" bson:"email"`
	Keywords             []string              `json:"keywords" bson:"keywords"`
	Skills               []string              `json:"skills" bson:"skills"`
	Frequency            NotificationFrequency `json:"notificationFrequency" bson:"notificationFrequency"`
	IsActive             bool                  `json:"isActive" bson:"isActive"`
	LastNotificationSent *time.Time            `json:"lastNotificationSent,omitempty" bson:"lastNotificationSent,omitempty"`
	CreatedAt            time.Time             `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time             `json:"updatedAt" bson:"updatedAt"`
}

// SubscriptionRequest holds the body for creating a subscription
type SubscriptionRequest struct {
	UserID    string                `json:"userId" validate:"required"`
	Email     string                `json:"email" validate:"required,email"`
	Keywords  []string              `json:"keywords"`
	Skills    []string              `json:"skills"`
	Frequency NotificationFrequency `json:"notificationFrequency" validate:"omitempty,oneof=daily weekly"`
}
