package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JobReferral holds the structure for the jobReferrals collection in mongo
type JobReferral struct {
	ID                   primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Job                  primitive.ObjectID `json:"job" bson:"job"`
	Referrer             primitive.ObjectID `json:"referrer" bson:"referrer"`
	CandidateName        string             `json:"candidateName" bson:"candidateName"`
	CandidateEmail       string             `json:"candidateEmail" bson:"candidateEmail"`
	CandidatePhone       string             `json:"candidatePhone,omitempty" bson:"candidatePhone,omitempty"`
	CandidateLinkedIn    string             `json:"candidateLinkedIn,omitempty" bson:"candidateLinkedIn,omitempty"`
	ResumeLink           string             `json:"resumeLink,omitempty" bson:"resumeLink,omitempty"`
	Relationship         string             `json:"relationship,omitempty" bson:"relationship,omitempty"`
	Notes                string             `json:"notes,omitempty" bson:"notes,omitempty"`
	Status               ReferralStatus     `json:"status" bson:"status"`
	StatusHistory        []StatusChange     `json:"statusHistory" bson:"statusHistory"`
	ReminderSent         bool               `json:"reminderSent" bson:"reminderSent"`
	LastNotificationSent *time.Time         `json:"lastNotificationSent,omitempty" bson:"lastNotificationSent,omitempty"`
	CreatedAt            time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CreateReferralRequest holds the body for referring a candidate to a job
type CreateReferralRequest struct {
	ReferrerID        string `json:"referrerId" validate:"required"`
	CandidateName     string `json:"candidateName" validate:"required"`
	CandidateEmail    string `json:"candidateEmail" validate:"required,email"`
	CandidatePhone    string `json:"candidatePhone"`
	CandidateLinkedIn string `json:"candidateLinkedIn"`
	ResumeLink        string `json:"resumeLink" validate:"omitempty,url"`
	Relationship      string `json:"relationship"`
	Notes             string `json:"notes"`
}
