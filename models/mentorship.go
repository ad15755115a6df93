package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MentorProfile holds the structure for the mentorProfiles collection, one per user
type MentorProfile struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User         primitive.ObjectID `json:"user" bson:"user"`
	Expertise    []string           `json:"expertise" bson:"expertise"`
	Industry     string             `json:"industry,omitempty" bson:"industry,omitempty"`
	Availability string             `json:"availability" bson:"availability"`
	MaxMentees   int                `json:"maxMentees" bson:"maxMentees"`
	Bio          string             `json:"bio,omitempty" bson:"bio,omitempty"`
	IsActive     bool               `json:"isActive" bson:"isActive"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// MentorProfileRequest holds the body for creating or editing a mentor profile
type MentorProfileRequest struct {
	UserID       string   `json:"userId" validate:"required"`
	Expertise    []string `json:"expertise" validate:"required,min=1"`
	Industry     string   `json:"industry"`
	Availability string   `json:"availability" validate:"omitempty,oneof=weekly biweekly monthly flexible"`
	MaxMentees   int      `json:"maxMentees" validate:"gte=0,lte=20"`
	Bio          string   `json:"bio"`
	IsActive     *bool    `json:"isActive"`
}

// MentorSuggestion is a mentor ranked against a mentee's skills
type MentorSuggestion struct {
	Mentor          MentorProfile `json:"mentor"`
	MatchPercentage int           `json:"matchPercentage"`
}

// MentorshipFeedback is left by either side of a match
type MentorshipFeedback struct {
	Rating      int       `json:"rating" bson:"rating"`
	Comment     string    `json:"comment,omitempty" bson:"comment,omitempty"`
	SubmittedAt time.Time `json:"submittedAt" bson:"submittedAt"`
}

// MentorshipMatch holds the structure for the mentorshipMatches collection, one per (mentor, mentee)
type MentorshipMatch struct {
	ID             primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	Mentor         primitive.ObjectID  `json:"mentor" bson:"mentor"`
	Mentee         primitive.ObjectID  `json:"mentee" bson:"mentee"`
	Goals          string              `json:"goals,omitempty" bson:"goals,omitempty"`
	Status         MatchStatus         `json:"status" bson:"status"`
	MentorFeedback *MentorshipFeedback `json:"mentorFeedback,omitempty" bson:"mentorFeedback,omitempty"`
	MenteeFeedback *MentorshipFeedback `json:"menteeFeedback,omitempty" bson:"menteeFeedback,omitempty"`
	StartedAt      *time.Time          `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	EndedAt        *time.Time          `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// Participant reports whether userID is the mentor or mentee of the match
func (m MentorshipMatch) Participant(userID primitive.ObjectID) bool {
	return m.Mentor == userID || m.Mentee == userID
}

// Counterpart returns the other side of the match
func (m MentorshipMatch) Counterpart(userID primitive.ObjectID) primitive.ObjectID {
	if m.Mentor == userID {
		return m.Mentee
	}
	return m.Mentor
}

// MatchRequest holds the body for requesting a mentorship
type MatchRequest struct {
	MentorID string `json:"mentorId" validate:"required"`
	MenteeID string `json:"menteeId" validate:"required,nefield=MentorID"`
	Goals    string `json:"goals"`
}

// FeedbackRequest holds the body for rating a mentorship
type FeedbackRequest struct {
	UserID  string `json:"userId" validate:"required"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}

// MentorshipSession holds the structure for the mentorshipSessions collection
type MentorshipSession struct {
	ID              primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Match           primitive.ObjectID `json:"match" bson:"match"`
	ScheduledAt     time.Time          `json:"scheduledAt" bson:"scheduledAt"`
	DurationMinutes int                `json:"durationMinutes" bson:"durationMinutes"`
	Topic           string             `json:"topic" bson:"topic"`
	MeetingLink     string             `json:"meetingLink,omitempty" bson:"meetingLink,omitempty"`
	Status          SessionStatus      `json:"status" bson:"status"`
	Notes           string             `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// SessionRequest holds the body for scheduling a session
type SessionRequest struct {
	ScheduledAt     time.Time `json:"scheduledAt" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"gte=0,lte=480"`
	Topic           string    `json:"topic" validate:"required"`
	MeetingLink     string    `json:"meetingLink" validate:"omitempty,url"`
}

// MentorshipMessage holds the structure for the mentorshipMessages collection
type MentorshipMessage struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Match     primitive.ObjectID `json:"match" bson:"match"`
	Sender    primitive.ObjectID `json:"sender" bson:"sender"`
	Recipient primitive.ObjectID `json:"recipient" bson:"recipient"`
	Content   string             `json:"content" bson:"content"`
	ReadAt    *time.Time         `json:"readAt,omitempty" bson:"readAt,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// MessageRequest holds the body for sending a mentorship message
type MessageRequest struct {
	SenderID string `json:"senderId" validate:"required"`
	Content  string `json:"content" validate:"required,max=5000"`
}

// SkillList exposes the mentor's expertise for ranking
func (m MentorProfile) SkillList() []string {
	return m.Expertise
}
