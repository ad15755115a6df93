package databases

// go generate: mockery --name MentorDatabase --name MatchDatabase --name SessionDatabase --name MessageDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alumnihub/alumni-api/models"
)

const (
	mentorName  = "mentorProfiles"
	matchName   = "mentorshipMatches"
	sessionName = "mentorshipSessions"
	messageName = "mentorshipMessages"
)

// MentorDatabase contains the methods to use with the mentor profile database
type MentorDatabase interface {
	Store[models.MentorProfile]
}

// MatchDatabase contains the methods to use with the mentorship match database
type MatchDatabase interface {
	Store[models.MentorshipMatch]
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.MatchStatus, at time.Time) (*models.MentorshipMatch, error)
}

// SessionDatabase contains the methods to use with the mentorship session database
type SessionDatabase interface {
	Store[models.MentorshipSession]
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.SessionStatus, notes string, at time.Time) (*models.MentorshipSession, error)
}

// MessageDatabase contains the methods to use with the mentorship message database
type MessageDatabase interface {
	Store[models.MentorshipMessage]
}

type mentorDatabase struct {
	collection[models.MentorProfile]
}

type matchDatabase struct {
	collection[models.MentorshipMatch]
}

type sessionDatabase struct {
	collection[models.MentorshipSession]
}

type messageDatabase struct {
	collection[models.MentorshipMessage]
}

// NewMentorDatabase initializes a new instance of mentor database with the provided db connection
func NewMentorDatabase(db DatabaseHelper) MentorDatabase {
	return &mentorDatabase{collection[models.MentorProfile]{db: db, name: mentorName}}
}

// NewMatchDatabase initializes a new instance of match database with the provided db connection
func NewMatchDatabase(db DatabaseHelper) MatchDatabase {
	return &matchDatabase{collection[models.MentorshipMatch]{db: db, name: matchName}}
}

// NewSessionDatabase initializes a new instance of session database with the provided db connection
func NewSessionDatabase(db DatabaseHelper) SessionDatabase {
	return &sessionDatabase{collection[models.MentorshipSession]{db: db, name: sessionName}}
}

// NewMessageDatabase initializes a new instance of message database with the provided db connection
func NewMessageDatabase(db DatabaseHelper) MessageDatabase {
	return &messageDatabase{collection[models.MentorshipMessage]{db: db, name: messageName}}
}

// UpdateStatus moves a match on, stamping startedAt when it becomes active and
// endedAt when it finishes
func (m *matchDatabase) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.MatchStatus, at time.Time) (*models.MentorshipMatch, error) {
	set := bson.M{"status": to, "updatedAt": at}
	switch to {
	case models.MatchActive:
		set["startedAt"] = at
	case models.MatchCompleted, models.MatchCancelled:
		set["endedAt"] = at
	}
	return m.compareAndSetStatus(ctx, id, string(from), bson.M{"$set": set})
}

func (s *sessionDatabase) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.SessionStatus, notes string, at time.Time) (*models.MentorshipSession, error) {
	set := bson.M{"status": to, "updatedAt": at}
	if notes != "" {
		set["notes"] = notes
	}
	return s.compareAndSetStatus(ctx, id, string(from), bson.M{"$set": set})
}
