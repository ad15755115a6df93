package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidStatus is returned for a status value outside its enum
	ErrInvalidStatus = errors.New("invalid status")
	// ErrIllegalTransition is matched by every *TransitionError
	ErrIllegalTransition = errors.New("illegal status transition")
)

// TransitionError describes a status change that the workflow does not allow
type TransitionError struct {
	Kind string
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s status cannot change from %q to %q", e.Kind, e.From, e.To)
}

// Is lets errors.Is(err, ErrIllegalTransition) match
func (e *TransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

func checkTransition(kind, from, to string, fromValid, toValid bool, allowed []string) error {
	if !toValid {
		return fmt.Errorf("%w: %s status %q", ErrInvalidStatus, kind, to)
	}
	if !fromValid {
		return fmt.Errorf("%w: stored %s status %q", ErrInvalidStatus, kind, from)
	}
	for _, a := range allowed {
		if a == to {
			return nil
		}
	}
	return &TransitionError{Kind: kind, From: from, To: to}
}

// ReferralStatus is the hiring stage of a referred candidate
type ReferralStatus string

// Referral statuses
const (
	ReferralPending     ReferralStatus = "pending"
	ReferralReviewed    ReferralStatus = "reviewed"
	ReferralShortlisted ReferralStatus = "shortlisted"
	ReferralInterviewed ReferralStatus = "interviewed"
	ReferralOffered     ReferralStatus = "offered"
	ReferralAccepted    ReferralStatus = "accepted"
	ReferralRejected    ReferralStatus = "rejected"
	ReferralWithdrawn   ReferralStatus = "withdrawn"
)

// Every non-terminal stage can also end in rejected or withdrawn.
var referralTransitions = map[ReferralStatus][]string{
	ReferralPending:     {string(ReferralReviewed), string(ReferralRejected), string(ReferralWithdrawn)},
	ReferralReviewed:    {string(ReferralShortlisted), string(ReferralRejected), string(ReferralWithdrawn)},
	ReferralShortlisted: {string(ReferralInterviewed), string(ReferralRejected), string(ReferralWithdrawn)},
	ReferralInterviewed: {string(ReferralOffered), string(ReferralRejected), string(ReferralWithdrawn)},
	ReferralOffered:     {string(ReferralAccepted), string(ReferralRejected), string(ReferralWithdrawn)},
	ReferralAccepted:    nil,
	ReferralRejected:    nil,
	ReferralWithdrawn:   nil,
}

// Valid reports whether s is a known referral status
func (s ReferralStatus) Valid() bool {
	_, ok := referralTransitions[s]
	return ok
}

// Terminal reports whether no further change is possible
func (s ReferralStatus) Terminal() bool {
	return s.Valid() && len(referralTransitions[s]) == 0
}

// ValidateReferralTransition returns nil when a referral may move from one status to another
func ValidateReferralTransition(from, to ReferralStatus) error {
	return checkTransition("referral", string(from), string(to), from.Valid(), to.Valid(), referralTransitions[from])
}

// ApplicationStatus is the state of an applicant record embedded in a job
type ApplicationStatus string

// Application statuses
const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

var applicationTransitions = map[ApplicationStatus][]string{
	ApplicationPending:  {string(ApplicationAccepted), string(ApplicationRejected)},
	ApplicationAccepted: {string(ApplicationPending)},
	ApplicationRejected: {string(ApplicationPending)},
}

// Valid reports whether s is a known application status
func (s ApplicationStatus) Valid() bool {
	_, ok := applicationTransitions[s]
	return ok
}

// ValidateApplicationTransition returns nil when an applicant may move from one status to another.
// A decided application can only go back to pending.
func ValidateApplicationTransition(from, to ApplicationStatus) error {
	return checkTransition("application", string(from), string(to), from.Valid(), to.Valid(), applicationTransitions[from])
}

// MatchStatus is the lifecycle of a mentorship match
type MatchStatus string

// Mentorship match statuses
const (
	MatchPending   MatchStatus = "pending"
	MatchActive    MatchStatus = "active"
	MatchCompleted MatchStatus = "completed"
	MatchRejected  MatchStatus = "rejected"
	MatchCancelled MatchStatus = "cancelled"
)

var matchTransitions = map[MatchStatus][]string{
	MatchPending:   {string(MatchActive), string(MatchRejected), string(MatchCancelled)},
	MatchActive:    {string(MatchCompleted), string(MatchCancelled)},
	MatchCompleted: nil,
	MatchRejected:  nil,
	MatchCancelled: nil,
}

// Valid reports whether s is a known match status
func (s MatchStatus) Valid() bool {
	_, ok := matchTransitions[s]
	return ok
}

// ValidateMatchTransition returns nil when a mentorship match may move from one status to another
func ValidateMatchTransition(from, to MatchStatus) error {
	return checkTransition("mentorship", string(from), string(to), from.Valid(), to.Valid(), matchTransitions[from])
}

// SessionStatus is the lifecycle of a scheduled mentorship session
type SessionStatus string

// Mentorship session statuses
const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

var sessionTransitions = map[SessionStatus][]string{
	SessionScheduled: {string(SessionCompleted), string(SessionCancelled)},
	SessionCompleted: nil,
	SessionCancelled: nil,
}

// Valid reports whether s is a known session status
func (s SessionStatus) Valid() bool {
	_, ok := sessionTransitions[s]
	return ok
}

// ValidateSessionTransition returns nil when a session may move from one status to another
func ValidateSessionTransition(from, to SessionStatus) error {
	return checkTransition("session", string(from), string(to), from.Valid(), to.Valid(), sessionTransitions[from])
}

// StatusChange records one step in a referral's history
type StatusChange struct {
	From      string    `json:"from" bson:"from"`
	To        string    `json:"to" bson:"to"`
	Note      string    `json:"note,omitempty" bson:"note,omitempty"`
	ChangedBy string    `json:"changedBy,omitempty" bson:"changedBy,omitempty"`
	ChangedAt time.Time `json:"changedAt" bson:"changedAt"`
}
