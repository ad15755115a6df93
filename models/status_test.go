package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateReferralTransition(t *testing.T) {
	tests := []struct {
		from, to ReferralStatus
		ok       bool
	}{
		{ReferralPending, ReferralReviewed, true},
		{ReferralReviewed, ReferralShortlisted, true},
		{ReferralShortlisted, ReferralInterviewed, true},
		{ReferralInterviewed, ReferralOffered, true},
		{ReferralOffered, ReferralAccepted, true},
		{ReferralPending, ReferralRejected, true},
		{ReferralInterviewed, ReferralWithdrawn, true},
		{ReferralPending, ReferralInterviewed, false},
		{ReferralPending, ReferralPending, false},
		{ReferralAccepted, ReferralRejected, false},
		{ReferralRejected, ReferralPending, false},
		{ReferralWithdrawn, ReferralReviewed, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := ValidateReferralTransition(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var te *TransitionError
			assert.True(t, errors.As(err, &te))
			assert.True(t, errors.Is(err, ErrIllegalTransition))
			assert.Equal(t, string(tt.from), te.From)
			assert.Equal(t, string(tt.to), te.To)
		})
	}
}

func TestValidateReferralTransition_UnknownStatus(t *testing.T) {
	err := ValidateReferralTransition(ReferralPending, "hired")
	assert.True(t, errors.Is(err, ErrInvalidStatus))
	assert.False(t, errors.Is(err, ErrIllegalTransition))

	err = ValidateReferralTransition("", ReferralReviewed)
	assert.True(t, errors.Is(err, ErrInvalidStatus))
}

func TestReferralStatus_Terminal(t *testing.T) {
	assert.True(t, ReferralAccepted.Terminal())
	assert.True(t, ReferralRejected.Terminal())
	assert.True(t, ReferralWithdrawn.Terminal())
	assert.False(t, ReferralOffered.Terminal())
	assert.False(t, ReferralStatus("bogus").Terminal())
}

func TestValidateApplicationTransition(t *testing.T) {
	assert.NoError(t, ValidateApplicationTransition(ApplicationPending, ApplicationAccepted))
	assert.NoError(t, ValidateApplicationTransition(ApplicationPending, ApplicationRejected))
	assert.NoError(t, ValidateApplicationTransition(ApplicationAccepted, ApplicationPending))
	assert.NoError(t, ValidateApplicationTransition(ApplicationRejected, ApplicationPending))

	assert.ErrorIs(t, ValidateApplicationTransition(ApplicationAccepted, ApplicationRejected), ErrIllegalTransition)
	assert.ErrorIs(t, ValidateApplicationTransition(ApplicationPending, ApplicationPending), ErrIllegalTransition)
	assert.ErrorIs(t, ValidateApplicationTransition(ApplicationPending, "shortlisted"), ErrInvalidStatus)
}

func TestValidateMatchTransition(t *testing.T) {
	assert.NoError(t, ValidateMatchTransition(MatchPending, MatchActive))
	assert.NoError(t, ValidateMatchTransition(MatchActive, MatchCompleted))
	assert.NoError(t, ValidateMatchTransition(MatchActive, MatchCancelled))
	assert.ErrorIs(t, ValidateMatchTransition(MatchPending, MatchCompleted), ErrIllegalTransition)
	assert.ErrorIs(t, ValidateMatchTransition(MatchCompleted, MatchActive), ErrIllegalTransition)
}

func TestValidateSessionTransition(t *testing.T) {
	assert.NoError(t, ValidateSessionTransition(SessionScheduled, SessionCompleted))
	assert.ErrorIs(t, ValidateSessionTransition(SessionCancelled, SessionScheduled), ErrIllegalTransition)
}

func TestTransitionError_Message(t *testing.T) {
	err := ValidateMatchTransition(MatchRejected, MatchActive)
	assert.EqualError(t, err, `mentorship status cannot change from "rejected" to "active"`)
}
