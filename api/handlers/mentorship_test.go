package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/alumnihub/alumni-api/api/handlers"
	"github.com/alumnihub/alumni-api/api/testhelpers"
	"github.com/alumnihub/alumni-api/databases"
	"github.com/alumnihub/alumni-api/models"
)

func newMentorship(db *testhelpers.MockDB, hub handlers.Notifier) handlers.Mentorship {
	return handlers.Mentorship{
		MDB: databases.NewMentorDatabase(db),
		XDB: databases.NewMatchDatabase(db),
		SDB: databases.NewSessionDatabase(db),
		GDB: databases.NewMessageDatabase(db),
		UDB: databases.NewUserDatabase(db),
		Hub: hub,
	}
}

func TestMentorship_CreateMatchHandler(t *testing.T) {
	mentorID := primitive.NewObjectID()
	menteeID := primitive.NewObjectID()
	body := `{"mentorId":"` + mentorID.Hex() + `","menteeId":"` + menteeID.Hex() + `","goals":"Break into data engineering"}`

	tests := []struct {
		name     string
		active   int64
		insert   error
		wantCode int
	}{
		{"free slot", 1, nil, http.StatusCreated},
		{"mentor full", 2, nil, http.StatusConflict},
		{"pair exists", 0, duplicateKey, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testhelpers.NewMockDB()
			db.C("mentorProfiles").On("FindOne", mock.Anything, bson.M{"user": mentorID, "isActive": true}).
				Return(testhelpers.Decodes(nil, func(v interface{}) {
					*v.(*models.MentorProfile) = models.MentorProfile{User: mentorID, MaxMentees: 2, IsActive: true}
				}))
			matches := db.C("mentorshipMatches")
			matches.On("CountDocuments", mock.Anything, bson.M{"mentor": mentorID, "status": models.MatchActive}).Return(tt.active, nil)
			if tt.insert != nil {
				matches.On("InsertOne", mock.Anything, mock.Anything).Return(nil, tt.insert)
			} else {
				matches.On("InsertOne", mock.Anything, mock.Anything).Return(testhelpers.Inserted(primitive.NewObjectID()), nil)
			}
			hub := &recordingHub{}
			h := newMentorship(db, hub)

			req := httptest.NewRequest(http.MethodPost, "/api/mentorship/matches", strings.NewReader(body))
			rr := httptest.NewRecorder()
			http.HandlerFunc(h.CreateMatchHandler).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			if tt.wantCode == http.StatusCreated {
				assert.Equal(t, "pending", decodeData(t, rr)["status"])
				require.Len(t, hub.sent, 1)
				assert.Equal(t, mentorID.Hex(), hub.sent[0].userID)
			} else {
				assert.Empty(t, hub.sent)
			}
			if tt.name == "mentor full" {
				matches.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestMentorship_CreateMatchHandlerSamePerson(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	h := newMentorship(testhelpers.NewMockDB(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/mentorship/matches",
		strings.NewReader(`{"mentorId":"`+id+`","menteeId":"`+id+`"}`))
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CreateMatchHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMentorship_UpdateMatchStatusHandler(t *testing.T) {
	mentorID := primitive.NewObjectID()
	menteeID := primitive.NewObjectID()
	matchID := primitive.NewObjectID()

	tests := []struct {
		name     string
		from     models.MatchStatus
		body     string
		active   int64
		wantCode int
	}{
		{"accept with a free slot", models.MatchPending, `{"status":"active"}`, 1, http.StatusOK},
		{"accept when full", models.MatchPending, `{"status":"active"}`, 2, http.StatusConflict},
		{"complete ignores capacity", models.MatchActive, `{"status":"completed"}`, 2, http.StatusOK},
		{"reject pending", models.MatchPending, `{"status":"rejected"}`, 2, http.StatusOK},
		{"reopen completed", models.MatchCompleted, `{"status":"active"}`, 0, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testhelpers.NewMockDB()
			db.C("mentorProfiles").On("FindOne", mock.Anything, bson.M{"user": mentorID}).
				Return(testhelpers.Decodes(nil, func(v interface{}) {
					*v.(*models.MentorProfile) = models.MentorProfile{User: mentorID, MaxMentees: 2, IsActive: true}
				}))
			matches := db.C("mentorshipMatches")
			matches.On("FindOne", mock.Anything, bson.M{"_id": matchID}).
				Return(testhelpers.Decodes(nil, func(v interface{}) {
					*v.(*models.MentorshipMatch) = models.MentorshipMatch{ID: matchID, Mentor: mentorID, Mentee: menteeID, Status: tt.from}
				}))
			matches.On("CountDocuments", mock.Anything, bson.M{"mentor": mentorID, "status": models.MatchActive}).Return(tt.active, nil)
			matches.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": matchID, "status": string(tt.from)}, mock.Anything, mock.Anything).
				Return(testhelpers.Decodes(nil, func(v interface{}) {
					*v.(*models.MentorshipMatch) = models.MentorshipMatch{ID: matchID, Mentor: mentorID, Mentee: menteeID}
				}))
			hub := &recordingHub{}
			h := newMentorship(db, hub)

			req := httptest.NewRequest(http.MethodPatch, "/api/mentorship/matches/x/status", strings.NewReader(tt.body))
			req = mux.SetURLVars(req, map[string]string{"id": matchID.Hex()})
			rr := httptest.NewRecorder()
			http.HandlerFunc(h.UpdateMatchStatusHandler).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			if tt.wantCode != http.StatusOK {
				matches.AssertNotCalled(t, "FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				assert.Empty(t, hub.sent)
				return
			}
			require.Len(t, hub.sent, 2)
			assert.ElementsMatch(t, []string{mentorID.Hex(), menteeID.Hex()},
				[]string{hub.sent[0].userID, hub.sent[1].userID})
		})
	}
}

func TestMentorship_MatchFeedbackHandler(t *testing.T) {
	mentorID := primitive.NewObjectID()
	menteeID := primitive.NewObjectID()
	matchID := primitive.NewObjectID()

	tests := []struct {
		name     string
		status   models.MatchStatus
		userID   primitive.ObjectID
		wantCode int
		field    string
	}{
		{"mentee on active", models.MatchActive, menteeID, http.StatusOK, "menteeFeedback"},
		{"mentor on completed", models.MatchCompleted, mentorID, http.StatusOK, "mentorFeedback"},
		{"outsider", models.MatchActive, primitive.NewObjectID(), http.StatusForbidden, ""},
		{"still pending", models.MatchPending, menteeID, http.StatusConflict, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testhelpers.NewMockDB()
			coll := db.C("mentorshipMatches")
			coll.On("FindOne", mock.Anything, bson.M{"_id": matchID}).
				Return(testhelpers.Decodes(nil, func(v interface{}) {
					*v.(*models.MentorshipMatch) = models.MentorshipMatch{ID: matchID, Mentor: mentorID, Mentee: menteeID, Status: tt.status}
				}))
			coll.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": matchID}, mock.Anything, mock.Anything).
				Return(testhelpers.Decodes(nil, func(v interface{}) {
					*v.(*models.MentorshipMatch) = models.MentorshipMatch{ID: matchID, Status: tt.status}
				})).
				Run(func(args mock.Arguments) {
					set := args.Get(2).(bson.M)["$set"].(bson.M)
					fb, ok := set[tt.field].(models.MentorshipFeedback)
					require.True(t, ok, "expected %s to be set", tt.field)
					assert.Equal(t, 4, fb.Rating)
				})
			h := newMentorship(db, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/mentorship/matches/x/feedback",
				strings.NewReader(`{"userId":"`+tt.userID.Hex()+`","rating":4,"comment":"Very helpful"}`))
			req = mux.SetURLVars(req, map[string]string{"id": matchID.Hex()})
			rr := httptest.NewRecorder()
			http.HandlerFunc(h.MatchFeedbackHandler).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			if tt.wantCode != http.StatusOK {
				coll.AssertNotCalled(t, "FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestMentorship_SendMessageHandler(t *testing.T) {
	mentorID := primitive.NewObjectID()
	menteeID := primitive.NewObjectID()
	matchID := primitive.NewObjectID()

	tests := []struct {
		name     string
		status   models.MatchStatus
		sender   primitive.ObjectID
		wantCode int
	}{
		{"mentee writes", models.MatchActive, menteeID, http.StatusCreated},
		{"pending match", models.MatchPending, mentorID, http.StatusCreated},
		{"closed match", models.MatchCancelled, menteeID, http.StatusConflict},
		{"outsider", models.MatchActive, primitive.NewObjectID(), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testhelpers.NewMockDB()
			db.C("mentorshipMatches").On("FindOne", mock.Anything, bson.M{"_id": matchID}).
				Return(testhelpers.Decodes(nil, func(v interface{}) {
					*v.(*models.MentorshipMatch) = models.MentorshipMatch{ID: matchID, Mentor: mentorID, Mentee: menteeID, Status: tt.status}
				}))
			db.C("mentorshipMessages").On("InsertOne", mock.Anything, mock.Anything).
				Return(testhelpers.Inserted(primitive.NewObjectID()), nil)
			hub := &recordingHub{}
			h := newMentorship(db, hub)

			req := httptest.NewRequest(http.MethodPost, "/api/mentorship/matches/x/messages",
				strings.NewReader(`{"senderId":"`+tt.sender.Hex()+`","content":"See you Thursday"}`))
			req = mux.SetURLVars(req, map[string]string{"id": matchID.Hex()})
			rr := httptest.NewRecorder()
			http.HandlerFunc(h.SendMessageHandler).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			if tt.wantCode == http.StatusCreated {
				require.Len(t, hub.sent, 1)
				want := mentorID
				if tt.sender == mentorID {
					want = menteeID
				}
				assert.Equal(t, want.Hex(), hub.sent[0].userID)
				assert.Equal(t, want.Hex(), decodeData(t, rr)["recipient"])
			}
		})
	}
}

func TestMentorship_CreateMentorHandler(t *testing.T) {
	userID := primitive.NewObjectID()
	body := `{"userId":"` + userID.Hex() + `","expertise":[" Go ","","Kubernetes"],"maxMentees":3}`

	tests := []struct {
		name     string
		userErr  error
		insert   error
		wantCode int
	}{
		{"created", nil, nil, http.StatusCreated},
		{"second profile", nil, duplicateKey, http.StatusConflict},
		{"unknown user", mongo.ErrNoDocuments, nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testhelpers.NewMockDB()
			db.C("users").On("FindOne", mock.Anything, bson.M{"_id": userID, "isDeleted": false}).
				Return(testhelpers.Decodes(tt.userErr, func(v interface{}) {
					*v.(*models.User) = models.User{ID: userID}
				}))
			profiles := db.C("mentorProfiles")
			if tt.insert != nil {
				profiles.On("InsertOne", mock.Anything, mock.Anything).Return(nil, tt.insert)
			} else {
				profiles.On("InsertOne", mock.Anything, mock.Anything).Return(testhelpers.Inserted(primitive.NewObjectID()), nil)
			}
			h := newMentorship(db, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/mentorship/mentors", strings.NewReader(body))
			rr := httptest.NewRecorder()
			http.HandlerFunc(h.CreateMentorHandler).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			if tt.wantCode != http.StatusCreated {
				return
			}
			var got models.MentorProfile
			require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &got))
			assert.Equal(t, []string{"Go", "Kubernetes"}, got.Expertise)
			assert.Equal(t, "flexible", got.Availability)
			assert.Equal(t, 3, got.MaxMentees)
			assert.True(t, got.IsActive)
		})
	}
}

func TestMentorship_UpdateMentorHandler(t *testing.T) {
	profileID := primitive.NewObjectID()
	db := testhelpers.NewMockDB()
	db.C("mentorProfiles").On("FindOneAndUpdate", mock.Anything, bson.M{"_id": profileID}, mock.Anything, mock.Anything).
		Return(testhelpers.Decodes(nil, func(v interface{}) {
			*v.(*models.MentorProfile) = models.MentorProfile{ID: profileID, MaxMentees: 1}
		})).
		Run(func(args mock.Arguments) {
			set := args.Get(2).(bson.M)["$set"].(bson.M)
			assert.Equal(t, 1, set["maxMentees"])
			assert.Equal(t, false, set["isActive"])
			assert.Equal(t, "monthly", set["availability"])
		})
	h := newMentorship(db, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/mentorship/mentors/x",
		strings.NewReader(`{"userId":"`+primitive.NewObjectID().Hex()+`","expertise":["go"],"maxMentees":1,"availability":"monthly","isActive":false}`))
	req = mux.SetURLVars(req, map[string]string{"id": profileID.Hex()})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.UpdateMentorHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestMentorship_UpdateMentorHandlerTooManyMentees(t *testing.T) {
	h := newMentorship(testhelpers.NewMockDB(), nil)

	req := httptest.NewRequest(http.MethodPut, "/api/mentorship/mentors/x",
		strings.NewReader(`{"userId":"`+primitive.NewObjectID().Hex()+`","expertise":["go"],"maxMentees":50}`))
	req = mux.SetURLVars(req, map[string]string{"id": primitive.NewObjectID().Hex()})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.UpdateMentorHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMentorship_MentorSuggestionsHandler(t *testing.T) {
	userID := primitive.NewObjectID()
	mentors := []models.MentorProfile{
		{ID: primitive.NewObjectID(), Expertise: []string{"Java"}},
		{ID: primitive.NewObjectID(), Expertise: []string{"kubernetes", "react"}},
		{ID: primitive.NewObjectID(), Expertise: []string{"go"}},
	}

	tests := []struct {
		name  string
		query string
		want  [][]string
		pct   []int
	}{
		{"best first, no zero matches", "", [][]string{{"go"}, {"kubernetes", "react"}}, []int{100, 50}},
		{"limit", "?limit=1", [][]string{{"go"}}, []int{100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testhelpers.NewMockDB()
			db.C("users").On("FindOne", mock.Anything, bson.M{"_id": userID, "isDeleted": false}).
				Return(testhelpers.Decodes(nil, func(v interface{}) {
					*v.(*models.User) = models.User{ID: userID, Skills: []string{"Go", "Kubernetes"}}
				}))
			db.C("mentorProfiles").On("Find", mock.Anything, bson.M{"isActive": true, "user": bson.M{"$ne": userID}}).
				Return(testhelpers.Cursor(func(v interface{}) {
					*v.(*[]models.MentorProfile) = mentors
				}), nil)
			h := newMentorship(db, nil)

			req := httptest.NewRequest(http.MethodGet, "/api/mentorship/suggestions/x"+tt.query, nil)
			req = mux.SetURLVars(req, map[string]string{"userId": userID.Hex()})
			rr := httptest.NewRecorder()
			http.HandlerFunc(h.MentorSuggestionsHandler).ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			var got []models.MentorSuggestion
			require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &got))
			require.Len(t, got, len(tt.want))
			for i := range got {
				assert.Equal(t, tt.want[i], got[i].Mentor.Expertise)
				assert.Equal(t, tt.pct[i], got[i].MatchPercentage)
			}
		})
	}
}

func TestMentorship_CreateSessionHandler(t *testing.T) {
	mentorID := primitive.NewObjectID()
	menteeID := primitive.NewObjectID()
	matchID := primitive.NewObjectID()
	body := `{"scheduledAt":"2026-11-02T15:00:00+01:00","topic":"Career plan"}`

	tests := []struct {
		name     string
		status   models.MatchStatus
		wantCode int
	}{
		{"active match", models.MatchActive, http.StatusCreated},
		{"pending match", models.MatchPending, http.StatusConflict},
		{"completed match", models.MatchCompleted, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testhelpers.NewMockDB()
			db.C("mentorshipMatches").On("FindOne", mock.Anything, bson.M{"_id": matchID}).
				Return(testhelpers.Decodes(nil, func(v interface{}) {
					*v.(*models.MentorshipMatch) = models.MentorshipMatch{ID: matchID, Mentor: mentorID, Mentee: menteeID, Status: tt.status}
				}))
			sessions := db.C("mentorshipSessions")
			sessions.On("InsertOne", mock.Anything, mock.Anything).Return(testhelpers.Inserted(primitive.NewObjectID()), nil)
			hub := &recordingHub{}
			h := newMentorship(db, hub)

			req := httptest.NewRequest(http.MethodPost, "/api/mentorship/matches/x/sessions", strings.NewReader(body))
			req = mux.SetURLVars(req, map[string]string{"id": matchID.Hex()})
			rr := httptest.NewRecorder()
			http.HandlerFunc(h.CreateSessionHandler).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			if tt.wantCode != http.StatusCreated {
				sessions.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
				assert.Empty(t, hub.sent)
				return
			}
			var got models.MentorshipSession
			require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &got))
			assert.Equal(t, models.SessionScheduled, got.Status)
			assert.Equal(t, 60, got.DurationMinutes)
			assert.Equal(t, time.Date(2026, 11, 2, 14, 0, 0, 0, time.UTC), got.ScheduledAt.UTC())
			assert.Len(t, hub.sent, 2)
		})
	}
}

func TestMentorship_UpdateSessionStatusHandler(t *testing.T) {
	sessionID := primitive.NewObjectID()

	tests := []struct {
		name     string
		from     models.SessionStatus
		body     string
		wantCode int
	}{
		{"complete with notes", models.SessionScheduled, `{"status":"completed","note":"Reviewed CV"}`, http.StatusOK},
		{"cancel", models.SessionScheduled, `{"status":"cancelled"}`, http.StatusOK},
		{"already completed", models.SessionCompleted, `{"status":"cancelled"}`, http.StatusConflict},
		{"unknown status", models.SessionScheduled, `{"status":"missed"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testhelpers.NewMockDB()
			coll := db.C("mentorshipSessions")
			coll.On("FindOne", mock.Anything, bson.M{"_id": sessionID}).
				Return(testhelpers.Decodes(nil, func(v interface{}) {
					*v.(*models.MentorshipSession) = models.MentorshipSession{ID: sessionID, Status: tt.from}
				}))
			coll.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": sessionID, "status": string(tt.from)}, mock.Anything, mock.Anything).
				Return(testhelpers.Decodes(nil, func(v interface{}) {
					*v.(*models.MentorshipSession) = models.MentorshipSession{ID: sessionID}
				})).
				Run(func(args mock.Arguments) {
					set := args.Get(2).(bson.M)["$set"].(bson.M)
					assert.Contains(t, tt.body, string(set["status"].(models.SessionStatus)))
					if strings.Contains(tt.body, "note") {
						assert.Equal(t, "Reviewed CV", set["notes"])
					} else {
						assert.NotContains(t, set, "notes")
					}
				})
			h := newMentorship(db, nil)

			req := httptest.NewRequest(http.MethodPatch, "/api/mentorship/sessions/x/status", strings.NewReader(tt.body))
			req = mux.SetURLVars(req, map[string]string{"id": sessionID.Hex()})
			rr := httptest.NewRecorder()
			http.HandlerFunc(h.UpdateSessionStatusHandler).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			if tt.wantCode != http.StatusOK {
				coll.AssertNotCalled(t, "FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}
