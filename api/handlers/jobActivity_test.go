package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

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

func newJobActivity(db *testhelpers.MockDB) handlers.JobActivity {
	return handlers.JobActivity{
		DB:  databases.NewInteractionDatabase(db),
		PDB: databases.NewPreferenceDatabase(db),
		SDB: databases.NewSubscriptionDatabase(db),
		JDB: databases.NewJobDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}
}

func TestJobActivity_SavePreferencesHandler(t *testing.T) {
	userID := primitive.NewObjectID()
	db := testhelpers.NewMockDB()
	db.C("jobPreferences").On("FindOneAndUpdate", mock.Anything, bson.M{"user": userID}, mock.Anything, mock.Anything).
		Return(testhelpers.Decodes(nil, func(v interface{}) {
			*v.(*models.JobPreference) = models.JobPreference{User: userID, Skills: []string{"Go", "SQL"}}
		})).
		Run(func(args mock.Arguments) {
			update := args.Get(2).(bson.M)
			set := update["$set"].(bson.M)
			assert.Equal(t, []string{"Go", "SQL"}, set["skills"])
			assert.Equal(t, true, set["remoteOnly"])
			onInsert := update["$setOnInsert"].(bson.M)
			assert.Equal(t, userID, onInsert["user"])
			assert.Contains(t, onInsert, "createdAt")
		})
	h := newJobActivity(db)

	req := httptest.NewRequest(http.MethodPut, "/api/jobs/preferences/x",
		strings.NewReader(`{"skills":[" Go","SQL",""],"jobTypes":["full-time"],"remoteOnly":true}`))
	req = mux.SetURLVars(req, map[string]string{"userId": userID.Hex()})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.SavePreferencesHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, userID.Hex(), decodeData(t, rr)["user"])
}

func TestJobActivity_SavePreferencesHandlerBadJobType(t *testing.T) {
	h := newJobActivity(testhelpers.NewMockDB())

	req := httptest.NewRequest(http.MethodPut, "/api/jobs/preferences/x", strings.NewReader(`{"jobTypes":["gig"]}`))
	req = mux.SetURLVars(req, map[string]string{"userId": primitive.NewObjectID().Hex()})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.SavePreferencesHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestJobActivity_CreateSubscriptionHandler(t *testing.T) {
	userID := primitive.NewObjectID()

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantFreq string
	}{
		{"weekly by default", `{"userId":"` + userID.Hex() + `","email":"ada@example.org","keywords":["go"]}`, http.StatusCreated, "weekly"},
		{"daily", `{"userId":"` + userID.Hex() + `","email":"ada@example.org","notificationFrequency":"daily"}`, http.StatusCreated, "daily"},
		{"hourly is not offered", `{"userId":"` + userID.Hex() + `","email":"ada@example.org","notificationFrequency":"hourly"}`, http.StatusBadRequest, ""},
		{"bad email", `{"userId":"` + userID.Hex() + `","email":"ada"}`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testhelpers.NewMockDB()
			subs := db.C("jobSubscriptions")
			subs.On("InsertOne", mock.Anything, mock.Anything).Return(testhelpers.Inserted(primitive.NewObjectID()), nil)
			h := newJobActivity(db)

			req := httptest.NewRequest(http.MethodPost, "/api/jobs/subscriptions", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			http.HandlerFunc(h.CreateSubscriptionHandler).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			if tt.wantCode != http.StatusCreated {
				subs.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
				return
			}
			data := decodeData(t, rr)
			assert.Equal(t, tt.wantFreq, data["notificationFrequency"])
			assert.Equal(t, true, data["isActive"])
		})
	}
}

func TestJobActivity_SubscriptionsHandler(t *testing.T) {
	userID := primitive.NewObjectID()
	db := testhelpers.NewMockDB()
	db.C("jobSubscriptions").On("Find", mock.Anything, bson.M{"user": userID, "isActive": true}).
		Return(testhelpers.Cursor(func(v interface{}) {
			*v.(*[]models.JobSubscription) = []models.JobSubscription{{User: userID, Email: "ada@example.org", IsActive: true}}
		}), nil)
	h := newJobActivity(db)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/subscriptions/x", nil)
	req = mux.SetURLVars(req, map[string]string{"userId": userID.Hex()})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.SubscriptionsHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var got []models.JobSubscription
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "ada@example.org", got[0].Email)
}

func TestJobActivity_DeleteSubscriptionHandler(t *testing.T) {
	subID := primitive.NewObjectID()

	tests := []struct {
		name     string
		matched  int64
		wantCode int
	}{
		{"deactivated", 1, http.StatusOK},
		{"unknown subscription", 0, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testhelpers.NewMockDB()
			db.C("jobSubscriptions").On("UpdateOne", mock.Anything, bson.M{"_id": subID}, mock.Anything).
				Return(&mongo.UpdateResult{MatchedCount: tt.matched}, nil).
				Run(func(args mock.Arguments) {
					set := args.Get(2).(bson.M)["$set"].(bson.M)
					assert.Equal(t, false, set["isActive"])
				})
			h := newJobActivity(db)

			req := httptest.NewRequest(http.MethodDelete, "/api/jobs/subscriptions/x", nil)
			req = mux.SetURLVars(req, map[string]string{"id": subID.Hex()})
			rr := httptest.NewRecorder()
			http.HandlerFunc(h.DeleteSubscriptionHandler).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
		})
	}
}

func TestJobActivity_RecommendationsHandler(t *testing.T) {
	userID := primitive.NewObjectID()
	jobs := []models.Job{
		{ID: primitive.NewObjectID(), Title: "Platform", Skills: []string{"go", "docker"}},
		{ID: primitive.NewObjectID(), Title: "Enterprise", Skills: []string{"java"}},
		{ID: primitive.NewObjectID(), Title: "Backend", Skills: []string{"go"}},
	}

	tests := []struct {
		name      string
		query     string
		prefErr   error
		prefSkill []string
		wantCode  int
		want      []string
		wantPct   []int
	}{
		{"preference skills win", "", nil, []string{"Go"}, http.StatusOK, []string{"Backend", "Platform"}, []int{100, 50}},
		{"limit", "?limit=1", nil, []string{"Go"}, http.StatusOK, []string{"Backend"}, []int{100}},
		{"no preferences uses profile", "", mongo.ErrNoDocuments, nil, http.StatusOK, []string{"Enterprise"}, []int{100}},
		{"empty preference skills use profile", "", nil, []string{}, http.StatusOK, []string{"Enterprise"}, []int{100}},
		{"preference lookup fails", "", errors.New("connection reset"), nil, http.StatusInternalServerError, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testhelpers.NewMockDB()
			db.C("jobPreferences").On("FindOne", mock.Anything, bson.M{"user": userID}).
				Return(testhelpers.Decodes(tt.prefErr, func(v interface{}) {
					*v.(*models.JobPreference) = models.JobPreference{User: userID, Skills: tt.prefSkill}
				}))
			db.C("users").On("FindOne", mock.Anything, bson.M{"_id": userID}).
				Return(testhelpers.Decodes(nil, func(v interface{}) {
					*v.(*models.User) = models.User{ID: userID, Skills: []string{"Java"}}
				}))
			db.C("jobs").On("Find", mock.Anything, bson.M{"isActive": true}, mock.Anything).
				Return(testhelpers.Cursor(func(v interface{}) {
					*v.(*[]models.Job) = jobs
				}), nil)
			h := newJobActivity(db)

			req := httptest.NewRequest(http.MethodGet, "/api/jobs/recommendations/x"+tt.query, nil)
			req = mux.SetURLVars(req, map[string]string{"userId": userID.Hex()})
			rr := httptest.NewRecorder()
			http.HandlerFunc(h.RecommendationsHandler).ServeHTTP(rr, req)

			require.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}
			var got []models.JobRecommendation
			require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &got))
			require.Len(t, got, len(tt.want))
			for i := range got {
				assert.Equal(t, tt.want[i], got[i].Job.Title)
				assert.Equal(t, tt.wantPct[i], got[i].MatchPercentage)
			}
		})
	}
}
