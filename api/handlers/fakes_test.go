package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alumnihub/alumni-api/api"
	"github.com/alumnihub/alumni-api/databases"
	"github.com/alumnihub/alumni-api/mailer"
	"github.com/alumnihub/alumni-api/models"
)

// duplicateKey is what the driver returns when a unique index rejects an insert
var duplicateKey = mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}

type sentNotification struct {
	userID string
	n      models.Notification
}

type recordingHub struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (h *recordingHub) Notify(userID string, n models.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, sentNotification{userID, n})
}

type chanMailer chan mailer.Message

func (c chanMailer) Send(_ context.Context, msg mailer.Message) error {
	c <- msg
	return nil
}

type fakeJobDB struct {
	databases.JobDatabase
	job       *models.Job
	addErr    error
	setErr    error
	setCalled bool
}

func (f *fakeJobDB) FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Job, error) {
	if f.job == nil {
		return nil, mongo.ErrNoDocuments
	}
	return f.job, nil
}

func (f *fakeJobDB) AddApplicant(context.Context, primitive.ObjectID, primitive.ObjectID, time.Time) error {
	return f.addErr
}

func (f *fakeJobDB) SetApplicantStatus(context.Context, primitive.ObjectID, primitive.ObjectID, models.ApplicationStatus, models.ApplicationStatus, time.Time) error {
	f.setCalled = true
	return f.setErr
}

type fakeReferralDB struct {
	databases.ReferralDatabase
	ref       *models.JobReferral
	updateErr error
	change    *models.StatusChange
}

func (f *fakeReferralDB) FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.JobReferral, error) {
	if f.ref == nil {
		return nil, mongo.ErrNoDocuments
	}
	return f.ref, nil
}

func (f *fakeReferralDB) UpdateStatus(_ context.Context, _ primitive.ObjectID, change models.StatusChange) (*models.JobReferral, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.change = &change
	out := *f.ref
	out.Status = models.ReferralStatus(change.To)
	out.StatusHistory = append(out.StatusHistory, change)
	return &out, nil
}

// envelope is the decoded shape of every response body
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder) bson.M {
	t.Helper()
	var data bson.M
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &data))
	return data
}

func jsonUnmarshal(rr *httptest.ResponseRecorder, v interface{}) error {
	return json.Unmarshal(rr.Body.Bytes(), v)
}

// withClaims attaches the claims Authenticate would have put on a verified request
func withClaims(req *http.Request, c *api.Claims) *http.Request {
	if c == nil {
		return req
	}
	return req.WithContext(api.WithClaims(req.Context(), c))
}
