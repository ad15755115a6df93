package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alumnihub/alumni-api/databases"
	"github.com/alumnihub/alumni-api/mailer"
	"github.com/alumnihub/alumni-api/models"
)

type fakeSubs struct {
	databases.SubscriptionDatabase
	subs     []models.JobSubscription
	notified []primitive.ObjectID
}

func (f *fakeSubs) Find(context.Context, interface{}, ...*options.FindOptions) ([]models.JobSubscription, error) {
	return f.subs, nil
}

func (f *fakeSubs) MarkNotified(_ context.Context, id primitive.ObjectID, _ time.Time) error {
	f.notified = append(f.notified, id)
	return nil
}

type fakeJobs struct {
	databases.JobDatabase
	jobs []models.Job
}

func (f *fakeJobs) Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Job, error) {
	return f.jobs, nil
}

func (f *fakeJobs) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) (*models.Job, error) {
	id := filter.(bson.M)["_id"]
	for i := range f.jobs {
		if f.jobs[i].ID == id {
			return &f.jobs[i], nil
		}
	}
	return nil, databases.ErrNotFound
}

type fakeRefs struct {
	databases.ReferralDatabase
	refs     []models.JobReferral
	reminded []primitive.ObjectID
}

func (f *fakeRefs) Find(context.Context, interface{}, ...*options.FindOptions) ([]models.JobReferral, error) {
	return f.refs, nil
}

func (f *fakeRefs) MarkReminded(_ context.Context, id primitive.ObjectID, _ time.Time) error {
	f.reminded = append(f.reminded, id)
	return nil
}

type fakeUsers struct {
	databases.UserDatabase
	user *models.User
}

func (f *fakeUsers) FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.User, error) {
	if f.user == nil {
		return nil, databases.ErrNotFound
	}
	return f.user, nil
}

type recordingMailer struct {
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestScheduler(s *fakeSubs, j *fakeJobs, r *fakeRefs, u *fakeUsers, m *recordingMailer, rc *redis.Client) *Scheduler {
	sch := NewScheduler(s, j, r, u, m, rc, 7)
	sch.clock = func() time.Time { return fixedNow }
	return sch
}

func TestDueForNotification(t *testing.T) {
	hourAgo := fixedNow.Add(-time.Hour)
	twoDaysAgo := fixedNow.Add(-48 * time.Hour)

	tests := []struct {
		name string
		sub  models.JobSubscription
		want bool
	}{
		{"never notified", models.JobSubscription{IsActive: true, Frequency: models.FrequencyDaily}, true},
		{"inactive", models.JobSubscription{IsActive: false}, false},
		{"daily, sent an hour ago", models.JobSubscription{IsActive: true, Frequency: models.FrequencyDaily, LastNotificationSent: &hourAgo}, false},
		{"daily, sent two days ago", models.JobSubscription{IsActive: true, Frequency: models.FrequencyDaily, LastNotificationSent: &twoDaysAgo}, true},
		{"weekly, sent two days ago", models.JobSubscription{IsActive: true, Frequency: models.FrequencyWeekly, LastNotificationSent: &twoDaysAgo}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dueForNotification(tt.sub, fixedNow))
		})
	}
}

func TestMatchesSubscription(t *testing.T) {
	job := models.Job{Title: "Backend Engineer", Company: "Acme", Description: "Build APIs in Go", Skills: []string{"go", "sql"}}

	ok, _ := matchesSubscription(models.JobSubscription{Keywords: []string{"backend"}}, job)
	assert.True(t, ok)

	ok, pct := matchesSubscription(models.JobSubscription{Skills: []string{"Go"}}, job)
	assert.True(t, ok)
	assert.Equal(t, 50, pct)

	ok, _ = matchesSubscription(models.JobSubscription{Keywords: []string{"designer"}, Skills: []string{"figma"}}, job)
	assert.False(t, ok)

	ok, _ = matchesSubscription(models.JobSubscription{}, job)
	assert.True(t, ok)
}

func TestSendDigests(t *testing.T) {
	due := models.JobSubscription{ID: primitive.NewObjectID(), Email: "ada@example.org", Keywords: []string{"engineer"}, Frequency: models.FrequencyDaily, IsActive: true}
	recent := fixedNow.Add(-time.Hour)
	notDue := models.JobSubscription{ID: primitive.NewObjectID(), Email: "bob@example.org", Frequency: models.FrequencyDaily, IsActive: true, LastNotificationSent: &recent}
	subs := &fakeSubs{subs: []models.JobSubscription{due, notDue}}
	jobs := &fakeJobs{jobs: []models.Job{{ID: primitive.NewObjectID(), Title: "Platform Engineer", Company: "Acme"}}}
	m := &recordingMailer{}

	sent, err := newTestScheduler(subs, jobs, &fakeRefs{}, &fakeUsers{}, m, nil).SendDigests(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "ada@example.org", m.sent[0].ToEmail)
	assert.Contains(t, m.sent[0].HTML, "Platform Engineer")
	assert.Equal(t, []primitive.ObjectID{due.ID}, subs.notified)
}

func TestSendDigestsMailFailureLeavesSubscriptionDue(t *testing.T) {
	sub := models.JobSubscription{ID: primitive.NewObjectID(), Email: "ada@example.org", Frequency: models.FrequencyDaily, IsActive: true}
	subs := &fakeSubs{subs: []models.JobSubscription{sub}}
	jobs := &fakeJobs{jobs: []models.Job{{ID: primitive.NewObjectID(), Title: "Engineer"}}}

	sent, err := newTestScheduler(subs, jobs, &fakeRefs{}, &fakeUsers{}, &recordingMailer{err: errors.New("smtp down")}, nil).
		SendDigests(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, subs.notified)
}

func TestSendReferralReminders(t *testing.T) {
	job := models.Job{ID: primitive.NewObjectID(), Title: "Data Analyst", PostedBy: primitive.NewObjectID()}
	ref := models.JobReferral{
		ID:            primitive.NewObjectID(),
		Job:           job.ID,
		CandidateName: "Grace Hopper",
		Status:        models.ReferralPending,
		CreatedAt:     fixedNow.Add(-10 * 24 * time.Hour),
	}
	refs := &fakeRefs{refs: []models.JobReferral{ref}}
	users := &fakeUsers{user: &models.User{ID: job.PostedBy, Name: "Poster", Email: "poster@example.org"}}
	m := &recordingMailer{}

	sent, err := newTestScheduler(&fakeSubs{}, &fakeJobs{jobs: []models.Job{job}}, refs, users, m, nil).
		SendReferralReminders(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "poster@example.org", m.sent[0].ToEmail)
	assert.Contains(t, m.sent[0].HTML, "10 days")
	assert.Equal(t, []primitive.ObjectID{ref.ID}, refs.reminded)
}

func TestSendReferralRemindersSkipsMissingPoster(t *testing.T) {
	job := models.Job{ID: primitive.NewObjectID(), Title: "Data Analyst"}
	refs := &fakeRefs{refs: []models.JobReferral{{ID: primitive.NewObjectID(), Job: job.ID, CreatedAt: fixedNow.AddDate(0, 0, -8)}}}
	m := &recordingMailer{}

	sent, err := newTestScheduler(&fakeSubs{}, &fakeJobs{jobs: []models.Job{job}}, refs, &fakeUsers{}, m, nil).
		SendReferralReminders(context.Background())

	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, m.sent)
	assert.Empty(t, refs.reminded)
}

func TestRunTakesRedisLock(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()

	sch := newTestScheduler(&fakeSubs{}, &fakeJobs{}, &fakeRefs{}, &fakeUsers{}, &recordingMailer{}, rc)

	// another instance holds the lock
	require.NoError(t, mr.Set(lockPrefix+digestJob, "instance-other"))
	calls := 0
	sch.run(digestJob, time.Minute, func(context.Context) (int, error) { calls++; return 0, nil })
	assert.Zero(t, calls)
	got, _ := mr.Get(lockPrefix + digestJob)
	assert.Equal(t, "instance-other", got)

	mr.Del(lockPrefix + digestJob)
	sch.run(digestJob, time.Minute, func(context.Context) (int, error) {
		calls++
		held, _ := mr.Get(lockPrefix + digestJob)
		assert.Equal(t, sch.instanceID, held)
		return 1, nil
	})
	assert.Equal(t, 1, calls)
	assert.False(t, mr.Exists(lockPrefix+digestJob))
}

func TestRunWithoutRedis(t *testing.T) {
	sch := newTestScheduler(&fakeSubs{}, &fakeJobs{}, &fakeRefs{}, &fakeUsers{}, &recordingMailer{}, nil)
	calls := 0
	sch.run(reminderJob, time.Minute, func(context.Context) (int, error) { calls++; return 0, nil })
	assert.Equal(t, 1, calls)
}
