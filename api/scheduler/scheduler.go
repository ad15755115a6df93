package scheduler

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/alumnihub/alumni-api/api"
	"github.com/alumnihub/alumni-api/databases"
	"github.com/alumnihub/alumni-api/logging"
	"github.com/alumnihub/alumni-api/mailer"
	"github.com/alumnihub/alumni-api/models"
	"github.com/alumnihub/alumni-api/skills"
	templates "github.com/alumnihub/alumni-api/templates/html"
)

const (
	digestJob   = "job_digest"
	reminderJob = "referral_reminder"

	// digestSkillThreshold is the minimum skill match for a job to land in a skills-only digest
	digestSkillThreshold = 50
	lockPrefix           = "alumni:scheduler:lock:"
)

// Scheduler handles periodic background jobs: subscription digests and referral reminders
type Scheduler struct {
	cron *cron.Cron

	SDB    databases.SubscriptionDatabase
	JDB    databases.JobDatabase
	RDB    databases.ReferralDatabase
	UDB    databases.UserDatabase
	Mailer mailer.Sender
	Redis  *redis.Client

	ReminderAfter time.Duration
	instanceID    string
	clock         func() time.Time
	log           *zap.SugaredLogger
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	sDB databases.SubscriptionDatabase,
	jDB databases.JobDatabase,
	rDB databases.ReferralDatabase,
	uDB databases.UserDatabase,
	m mailer.Sender,
	rc *redis.Client,
	reminderDays int,
) *Scheduler {
	// Heroku style dyno names identify the pod holding a lock
	instanceID := os.Getenv("DYNO")
	if instanceID == "" {
		instanceID = "instance-" + uuid.New().String()
	}
	if reminderDays < 1 {
		reminderDays = 7
	}

	return &Scheduler{
		cron:          cron.New(cron.WithLocation(time.UTC)),
		SDB:           sDB,
		JDB:           jDB,
		RDB:           rDB,
		UDB:           uDB,
		Mailer:        m,
		Redis:         rc,
		ReminderAfter: time.Duration(reminderDays) * 24 * time.Hour,
		instanceID:    instanceID,
		clock:         func() time.Time { return time.Now().UTC() },
		log:           logging.Named("scheduler"),
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc("0 * * * *", func() { s.run(digestJob, 30*time.Minute, s.SendDigests) }); err != nil {
		s.log.Errorw("failed to register digest job", "error", err)
	}
	if _, err := s.cron.AddFunc("0 9 * * *", func() { s.run(reminderJob, 30*time.Minute, s.SendReferralReminders) }); err != nil {
		s.log.Errorw("failed to register referral reminder job", "error", err)
	}

	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop waits for running jobs and stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

// run executes job under the named lock and records the outcome
func (s *Scheduler) run(name string, ttl time.Duration, job func(context.Context) (int, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), ttl)
	defer cancel()

	acquired, err := s.acquire(ctx, name, ttl)
	if err != nil {
		api.SchedulerRuns.WithLabelValues(name, "error").Inc()
		s.log.Errorw("failed to acquire scheduler lock", "job", name, "error", err)
		return
	}
	if !acquired {
		api.SchedulerRuns.WithLabelValues(name, "skipped").Inc()
		s.log.Debugw("job already running on another instance, skipping", "job", name)
		return
	}
	defer s.release(name)

	sent, err := job(ctx)
	if err != nil {
		api.SchedulerRuns.WithLabelValues(name, "error").Inc()
		s.log.Errorw("scheduled job failed", "job", name, "sent", sent, "error", err)
		return
	}
	api.SchedulerRuns.WithLabelValues(name, "ok").Inc()
	s.log.Infow("scheduled job complete", "job", name, "sent", sent, "instance", s.instanceID)
}

// acquire takes the redis lock for name. Without redis every instance runs the job.
func (s *Scheduler) acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	if s.Redis == nil {
		return true, nil
	}
	return s.Redis.SetNX(ctx, lockPrefix+name, s.instanceID, ttl).Result()
}

// release drops the lock only if this instance still holds it
func (s *Scheduler) release(name string) {
	if s.Redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := lockPrefix + name
	owner, err := s.Redis.Get(ctx, key).Result()
	if err != nil || owner != s.instanceID {
		return
	}
	if err := s.Redis.Del(ctx, key).Err(); err != nil {
		s.log.Warnw("failed to release scheduler lock", "job", name, "error", err)
	}
}

// SendDigests mails every due subscription the active jobs posted since its last digest
// and returns how many digests went out
func (s *Scheduler) SendDigests(ctx context.Context) (int, error) {
	subs, err := s.SDB.Find(ctx, bson.M{"isActive": true})
	if err != nil {
		return 0, fmt.Errorf("failed to find subscriptions: %w", err)
	}

	now := s.clock()
	sent := 0
	for _, sub := range subs {
		if !dueForNotification(sub, now) {
			continue
		}
		since := sub.CreatedAt
		if sub.LastNotificationSent != nil {
			since = *sub.LastNotificationSent
		}
		jobs, err := s.JDB.Find(ctx, bson.M{"isActive": true, "createdAt": bson.M{"$gt": since}})
		if err != nil {
			return sent, fmt.Errorf("failed to find new jobs: %w", err)
		}

		var digest []templates.DigestJob
		for _, j := range jobs {
			if ok, pct := matchesSubscription(sub, j); ok {
				digest = append(digest, templates.DigestJob{
					Title:           j.Title,
					Company:         j.Company,
					Location:        j.Location,
					MatchPercentage: pct,
				})
			}
		}
		if len(digest) == 0 {
			continue
		}

		msg := mailer.Message{
			ToEmail: sub.Email,
			Subject: fmt.Sprintf("%d new job posting(s) for you", len(digest)),
			Plain:   templates.JobDigestPlain(digest),
			HTML:    templates.RenderJobDigest(digest),
		}
		if err := s.Mailer.Send(ctx, msg); err != nil {
			api.EmailsSent.WithLabelValues("digest", "error").Inc()
			s.log.Errorw("failed to send job digest", "subscriptionId", sub.ID.Hex(), "error", err)
			continue
		}
		api.EmailsSent.WithLabelValues("digest", "ok").Inc()
		sent++

		if err := s.SDB.MarkNotified(ctx, sub.ID, now); err != nil {
			s.log.Errorw("failed to mark subscription notified", "subscriptionId", sub.ID.Hex(), "error", err)
		}
	}
	return sent, nil
}

// SendReferralReminders emails the poster of each job whose referral has sat pending too long
func (s *Scheduler) SendReferralReminders(ctx context.Context) (int, error) {
	now := s.clock()
	cutoff := now.Add(-s.ReminderAfter)

	refs, err := s.RDB.Find(ctx, bson.M{
		"status":       models.ReferralPending,
		"reminderSent": false,
		"createdAt":    bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to find stale referrals: %w", err)
	}

	sent := 0
	for _, ref := range refs {
		job, err := s.JDB.FindOne(ctx, bson.M{"_id": ref.Job})
		if err != nil {
			s.log.Warnw("referral reminder skipped, job missing", "referralId", ref.ID.Hex(), "error", err)
			continue
		}
		poster, err := s.UDB.FindOne(ctx, bson.M{"_id": job.PostedBy})
		if err != nil || poster.Email == "" {
			s.log.Warnw("referral reminder skipped, poster missing", "referralId", ref.ID.Hex(), "error", err)
			continue
		}

		days := int(now.Sub(ref.CreatedAt).Hours() / 24)
		msg := mailer.Message{
			ToName:  poster.Name,
			ToEmail: poster.Email,
			Subject: "Referral awaiting review: " + job.Title,
			Plain: fmt.Sprintf("A referral of %s for %s has been pending for %d days.",
				ref.CandidateName, job.Title, days),
			HTML: templates.RenderReferralReminder(job.Title, ref.CandidateName, days),
		}
		if err := s.Mailer.Send(ctx, msg); err != nil {
			api.EmailsSent.WithLabelValues("reminder", "error").Inc()
			s.log.Errorw("failed to send referral reminder", "referralId", ref.ID.Hex(), "error", err)
			continue
		}
		api.EmailsSent.WithLabelValues("reminder", "ok").Inc()
		sent++

		if err := s.RDB.MarkReminded(ctx, ref.ID, now); err != nil {
			s.log.Errorw("failed to mark referral reminded", "referralId", ref.ID.Hex(), "error", err)
		}
	}
	return sent, nil
}

// dueForNotification reports whether a subscription's frequency has elapsed since its last digest
func dueForNotification(sub models.JobSubscription, now time.Time) bool {
	if !sub.IsActive {
		return false
	}
	if sub.LastNotificationSent == nil {
		return true
	}
	return !now.Before(sub.LastNotificationSent.Add(sub.Frequency.Interval()))
}

// matchesSubscription checks a job against the subscription keywords and skills. A keyword hit
// anywhere in the title, company or description is enough; otherwise skills must overlap by half.
func matchesSubscription(sub models.JobSubscription, job models.Job) (bool, int) {
	pct := 0
	if len(sub.Skills) > 0 {
		pct = skills.MatchPercentage(sub.Skills, job.Skills)
	}

	text := strings.ToLower(job.Title + " " + job.Company + " " + job.Description)
	for _, k := range sub.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && strings.Contains(text, k) {
			return true, pct
		}
	}
	if len(sub.Keywords) == 0 && len(sub.Skills) == 0 {
		return true, 0
	}
	return pct >= digestSkillThreshold, pct
}
