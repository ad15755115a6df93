package handlers

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/alumnihub/alumni-api/api"
	"github.com/alumnihub/alumni-api/databases"
	"github.com/alumnihub/alumni-api/mailer"
	"github.com/alumnihub/alumni-api/models"
	templates "github.com/alumnihub/alumni-api/templates/html"
)

// newsletterSendTimeout bounds one background newsletter blast
const newsletterSendTimeout = 10 * time.Minute

// Admin represents the admin handler
type Admin struct {
	UDB databases.UserDatabase
	JDB databases.JobDatabase
	RDB databases.ReferralDatabase
	XDB databases.MatchDatabase
	BDB databases.BusinessDatabase
	ADB databases.AchievementDatabase
	NDB databases.NewsDatabase
	LDB databases.NewsletterDatabase
	CDB databases.ContactDatabase

	Mailer mailer.Sender
}

// StatsHandler returns document counts for the back office dashboard
func (h Admin) StatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var stats models.AdminStats
	counts := []struct {
		name  string
		dst   *int64
		count func() (int64, error)
	}{
		{"users", &stats.Users, func() (int64, error) { return h.UDB.CountDocuments(ctx, bson.M{"isDeleted": false}) }},
		{"students", &stats.Students, func() (int64, error) {
			return h.UDB.CountDocuments(ctx, bson.M{"isDeleted": false, "type": models.UserTypeStudent})
		}},
		{"alumni", &stats.Alumni, func() (int64, error) {
			return h.UDB.CountDocuments(ctx, bson.M{"isDeleted": false, "type": models.UserTypeAlumnus})
		}},
		{"jobs", &stats.Jobs, func() (int64, error) { return h.JDB.CountDocuments(ctx, bson.M{"isActive": true}) }},
		{"referrals", &stats.Referrals, func() (int64, error) { return h.RDB.CountDocuments(ctx, bson.M{}) }},
		{"mentorships", &stats.Mentorships, func() (int64, error) {
			return h.XDB.CountDocuments(ctx, bson.M{"status": models.MatchActive})
		}},
		{"businesses", &stats.Businesses, func() (int64, error) { return h.BDB.CountDocuments(ctx, bson.M{}) }},
		{"achievements", &stats.Achievements, func() (int64, error) { return h.ADB.CountDocuments(ctx, bson.M{}) }},
		{"news", &stats.News, func() (int64, error) { return h.NDB.CountDocuments(ctx, bson.M{"isPublished": true}) }},
		{"subscribers", &stats.Subscribers, func() (int64, error) { return h.LDB.CountDocuments(ctx, bson.M{"isActive": true}) }},
		{"unreadContacts", &stats.UnreadInbox, func() (int64, error) { return h.CDB.CountDocuments(ctx, bson.M{"isRead": false}) }},
	}
	for _, c := range counts {
		n, err := c.count()
		if err != nil {
			writeError(w, "failed to count "+c.name, err)
			return
		}
		*c.dst = n
	}
	respond(w, http.StatusOK, "", stats)
}

// ContactsHandler returns a page of contact messages, ?unread=true for the unread ones
func (h Admin) ContactsHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	filter := bson.M{}
	if r.URL.Query().Get("unread") == "true" {
		filter["isRead"] = false
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	out, err := h.CDB.Find(ctx, filter, databases.Paginate(page, limit))
	if err != nil {
		writeError(w, "failed to get contact messages", err)
		return
	}
	total, err := h.CDB.CountDocuments(ctx, filter)
	if err != nil {
		writeError(w, "failed to count contact messages", err)
		return
	}
	respondPage(w, page, limit, total, out)
}

// MarkContactReadHandler flags a contact message as read
func (h Admin) MarkContactReadHandler(w http.ResponseWriter, r *http.Request) {
	setFlags[models.ContactMessage](w, r, h.CDB, "contact message", bson.M{"isRead": true})
}

// SubscribersHandler returns a page of active newsletter subscribers
func (h Admin) SubscribersHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	filter := bson.M{"isActive": true}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := databases.Paginate(page, limit).SetSort(bson.D{{Key: "subscribedAt", Value: -1}})
	out, err := h.LDB.Find(ctx, filter, opts)
	if err != nil {
		writeError(w, "failed to get subscribers", err)
		return
	}
	total, err := h.LDB.CountDocuments(ctx, filter)
	if err != nil {
		writeError(w, "failed to count subscribers", err)
		return
	}
	respondPage(w, page, limit, total, out)
}

// SendNewsletterHandler queues a newsletter for every active subscriber and returns
// before the mail goes out
func (h Admin) SendNewsletterHandler(w http.ResponseWriter, r *http.Request) {
	var req models.NewsletterSendRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "subject and body are required", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	subs, err := h.LDB.Find(ctx, bson.M{"isActive": true})
	if err != nil {
		writeError(w, "failed to get subscribers", err)
		return
	}

	html := templates.RenderGenericEmail(req.Subject, req.Body)
	go h.sendNewsletter(subs, req.Subject, req.Body, html)

	respond(w, http.StatusAccepted, "newsletter queued", models.NewsletterSendResult{Recipients: len(subs)})
}

func (h Admin) sendNewsletter(subs []models.NewsletterSubscriber, subject, plain, html string) {
	ctx, cancel := context.WithTimeout(context.Background(), newsletterSendTimeout)
	defer cancel()

	failed := 0
	for _, s := range subs {
		err := h.Mailer.Send(ctx, mailer.Message{ToEmail: s.Email, Subject: subject, Plain: plain, HTML: html})
		if err != nil {
			failed++
			api.EmailsSent.WithLabelValues("newsletter", "error").Inc()
			zap.S().Warnw("newsletter delivery failed", "email", s.Email, "error", err)
			continue
		}
		api.EmailsSent.WithLabelValues("newsletter", "ok").Inc()
	}
	zap.S().Infow("newsletter sent", "subject", subject, "recipients", len(subs), "failed", failed)
}
