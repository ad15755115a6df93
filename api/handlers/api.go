package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alumnihub/alumni-api/api"
	"github.com/alumnihub/alumni-api/config"
	"github.com/alumnihub/alumni-api/databases"
	"github.com/alumnihub/alumni-api/mailer"
	"github.com/alumnihub/alumni-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router *mux.Router
	Config config.Config
	DB     databases.DatabaseHelper
	Client databases.ClientHelper
	Redis  *redis.Client
	Mailer mailer.Sender
	Hub    *NotificationHub
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	if a.Mailer == nil {
		a.Mailer = mailer.LogSender{}
	}
	if a.Hub == nil {
		a.Hub = NewNotificationHub(a.Config.CORSOrigins)
	}

	udb := databases.NewUserDatabase(a.DB)
	jdb := databases.NewJobDatabase(a.DB)
	rdb := databases.NewReferralDatabase(a.DB)
	xdb := databases.NewMatchDatabase(a.DB)
	bdb := databases.NewBusinessDatabase(a.DB)
	adb := databases.NewAchievementDatabase(a.DB)
	ndb := databases.NewNewsDatabase(a.DB)
	ldb := databases.NewNewsletterDatabase(a.DB)
	cdb := databases.NewContactDatabase(a.DB)

	m := api.NewMiddlewareDB(udb, &a.Config)
	limit := api.RateLimit(api.NewLimiter(a.Redis, &a.Config), a.Config.TrustedProxyHops)

	u := User{DB: udb, EDB: databases.NewEndorsementDatabase(a.DB)}
	j := Job{DB: jdb, Hub: a.Hub}
	ja := JobActivity{
		DB:  databases.NewInteractionDatabase(a.DB),
		PDB: databases.NewPreferenceDatabase(a.DB),
		SDB: databases.NewSubscriptionDatabase(a.DB),
		JDB: jdb,
		UDB: udb,
	}
	ref := Referral{DB: rdb, JDB: jdb, Hub: a.Hub}
	ms := Mentorship{
		MDB: databases.NewMentorDatabase(a.DB),
		XDB: xdb,
		SDB: databases.NewSessionDatabase(a.DB),
		GDB: databases.NewMessageDatabase(a.DB),
		UDB: udb,
		Hub: a.Hub,
	}
	biz := Business{DB: bdb, RDB: databases.NewReviewDatabase(a.DB)}
	ach := Achievement{DB: adb}
	news := News{DB: ndb}
	nl := Newsletter{DB: ldb}
	contact := Contact{DB: cdb, Mailer: a.Mailer, Inbox: a.Config.ContactInbox}
	forum := Forum{DB: databases.NewForumDatabase(a.DB), Hub: a.Hub}
	admin := Admin{UDB: udb, JDB: jdb, RDB: rdb, XDB: xdb, BDB: bdb, ADB: adb, NDB: ndb, LDB: ldb, CDB: cdb, Mailer: a.Mailer}

	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)
	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)

	// healthchex
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	r.Handle("/metrics", api.MetricsHandler()).Methods("GET")
	r.HandleFunc("/ws/notifications", a.Hub.HandleNotificationsWebSocket)

	apiCreate := r.PathPrefix("/api").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(a.Config.RequestTimeout))

	apiCreate.Handle("/auth/register", limit(http.HandlerFunc(u.UserCreateHandler))).Methods("POST")
	apiCreate.Handle("/auth/check-email", limit(http.HandlerFunc(u.UserCheckEmailHandler))).Methods("POST")
	apiCreate.Handle("/auth/token", limit(http.HandlerFunc(m.CreateToken))).Methods("POST")

	apiCreate.HandleFunc("/users", u.UsersHandler).Methods("GET")
	apiCreate.HandleFunc("/users/{id}", u.UserHandler).Methods("GET")
	apiCreate.HandleFunc("/users/{id}", u.UpdateUserByIDHandler).Methods("PUT")
	apiCreate.HandleFunc("/users/{id}", u.DeleteUserHandler).Methods("DELETE")
	apiCreate.HandleFunc("/users/{id}/endorsements", u.EndorseHandler).Methods("POST")
	apiCreate.HandleFunc("/users/{id}/endorsements", u.EndorsementsHandler).Methods("GET")

	// fixed /jobs/... paths must be registered before /jobs/{id}
	apiCreate.HandleFunc("/jobs/referrals", ref.ReferralsHandler).Methods("GET")
	apiCreate.HandleFunc("/jobs/referrals/{id}", ref.ReferralByIDHandler).Methods("GET")
	apiCreate.Handle("/jobs/referrals/{id}/status", m.Authenticate(http.HandlerFunc(ref.UpdateReferralStatusHandler))).Methods("PUT")
	apiCreate.HandleFunc("/jobs/interactions/{userId}", ja.InteractionsHandler).Methods("GET")
	apiCreate.HandleFunc("/jobs/preferences/{userId}", ja.PreferencesHandler).Methods("GET")
	apiCreate.HandleFunc("/jobs/preferences/{userId}", ja.SavePreferencesHandler).Methods("PUT")
	apiCreate.HandleFunc("/jobs/subscriptions", ja.CreateSubscriptionHandler).Methods("POST")
	apiCreate.HandleFunc("/jobs/subscriptions/{userId}", ja.SubscriptionsHandler).Methods("GET")
	apiCreate.HandleFunc("/jobs/subscriptions/{id}", ja.DeleteSubscriptionHandler).Methods("DELETE")
	apiCreate.HandleFunc("/jobs/recommendations/{userId}", ja.RecommendationsHandler).Methods("GET")
	apiCreate.HandleFunc("/jobs/applied/{userId}", j.AppliedJobsHandler).Methods("GET")
	apiCreate.Handle("/jobs/{jobId}/applicants/{userId}", m.Authenticate(http.HandlerFunc(j.UpdateApplicantStatusHandler))).Methods("PATCH")

	apiCreate.HandleFunc("/jobs", j.JobsHandler).Methods("GET")
	apiCreate.HandleFunc("/jobs", j.CreateJobHandler).Methods("POST")
	apiCreate.HandleFunc("/jobs/{id}", j.JobByIDHandler).Methods("GET")
	apiCreate.HandleFunc("/jobs/{id}", j.UpdateJobHandler).Methods("PUT")
	apiCreate.HandleFunc("/jobs/{id}", j.DeleteJobHandler).Methods("DELETE")
	apiCreate.Handle("/jobs/{id}/featured", m.RequireAdmin(http.HandlerFunc(j.FeaturedJobHandler))).Methods("PATCH")
	apiCreate.HandleFunc("/jobs/{id}/apply", j.ApplyJobHandler).Methods("POST")
	apiCreate.HandleFunc("/jobs/{id}/applicants", j.ApplicantsHandler).Methods("GET")
	apiCreate.HandleFunc("/jobs/{id}/refer", ref.CreateReferralHandler).Methods("POST")
	apiCreate.HandleFunc("/jobs/{id}/interactions", ja.RecordInteractionHandler).Methods("POST")

	apiCreate.HandleFunc("/mentors/suggestions/{userId}", ms.MentorSuggestionsHandler).Methods("GET")
	apiCreate.HandleFunc("/mentors", ms.MentorsHandler).Methods("GET")
	apiCreate.HandleFunc("/mentors", ms.CreateMentorHandler).Methods("POST")
	apiCreate.HandleFunc("/mentors/{id}", ms.MentorByIDHandler).Methods("GET")
	apiCreate.HandleFunc("/mentors/{id}", ms.UpdateMentorHandler).Methods("PUT")
	apiCreate.HandleFunc("/mentorship/matches", ms.MatchesHandler).Methods("GET")
	apiCreate.HandleFunc("/mentorship/matches", ms.CreateMatchHandler).Methods("POST")
	apiCreate.HandleFunc("/mentorship/matches/{id}/status", ms.UpdateMatchStatusHandler).Methods("PUT")
	apiCreate.HandleFunc("/mentorship/matches/{id}/feedback", ms.MatchFeedbackHandler).Methods("POST")
	apiCreate.HandleFunc("/mentorship/matches/{id}/sessions", ms.SessionsHandler).Methods("GET")
	apiCreate.HandleFunc("/mentorship/matches/{id}/sessions", ms.CreateSessionHandler).Methods("POST")
	apiCreate.HandleFunc("/mentorship/matches/{id}/messages", ms.MessagesHandler).Methods("GET")
	apiCreate.HandleFunc("/mentorship/matches/{id}/messages", ms.SendMessageHandler).Methods("POST")
	apiCreate.HandleFunc("/mentorship/sessions/{id}/status", ms.UpdateSessionStatusHandler).Methods("PUT")

	apiCreate.HandleFunc("/businesses", biz.BusinessesHandler).Methods("GET")
	apiCreate.HandleFunc("/businesses", biz.CreateBusinessHandler).Methods("POST")
	apiCreate.HandleFunc("/businesses/{id}", biz.BusinessByIDHandler).Methods("GET")
	apiCreate.HandleFunc("/businesses/{id}", biz.UpdateBusinessHandler).Methods("PUT")
	apiCreate.HandleFunc("/businesses/{id}", biz.DeleteBusinessHandler).Methods("DELETE")
	apiCreate.Handle("/businesses/{id}/verify", m.RequireAdmin(http.HandlerFunc(biz.VerifyBusinessHandler))).Methods("PATCH")
	apiCreate.HandleFunc("/businesses/{id}/reviews", biz.ReviewsHandler).Methods("GET")
	apiCreate.HandleFunc("/businesses/{id}/reviews", biz.CreateReviewHandler).Methods("POST")

	apiCreate.HandleFunc("/achievements", ach.AchievementsHandler).Methods("GET")
	apiCreate.HandleFunc("/achievements", ach.CreateAchievementHandler).Methods("POST")
	apiCreate.HandleFunc("/achievements/{id}", ach.AchievementByIDHandler).Methods("GET")
	apiCreate.HandleFunc("/achievements/{id}", ach.UpdateAchievementHandler).Methods("PUT")
	apiCreate.HandleFunc("/achievements/{id}", ach.DeleteAchievementHandler).Methods("DELETE")
	apiCreate.Handle("/achievements/{id}/featured", m.RequireAdmin(http.HandlerFunc(ach.FeaturedAchievementHandler))).Methods("PATCH")

	apiCreate.Handle("/news/newsletter/subscribe", limit(http.HandlerFunc(nl.SubscribeHandler))).Methods("POST")
	apiCreate.Handle("/news/newsletter/unsubscribe", limit(http.HandlerFunc(nl.UnsubscribeHandler))).Methods("POST")
	apiCreate.HandleFunc("/news", news.NewsHandler).Methods("GET")
	apiCreate.HandleFunc("/news", news.CreateNewsHandler).Methods("POST")
	apiCreate.HandleFunc("/news/{id}", news.NewsByIDHandler).Methods("GET")
	apiCreate.HandleFunc("/news/{id}", news.UpdateNewsHandler).Methods("PUT")
	apiCreate.HandleFunc("/news/{id}", news.DeleteNewsHandler).Methods("DELETE")
	apiCreate.Handle("/news/{id}/publish", m.RequireAdmin(http.HandlerFunc(news.PublishNewsHandler))).Methods("PATCH")

	apiCreate.HandleFunc("/forums/posts", forum.PostsHandler).Methods("GET")
	apiCreate.HandleFunc("/forums/posts", forum.CreatePostHandler).Methods("POST")
	apiCreate.HandleFunc("/forums/posts/{id}", forum.PostByIDHandler).Methods("GET")
	apiCreate.HandleFunc("/forums/posts/{id}", forum.DeletePostHandler).Methods("DELETE")
	apiCreate.HandleFunc("/forums/posts/{id}/replies", forum.ReplyHandler).Methods("POST")
	apiCreate.HandleFunc("/forums/posts/{id}/like", forum.LikeHandler).Methods("POST")

	apiCreate.Handle("/contact", limit(http.HandlerFunc(contact.CreateContactHandler))).Methods("POST")

	// the back office is mounted once and every route in it needs an admin token
	adminRouter := apiCreate.PathPrefix("/admin").Subrouter()
	adminRouter.Use(m.RequireAdmin)
	adminRouter.HandleFunc("/stats", admin.StatsHandler).Methods("GET")
	adminRouter.HandleFunc("/contacts", admin.ContactsHandler).Methods("GET")
	adminRouter.HandleFunc("/contacts/{id}/read", admin.MarkContactReadHandler).Methods("PATCH")
	adminRouter.HandleFunc("/newsletter/subscribers", admin.SubscribersHandler).Methods("GET")
	adminRouter.HandleFunc("/newsletter/send", admin.SendNewsletterHandler).Methods("POST")

	return r
}

// Handler wraps the router with CORS for the single page frontend, which sends credentials
func (a *App) Handler() http.Handler {
	origins := a.Config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(origins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Authorization", "Content-Type", api.RequestIDHeader}),
		gorillaHandlers.ExposedHeaders([]string{api.RequestIDHeader}),
		gorillaHandlers.AllowCredentials(),
	)(a.Router)
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize(ctx context.Context) error {
	client, err := databases.NewClient(ctx, &a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().Errorw("failed to create new client", "error", err)
		return err
	}
	a.Client = client

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		zap.S().Errorw("failed to connect to database", "error", err)
		return err
	}
	a.DB = databases.NewDatabase(&a.Config, client)
	zap.S().Info("alumni-api has connected to the database")

	if err := databases.EnsureIndexes(pingCtx, a.DB); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	if a.Config.RedisAddr != "" {
		a.Redis = redis.NewClient(&redis.Options{Addr: a.Config.RedisAddr})
		if err := a.Redis.Ping(pingCtx).Err(); err != nil {
			// rate limiting falls back to memory and the scheduler runs unlocked
			zap.S().Warnw("redis unavailable, continuing without it", "addr", a.Config.RedisAddr, "error", err)
			_ = a.Redis.Close()
			a.Redis = nil
		}
	}

	a.Mailer = mailer.New(&a.Config)
	a.Hub = NewNotificationHub(a.Config.CORSOrigins)

	// initialize api router
	a.initializeRoutes()
	return nil
}

// Close releases the database and redis connections
func (a *App) Close(ctx context.Context) {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.Client != nil {
		if err := a.Client.Disconnect(ctx); err != nil {
			zap.S().Warnw("failed to disconnect from database", "error", err)
		}
	}
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthCheckResponse{Alive: true})
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, "route not found", fmt.Errorf("%w: %s %s", databases.ErrNotFound, r.Method, r.URL.Path))
}
