package handlers

import (
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/alumnihub/alumni-api/api"
	"github.com/alumnihub/alumni-api/databases"
	"github.com/alumnihub/alumni-api/models"
	"github.com/alumnihub/alumni-api/skills"
)

// recommendationPool caps how many active jobs are scored per recommendation request
const recommendationPool = 500

// JobActivity exported for testing purposes
type JobActivity struct {
	DB  databases.InteractionDatabase
	PDB databases.PreferenceDatabase
	SDB databases.SubscriptionDatabase
	JDB databases.JobDatabase
	UDB databases.UserDatabase
}

// RecordInteractionHandler stores what a user did with a job, once per user and job
func (a JobActivity) RecordInteractionHandler(w http.ResponseWriter, r *http.Request) {
	jID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}
	var req models.InteractionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	ids, err := idsFromHex("userId", req.UserID)
	if err != nil {
		writeError(w, "failed to decode request", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	job, err := a.JDB.FindOne(ctx, bson.M{"_id": jID})
	if err != nil {
		writeError(w, "failed to get job by ID", err)
		return
	}
	user, err := a.UDB.FindOne(ctx, bson.M{"_id": ids[0]})
	if err != nil {
		writeError(w, "failed to get user by ID", err)
		return
	}

	ts := now()
	in := models.JobInteraction{
		User:            ids[0],
		Job:             jID,
		Type:            req.Type,
		MatchPercentage: skills.MatchPercentage(user.Skills, job.Skills),
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
	res, err := a.DB.InsertOne(ctx, &in)
	if err != nil {
		if databases.IsDuplicateKey(err) {
			writeError(w, "interaction already recorded for this job", err)
			return
		}
		writeError(w, "failed to record interaction", err)
		return
	}
	if id, ok := res.Decode().(primitive.ObjectID); ok {
		in.ID = id
	}
	respond(w, http.StatusCreated, "interaction recorded", in)
}

// InteractionsHandler lists a user's interactions, optionally by ?type
func (a JobActivity) InteractionsHandler(w http.ResponseWriter, r *http.Request) {
	uID, err := objectID(r, "userId")
	if err != nil {
		badID(w, err)
		return
	}
	page, limit := pageParams(r)
	filter := bson.M{"user": uID}
	if t := r.URL.Query().Get("type"); t != "" {
		filter["type"] = t
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	out, err := a.DB.Find(ctx, filter, databases.Paginate(page, limit))
	if err != nil {
		writeError(w, "failed to get interactions", err)
		return
	}
	total, err := a.DB.CountDocuments(ctx, filter)
	if err != nil {
		writeError(w, "failed to count interactions", err)
		return
	}
	respondPage(w, page, limit, total, out)
}

// PreferencesHandler returns a user's saved job preferences
func (a JobActivity) PreferencesHandler(w http.ResponseWriter, r *http.Request) {
	uID, err := objectID(r, "userId")
	if err != nil {
		badID(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	pref, err := a.PDB.FindOne(ctx, bson.M{"user": uID})
	if err != nil {
		writeError(w, "failed to get job preferences", err)
		return
	}
	respond(w, http.StatusOK, "", pref)
}

// SavePreferencesHandler creates or replaces a user's job preferences
func (a JobActivity) SavePreferencesHandler(w http.ResponseWriter, r *http.Request) {
	uID, err := objectID(r, "userId")
	if err != nil {
		badID(w, err)
		return
	}
	var req models.PreferenceRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	pref, err := a.PDB.Upsert(ctx, models.JobPreference{
		User:       uID,
		Skills:     cleanList(req.Skills),
		JobTypes:   cleanList(req.JobTypes),
		Locations:  cleanList(req.Locations),
		RemoteOnly: req.RemoteOnly,
		MinSalary:  req.MinSalary,
		UpdatedAt:  now(),
	})
	if err != nil {
		writeError(w, "failed to save job preferences", err)
		return
	}
	respond(w, http.StatusOK, "job preferences saved", pref)
}

// CreateSubscriptionHandler signs a user up for job digests
func (a JobActivity) CreateSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SubscriptionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	ids, err := idsFromHex("userId", req.UserID)
	if err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	freq := req.Frequency
	if freq == "" {
		freq = models.FrequencyWeekly
	}

	ts := now()
	sub := models.JobSubscription{
		User:      ids[0],
		Email:     req.Email,
		Keywords:  cleanList(req.Keywords),
		Skills:    cleanList(req.Skills),
		Frequency: freq,
		IsActive:  true,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := a.SDB.InsertOne(ctx, &sub)
	if err != nil {
		writeError(w, "failed to create subscription", err)
		return
	}
	if id, ok := res.Decode().(primitive.ObjectID); ok {
		sub.ID = id
	}
	respond(w, http.StatusCreated, "subscription created", sub)
}

// SubscriptionsHandler lists a user's active subscriptions
func (a JobActivity) SubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	uID, err := objectID(r, "userId")
	if err != nil {
		badID(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	subs, err := a.SDB.Find(ctx, bson.M{"user": uID, "isActive": true})
	if err != nil {
		writeError(w, "failed to get subscriptions", err)
		return
	}
	respond(w, http.StatusOK, "", subs)
}

// DeleteSubscriptionHandler deactivates a subscription
func (a JobActivity) DeleteSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	sID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := a.SDB.UpdateOne(ctx, bson.M{"_id": sID}, bson.M{"$set": bson.M{"isActive": false, "updatedAt": now()}})
	if err != nil {
		writeError(w, "failed to cancel subscription", err)
		return
	}
	if res.MatchedCount == 0 {
		writeError(w, "failed to cancel subscription", databases.ErrNotFound)
		return
	}
	respond(w, http.StatusOK, "subscription cancelled", nil)
}

// RecommendationsHandler ranks active jobs by how well they match the user's skills.
// Saved preference skills win over profile skills.
func (a JobActivity) RecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	uID, err := objectID(r, "userId")
	if err != nil {
		badID(w, err)
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = 10
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var userSkills []string
	pref, err := a.PDB.FindOne(ctx, bson.M{"user": uID})
	switch {
	case err == nil:
		userSkills = pref.Skills
	case !databases.IsNotFound(err):
		writeError(w, "failed to get job preferences", err)
		return
	}
	if len(userSkills) == 0 {
		user, err := a.UDB.FindOne(ctx, bson.M{"_id": uID})
		if err != nil {
			writeError(w, "failed to get user by ID", err)
			return
		}
		userSkills = user.Skills
	}

	opts := options.Find().SetLimit(recommendationPool).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	jobs, err := a.JDB.Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		writeError(w, "failed to get jobs", err)
		return
	}

	out := []models.JobRecommendation{}
	for _, s := range skills.Rank(userSkills, jobs) {
		if s.MatchPercentage == 0 || len(out) == limit {
			break
		}
		out = append(out, models.JobRecommendation{Job: s.Item, MatchPercentage: s.MatchPercentage})
	}
	zap.S().Debugw("recommendations computed", "userId", uID.Hex(), "candidates", len(jobs), "returned", len(out))
	respond(w, http.StatusOK, "", out)
}
