package handlers

import (
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/alumnihub/alumni-api/api"
	"github.com/alumnihub/alumni-api/databases"
	"github.com/alumnihub/alumni-api/models"
)

// Referral exported for testing purposes
type Referral struct {
	DB  databases.ReferralDatabase
	JDB databases.JobDatabase
	Hub Notifier
}

// CreateReferralHandler refers a candidate to the job in the path. A referrer may refer
// any number of candidates to the same job.
func (rf Referral) CreateReferralHandler(w http.ResponseWriter, r *http.Request) {
	jID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}
	var req models.CreateReferralRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "candidate name, candidate email and referrer are required", err)
		return
	}
	ids, err := idsFromHex("referrerId", req.ReferrerID)
	if err != nil {
		writeError(w, "failed to decode request", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	job, err := rf.JDB.FindOne(ctx, bson.M{"_id": jID})
	if err != nil {
		writeError(w, "failed to get job by ID", err)
		return
	}

	ts := now()
	ref := models.JobReferral{
		Job:               jID,
		Referrer:          ids[0],
		CandidateName:     strings.TrimSpace(req.CandidateName),
		CandidateEmail:    strings.ToLower(strings.TrimSpace(req.CandidateEmail)),
		CandidatePhone:    req.CandidatePhone,
		CandidateLinkedIn: req.CandidateLinkedIn,
		ResumeLink:        req.ResumeLink,
		Relationship:      req.Relationship,
		Notes:             req.Notes,
		Status:            models.ReferralPending,
		StatusHistory:     []models.StatusChange{},
		CreatedAt:         ts,
		UpdatedAt:         ts,
	}
	res, err := rf.DB.InsertOne(ctx, &ref)
	if err != nil {
		writeError(w, "failed to create referral", err)
		return
	}
	if id, ok := res.Decode().(primitive.ObjectID); ok {
		ref.ID = id
	}
	zap.S().Infow("referral created", "referralId", ref.ID.Hex(), "jobId", jID.Hex(), "referrerId", req.ReferrerID)

	if rf.Hub != nil && !job.PostedBy.IsZero() {
		rf.Hub.Notify(job.PostedBy.Hex(), models.Notification{
			Type:    "referral_created",
			Message: ref.CandidateName + " was referred for " + job.Title,
			Data:    map[string]interface{}{"jobId": jID.Hex(), "referralId": ref.ID.Hex()},
		})
	}
	respond(w, http.StatusCreated, "referral submitted", ref)
}

// ReferralsHandler returns a page of referrals filtered by status, jobId and referrerId
func (rf Referral) ReferralsHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()

	filter := bson.M{}
	if s := q.Get("status"); s != "" {
		if !models.ReferralStatus(s).Valid() {
			writeError(w, "unknown referral status", models.ErrInvalidStatus)
			return
		}
		filter["status"] = s
	}
	for param, field := range map[string]string{"jobId": "job", "referrerId": "referrer"} {
		v := q.Get(param)
		if v == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			badID(w, err)
			return
		}
		filter[field] = id
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	refs, err := rf.DB.Find(ctx, filter, databases.Paginate(page, limit))
	if err != nil {
		writeError(w, "failed to get referrals", err)
		return
	}
	total, err := rf.DB.CountDocuments(ctx, filter)
	if err != nil {
		writeError(w, "failed to count referrals", err)
		return
	}
	respondPage(w, page, limit, total, refs)
}

// ReferralByIDHandler returns a referral by ID
func (rf Referral) ReferralByIDHandler(w http.ResponseWriter, r *http.Request) {
	rID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ref, err := rf.DB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		writeError(w, "failed to get referral by ID", err)
		return
	}
	respond(w, http.StatusOK, "", ref)
}

// withdrawsOwn lets a referrer pull back their own referral
func withdrawsOwn(r *http.Request, ref *models.JobReferral, to models.ReferralStatus) bool {
	c, ok := api.ClaimsFromContext(r.Context())
	return ok && to == models.ReferralWithdrawn && c.UserID == ref.Referrer.Hex()
}

// UpdateReferralStatusHandler moves a referral along the hiring pipeline. The job
// poster and admins drive it; the referrer may only withdraw.
func (rf Referral) UpdateReferralStatusHandler(w http.ResponseWriter, r *http.Request) {
	rID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}
	var req models.StatusUpdateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	to := models.ReferralStatus(req.Status)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ref, err := rf.DB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		writeError(w, "failed to get referral by ID", err)
		return
	}
	job, err := rf.JDB.FindOne(ctx, bson.M{"_id": ref.Job})
	if err != nil {
		writeError(w, "failed to get job by ID", err)
		return
	}
	if !managesJob(r, job) && !withdrawsOwn(r, ref, to) {
		writeError(w, "only the job poster or an admin can move a referral", errForbidden)
		return
	}
	if err := models.ValidateReferralTransition(ref.Status, to); err != nil {
		writeError(w, "failed to update referral status", err)
		return
	}

	changedBy := req.UpdatedBy
	if c, ok := api.ClaimsFromContext(r.Context()); ok {
		changedBy = c.UserID
	}
	updated, err := rf.DB.UpdateStatus(ctx, rID, models.StatusChange{
		From:      string(ref.Status),
		To:        string(to),
		Note:      req.Note,
		ChangedBy: changedBy,
		ChangedAt: now(),
	})
	if err != nil {
		writeError(w, "failed to update referral status", err)
		return
	}
	api.StatusChanges.WithLabelValues("referral", string(to)).Inc()
	zap.S().Infow("referral status changed", "referralId", rID.Hex(), "from", ref.Status, "to", to)

	if rf.Hub != nil {
		rf.Hub.Notify(updated.Referrer.Hex(), models.Notification{
			Type:    "referral_status",
			Message: "Your referral of " + updated.CandidateName + " is now " + string(to),
			Data:    map[string]interface{}{"referralId": rID.Hex(), "status": to},
		})
	}
	respond(w, http.StatusOK, "referral status updated", updated)
}
