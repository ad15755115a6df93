package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/alumnihub/alumni-api/api"
	"github.com/alumnihub/alumni-api/databases"
	"github.com/alumnihub/alumni-api/models"
)

// Job exported for testing purposes
type Job struct {
	DB  databases.JobDatabase
	Hub Notifier
}

// containsFold builds a case-insensitive substring match for a user-supplied term
func containsFold(term string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(term)), Options: "i"}
}

// jobFilter turns the list query string into a mongo filter
func jobFilter(r *http.Request) bson.M {
	q := r.URL.Query()
	filter := bson.M{}
	if q.Get("includeInactive") != "true" {
		filter["isActive"] = true
	}
	if s := q.Get("search"); s != "" {
		re := containsFold(s)
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"company": re},
			bson.M{"description": re},
		}
	}
	if l := q.Get("location"); l != "" {
		filter["location"] = containsFold(l)
	}
	if t := q.Get("type"); t != "" {
		filter["type"] = t
	}
	if s := q.Get("skill"); s != "" {
		filter["skills"] = containsFold(s)
	}
	if q.Get("featured") == "true" {
		filter["isFeatured"] = true
	}
	return filter
}

// CreateJobHandler posts a new job
func (j Job) CreateJobHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateJobRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	ids, err := idsFromHex("postedBy", req.PostedBy)
	if err != nil {
		writeError(w, "failed to decode request", err)
		return
	}

	ts := now()
	job := models.Job{
		Company:     strings.TrimSpace(req.Company),
		Title:       strings.TrimSpace(req.Title),
		Location:    req.Location,
		Description: req.Description,
		Type:        req.Type,
		Salary:      req.Salary,
		Skills:      cleanList(req.Skills),
		PostedBy:    ids[0],
		Applicants:  []models.Applicant{},
		IsActive:    true,
		Deadline:    req.Deadline,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := j.DB.InsertOne(ctx, &job)
	if err != nil {
		writeError(w, "failed to create job", err)
		return
	}
	if id, ok := res.Decode().(primitive.ObjectID); ok {
		job.ID = id
	}
	zap.S().Infow("job created", "jobId", job.ID.Hex(), "postedBy", req.PostedBy)
	respond(w, http.StatusCreated, "job created", job)
}

// JobsHandler returns a page of jobs matching the query filters
func (j Job) JobsHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	filter := jobFilter(r)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	jobs, err := j.DB.Find(ctx, filter, databases.Paginate(page, limit))
	if err != nil {
		writeError(w, "failed to get jobs", err)
		return
	}
	total, err := j.DB.CountDocuments(ctx, filter)
	if err != nil {
		writeError(w, "failed to count jobs", err)
		return
	}
	respondPage(w, page, limit, total, jobs)
}

// JobByIDHandler returns a job by ID
func (j Job) JobByIDHandler(w http.ResponseWriter, r *http.Request) {
	jID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	job, err := j.DB.FindOne(ctx, bson.M{"_id": jID})
	if err != nil {
		writeError(w, "failed to get job by ID", err)
		return
	}
	respond(w, http.StatusOK, "", job)
}

// UpdateJobHandler edits the fields present in the body
func (j Job) UpdateJobHandler(w http.ResponseWriter, r *http.Request) {
	jID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}
	var req models.UpdateJobRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}

	set := bson.M{"updatedAt": now()}
	if req.Company != nil {
		set["company"] = strings.TrimSpace(*req.Company)
	}
	if req.Title != nil {
		set["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Location != nil {
		set["location"] = *req.Location
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Type != nil {
		set["type"] = *req.Type
	}
	if req.Salary != nil {
		set["salary"] = *req.Salary
	}
	if req.Skills != nil {
		set["skills"] = cleanList(*req.Skills)
	}
	if req.IsActive != nil {
		set["isActive"] = *req.IsActive
	}
	if req.Deadline != nil {
		set["deadline"] = *req.Deadline
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	job, err := j.DB.FindOneAndUpdate(ctx, bson.M{"_id": jID}, bson.M{"$set": set})
	if err != nil {
		writeError(w, "failed to update job", err)
		return
	}
	respond(w, http.StatusOK, "job updated", job)
}

// DeleteJobHandler removes a job. Referrals and interactions pointing at it are left alone.
func (j Job) DeleteJobHandler(w http.ResponseWriter, r *http.Request) {
	deleteDocument[models.Job](w, r, j.DB, "job")
}

// FeaturedJobHandler sets or clears the featured flag
func (j Job) FeaturedJobHandler(w http.ResponseWriter, r *http.Request) {
	var req models.FeaturedRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	setFlags[models.Job](w, r, j.DB, "job", bson.M{"isFeatured": req.IsFeatured})
}

// ApplyJobHandler adds the user to the job's applicants with status pending
func (j Job) ApplyJobHandler(w http.ResponseWriter, r *http.Request) {
	jID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}
	var req models.ApplyRequest
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

	applicant := models.Applicant{User: ids[0], Status: models.ApplicationPending, AppliedAt: now()}
	if err := j.DB.AddApplicant(ctx, jID, applicant.User, applicant.AppliedAt); err != nil {
		if databases.IsDuplicateKey(err) {
			writeError(w, "user has already applied to this job", err)
			return
		}
		writeError(w, "failed to apply to job", err)
		return
	}
	zap.S().Infow("application submitted", "jobId", jID.Hex(), "userId", req.UserID)
	respond(w, http.StatusCreated, "application submitted", applicant)
}

// ApplicantsHandler lists a job's applicants, optionally by ?status
func (j Job) ApplicantsHandler(w http.ResponseWriter, r *http.Request) {
	jID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	job, err := j.DB.FindOne(ctx, bson.M{"_id": jID})
	if err != nil {
		writeError(w, "failed to get job by ID", err)
		return
	}

	status := models.ApplicationStatus(r.URL.Query().Get("status"))
	out := []models.Applicant{}
	for _, a := range job.Applicants {
		if status == "" || a.Status == status {
			out = append(out, a)
		}
	}
	respond(w, http.StatusOK, "", out)
}

// AppliedJobsHandler returns the jobs a user has applied to
func (j Job) AppliedJobsHandler(w http.ResponseWriter, r *http.Request) {
	uID, err := objectID(r, "userId")
	if err != nil {
		badID(w, err)
		return
	}
	page, limit := pageParams(r)
	filter := bson.M{"applicants.user": uID}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	jobs, err := j.DB.Find(ctx, filter, databases.Paginate(page, limit))
	if err != nil {
		writeError(w, "failed to get applied jobs", err)
		return
	}
	total, err := j.DB.CountDocuments(ctx, filter)
	if err != nil {
		writeError(w, "failed to count applied jobs", err)
		return
	}
	respondPage(w, page, limit, total, jobs)
}

// UpdateApplicantStatusHandler moves one application to a new status and tells the applicant
func (j Job) UpdateApplicantStatusHandler(w http.ResponseWriter, r *http.Request) {
	jID, err := objectID(r, "jobId")
	if err != nil {
		badID(w, err)
		return
	}
	uID, err := objectID(r, "userId")
	if err != nil {
		badID(w, err)
		return
	}
	var req models.StatusUpdateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	to := models.ApplicationStatus(req.Status)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	job, err := j.DB.FindOne(ctx, bson.M{"_id": jID})
	if err != nil {
		writeError(w, "failed to get job by ID", err)
		return
	}
	if !managesJob(r, job) {
		writeError(w, "only the job poster or an admin can change applications", errForbidden)
		return
	}
	applicant, ok := job.FindApplicant(uID)
	if !ok {
		writeError(w, "user has not applied to this job", databases.ErrNotFound)
		return
	}
	if err := models.ValidateApplicationTransition(applicant.Status, to); err != nil {
		writeError(w, "failed to update application status", err)
		return
	}

	ts := now()
	if err := j.DB.SetApplicantStatus(ctx, jID, uID, applicant.Status, to, ts); err != nil {
		writeError(w, "failed to update application status", err)
		return
	}
	api.StatusChanges.WithLabelValues("application", string(to)).Inc()
	zap.S().Infow("application status changed", "jobId", jID.Hex(), "userId", uID.Hex(), "from", applicant.Status, "to", to)

	applicant.Status = to
	applicant.UpdatedAt = &ts
	if j.Hub != nil {
		j.Hub.Notify(uID.Hex(), models.Notification{
			Type:    "application_status",
			Message: "Your application for " + job.Title + " at " + job.Company + " is now " + string(to),
			Data:    map[string]interface{}{"jobId": jID.Hex(), "status": to},
		})
	}
	respond(w, http.StatusOK, "application status updated", applicant)
}
