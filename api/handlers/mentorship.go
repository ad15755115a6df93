package handlers

import (
	"context"
	"fmt"
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

// Mentorship exported for testing purposes
type Mentorship struct {
	MDB databases.MentorDatabase
	XDB databases.MatchDatabase
	SDB databases.SessionDatabase
	GDB databases.MessageDatabase
	UDB databases.UserDatabase
	Hub Notifier
}

func (m Mentorship) notify(userID primitive.ObjectID, kind, message string, data map[string]interface{}) {
	if m.Hub == nil {
		return
	}
	m.Hub.Notify(userID.Hex(), models.Notification{Type: kind, Message: message, Data: data})
}

// CreateMentorHandler registers the mentor profile of a user, one per user
func (m Mentorship) CreateMentorHandler(w http.ResponseWriter, r *http.Request) {
	var req models.MentorProfileRequest
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

	if _, err := m.UDB.FindOne(ctx, bson.M{"_id": ids[0], "isDeleted": false}); err != nil {
		writeError(w, "failed to get user by ID", err)
		return
	}

	ts := now()
	profile := models.MentorProfile{
		User:         ids[0],
		Expertise:    cleanList(req.Expertise),
		Industry:     req.Industry,
		Availability: req.Availability,
		MaxMentees:   req.MaxMentees,
		Bio:          req.Bio,
		IsActive:     req.IsActive == nil || *req.IsActive,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if profile.Availability == "" {
		profile.Availability = "flexible"
	}
	res, err := m.MDB.InsertOne(ctx, &profile)
	if err != nil {
		if databases.IsDuplicateKey(err) {
			writeError(w, "user already has a mentor profile", err)
			return
		}
		writeError(w, "failed to create mentor profile", err)
		return
	}
	if id, ok := res.Decode().(primitive.ObjectID); ok {
		profile.ID = id
	}
	respond(w, http.StatusCreated, "mentor profile created", profile)
}

// MentorsHandler returns a page of active mentors, filterable by expertise, industry and availability
func (m Mentorship) MentorsHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()

	filter := bson.M{"isActive": true}
	if e := q.Get("expertise"); e != "" {
		filter["expertise"] = containsFold(e)
	}
	if i := q.Get("industry"); i != "" {
		filter["industry"] = containsFold(i)
	}
	if a := q.Get("availability"); a != "" {
		filter["availability"] = a
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	mentors, err := m.MDB.Find(ctx, filter, databases.Paginate(page, limit))
	if err != nil {
		writeError(w, "failed to get mentors", err)
		return
	}
	total, err := m.MDB.CountDocuments(ctx, filter)
	if err != nil {
		writeError(w, "failed to count mentors", err)
		return
	}
	respondPage(w, page, limit, total, mentors)
}

// MentorByIDHandler returns a mentor profile by ID
func (m Mentorship) MentorByIDHandler(w http.ResponseWriter, r *http.Request) {
	mID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	profile, err := m.MDB.FindOne(ctx, bson.M{"_id": mID})
	if err != nil {
		writeError(w, "failed to get mentor by ID", err)
		return
	}
	respond(w, http.StatusOK, "", profile)
}

// UpdateMentorHandler replaces the editable mentor profile fields
func (m Mentorship) UpdateMentorHandler(w http.ResponseWriter, r *http.Request) {
	var req models.MentorProfileRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	set := bson.M{
		"expertise":  cleanList(req.Expertise),
		"industry":   req.Industry,
		"maxMentees": req.MaxMentees,
		"bio":        req.Bio,
	}
	if req.Availability != "" {
		set["availability"] = req.Availability
	}
	if req.IsActive != nil {
		set["isActive"] = *req.IsActive
	}
	setFlags[models.MentorProfile](w, r, m.MDB, "mentor profile", set)
}

// MentorSuggestionsHandler ranks active mentors by how well their expertise covers the user's skills
func (m Mentorship) MentorSuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	uID, err := objectID(r, "userId")
	if err != nil {
		badID(w, err)
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = 5
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := m.UDB.FindOne(ctx, bson.M{"_id": uID, "isDeleted": false})
	if err != nil {
		writeError(w, "failed to get user by ID", err)
		return
	}
	mentors, err := m.MDB.Find(ctx, bson.M{"isActive": true, "user": bson.M{"$ne": uID}})
	if err != nil {
		writeError(w, "failed to get mentors", err)
		return
	}

	out := []models.MentorSuggestion{}
	for _, s := range skills.Rank(user.Skills, mentors) {
		if s.MatchPercentage == 0 || len(out) == limit {
			break
		}
		out = append(out, models.MentorSuggestion{Mentor: s.Item, MatchPercentage: s.MatchPercentage})
	}
	respond(w, http.StatusOK, "", out)
}

// mentorFull reports whether the mentor already has MaxMentees active mentorships.
// Zero MaxMentees means no cap.
func (m Mentorship) mentorFull(ctx context.Context, profile *models.MentorProfile) (bool, error) {
	if profile.MaxMentees <= 0 {
		return false, nil
	}
	n, err := m.XDB.CountDocuments(ctx, bson.M{"mentor": profile.User, "status": models.MatchActive})
	if err != nil {
		return false, err
	}
	return n >= int64(profile.MaxMentees), nil
}

// CreateMatchHandler requests a mentorship. A mentor and mentee can only be paired once.
func (m Mentorship) CreateMatchHandler(w http.ResponseWriter, r *http.Request) {
	var req models.MatchRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	ids, err := idsFromHex("mentorId", req.MentorID, "menteeId", req.MenteeID)
	if err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	mentorID, menteeID := ids[0], ids[1]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	profile, err := m.MDB.FindOne(ctx, bson.M{"user": mentorID, "isActive": true})
	if err != nil {
		writeError(w, "failed to get mentor profile", err)
		return
	}
	full, err := m.mentorFull(ctx, profile)
	if err != nil {
		writeError(w, "failed to count mentorships", err)
		return
	}
	if full {
		writeError(w, "mentor has no free slots", errConflict)
		return
	}

	ts := now()
	match := models.MentorshipMatch{
		Mentor:    mentorID,
		Mentee:    menteeID,
		Goals:     req.Goals,
		Status:    models.MatchPending,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	res, err := m.XDB.InsertOne(ctx, &match)
	if err != nil {
		if databases.IsDuplicateKey(err) {
			writeError(w, "mentorship already exists for this pair", err)
			return
		}
		writeError(w, "failed to create mentorship", err)
		return
	}
	if id, ok := res.Decode().(primitive.ObjectID); ok {
		match.ID = id
	}
	m.notify(mentorID, "mentorship_request", "You have a new mentorship request",
		map[string]interface{}{"matchId": match.ID.Hex(), "menteeId": menteeID.Hex()})
	respond(w, http.StatusCreated, "mentorship requested", match)
}

// MatchesHandler lists mentorships, by ?userId on either side and ?status
func (m Mentorship) MatchesHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()

	filter := bson.M{}
	if u := q.Get("userId"); u != "" {
		uID, err := primitive.ObjectIDFromHex(u)
		if err != nil {
			badID(w, err)
			return
		}
		filter["$or"] = bson.A{bson.M{"mentor": uID}, bson.M{"mentee": uID}}
	}
	if s := q.Get("status"); s != "" {
		if !models.MatchStatus(s).Valid() {
			writeError(w, "unknown mentorship status", models.ErrInvalidStatus)
			return
		}
		filter["status"] = s
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	matches, err := m.XDB.Find(ctx, filter, databases.Paginate(page, limit))
	if err != nil {
		writeError(w, "failed to get mentorships", err)
		return
	}
	total, err := m.XDB.CountDocuments(ctx, filter)
	if err != nil {
		writeError(w, "failed to count mentorships", err)
		return
	}
	respondPage(w, page, limit, total, matches)
}

// UpdateMatchStatusHandler accepts, rejects, completes or cancels a mentorship.
// Accepting re-checks the mentor's capacity since several requests may be pending at once.
func (m Mentorship) UpdateMatchStatusHandler(w http.ResponseWriter, r *http.Request) {
	mID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}
	var req models.StatusUpdateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	to := models.MatchStatus(req.Status)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	match, err := m.XDB.FindOne(ctx, bson.M{"_id": mID})
	if err != nil {
		writeError(w, "failed to get mentorship by ID", err)
		return
	}
	if err := models.ValidateMatchTransition(match.Status, to); err != nil {
		writeError(w, "failed to update mentorship status", err)
		return
	}
	if to == models.MatchActive {
		profile, err := m.MDB.FindOne(ctx, bson.M{"user": match.Mentor})
		if err != nil {
			writeError(w, "failed to get mentor profile", err)
			return
		}
		full, err := m.mentorFull(ctx, profile)
		if err != nil {
			writeError(w, "failed to count mentorships", err)
			return
		}
		if full {
			writeError(w, "mentor has no free slots", errConflict)
			return
		}
	}
	updated, err := m.XDB.UpdateStatus(ctx, mID, match.Status, to, now())
	if err != nil {
		writeError(w, "failed to update mentorship status", err)
		return
	}
	api.StatusChanges.WithLabelValues("mentorship", string(to)).Inc()
	zap.S().Infow("mentorship status changed", "matchId", mID.Hex(), "from", match.Status, "to", to)

	data := map[string]interface{}{"matchId": mID.Hex(), "status": to}
	msg := fmt.Sprintf("Your mentorship is now %s", to)
	m.notify(updated.Mentor, "mentorship_status", msg, data)
	m.notify(updated.Mentee, "mentorship_status", msg, data)
	respond(w, http.StatusOK, "mentorship status updated", updated)
}

// MatchFeedbackHandler stores the rating of one side of an active or completed mentorship
func (m Mentorship) MatchFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	mID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}
	var req models.FeedbackRequest
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

	match, err := m.XDB.FindOne(ctx, bson.M{"_id": mID})
	if err != nil {
		writeError(w, "failed to get mentorship by ID", err)
		return
	}
	if !match.Participant(ids[0]) {
		writeError(w, "user is not part of this mentorship", errForbidden)
		return
	}
	if match.Status != models.MatchActive && match.Status != models.MatchCompleted {
		writeError(w, "feedback is only accepted for active or completed mentorships", errConflict)
		return
	}

	field := "menteeFeedback"
	if match.Mentor == ids[0] {
		field = "mentorFeedback"
	}
	ts := now()
	fb := models.MentorshipFeedback{Rating: req.Rating, Comment: req.Comment, SubmittedAt: ts}
	updated, err := m.XDB.FindOneAndUpdate(ctx, bson.M{"_id": mID}, bson.M{"$set": bson.M{field: fb, "updatedAt": ts}})
	if err != nil {
		writeError(w, "failed to save feedback", err)
		return
	}
	respond(w, http.StatusOK, "feedback saved", updated)
}

// CreateSessionHandler schedules a session under an active mentorship
func (m Mentorship) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	mID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}
	var req models.SessionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	match, err := m.XDB.FindOne(ctx, bson.M{"_id": mID})
	if err != nil {
		writeError(w, "failed to get mentorship by ID", err)
		return
	}
	if match.Status != models.MatchActive {
		writeError(w, "sessions can only be scheduled for active mentorships", errConflict)
		return
	}

	ts := now()
	session := models.MentorshipSession{
		Match:           mID,
		ScheduledAt:     req.ScheduledAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		Topic:           req.Topic,
		MeetingLink:     req.MeetingLink,
		Status:          models.SessionScheduled,
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
	if session.DurationMinutes == 0 {
		session.DurationMinutes = 60
	}
	res, err := m.SDB.InsertOne(ctx, &session)
	if err != nil {
		writeError(w, "failed to create session", err)
		return
	}
	if id, ok := res.Decode().(primitive.ObjectID); ok {
		session.ID = id
	}

	data := map[string]interface{}{"matchId": mID.Hex(), "sessionId": session.ID.Hex(), "scheduledAt": session.ScheduledAt}
	m.notify(match.Mentor, "session_scheduled", "A mentorship session was scheduled: "+session.Topic, data)
	m.notify(match.Mentee, "session_scheduled", "A mentorship session was scheduled: "+session.Topic, data)
	respond(w, http.StatusCreated, "session scheduled", session)
}

// SessionsHandler lists a mentorship's sessions in schedule order
func (m Mentorship) SessionsHandler(w http.ResponseWriter, r *http.Request) {
	mID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: 1}})
	sessions, err := m.SDB.Find(ctx, bson.M{"match": mID}, opts)
	if err != nil {
		writeError(w, "failed to get sessions", err)
		return
	}
	respond(w, http.StatusOK, "", sessions)
}

// UpdateSessionStatusHandler completes or cancels a session; the note becomes the session notes
func (m Mentorship) UpdateSessionStatusHandler(w http.ResponseWriter, r *http.Request) {
	sID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}
	var req models.StatusUpdateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	to := models.SessionStatus(req.Status)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	session, err := m.SDB.FindOne(ctx, bson.M{"_id": sID})
	if err != nil {
		writeError(w, "failed to get session by ID", err)
		return
	}
	if err := models.ValidateSessionTransition(session.Status, to); err != nil {
		writeError(w, "failed to update session status", err)
		return
	}
	updated, err := m.SDB.UpdateStatus(ctx, sID, session.Status, to, req.Note, now())
	if err != nil {
		writeError(w, "failed to update session status", err)
		return
	}
	api.StatusChanges.WithLabelValues("session", string(to)).Inc()
	respond(w, http.StatusOK, "session status updated", updated)
}

// SendMessageHandler stores a message between the two sides of a mentorship and pushes it to the recipient
func (m Mentorship) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	mID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}
	var req models.MessageRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	ids, err := idsFromHex("senderId", req.SenderID)
	if err != nil {
		writeError(w, "failed to decode request", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	match, err := m.XDB.FindOne(ctx, bson.M{"_id": mID})
	if err != nil {
		writeError(w, "failed to get mentorship by ID", err)
		return
	}
	if !match.Participant(ids[0]) {
		writeError(w, "sender is not part of this mentorship", errForbidden)
		return
	}
	if match.Status != models.MatchPending && match.Status != models.MatchActive {
		writeError(w, "mentorship is closed", errConflict)
		return
	}

	msg := models.MentorshipMessage{
		Match:     mID,
		Sender:    ids[0],
		Recipient: match.Counterpart(ids[0]),
		Content:   req.Content,
		CreatedAt: now(),
	}
	res, err := m.GDB.InsertOne(ctx, &msg)
	if err != nil {
		writeError(w, "failed to send message", err)
		return
	}
	if id, ok := res.Decode().(primitive.ObjectID); ok {
		msg.ID = id
	}
	if m.Hub != nil {
		m.Hub.Notify(msg.Recipient.Hex(), models.Notification{Type: "mentorship_message", Message: "New mentorship message", Data: msg})
	}
	respond(w, http.StatusCreated, "message sent", msg)
}

// MessagesHandler returns a page of a mentorship's messages, oldest first
func (m Mentorship) MessagesHandler(w http.ResponseWriter, r *http.Request) {
	mID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}
	page, limit := pageParams(r)
	filter := bson.M{"match": mID}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := databases.Paginate(page, limit).SetSort(bson.D{{Key: "createdAt", Value: 1}})
	msgs, err := m.GDB.Find(ctx, filter, opts)
	if err != nil {
		writeError(w, "failed to get messages", err)
		return
	}
	total, err := m.GDB.CountDocuments(ctx, filter)
	if err != nil {
		writeError(w, "failed to count messages", err)
		return
	}
	respondPage(w, page, limit, total, msgs)
}
