package handlers

import (
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alumnihub/alumni-api/api"
	"github.com/alumnihub/alumni-api/databases"
	"github.com/alumnihub/alumni-api/models"
)

// Achievement exported for testing purposes
type Achievement struct {
	DB databases.AchievementDatabase
}

// AchievementsHandler returns a page of published achievements, filterable by userId, category and featured
func (a Achievement) AchievementsHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()

	filter := bson.M{}
	if q.Get("includeUnpublished") != "true" {
		filter["isPublished"] = true
	}
	if u := q.Get("userId"); u != "" {
		uID, err := primitive.ObjectIDFromHex(u)
		if err != nil {
			badID(w, err)
			return
		}
		filter["user"] = uID
	}
	if c := q.Get("category"); c != "" {
		filter["category"] = c
	}
	if q.Get("featured") == "true" {
		filter["isFeatured"] = true
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	out, err := a.DB.Find(ctx, filter, databases.Paginate(page, limit))
	if err != nil {
		writeError(w, "failed to get achievements", err)
		return
	}
	total, err := a.DB.CountDocuments(ctx, filter)
	if err != nil {
		writeError(w, "failed to count achievements", err)
		return
	}
	respondPage(w, page, limit, total, out)
}

// CreateAchievementHandler records an achievement, published unless the body says otherwise
func (a Achievement) CreateAchievementHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AchievementRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	ids, err := idsFromHex("userId", req.UserID)
	if err != nil {
		writeError(w, "failed to decode request", err)
		return
	}

	ts := now()
	doc := models.Achievement{
		User:        ids[0],
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		Date:        req.Date,
		IsPublished: req.IsPublished == nil || *req.IsPublished,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if doc.Category == "" {
		doc.Category = "other"
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := a.DB.InsertOne(ctx, &doc)
	if err != nil {
		writeError(w, "failed to create achievement", err)
		return
	}
	if id, ok := res.Decode().(primitive.ObjectID); ok {
		doc.ID = id
	}
	respond(w, http.StatusCreated, "achievement created", doc)
}

// AchievementByIDHandler returns an achievement by ID
func (a Achievement) AchievementByIDHandler(w http.ResponseWriter, r *http.Request) {
	aID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doc, err := a.DB.FindOne(ctx, bson.M{"_id": aID})
	if err != nil {
		writeError(w, "failed to get achievement by ID", err)
		return
	}
	respond(w, http.StatusOK, "", doc)
}

// UpdateAchievementHandler replaces the editable fields
func (a Achievement) UpdateAchievementHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AchievementRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	set := bson.M{
		"title":       strings.TrimSpace(req.Title),
		"description": req.Description,
		"category":    req.Category,
		"date":        req.Date,
	}
	if req.IsPublished != nil {
		set["isPublished"] = *req.IsPublished
	}
	setFlags[models.Achievement](w, r, a.DB, "achievement", set)
}

// DeleteAchievementHandler removes an achievement
func (a Achievement) DeleteAchievementHandler(w http.ResponseWriter, r *http.Request) {
	deleteDocument[models.Achievement](w, r, a.DB, "achievement")
}

// FeaturedAchievementHandler sets or clears the featured flag
func (a Achievement) FeaturedAchievementHandler(w http.ResponseWriter, r *http.Request) {
	var req models.FeaturedRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	setFlags[models.Achievement](w, r, a.DB, "achievement", bson.M{"isFeatured": req.IsFeatured})
}
