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

// Business exported for testing purposes
type Business struct {
	DB  databases.BusinessDatabase
	RDB databases.ReviewDatabase
}

// CreateBusinessHandler lists an alumni business, one per owner
func (b Business) CreateBusinessHandler(w http.ResponseWriter, r *http.Request) {
	var req models.BusinessRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	ids, err := idsFromHex("ownerId", req.OwnerID)
	if err != nil {
		writeError(w, "failed to decode request", err)
		return
	}

	ts := now()
	biz := models.Business{
		Owner:       ids[0],
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    strings.TrimSpace(req.Category),
		Location:    req.Location,
		Contact:     req.Contact,
		Services:    req.Services,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if biz.Services == nil {
		biz.Services = []models.BusinessService{}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := b.DB.InsertOne(ctx, &biz)
	if err != nil {
		if databases.IsDuplicateKey(err) {
			writeError(w, "user already owns a business listing", err)
			return
		}
		writeError(w, "failed to create business", err)
		return
	}
	if id, ok := res.Decode().(primitive.ObjectID); ok {
		biz.ID = id
	}
	respond(w, http.StatusCreated, "business created", biz)
}

// BusinessesHandler returns a page of businesses, filterable by category, city and search
func (b Business) BusinessesHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()

	filter := bson.M{}
	if c := q.Get("category"); c != "" {
		filter["category"] = c
	}
	if c := q.Get("city"); c != "" {
		filter["location.city"] = containsFold(c)
	}
	if s := q.Get("search"); s != "" {
		re := containsFold(s)
		filter["$or"] = bson.A{bson.M{"name": re}, bson.M{"description": re}, bson.M{"services.name": re}}
	}
	if q.Get("verified") == "true" {
		filter["isVerified"] = true
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	out, err := b.DB.Find(ctx, filter, databases.Paginate(page, limit))
	if err != nil {
		writeError(w, "failed to get businesses", err)
		return
	}
	total, err := b.DB.CountDocuments(ctx, filter)
	if err != nil {
		writeError(w, "failed to count businesses", err)
		return
	}
	respondPage(w, page, limit, total, out)
}

// BusinessByIDHandler returns a business by ID
func (b Business) BusinessByIDHandler(w http.ResponseWriter, r *http.Request) {
	bID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	biz, err := b.DB.FindOne(ctx, bson.M{"_id": bID})
	if err != nil {
		writeError(w, "failed to get business by ID", err)
		return
	}
	respond(w, http.StatusOK, "", biz)
}

// UpdateBusinessHandler replaces the listing fields; ownership and ratings stay
func (b Business) UpdateBusinessHandler(w http.ResponseWriter, r *http.Request) {
	var req models.BusinessRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	services := req.Services
	if services == nil {
		services = []models.BusinessService{}
	}
	setFlags[models.Business](w, r, b.DB, "business", bson.M{
		"name":        strings.TrimSpace(req.Name),
		"description": req.Description,
		"category":    strings.TrimSpace(req.Category),
		"location":    req.Location,
		"contact":     req.Contact,
		"services":    services,
	})
}

// DeleteBusinessHandler removes a business; its reviews are left in place
func (b Business) DeleteBusinessHandler(w http.ResponseWriter, r *http.Request) {
	deleteDocument[models.Business](w, r, b.DB, "business")
}

// VerifyBusinessHandler sets or clears the verified badge
func (b Business) VerifyBusinessHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsVerified bool `json:"isVerified"`
	}
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	setFlags[models.Business](w, r, b.DB, "business", bson.M{"isVerified": req.IsVerified})
}

// CreateReviewHandler stores a review, one per reviewer and business, then refreshes the business rating
func (b Business) CreateReviewHandler(w http.ResponseWriter, r *http.Request) {
	bID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}
	var req models.ReviewRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	ids, err := idsFromHex("reviewerId", req.ReviewerID)
	if err != nil {
		writeError(w, "failed to decode request", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	biz, err := b.DB.FindOne(ctx, bson.M{"_id": bID})
	if err != nil {
		writeError(w, "failed to get business by ID", err)
		return
	}
	if biz.Owner == ids[0] {
		writeError(w, "owners cannot review their own business", errValidation)
		return
	}

	ts := now()
	review := models.BusinessReview{
		Business:  bID,
		Reviewer:  ids[0],
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	res, err := b.RDB.InsertOne(ctx, &review)
	if err != nil {
		if databases.IsDuplicateKey(err) {
			writeError(w, "user has already reviewed this business", err)
			return
		}
		writeError(w, "failed to create review", err)
		return
	}
	if id, ok := res.Decode().(primitive.ObjectID); ok {
		review.ID = id
	}

	// the review is stored; a failed refresh only leaves the cached rating stale
	summary, err := b.RDB.Summarize(ctx, bID)
	if err == nil {
		err = b.DB.SetRating(ctx, bID, summary, ts)
	}
	if err != nil {
		zap.S().Errorw("failed to refresh business rating", "businessId", bID.Hex(), "error", err)
	}
	respond(w, http.StatusCreated, "review created", review)
}

// ReviewsHandler returns a page of a business's reviews
func (b Business) ReviewsHandler(w http.ResponseWriter, r *http.Request) {
	bID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}
	page, limit := pageParams(r)
	filter := bson.M{"business": bID}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	out, err := b.RDB.Find(ctx, filter, databases.Paginate(page, limit))
	if err != nil {
		writeError(w, "failed to get reviews", err)
		return
	}
	total, err := b.RDB.CountDocuments(ctx, filter)
	if err != nil {
		writeError(w, "failed to count reviews", err)
		return
	}
	respondPage(w, page, limit, total, out)
}
