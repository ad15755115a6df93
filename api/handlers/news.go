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

// News exported for testing purposes
type News struct {
	DB databases.NewsDatabase
}

// NewsHandler returns a page of published news, filterable by category, tag and search
func (n News) NewsHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()

	filter := bson.M{}
	if q.Get("includeDrafts") != "true" {
		filter["isPublished"] = true
	}
	if c := q.Get("category"); c != "" {
		filter["category"] = c
	}
	if t := q.Get("tag"); t != "" {
		filter["tags"] = t
	}
	if s := q.Get("search"); s != "" {
		re := containsFold(s)
		filter["$or"] = bson.A{bson.M{"title": re}, bson.M{"content": re}}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	out, err := n.DB.Find(ctx, filter, databases.Paginate(page, limit))
	if err != nil {
		writeError(w, "failed to get news", err)
		return
	}
	total, err := n.DB.CountDocuments(ctx, filter)
	if err != nil {
		writeError(w, "failed to count news", err)
		return
	}
	respondPage(w, page, limit, total, out)
}

// CreateNewsHandler stores a draft article
func (n News) CreateNewsHandler(w http.ResponseWriter, r *http.Request) {
	var req models.NewsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	ids, err := idsFromHex("authorId", req.AuthorID)
	if err != nil {
		writeError(w, "failed to decode request", err)
		return
	}

	ts := now()
	doc := models.News{
		Author:    ids[0],
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		Category:  req.Category,
		Tags:      cleanList(req.Tags),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if doc.Category == "" {
		doc.Category = "general"
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := n.DB.InsertOne(ctx, &doc)
	if err != nil {
		writeError(w, "failed to create news", err)
		return
	}
	if id, ok := res.Decode().(primitive.ObjectID); ok {
		doc.ID = id
	}
	respond(w, http.StatusCreated, "news created", doc)
}

// NewsByIDHandler returns an article by ID
func (n News) NewsByIDHandler(w http.ResponseWriter, r *http.Request) {
	nID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doc, err := n.DB.FindOne(ctx, bson.M{"_id": nID})
	if err != nil {
		writeError(w, "failed to get news by ID", err)
		return
	}
	respond(w, http.StatusOK, "", doc)
}

// UpdateNewsHandler replaces the article body fields
func (n News) UpdateNewsHandler(w http.ResponseWriter, r *http.Request) {
	var req models.NewsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	setFlags[models.News](w, r, n.DB, "news", bson.M{
		"title":    strings.TrimSpace(req.Title),
		"content":  req.Content,
		"category": req.Category,
		"tags":     cleanList(req.Tags),
	})
}

// DeleteNewsHandler removes an article
func (n News) DeleteNewsHandler(w http.ResponseWriter, r *http.Request) {
	deleteDocument[models.News](w, r, n.DB, "news")
}

// PublishNewsHandler publishes or unpublishes an article
func (n News) PublishNewsHandler(w http.ResponseWriter, r *http.Request) {
	var req models.PublishRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	set := bson.M{"isPublished": req.IsPublished, "publishedAt": nil}
	if req.IsPublished {
		set["publishedAt"] = now()
	}
	setFlags[models.News](w, r, n.DB, "news", set)
}
