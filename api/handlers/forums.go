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

// Forum exported for testing purposes
type Forum struct {
	DB  databases.ForumDatabase
	Hub Notifier
}

// PostsHandler returns a page of threads, filterable by category, tag and search
func (f Forum) PostsHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()

	filter := bson.M{"isDeleted": false}
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

	posts, err := f.DB.Find(ctx, filter, databases.Paginate(page, limit))
	if err != nil {
		writeError(w, "failed to get forum posts", err)
		return
	}
	total, err := f.DB.CountDocuments(ctx, filter)
	if err != nil {
		writeError(w, "failed to count forum posts", err)
		return
	}
	respondPage(w, page, limit, total, posts)
}

// CreatePostHandler starts a thread
func (f Forum) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ForumPostRequest
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
	post := models.ForumPost{
		Author:    ids[0],
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		Category:  req.Category,
		Tags:      cleanList(req.Tags),
		Replies:   []models.ForumReply{},
		Likes:     []primitive.ObjectID{},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if post.Category == "" {
		post.Category = "general"
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := f.DB.InsertOne(ctx, &post)
	if err != nil {
		writeError(w, "failed to create forum post", err)
		return
	}
	if id, ok := res.Decode().(primitive.ObjectID); ok {
		post.ID = id
	}
	respond(w, http.StatusCreated, "forum post created", post)
}

// PostByIDHandler returns a thread with its replies
func (f Forum) PostByIDHandler(w http.ResponseWriter, r *http.Request) {
	pID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	post, err := f.DB.FindOne(ctx, bson.M{"_id": pID, "isDeleted": false})
	if err != nil {
		writeError(w, "failed to get forum post by ID", err)
		return
	}
	respond(w, http.StatusOK, "", post)
}

// DeletePostHandler hides a thread, replies stay stored with it
func (f Forum) DeletePostHandler(w http.ResponseWriter, r *http.Request) {
	setFlags[models.ForumPost](w, r, f.DB, "forum post", bson.M{"isDeleted": true})
}

// ReplyHandler appends a reply and tells the thread author
func (f Forum) ReplyHandler(w http.ResponseWriter, r *http.Request) {
	pID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}
	var req models.ForumReplyRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	ids, err := idsFromHex("authorId", req.AuthorID)
	if err != nil {
		writeError(w, "failed to decode request", err)
		return
	}

	reply := models.ForumReply{ID: primitive.NewObjectID(), Author: ids[0], Content: req.Content, CreatedAt: now()}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	post, err := f.DB.AddReply(ctx, pID, reply)
	if err != nil {
		writeError(w, "failed to reply to forum post", err)
		return
	}
	if f.Hub != nil && post.Author != reply.Author {
		f.Hub.Notify(post.Author.Hex(), models.Notification{
			Type:    "forum_reply",
			Message: "New reply on " + post.Title,
			Data:    map[string]interface{}{"postId": pID.Hex(), "replyId": reply.ID.Hex()},
		})
	}
	respond(w, http.StatusCreated, "reply added", reply)
}

// LikeHandler records a like, liking twice changes nothing
func (f Forum) LikeHandler(w http.ResponseWriter, r *http.Request) {
	pID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}
	var req models.UserRef
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

	post, err := f.DB.Like(ctx, pID, ids[0], now())
	if err != nil {
		writeError(w, "failed to like forum post", err)
		return
	}
	respond(w, http.StatusOK, "post liked", map[string]interface{}{"_id": post.ID, "likes": len(post.Likes)})
}
