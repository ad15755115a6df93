package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/alumnihub/alumni-api/api"
	"github.com/alumnihub/alumni-api/databases"
	"github.com/alumnihub/alumni-api/models"
)

// User exported for testing purposes
type User struct {
	DB  databases.UserDatabase
	EDB databases.EndorsementDatabase
}

// UserCreateHandler registers a student or alumnus
func (u User) UserCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}

	// hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, "failed to hash password", err)
		return
	}

	ts := now()
	user := models.User{
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Password:       string(hashedPassword),
		Type:           req.Type,
		Department:     req.Department,
		GraduationYear: req.GraduationYear,
		Skills:         cleanList(req.Skills),
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	// the unique email index rejects the second of two racing sign ups
	res, err := u.DB.InsertOne(ctx, &user)
	if err != nil {
		if databases.IsDuplicateKey(err) {
			writeError(w, "email already exists", err)
			return
		}
		writeError(w, "failed to insert user", err)
		return
	}
	if id, ok := res.Decode().(primitive.ObjectID); ok {
		user.ID = id
	}
	zap.S().Infow("user registered", "userId", user.ID.Hex(), "type", user.Type)
	respond(w, http.StatusCreated, "user registered", user)
}

// UserCheckEmailHandler reports whether an email is free to register
func (u User) UserCheckEmailHandler(w http.ResponseWriter, r *http.Request) {
	var req models.NewsletterRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "a valid email is required", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	n, err := u.DB.CountDocuments(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(req.Email))})
	if err != nil {
		writeError(w, "failed to check email", err)
		return
	}
	if n > 0 {
		writeError(w, "email already exists", databases.ErrDuplicate)
		return
	}
	respond(w, http.StatusOK, "email is available", nil)
}

// UsersHandler returns a page of the directory, filterable by type, search, department,
// graduationYear and skill
func (u User) UsersHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()

	filter := bson.M{"isDeleted": false}
	if t := q.Get("type"); t != "" {
		filter["type"] = t
	}
	if s := q.Get("search"); s != "" {
		re := containsFold(s)
		filter["$or"] = bson.A{bson.M{"name": re}, bson.M{"company": re}, bson.M{"jobTitle": re}}
	}
	if d := q.Get("department"); d != "" {
		filter["department"] = containsFold(d)
	}
	if y := q.Get("graduationYear"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			writeError(w, "graduationYear must be a number", errValidation)
			return
		}
		filter["graduationYear"] = year
	}
	if s := q.Get("skill"); s != "" {
		filter["skills"] = containsFold(s)
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	users, err := u.DB.Find(ctx, filter, databases.Paginate(page, limit))
	if err != nil {
		writeError(w, "failed to get users", err)
		return
	}
	total, err := u.DB.CountDocuments(ctx, filter)
	if err != nil {
		writeError(w, "failed to count users", err)
		return
	}
	respondPage(w, page, limit, total, users)
}

// UserHandler returns a user given a userID
func (u User) UserHandler(w http.ResponseWriter, r *http.Request) {
	uID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindOne(ctx, bson.M{"_id": uID, "isDeleted": false})
	if err != nil {
		writeError(w, "failed to get user by ID", err)
		return
	}
	respond(w, http.StatusOK, "", user)
}

// UpdateUserByIDHandler edits the profile fields present in the body
func (u User) UpdateUserByIDHandler(w http.ResponseWriter, r *http.Request) {
	uID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}
	var req models.UpdateUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}

	set := bson.M{"updatedAt": now()}
	for field, v := range map[string]*string{
		"department": req.Department,
		"company":    req.Company,
		"jobTitle":   req.JobTitle,
		"location":   req.Location,
		"bio":        req.Bio,
		"linkedIn":   req.LinkedIn,
	} {
		if v != nil {
			set[field] = strings.TrimSpace(*v)
		}
	}
	if req.Name != nil {
		set["name"] = strings.TrimSpace(*req.Name)
	}
	if req.GraduationYear != nil {
		set["graduationYear"] = *req.GraduationYear
	}
	if req.Skills != nil {
		set["skills"] = cleanList(*req.Skills)
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindOneAndUpdate(ctx, bson.M{"_id": uID, "isDeleted": false}, bson.M{"$set": set})
	if err != nil {
		writeError(w, "failed to update user", err)
		return
	}
	respond(w, http.StatusOK, "user updated", user)
}

// DeleteUserHandler marks a user deleted. Nothing that references the user is touched.
func (u User) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	setFlags[models.User](w, r, u.DB, "user", bson.M{"isDeleted": true})
}

// EndorseHandler endorses one of a user's skills, once per endorser and skill
func (u User) EndorseHandler(w http.ResponseWriter, r *http.Request) {
	uID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}
	var req models.EndorsementRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	ids, err := idsFromHex("endorserId", req.EndorserID)
	if err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	if ids[0] == uID {
		writeError(w, "users cannot endorse themselves", errValidation)
		return
	}

	e := models.Endorsement{
		User:      uID,
		Endorser:  ids[0],
		Skill:     strings.ToLower(strings.TrimSpace(req.Skill)),
		Comment:   req.Comment,
		CreatedAt: now(),
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := u.DB.FindOne(ctx, bson.M{"_id": uID, "isDeleted": false}); err != nil {
		writeError(w, "failed to get user by ID", err)
		return
	}
	res, err := u.EDB.InsertOne(ctx, &e)
	if err != nil {
		if databases.IsDuplicateKey(err) {
			writeError(w, "skill already endorsed by this user", err)
			return
		}
		writeError(w, "failed to endorse skill", err)
		return
	}
	if id, ok := res.Decode().(primitive.ObjectID); ok {
		e.ID = id
	}
	respond(w, http.StatusCreated, "skill endorsed", e)
}

// EndorsementsHandler lists a user's endorsements, optionally by ?skill
func (u User) EndorsementsHandler(w http.ResponseWriter, r *http.Request) {
	uID, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}
	filter := bson.M{"user": uID}
	if s := r.URL.Query().Get("skill"); s != "" {
		filter["skill"] = strings.ToLower(strings.TrimSpace(s))
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	out, err := u.EDB.Find(ctx, filter)
	if err != nil {
		writeError(w, "failed to get endorsements", err)
		return
	}
	respond(w, http.StatusOK, "", out)
}
