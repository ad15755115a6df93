package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alumnihub/alumni-api/api"
	"github.com/alumnihub/alumni-api/config"
	"github.com/alumnihub/alumni-api/databases"
	"github.com/alumnihub/alumni-api/models"
)

var validate = validator.New()

// now is swapped in tests that need a fixed clock
var now = func() time.Time { return time.Now().UTC() }

// errValidation marks request bodies that failed decoding or validation
var errValidation = errors.New("invalid request body")

// errConflict marks requests that are well formed but clash with the stored state
var errConflict = errors.New("request conflicts with current state")

// errForbidden marks callers that are authenticated but may not touch the resource
var errForbidden = errors.New("not allowed for this user")

// decodeAndValidate reads a JSON body into v and runs its validate tags
func decodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errValidation, err)
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", errValidation, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", errValidation, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func respond(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, models.Response{Success: true, Message: message, Data: data})
}

func respondPage(w http.ResponseWriter, page, limit int, total int64, data interface{}) {
	writeJSON(w, http.StatusOK, models.PaginatedResponse{Success: true, Page: page, Limit: limit, TotalCount: total, Data: data})
}

// objectID parses the hex id in the named path variable
func objectID(r *http.Request, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(mux.Vars(r)[name])
}

// pageParams reads ?page and ?limit with defaults of 1 and 20
func pageParams(r *http.Request) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// writeError maps an error to its status code and writes the error envelope
func writeError(w http.ResponseWriter, message string, err error) {
	config.ErrorStatus(message, statusFor(err), w, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errValidation), errors.Is(err, models.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case databases.IsNotFound(err):
		return http.StatusNotFound
	case databases.IsDuplicateKey(err),
		errors.Is(err, errConflict),
		errors.Is(err, databases.ErrStatusChanged),
		errors.Is(err, models.ErrIllegalTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// managesJob reports whether the caller's token belongs to the job poster or an admin
func managesJob(r *http.Request, job *models.Job) bool {
	c, ok := api.ClaimsFromContext(r.Context())
	if !ok {
		return false
	}
	return c.Type == models.UserTypeAdmin || c.UserID == job.PostedBy.Hex()
}

// badID writes the 400 for a malformed path id
func badID(w http.ResponseWriter, err error) {
	config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
}

// idsFromHex parses request-body ids, naming the first bad field
func idsFromHex(pairs ...string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		id, err := primitive.ObjectIDFromHex(pairs[i+1])
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a valid id", errValidation, pairs[i])
		}
		out = append(out, id)
	}
	return out, nil
}

// cleanList trims entries and drops blanks
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// deleteDocument removes the document named by the "id" path variable
func deleteDocument[T any](w http.ResponseWriter, r *http.Request, db databases.Store[T], what string) {
	id, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := db.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		writeError(w, "failed to delete "+what, err)
		return
	}
	if res.DeletedCount == 0 {
		writeError(w, "failed to delete "+what, databases.ErrNotFound)
		return
	}
	respond(w, http.StatusOK, what+" deleted", nil)
}

// setFlags applies set to the document named by the "id" path variable and returns it
func setFlags[T any](w http.ResponseWriter, r *http.Request, db databases.Store[T], what string, set bson.M) {
	id, err := objectID(r, "id")
	if err != nil {
		badID(w, err)
		return
	}
	set["updatedAt"] = now()

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doc, err := db.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		writeError(w, "failed to update "+what, err)
		return
	}
	respond(w, http.StatusOK, what+" updated", doc)
}
