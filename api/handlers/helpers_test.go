package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/alumnihub/alumni-api/databases"
	"github.com/alumnihub/alumni-api/models"
)

func TestStatusFor(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: email", errValidation), http.StatusBadRequest},
		{"invalid status", models.ErrInvalidStatus, http.StatusBadRequest},
		{"not found", databases.ErrNotFound, http.StatusNotFound},
		{"no documents", mongo.ErrNoDocuments, http.StatusNotFound},
		{"duplicate key", dup, http.StatusConflict},
		{"conflict", fmt.Errorf("%w: mentor is full", errConflict), http.StatusConflict},
		{"forbidden", errForbidden, http.StatusForbidden},
		{"status changed", databases.ErrStatusChanged, http.StatusConflict},
		{"illegal transition", models.ErrIllegalTransition, http.StatusConflict},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestIDsFromHex(t *testing.T) {
	ids, err := idsFromHex("jobId", "64b7f0c2a1b2c3d4e5f60718", "userId", "64b7f0c2a1b2c3d4e5f60719")
	assert.NoError(t, err)
	assert.Len(t, ids, 2)

	_, err = idsFromHex("jobId", "64b7f0c2a1b2c3d4e5f60718", "userId", "nope")
	assert.ErrorIs(t, err, errValidation)
	assert.Contains(t, err.Error(), "userId")
}
