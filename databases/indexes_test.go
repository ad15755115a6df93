package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/alumnihub/alumni-api/databases"
	"github.com/alumnihub/alumni-api/databases/mocks"
)

func TestIndexes_UniqueRules(t *testing.T) {
	uniqueKeys := func(name string) [][]string {
		var out [][]string
		for _, m := range databases.Indexes[name] {
			if m.Options == nil || m.Options.Unique == nil || !*m.Options.Unique {
				continue
			}
			var keys []string
			for _, e := range m.Keys.(bson.D) {
				keys = append(keys, e.Key)
			}
			out = append(out, keys)
		}
		return out
	}

	assert.Contains(t, uniqueKeys("jobInteractions"), []string{"user", "job"})
	assert.Contains(t, uniqueKeys("businessReviews"), []string{"business", "reviewer"})
	assert.Contains(t, uniqueKeys("mentorshipMatches"), []string{"mentor", "mentee"})
	assert.Contains(t, uniqueKeys("businesses"), []string{"owner"})
	assert.Contains(t, uniqueKeys("users"), []string{"email"})
	// referrals may repeat for the same job and referrer
	assert.Empty(t, uniqueKeys("jobReferrals"))
}

func TestEnsureIndexes(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}
	coll.On("CreateIndexes", mock.Anything, mock.Anything).Return([]string{"ok"}, nil)
	db.On("Collection", mock.Anything).Return(coll)

	assert.NoError(t, databases.EnsureIndexes(context.Background(), db))
	coll.AssertNumberOfCalls(t, "CreateIndexes", len(databases.Indexes))
}

func TestEnsureIndexes_Error(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}
	coll.On("CreateIndexes", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))
	db.On("Collection", mock.Anything).Return(coll)

	err := databases.EnsureIndexes(context.Background(), db)
	assert.ErrorContains(t, err, "mocked-error")
}

func TestErrorClassifiers(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}}}

	assert.True(t, databases.IsDuplicateKey(dup))
	assert.True(t, databases.IsDuplicateKey(databases.ErrDuplicate))
	assert.False(t, databases.IsDuplicateKey(errors.New("boom")))

	assert.True(t, databases.IsNotFound(mongo.ErrNoDocuments))
	assert.True(t, databases.IsNotFound(databases.ErrNotFound))
	assert.False(t, databases.IsNotFound(dup))
}

func TestPaginate(t *testing.T) {
	opts := databases.Paginate(3, 10)
	assert.Equal(t, int64(10), *opts.Limit)
	assert.Equal(t, int64(20), *opts.Skip)

	opts = databases.Paginate(0, 0)
	assert.Equal(t, int64(20), *opts.Limit)
	assert.Equal(t, int64(0), *opts.Skip)

	opts = databases.Paginate(1, 1000)
	assert.Equal(t, int64(100), *opts.Limit)
}
