package databases

// go generate: mockery --name UserDatabase

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/alumnihub/alumni-api/models"
)

const userName = "users"

// UserDatabase contains the methods to use with the user database
type UserDatabase interface {
	Store[models.User]
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type userDatabase struct {
	collection[models.User]
}

// NewUserDatabase initializes a new instance of user database with the provided db connection
func NewUserDatabase(db DatabaseHelper) UserDatabase {
	return &userDatabase{collection[models.User]{db: db, name: userName}}
}

// FindByEmail looks up an active account, emails are stored lower-cased
func (u *userDatabase) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return u.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email)), "isDeleted": false})
}
