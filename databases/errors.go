package databases

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when a filtered write matched nothing
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a write would break a one-per-key rule
	ErrDuplicate = errors.New("document already exists")
	// ErrStatusChanged is returned when a conditional status write lost to a concurrent one
	ErrStatusChanged = errors.New("status was changed by another request")
)

// IsNotFound reports whether err means the addressed document does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, mongo.ErrNoDocuments)
}

// IsDuplicateKey reports whether err came from a unique index or an explicit duplicate check
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicate) || mongo.IsDuplicateKeyError(err)
}
