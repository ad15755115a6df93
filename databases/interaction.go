package databases

// go generate: mockery --name InteractionDatabase

import (
	"github.com/alumnihub/alumni-api/models"
)

const interactionName = "jobInteractions"

// InteractionDatabase contains the methods to use with the job interaction database.
// (user, job) is unique, a second insert fails with a duplicate key error.
type InteractionDatabase interface {
	Store[models.JobInteraction]
}

type interactionDatabase struct {
	collection[models.JobInteraction]
}

// NewInteractionDatabase initializes a new instance of interaction database with the provided db connection
func NewInteractionDatabase(db DatabaseHelper) InteractionDatabase {
	return &interactionDatabase{collection[models.JobInteraction]{db: db, name: interactionName}}
}
