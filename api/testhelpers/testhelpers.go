// Package testhelpers builds mocked database wiring shared by handler and scheduler tests.
package testhelpers

import (
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alumnihub/alumni-api/databases"
	"github.com/alumnihub/alumni-api/databases/mocks"
)

// MockDB is a mocked DatabaseHelper that hands out one mocked collection per name
type MockDB struct {
	*mocks.DatabaseHelper
	collections map[string]*mocks.CollectionHelper
}

// NewMockDB returns an empty MockDB; collections are created on first use
func NewMockDB() *MockDB {
	return &MockDB{DatabaseHelper: &mocks.DatabaseHelper{}, collections: map[string]*mocks.CollectionHelper{}}
}

// C returns the mocked collection registered under name, creating it if needed
func (m *MockDB) C(name string) *mocks.CollectionHelper {
	if c, ok := m.collections[name]; ok {
		return c
	}
	c := &mocks.CollectionHelper{}
	m.collections[name] = c
	m.DatabaseHelper.On("Collection", name).Return(c)
	return c
}

// Decodes returns a SingleResultHelper that fills its target with run, or fails with err
func Decodes(err error, run func(v interface{})) *mocks.SingleResultHelper {
	sr := &mocks.SingleResultHelper{}
	call := sr.On("Decode", mock.Anything).Return(err)
	if run != nil {
		call.Run(func(args mock.Arguments) { run(args.Get(0)) })
	}
	return sr
}

// Cursor returns a CursorHelper whose All runs fill on the destination slice pointer
func Cursor(fill func(v interface{})) *mocks.CursorHelper {
	cur := &mocks.CursorHelper{}
	call := cur.On("All", mock.Anything, mock.Anything).Return(nil)
	if fill != nil {
		call.Run(func(args mock.Arguments) { fill(args.Get(1)) })
	}
	cur.On("Close", mock.Anything).Return(nil)
	return cur
}

// Inserted returns an InsertOneResultHelper reporting id
func Inserted(id primitive.ObjectID) *mocks.InsertOneResultHelper {
	res := &mocks.InsertOneResultHelper{}
	res.On("Decode").Return(id)
	return res
}

var _ databases.DatabaseHelper = (*MockDB)(nil)
