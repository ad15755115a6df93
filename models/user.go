package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserType separates students, alumni and the back office
type UserType string

// User types
const (
	UserTypeStudent UserType = "student"
	UserTypeAlumnus UserType = "alumnus"
	UserTypeAdmin   UserType = "admin"
)

// User holds the structure for the users collection in mongo
type User struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name"`
	Email          string             `json:"email" bson:"email"`
	Password       string             `json:"-" bson:"password"`
	Type           UserType           `json:"type" bson:"type"`
	Department     string             `json:"department,omitempty" bson:"department,omitempty"`
	GraduationYear int                `json:"graduationYear,omitempty" bson:"graduationYear,omitempty"`
	Company        string             `json:"company,omitempty" bson:"company,omitempty"`
	JobTitle       string             `json:"jobTitle,omitempty" bson:"jobTitle,omitempty"`
	Location       string             `json:"location,omitempty" bson:"location,omitempty"`
	Bio            string             `json:"bio,omitempty" bson:"bio,omitempty"`
	LinkedIn       string             `json:"linkedIn,omitempty" bson:"linkedIn,omitempty"`
	Skills         []string           `json:"skills" bson:"skills"`
	IsDeleted      bool               `json:"isDeleted" bson:"isDeleted"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// RegisterRequest holds the body of a sign up call. Admins are only created out of band.
type RegisterRequest struct {
	Name           string   `json:"name" validate:"required"`
	Email          string   `json:"email" validate:"required,email"`
	Password       string   `json:"password" validate:"required,min=8"`
	Type           UserType `json:"type" validate:"required,oneof=student alumnus"`
	Department     string   `json:"department"`
	GraduationYear int      `json:"graduationYear" validate:"omitempty,gte=1900,lte=2100"`
	Skills         []string `json:"skills"`
}

// UpdateUserRequest holds the profile fields a user may change; nil means untouched
type UpdateUserRequest struct {
	Name           *string   `json:"name,omitempty" validate:"omitempty,min=1"`
	Department     *string   `json:"department,omitempty"`
	GraduationYear *int      `json:"graduationYear,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	Company        *string   `json:"company,omitempty"`
	JobTitle       *string   `json:"jobTitle,omitempty"`
	Location       *string   `json:"location,omitempty"`
	Bio            *string   `json:"bio,omitempty"`
	LinkedIn       *string   `json:"linkedIn,omitempty"`
	Skills         *[]string `json:"skills,omitempty"`
}

// TokenResponse is returned by the token endpoint
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"_id"`
	Type      UserType  `json:"type"`
}
