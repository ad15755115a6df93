package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BusinessLocation is embedded in Business
type BusinessLocation struct {
	Address    string `json:"address,omitempty" bson:"address,omitempty"`
	City       string `json:"city,omitempty" bson:"city,omitempty"`
	State      string `json:"state,omitempty" bson:"state,omitempty"`
	Country    string `json:"country,omitempty" bson:"country,omitempty"`
	PostalCode string `json:"postalCode,omitempty" bson:"postalCode,omitempty"`
}

// BusinessContact is embedded in Business
type BusinessContact struct {
	Email   string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" bson:"phone,omitempty"`
	Website string `json:"website,omitempty" bson:"website,omitempty" validate:"omitempty,url"`
}

// BusinessService is one offering listed by a business
type BusinessService struct {
	Name        string `json:"name" bson:"name" validate:"required"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Price       string `json:"price,omitempty" bson:"price,omitempty"`
}

// Business holds the structure for the businesses collection, one per owner
type Business struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Owner         primitive.ObjectID `json:"owner" bson:"owner"`
	Name          string             `json:"name" bson:"name"`
	Description   string             `json:"description" bson:"description"`
	Category      string             `json:"category" bson:"category"`
	Location      BusinessLocation   `json:"location" bson:"location"`
	Contact       BusinessContact    `json:"contact" bson:"contact"`
	Services      []BusinessService  `json:"services" bson:"services"`
	IsVerified    bool               `json:"isVerified" bson:"isVerified"`
	AverageRating float64            `json:"averageRating" bson:"averageRating"`
	ReviewCount   int                `json:"reviewCount" bson:"reviewCount"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// BusinessRequest holds the body for creating or editing a business
type BusinessRequest struct {
	OwnerID     string            `json:"ownerId" validate:"required"`
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description"`
	Category    string            `json:"category" validate:"required"`
	Location    BusinessLocation  `json:"location"`
	Contact     BusinessContact   `json:"contact"`
	Services    []BusinessService `json:"services" validate:"dive"`
}

// BusinessReview holds the structure for the businessReviews collection, one per (business, reviewer)
type BusinessReview struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Business  primitive.ObjectID `json:"business" bson:"business"`
	Reviewer  primitive.ObjectID `json:"reviewer" bson:"reviewer"`
	Rating    int                `json:"rating" bson:"rating"`
	Comment   string             `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ReviewRequest holds the body for reviewing a business
type ReviewRequest struct {
	ReviewerID string `json:"reviewerId" validate:"required"`
	Rating     int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment    string `json:"comment" validate:"max=2000"`
}

// RatingSummary is the result of the review aggregation
type RatingSummary struct {
	AverageRating float64 `bson:"averageRating"`
	ReviewCount   int     `bson:"reviewCount"`
}
