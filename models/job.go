package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Job holds the structure for the jobs collection in mongo
type Job struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Company     string             `json:"company" bson:"company"`
	Title       string             `json:"title" bson:"title"`
	Location    string             `json:"location" bson:"location"`
	Description string             `json:"description" bson:"description"`
	Type        string             `json:"type" bson:"type"`
	Salary      string             `json:"salary,omitempty" bson:"salary,omitempty"`
	Skills      []string           `json:"skills" bson:"skills"`
	PostedBy    primitive.ObjectID `json:"postedBy" bson:"postedBy"`
	Applicants  []Applicant        `json:"applicants" bson:"applicants"`
	IsFeatured  bool               `json:"isFeatured" bson:"isFeatured"`
	IsActive    bool               `json:"isActive" bson:"isActive"`
	Deadline    *time.Time         `json:"deadline,omitempty" bson:"deadline,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Applicant is one application embedded in Job.Applicants
type Applicant struct {
	User      primitive.ObjectID `json:"user" bson:"user"`
	Status    ApplicationStatus  `json:"status" bson:"status"`
	AppliedAt time.Time          `json:"appliedAt" bson:"appliedAt"`
	UpdatedAt *time.Time         `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// FindApplicant returns the application of userID, if any
func (j Job) FindApplicant(userID primitive.ObjectID) (Applicant, bool) {
	for _, a := range j.Applicants {
		if a.User == userID {
			return a, true
		}
	}
	return Applicant{}, false
}

// CreateJobRequest holds the body for posting a job
type CreateJobRequest struct {
	Company     string     `json:"company" validate:"required"`
	Title       string     `json:"title" validate:"required"`
	Location    string     `json:"location"`
	Description string     `json:"description" validate:"required"`
	Type        string     `json:"type" validate:"omitempty,oneof=full-time part-time internship contract"`
	Salary      string     `json:"salary"`
	Skills      []string   `json:"skills"`
	PostedBy    string     `json:"postedBy" validate:"required"`
	Deadline    *time.Time `json:"deadline"`
}

// UpdateJobRequest holds the editable job fields; nil means untouched
type UpdateJobRequest struct {
	Company     *string    `json:"company,omitempty" validate:"omitempty,min=1"`
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1"`
	Location    *string    `json:"location,omitempty"`
	Description *string    `json:"description,omitempty"`
	Type        *string    `json:"type,omitempty" validate:"omitempty,oneof=full-time part-time internship contract"`
	Salary      *string    `json:"salary,omitempty"`
	Skills      *[]string  `json:"skills,omitempty"`
	IsActive    *bool      `json:"isActive,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// ApplyRequest holds the body of an application
type ApplyRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// StatusUpdateRequest is shared by every status-changing endpoint
type StatusUpdateRequest struct {
	Status    string `json:"status" validate:"required"`
	Note      string `json:"note"`
	UpdatedBy string `json:"updatedBy"`
}

// FeaturedRequest toggles a featured flag
type FeaturedRequest struct {
	IsFeatured bool `json:"isFeatured"`
}

// JobRecommendation is a job with the requesting user's skill match
type JobRecommendation struct {
	Job             Job `json:"job"`
	MatchPercentage int `json:"matchPercentage"`
}

// SkillList exposes the job's required skills for ranking
func (j Job) SkillList() []string {
	return j.Skills
}
