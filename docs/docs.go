// Package docs Alumni Hub API.
//
// Documentation of the Alumni Hub API: directory, jobs and referrals, mentorship,
// alumni businesses, news and the admin back office.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//     - bearer
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//    bearer:
//      type: apiKey
//      name: Authorization
//      in: header
//
// swagger:meta
package docs

import (
	"github.com/alumnihub/alumni-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route GET /api/jobs jobs jobsList
// Lists active jobs, paginated and filterable by search, location, type, skill and featured.
// responses:
//   200: jobsResponse

// A page of job postings
// swagger:response jobsResponse
type jobsResponseWrapper struct {
	// in:body
	Body struct {
		models.PaginatedResponse
		Data []models.Job `json:"data"`
	}
}

// swagger:route POST /api/jobs/{id}/refer referrals createReferral
// Refers a candidate to a job.
// responses:
//   201: referralResponse
//   400: errorResponse
//   404: errorResponse

// The stored referral
// swagger:response referralResponse
type referralResponseWrapper struct {
	// in:body
	Body struct {
		models.Response
		Data models.JobReferral `json:"data"`
	}
}

// swagger:route POST /api/contact contact createContact
// Stores a contact form submission.
// responses:
//   201: contactResponse
//   400: errorResponse
//   429: errorResponse

// The stored contact message
// swagger:response contactResponse
type contactResponseWrapper struct {
	// in:body
	Body struct {
		models.Response
		Data models.ContactMessage `json:"data"`
	}
}

// swagger:route GET /api/admin/stats admin adminStats
// Dashboard counts. Requires an admin bearer token.
// responses:
//   200: statsResponse
//   401: errorResponse
//   403: errorResponse

// Back office counters
// swagger:response statsResponse
type statsResponseWrapper struct {
	// in:body
	Body struct {
		models.Response
		Data models.AdminStats `json:"data"`
	}
}

// Every failure is returned in this shape
// swagger:response errorResponse
type errorResponseWrapper struct {
	// in:body
	Body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
}
