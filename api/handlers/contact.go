package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/alumnihub/alumni-api/api"
	"github.com/alumnihub/alumni-api/databases"
	"github.com/alumnihub/alumni-api/mailer"
	"github.com/alumnihub/alumni-api/models"
	templates "github.com/alumnihub/alumni-api/templates/html"
)

// Contact exported for testing purposes
type Contact struct {
	DB     databases.ContactDatabase
	Mailer mailer.Sender
	// Inbox receives a copy of every message when set
	Inbox string
}

// CreateContactHandler stores a contact form submission
func (c Contact) CreateContactHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ContactRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "name, email, subject and message are required", err)
		return
	}

	ts := now()
	msg := models.ContactMessage{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Subject:   strings.TrimSpace(req.Subject),
		Message:   req.Message,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := c.DB.InsertOne(ctx, &msg)
	if err != nil {
		writeError(w, "failed to save contact message", err)
		return
	}
	if id, ok := res.Decode().(primitive.ObjectID); ok {
		msg.ID = id
	}

	if c.Mailer != nil && c.Inbox != "" {
		go c.forward(msg)
	}
	respond(w, http.StatusCreated, "message received", msg)
}

// forward mails a copy to the inbox; failures only get logged
func (c Contact) forward(msg models.ContactMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := c.Mailer.Send(ctx, mailer.Message{
		ToEmail: c.Inbox,
		Subject: "Contact form: " + msg.Subject,
		Plain:   msg.Name + " <" + msg.Email + ">\n\n" + msg.Message,
		HTML:    templates.RenderContactCopy(msg.Name, msg.Email, msg.Subject, msg.Message),
	})
	result := "ok"
	if err != nil {
		result = "error"
		zap.S().Errorw("failed to forward contact message", "contactId", msg.ID.Hex(), "error", err)
	}
	api.EmailsSent.WithLabelValues("contact", result).Inc()
}

// Newsletter exported for testing purposes
type Newsletter struct {
	DB databases.NewsletterDatabase
}

// SubscribeHandler adds an email to the newsletter, reactivating it if it had unsubscribed
func (n Newsletter) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	var req models.NewsletterRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "a valid email is required", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sub, err := n.DB.Subscribe(ctx, req.Email, now())
	if err != nil {
		writeError(w, "failed to subscribe", err)
		return
	}
	respond(w, http.StatusCreated, "subscribed to newsletter", sub)
}

// UnsubscribeHandler deactivates an email
func (n Newsletter) UnsubscribeHandler(w http.ResponseWriter, r *http.Request) {
	var req models.NewsletterRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "a valid email is required", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := n.DB.Unsubscribe(ctx, req.Email, now()); err != nil {
		writeError(w, "failed to unsubscribe", err)
		return
	}
	respond(w, http.StatusOK, "unsubscribed from newsletter", nil)
}
