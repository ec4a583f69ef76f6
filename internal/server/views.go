package server

import (
	"time"

	"github.com/wolfeidau/clientportal/internal/access"
	"github.com/wolfeidau/clientportal/internal/models"
)

type clientView struct {
	ClientID     string    `json:"client_id"`
	Slug         string    `json:"slug"`
	BusinessName string    `json:"business_name"`
	Status       string    `json:"status"`
	Vertical     string    `json:"vertical"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newClientView(c *models.Client) clientView {
	return clientView{
		ClientID:     c.ClientID.String(),
		Slug:         c.Slug,
		BusinessName: c.BusinessName,
		Status:       c.Status,
		Vertical:     c.Vertical,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

type accessView struct {
	Role   string     `json:"role"`
	Client clientView `json:"client"`
}

func newAccessView(a *access.Access) accessView {
	return accessView{
		Role:   a.Role,
		Client: newClientView(a.Client),
	}
}

type membershipView struct {
	MembershipID string    `json:"membership_id"`
	IdentityID   string    `json:"identity_id"`
	ClientID     string    `json:"client_id"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newMembershipView(m *models.Membership) membershipView {
	return membershipView{
		MembershipID: m.MembershipID.String(),
		IdentityID:   m.IdentityID,
		ClientID:     m.ClientID.String(),
		Role:         m.Role,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type documentView struct {
	DocumentID string    `json:"document_id"`
	ClientID   string    `json:"client_id"`
	DocType    string    `json:"doc_type"`
	Title      string    `json:"title"`
	Content    *string   `json:"content,omitempty"` // nil only for the html rendering
	HTML       string    `json:"html,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
	UpdatedBy  *string   `json:"updated_by,omitempty"`
}

func newDocumentView(d *models.Document) documentView {
	return documentView{
		DocumentID: d.DocumentID.String(),
		ClientID:   d.ClientID.String(),
		DocType:    d.DocType.String(),
		Title:      d.Title,
		Content:    &d.Content,
		UpdatedAt:  d.UpdatedAt,
		UpdatedBy:  d.UpdatedBy,
	}
}

func newDocumentViews(docs []*models.Document) []documentView {
	views := make([]documentView, 0, len(docs))
	for _, d := range docs {
		views = append(views, newDocumentView(d))
	}
	return views
}
