package server

import (
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wolfeidau/clientportal/internal/auth"
	"github.com/wolfeidau/clientportal/internal/documents"
	"github.com/wolfeidau/clientportal/internal/invalidate"
	"github.com/wolfeidau/clientportal/internal/models"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type clientRequest struct {
	Slug         string `json:"slug"`
	BusinessName string `json:"business_name"`
	Status       string `json:"status"`
	Vertical     string `json:"vertical"`
}

func (req *clientRequest) validate() error {
	if len(req.Slug) > 63 || !slugPattern.MatchString(req.Slug) {
		return invalidf("slug must be lowercase letters, digits and dashes, at most 63 characters")
	}
	if req.BusinessName == "" {
		return invalidf("business_name is required")
	}
	if req.Status == "" {
		req.Status = models.ClientStatusActive
	}
	if !models.ValidClientStatus(req.Status) {
		return invalidf("unknown status %q", req.Status)
	}
	return nil
}

func clientIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "clientID"))
	if err != nil {
		return uuid.Nil, invalidf("invalid client id")
	}
	return id, nil
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		writeError(w, r, err)
		return
	}

	now := time.Now()
	client := &models.Client{
		ClientID:     id,
		Slug:         req.Slug,
		BusinessName: req.BusinessName,
		Status:       req.Status,
		Vertical:     req.Vertical,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.stores.Clients.Create(r.Context(), client); err != nil {
		writeError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().
		Str("client_id", client.ClientID.String()).
		Str("slug", client.Slug).
		Msg("Created client")

	writeJSON(w, http.StatusCreated, newClientView(client))
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.stores.Clients.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]clientView, 0, len(clients))
	for _, c := range clients {
		views = append(views, newClientView(c))
	}

	writeJSON(w, http.StatusOK, map[string]any{"clients": views})
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	client, err := s.stores.Clients.Get(r.Context(), clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newClientView(client))
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req clientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	client, err := s.stores.Clients.Get(r.Context(), clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	previousSlug := client.Slug

	client.Slug = req.Slug
	client.BusinessName = req.BusinessName
	client.Status = req.Status
	client.Vertical = req.Vertical

	if err := s.stores.Clients.Update(r.Context(), client); err != nil {
		writeError(w, r, err)
		return
	}

	views := []string{invalidate.AdminClientView(client.ClientID), invalidate.PortalView(client.Slug)}
	if previousSlug != client.Slug {
		views = append(views, invalidate.PortalView(previousSlug))
	}
	s.notifier.Invalidate(r.Context(), views...)

	writeJSON(w, http.StatusOK, newClientView(client))
}

func (s *Server) handleListMemberships(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := s.stores.Clients.Get(r.Context(), clientID); err != nil {
		writeError(w, r, err)
		return
	}

	memberships, err := s.stores.Memberships.ListByClient(r.Context(), clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]membershipView, 0, len(memberships))
	for _, m := range memberships {
		views = append(views, newMembershipView(m))
	}

	writeJSON(w, http.StatusOK, map[string]any{"memberships": views})
}

type membershipRequest struct {
	IdentityID string `json:"identity_id"`
	Role       string `json:"role"`
	IsActive   *bool  `json:"is_active"`
}

func (s *Server) handleGrantMembership(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req membershipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.IdentityID == "" {
		writeError(w, r, invalidf("identity_id is required"))
		return
	}
	if req.Role == "" {
		req.Role = models.MembershipRoleViewer
	}
	if !models.ValidMembershipRole(req.Role) {
		writeError(w, r, invalidf("unknown role %q", req.Role))
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		writeError(w, r, err)
		return
	}

	m := &models.Membership{
		MembershipID: id,
		IdentityID:   req.IdentityID,
		ClientID:     clientID,
		Role:         req.Role,
		IsActive:     req.IsActive == nil || *req.IsActive,
	}
	if err := s.stores.Memberships.Upsert(r.Context(), m); err != nil {
		writeError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().
		Str("client_id", clientID.String()).
		Str("identity_id", m.IdentityID).
		Str("role", m.Role).
		Bool("active", m.IsActive).
		Msg("Granted membership")

	s.notifier.Invalidate(r.Context(), invalidate.AdminClientView(clientID))

	writeJSON(w, http.StatusOK, newMembershipView(m))
}

func (s *Server) handleRevokeMembership(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	identityID := chi.URLParam(r, "identityID")

	if err := s.stores.Memberships.SetActive(r.Context(), identityID, clientID, false); err != nil {
		writeError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().
		Str("client_id", clientID.String()).
		Str("identity_id", identityID).
		Msg("Deactivated membership")

	s.notifier.Invalidate(r.Context(), invalidate.AdminClientView(clientID))

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminDocuments(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	docs, err := s.ensureDocuments(r.Context(), clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": newDocumentViews(docs)})
}

type documentRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (s *Server) handleUpsertDocument(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	docType, err := models.ParseDocType(chi.URLParam(r, "docType"))
	if err != nil {
		writeError(w, r, documents.ErrInvalidDocType)
		return
	}

	var req documentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Content == nil {
		writeError(w, r, invalidf("content is required"))
		return
	}

	var updatedBy *string
	if actor := auth.IdentityFromContext(r.Context()).Actor(); actor != "" {
		updatedBy = &actor
	}

	doc, err := s.provisioner.Upsert(r.Context(), documents.UpsertInput{
		ClientID:  clientID,
		DocType:   docType,
		Content:   *req.Content,
		Title:     req.Title,
		UpdatedBy: updatedBy,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newDocumentView(doc))
}
