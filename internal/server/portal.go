package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wolfeidau/clientportal/internal/access"
	"github.com/wolfeidau/clientportal/internal/auth"
	"github.com/wolfeidau/clientportal/internal/documents"
	"github.com/wolfeidau/clientportal/internal/models"
	"github.com/wolfeidau/clientportal/internal/store"
)

// Entry redirects for each resolution outcome.
const (
	redirectSelectClient = "/select-client"
	redirectPending      = "/pending"
)

type entryResponse struct {
	Outcome  string `json:"outcome"`
	Slug     string `json:"slug,omitempty"`
	Redirect string `json:"redirect"`
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.resolver.Resolve(r.Context(), auth.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := entryResponse{Outcome: outcome.Kind.String()}
	switch outcome.Kind {
	case access.SingleAccess:
		resp.Slug = outcome.Slug
		resp.Redirect = "/portal/" + outcome.Slug
	case access.MultiAccess:
		resp.Redirect = redirectSelectClient
	default:
		resp.Redirect = redirectPending
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAccessible(w http.ResponseWriter, r *http.Request) {
	accessible, err := s.resolver.ListAccessible(r.Context(), auth.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]accessView, 0, len(accessible))
	for _, a := range accessible {
		views = append(views, newAccessView(a))
	}

	writeJSON(w, http.StatusOK, map[string]any{"clients": views})
}

// verify re-checks workspace access for the slug in the route.
func (s *Server) verify(r *http.Request) (*access.Access, error) {
	return s.resolver.VerifyClientAccess(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "slug"))
}

func (s *Server) handlePortal(w http.ResponseWriter, r *http.Request) {
	a, err := s.verify(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newAccessView(a))
}

func (s *Server) handlePortalDocuments(w http.ResponseWriter, r *http.Request) {
	a, err := s.verify(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	docs, err := s.ensureDocuments(r.Context(), a.Client.ClientID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": newDocumentViews(docs)})
}

func (s *Server) handlePortalDocument(w http.ResponseWriter, r *http.Request) {
	a, err := s.verify(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	docType, err := models.ParseDocType(chi.URLParam(r, "docType"))
	if err != nil {
		writeError(w, r, documents.ErrInvalidDocType)
		return
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != "html" && format != "markdown" {
		writeError(w, r, invalidf("unsupported format %q", format))
		return
	}

	if _, err := s.ensureDocuments(r.Context(), a.Client.ClientID); err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := s.provisioner.Get(r.Context(), a.Client.ClientID, docType)
	if err != nil {
		writeError(w, r, err)
		return
	}

	etag := documentETag(doc, format)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, no-cache")
	if notModified(r, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	view := newDocumentView(doc)
	if format == "html" {
		html, err := documents.Render(doc.Content)
		if err != nil {
			writeError(w, r, err)
			return
		}
		view.HTML = html
		view.Content = nil
	}

	writeJSON(w, http.StatusOK, view)
}

// ensureDocuments provisions missing documents. A provisioning conflict means a
// concurrent request inserted them, so the set is read once more and returned if complete.
func (s *Server) ensureDocuments(ctx context.Context, clientID uuid.UUID) ([]*models.Document, error) {
	docs, err := s.provisioner.EnsureAll(ctx, clientID)
	if err == nil {
		return docs, nil
	}
	if !errors.Is(err, store.ErrConflict) {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("client_id", clientID.String()).Msg("Provisioning conflict, re-reading documents")

	docs, rerr := s.provisioner.List(ctx, clientID)
	if rerr != nil {
		return nil, rerr
	}
	if len(docs) < len(models.RequiredDocTypes) {
		return nil, err
	}
	return docs, nil
}
