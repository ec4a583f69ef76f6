package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/clientportal/internal/access"
	"github.com/wolfeidau/clientportal/internal/auth"
	"github.com/wolfeidau/clientportal/internal/documents"
	"github.com/wolfeidau/clientportal/internal/models"
	"github.com/wolfeidau/clientportal/internal/store"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantTag  string
	}{
		{name: "invalid", err: invalidf("bad"), wantCode: http.StatusBadRequest, wantTag: "invalid_argument"},
		{name: "doc type", err: fmt.Errorf("x: %w", documents.ErrInvalidDocType), wantCode: http.StatusBadRequest, wantTag: "invalid_argument"},
		{name: "unauthenticated", err: auth.ErrUnauthenticated, wantCode: http.StatusUnauthorized, wantTag: "unauthenticated"},
		{name: "no identity", err: access.ErrNoIdentity, wantCode: http.StatusUnauthorized, wantTag: "unauthenticated"},
		{name: "permission", err: auth.ErrPermissionDenied, wantCode: http.StatusForbidden, wantTag: "permission_denied"},
		{name: "denied", err: access.ErrDenied, wantCode: http.StatusForbidden, wantTag: "denied"},
		{name: "not found", err: store.ErrDocumentNotFound, wantCode: http.StatusNotFound, wantTag: "not_found"},
		{name: "conflict", err: store.ErrDocumentConflict, wantCode: http.StatusConflict, wantTag: "conflict"},
		{name: "upstream", err: fmt.Errorf("%w: timeout", store.ErrUpstream), wantCode: http.StatusBadGateway, wantTag: "upstream"},
		{name: "unknown", err: fmt.Errorf("boom"), wantCode: http.StatusInternalServerError, wantTag: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, tag, msg := statusFor(tt.err)
			require.Equal(t, tt.wantCode, code)
			require.Equal(t, tt.wantTag, tag)
			require.NotEmpty(t, msg)
		})
	}
}

func TestDocumentETag(t *testing.T) {
	doc := &models.Document{
		DocumentID: uuid.New(),
		Title:      "Strategy",
		Content:    "# Plan",
		UpdatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	etag := documentETag(doc, "")
	require.Equal(t, etag, documentETag(doc, ""))
	require.NotEqual(t, etag, documentETag(doc, "html"))

	changed := *doc
	changed.UpdatedAt = changed.UpdatedAt.Add(time.Second)
	require.NotEqual(t, etag, documentETag(&changed, ""))

	tests := []struct {
		header string
		want   bool
	}{
		{header: "", want: false},
		{header: etag, want: true},
		{header: etag[2:], want: true},
		{header: `"other", ` + etag, want: true},
		{header: "*", want: true},
		{header: `"other"`, want: false},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("If-None-Match", tt.header)
		}
		require.Equal(t, tt.want, notModified(r, etag), tt.header)
	}
}

func TestRecoverer(t *testing.T) {
	handler := recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"error":"internal error","code":"internal"}`, rec.Body.String())
}
