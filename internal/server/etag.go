package server

import (
	"encoding/binary"
	"net/http"
	"strings"
	"time"

	"github.com/minio/crc64nvme"
	"github.com/mr-tron/base58"

	"github.com/wolfeidau/clientportal/internal/models"
)

// documentETag returns a weak validator for a rendering of doc.
func documentETag(doc *models.Document, variant string) string {
	h := crc64nvme.New()
	_, _ = h.Write([]byte(variant))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(doc.Title))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(doc.Content))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(doc.UpdatedAt.UTC().Format(time.RFC3339Nano)))

	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], h.Sum64())

	return `W/"` + base58.Encode(sum[:]) + `"`
}

// notModified reports whether the request's If-None-Match matches etag.
// Comparison is weak, so W/ prefixes are ignored on both sides.
func notModified(r *http.Request, etag string) bool {
	header := r.Header.Get("If-None-Match")
	if header == "" {
		return false
	}

	want := strings.TrimPrefix(etag, "W/")
	for candidate := range strings.SplitSeq(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == want {
			return true
		}
	}
	return false
}
