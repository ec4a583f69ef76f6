package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocType identifies one of the fixed per-client documents.
type DocType string

const (
	DocTypeBrandGuide DocType = "brand_guide"
	DocTypeOnboarding DocType = "onboarding"
	DocTypeStrategy   DocType = "strategy"
)

// RequiredDocTypes lists every document type a client must have, in doc_type order.
var RequiredDocTypes = []DocType{
	DocTypeBrandGuide,
	DocTypeOnboarding,
	DocTypeStrategy,
}

// Valid returns true if t is a member of the closed document type set.
func (t DocType) Valid() bool {
	switch t {
	case DocTypeBrandGuide, DocTypeOnboarding, DocTypeStrategy:
		return true
	}
	return false
}

func (t DocType) String() string {
	return string(t)
}

// ParseDocType converts s into a DocType, rejecting anything outside the set.
func ParseDocType(s string) (DocType, error) {
	t := DocType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown document type %q", s)
	}
	return t, nil
}

// Document is a per-client document. There is at most one per (ClientID, DocType).
type Document struct {
	DocumentID uuid.UUID // UUIDv7
	ClientID   uuid.UUID
	DocType    DocType
	Title      string
	Content    string // markdown
	CreatedAt  time.Time
	UpdatedAt  time.Time
	UpdatedBy  *string
}
