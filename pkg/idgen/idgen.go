// Package idgen builds the human-readable document identifiers used across
// collections, e.g. GDN-20261016093000-4F1A2C9B.
package idgen

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const timestampLayout = "20060102150405"

// New returns an identifier for prefix stamped with the current UTC time.
func New(prefix string) string {
	return NewAt(prefix, time.Now())
}

// NewAt returns an identifier for prefix stamped with t.
func NewAt(prefix string, t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	id := t.UTC().Format(timestampLayout) + "-" + suffix
	if prefix != "" {
		id = prefix + "-" + id
	}
	return strings.ToUpper(id)
}
