package idgen

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewAt(t *testing.T) {
	at := time.Date(2026, 10, 16, 9, 30, 5, 0, time.FixedZone("IST", 5*3600+1800))

	id := NewAt("gdn", at)

	assert.Regexp(t, regexp.MustCompile(`^GDN-20261016040005-[0-9A-F]{8}$`), id)
}

func TestNew_IsUnique(t *testing.T) {
	seen := make(map[string]struct{}, 200)
	for range 200 {
		id := New("CDR")
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestNewAt_NoPrefix(t *testing.T) {
	id := NewAt("", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	assert.Regexp(t, `^20260102030405-[0-9A-F]{8}$`, id)
}
