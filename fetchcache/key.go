package fetchcache

import (
	"strconv"
	"strings"
)

const (
	// fieldAll substitutes an absent subject or category.
	fieldAll = "all"

	// pageAll is the page sentinel shared by every page of a load-all session.
	pageAll = "_ALL"

	// keySep joins the key fields.
	keySep = "|"
)

// Key identifies one collection query. Equal inputs produce equal strings,
// any differing input produces a different string.
type Key struct {
	// Subject is the author/user id the collection belongs to, empty for all.
	Subject string

	// Category filters by category id, empty for all.
	Category string

	// Status filters by article status (published, draft, ...).
	Status string

	// Sort is the requested sort field.
	Sort string

	// Search is the raw search text; it is trimmed during derivation.
	Search string

	// Page is the 1-based page number.
	Page int

	// LoadAll marks a load-all session; every page shares one cache slot.
	LoadAll bool
}

// String derives the cache key. Pure and deterministic: no timestamps,
// no randomness.
func (k Key) String() string {
	page := strconv.Itoa(k.Page)
	if k.LoadAll {
		page = pageAll
	}
	return strings.Join([]string{
		normalizeField(k.Subject),
		normalizeField(k.Category),
		k.Status,
		k.Sort,
		strings.TrimSpace(k.Search),
		page,
	}, keySep)
}

// SubjectPrefix returns the prefix shared by every key derived with the
// same subject, used for subject-wide invalidation.
func (k Key) SubjectPrefix() string {
	return SubjectPrefix(k.Subject)
}

// SubjectPrefix builds the invalidation prefix for a subject id.
func SubjectPrefix(subject string) string {
	return normalizeField(subject) + keySep
}

// normalizeSubject maps an absent subject to the shared "all" slot.
func normalizeSubject(subject string) string {
	return normalizeField(subject)
}

func normalizeField(v string) string {
	if v == "" {
		return fieldAll
	}
	return v
}
