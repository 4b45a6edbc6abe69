// Package articles wraps the platform's article endpoints: listings and
// search read through the fetch-coordination cache, mutations dispatch the
// events that keep it fresh.
package articles

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/scribehub/go-scribe/fetchcache"
)

// Statuses the platform accepts.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

var validStatuses = []interface{}{StatusDraft, StatusPublished, StatusArchived}

var validSorts = []interface{}{"created_at", "updated_at", "views", "likes"}

// Article is one full article record.
type Article struct {
	ID         string               `json:"id"`
	Title      string               `json:"title"`
	Content    string               `json:"content,omitempty"`
	AuthorID   string               `json:"author_id"`
	CategoryID string               `json:"category_id,omitempty"`
	Status     string               `json:"status"`
	Views      int64                `json:"views"`
	Likes      int64                `json:"likes"`
	Dislikes   int64                `json:"dislikes"`
	Tags       []string             `json:"tags,omitempty"`
	CreatedAt  fetchcache.Timestamp `json:"created_at"`
	UpdatedAt  fetchcache.Timestamp `json:"updated_at"`
}

// Tag is one tag with its usage count.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// ListOptions filter a listing. Zero values mean "all".
type ListOptions struct {
	AuthorID string
	Category string
	Status   string
	Sort     string
	Page     int
	PageSize int
}

// Validate implements validator.Validatable.
func (o ListOptions) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Status, validation.In(validStatuses...)),
		validation.Field(&o.Sort, validation.In(validSorts...)),
		validation.Field(&o.Page, validation.Min(0)),
		validation.Field(&o.PageSize, validation.Min(0)),
	)
}

// SearchOptions describe a relevance-ranked search.
type SearchOptions struct {
	Query string
	Page  int
}

// Validate implements validator.Validatable.
func (o SearchOptions) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Query, validation.Required),
		validation.Field(&o.Page, validation.Min(0)),
	)
}

// CreateRequest creates an article.
type CreateRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	CategoryID string   `json:"category_id,omitempty"`
	Status     string   `json:"status,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// Validate implements validator.Validatable.
func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.Status, validation.In(validStatuses...)),
	)
}

// UpdateRequest updates an article; nil fields stay untouched.
type UpdateRequest struct {
	Title      *string   `json:"title,omitempty"`
	Content    *string   `json:"content,omitempty"`
	CategoryID *string   `json:"category_id,omitempty"`
	Status     *string   `json:"status,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
}

// Validate implements validator.Validatable.
func (r UpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Content, validation.NilOrNotEmpty),
		validation.Field(&r.Status, validation.In(validStatuses...)),
	)
}
