package fetchcache

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"time"
)

// Timestamp parses the date formats the backend emits: RFC3339 with or
// without fractional seconds, bare dates, and unix seconds.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler leniently: unparseable values
// decode as the zero time rather than failing the whole collection.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			t.Time = time.Time{}
			return nil
		}
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				t.Time = parsed
				return nil
			}
		}
		t.Time = time.Time{}
		return nil
	}

	if secs, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		t.Time = time.Unix(secs, 0).UTC()
		return nil
	}
	t.Time = time.Time{}
	return nil
}

// MarshalJSON emits RFC3339, or null for the zero time.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// Item is one normalized article-like record.
type Item struct {
	ID         string    `json:"id"`
	Title      string    `json:"title,omitempty"`
	AuthorID   string    `json:"author_id,omitempty"`
	CategoryID string    `json:"category_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	Views      int64     `json:"views"`
	Likes      int64     `json:"likes"`
	Tags       []string  `json:"tags,omitempty"`
	CreatedAt  Timestamp `json:"created_at"`
	UpdatedAt  Timestamp `json:"updated_at"`
}

// recency is updatedAt falling back to createdAt, zero when both are absent.
func (i Item) recency() time.Time {
	if !i.UpdatedAt.IsZero() {
		return i.UpdatedAt.Time
	}
	return i.CreatedAt.Time
}

// Result is one normalized collection with its pagination metadata.
type Result struct {
	Items []Item `json:"items"`
	Page  int    `json:"page"`
	Total int    `json:"total,omitempty"`
}

// NormalizeOptions tune the normalization.
type NormalizeOptions struct {
	// Relevance marks a relevance-ranked search response; items are then
	// re-sorted by created_at only. The backend's relevance order is not
	// preserved across this re-sort.
	Relevance bool

	// Page is the requested page, used when the response carries none.
	Page int
}

// rawEnvelope covers the envelope fields the backend is known to emit.
type rawEnvelope struct {
	Data    json.RawMessage `json:"data"`
	Results json.RawMessage `json:"results"`
}

type rawDataObject struct {
	Items      json.RawMessage `json:"items"`
	Data       json.RawMessage `json:"data"`
	Page       int             `json:"page"`
	Pagination *rawPagination  `json:"pagination"`
}

type rawPagination struct {
	Page  int `json:"page"`
	Total int `json:"total"`
}

// Normalize reconciles the heterogeneous response envelopes into one
// ordered collection. The item array is looked up in priority order:
// top-level array, data as array, data.items, data.data, results. An
// unrecognized shape degrades to an empty collection, never an error.
func Normalize(raw []byte, opts NormalizeOptions) *Result {
	result := &Result{
		Items: []Item{},
		Page:  opts.Page,
	}

	itemsRaw, env := extractItems(raw)
	if itemsRaw != nil {
		var items []Item
		if err := json.Unmarshal(itemsRaw, &items); err == nil && items != nil {
			result.Items = items
		}
	}

	// Page: data.pagination.page, then data.page, then the requested page.
	if env != nil {
		if env.Pagination != nil {
			if env.Pagination.Page > 0 {
				result.Page = env.Pagination.Page
			}
			result.Total = env.Pagination.Total
		} else if env.Page > 0 {
			result.Page = env.Page
		}
	}

	sortItems(result.Items, opts.Relevance)
	return result
}

// extractItems probes the envelope shapes in priority order. The returned
// slice is the raw item array; env is non-nil when data was an object.
func extractItems(raw []byte) (json.RawMessage, *rawDataObject) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}

	// 1. Top-level array.
	if trimmed[0] == '[' {
		return json.RawMessage(trimmed), nil
	}

	var env rawEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, nil
	}

	// 2. data as an array.
	if isArray(env.Data) {
		return env.Data, nil
	}

	// data as an object: probe data.items then data.data. The object is
	// kept either way, it may still carry pagination metadata.
	var dataObj *rawDataObject
	if isObject(env.Data) {
		var obj rawDataObject
		if err := json.Unmarshal(env.Data, &obj); err == nil {
			dataObj = &obj
			if isArray(obj.Items) {
				return obj.Items, dataObj
			}
			if isArray(obj.Data) {
				return obj.Data, dataObj
			}
		}
	}

	// 5. results as an array.
	if isArray(env.Results) {
		return env.Results, dataObj
	}

	return nil, dataObj
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// sortItems orders by recency descending. Relevance-ranked collections
// sort by created_at only.
func sortItems(items []Item, relevance bool) {
	if relevance {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.After(items[j].CreatedAt.Time)
		})
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].recency().After(items[j].recency())
	})
}
