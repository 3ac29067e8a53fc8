package clipdex

import (
	"encoding/json"
	"fmt"
	"image"
	"strconv"
)

// TextQuery is a keyword or embedding search request.
type TextQuery struct {
	// SubQuery narrows the search to the ids of an earlier result set.
	// An empty set is sent as "" and means no restriction.
	SubQuery  Results
	Query     string
	Embedding bool // sentence embedding matching instead of label matching
}

// MarshalJSON writes the subquery, query and embedding keys in that order.
func (q TextQuery) MarshalJSON() ([]byte, error) {
	var sub any = ""
	if len(q.SubQuery) > 0 {
		sub = q.SubQuery
	}
	return json.Marshal(struct {
		SubQuery  any    `json:"subquery"`
		Query     string `json:"query"`
		Embedding bool   `json:"embedding"`
	}{sub, q.Query, q.Embedding})
}

// ImageQuery searches by colour layout of a sketch or frame.
type ImageQuery struct {
	// SubQuery is sent as a JSON string; nil is encoded as "null".
	SubQuery any
	Image    image.Image
}

// Item is one decoded result object. The backend owns its shape.
type Item map[string]any

// String returns the value at key formatted as a string, or "" if absent.
func (it Item) String(key string) string {
	switch v := it[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Results is a decoded result list.
type Results []Item

// Decode re-decodes the results into v, typically a pointer to a slice of a caller type.
func (r Results) Decode(v any) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode results: %w", err)
	}
	return nil
}
