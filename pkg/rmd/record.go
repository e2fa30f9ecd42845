package rmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Record is the profile data the RMD API returned for one username.
//
// A Record is immutable once built: accessors return copies of the attribute
// map and of list values. Nested values inside those copies are shared and
// must be treated as read-only.
//
// The zero Record (apart from Username) is the empty result returned for
// unknown users and for failed lookups.
type Record struct {
	Username string // Username the record was requested for
	ID       string // Resource id from the payload (may be empty)
	Type     string // Resource type from the payload (may be empty)
	Found    bool   // True when the API returned a data object for the user

	attributes map[string]any
}

// NewRecord builds a found record. attrs is copied.
func NewRecord(username string, attrs map[string]any) Record {
	return Record{Username: username, Found: true, attributes: maps.Clone(attrs)}
}

func emptyRecord(username string) Record {
	return Record{Username: username}
}

// Empty reports whether the record has no attributes.
func (r Record) Empty() bool {
	return len(r.attributes) == 0
}

// Attributes returns a copy of the attribute map, or nil for an empty record.
func (r Record) Attributes() map[string]any {
	if r.Empty() {
		return nil
	}
	return maps.Clone(r.attributes)
}

// Attribute returns one attribute value and whether it was present.
func (r Record) Attribute(name string) (any, bool) {
	v, ok := r.attributes[name]
	return v, ok
}

// List returns a copy of a list-valued attribute. ok is false when the
// attribute is missing, is not a list, or is an empty list.
func (r Record) List(name string) (items []any, ok bool) {
	v, ok := r.attributes[name].([]any)
	if !ok || len(v) == 0 {
		return nil, false
	}
	return slices.Clone(v), true
}

// recordJSON is the cached and served form of a Record.
type recordJSON struct {
	Username   string         `json:"username"`
	ID         string         `json:"id,omitempty"`
	Type       string         `json:"type,omitempty"`
	Found      bool           `json:"found"`
	Attributes map[string]any `json:"attributes"`
}

// MarshalJSON implements json.Marshaler. Empty records encode their
// attributes as {} rather than null.
func (r Record) MarshalJSON() ([]byte, error) {
	attrs := r.attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	return json.Marshal(recordJSON{
		Username:   r.Username,
		ID:         r.ID,
		Type:       r.Type,
		Found:      r.Found,
		Attributes: attrs,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Numbers are kept as
// json.Number so counts survive a cache round trip unchanged.
func (r *Record) UnmarshalJSON(data []byte) error {
	var v recordJSON
	if err := decodeJSON(data, &v); err != nil {
		return err
	}
	*r = Record{
		Username:   v.Username,
		ID:         v.ID,
		Type:       v.Type,
		Found:      v.Found,
		attributes: v.Attributes,
	}
	if len(r.attributes) == 0 {
		r.attributes = nil
	}
	return nil
}

// profilePayload is the body of GET users/{username}/profile.
type profilePayload struct {
	Data json.RawMessage `json:"data"`
}

type profileData struct {
	ID         any            `json:"id"`
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes"`
}

// decodeProfile parses an API response body. A body without a data object
// yields an empty record and no error.
func decodeProfile(username string, body []byte) (Record, error) {
	var payload profilePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Record{}, err
	}
	if len(payload.Data) == 0 || bytes.Equal(payload.Data, []byte("null")) {
		return emptyRecord(username), nil
	}

	var data profileData
	if err := decodeJSON(payload.Data, &data); err != nil {
		return Record{}, err
	}
	return Record{
		Username:   username,
		ID:         idString(data.ID),
		Type:       data.Type,
		Found:      true,
		attributes: data.Attributes,
	}, nil
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func idString(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
