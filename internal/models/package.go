package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// PackageRecord represents one package build target in an index
type PackageRecord struct {
	// Attribute is the unique string key identifying the build target
	Attribute string

	// System is the platform tag; only the extended index variant carries it
	System string

	// Pname is the display name
	Pname string

	// Version is the version string
	Version string
}

// PackageMeta carries the descriptive metadata block of the extended index
// variant. The boolean flags decode to false when the source field is
// absent or null; that default is part of the data model, not an accident
// of decoding.
type PackageMeta struct {
	Broken          bool            `json:"broken"`
	Insecure        bool            `json:"insecure"`
	Unsupported     bool            `json:"unsupported"`
	Unfree          bool            `json:"unfree"`
	Description     string          `json:"description"`
	LongDescription string          `json:"longdescription"`
	Homepage        Homepage        `json:"homepage"`
	Maintainers     json.RawMessage `json:"maintainers"`
	License         json.RawMessage `json:"license"`
	Platforms       json.RawMessage `json:"platforms"`
	Position        string          `json:"position"`
}

// Homepage models the upstream homepage field, which is either a single
// URL string or a list of URL strings. The variant is kept as decoded;
// First resolves it to one string at the transform boundary.
type Homepage struct {
	urls []string
	list bool
}

// HomepageSingle returns a Homepage holding one URL
func HomepageSingle(url string) Homepage {
	return Homepage{urls: []string{url}}
}

// HomepageList returns a Homepage holding a list of URLs
func HomepageList(urls ...string) Homepage {
	return Homepage{urls: urls, list: true}
}

// First returns the single URL, the first list element, or "" when the
// field was absent or the list empty.
func (h Homepage) First() string {
	if len(h.urls) == 0 {
		return ""
	}
	return h.urls[0]
}

// IsList reports whether the source field was a list
func (h Homepage) IsList() bool {
	return h.list
}

// UnmarshalJSON implements json.Unmarshaler. Accepted shapes are a JSON
// string, an array of strings, or null.
func (h *Homepage) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*h = Homepage{urls: []string{single}}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*h = Homepage{urls: list, list: true}
		return nil
	}
	if string(data) == "null" {
		*h = Homepage{}
		return nil
	}
	return fmt.Errorf("homepage is neither a string nor a list of strings: %s", data)
}

// MarshalJSON implements json.Marshaler, reproducing the source shape
func (h Homepage) MarshalJSON() ([]byte, error) {
	if h.list {
		return json.Marshal(h.urls)
	}
	if len(h.urls) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(h.urls[0])
}

// SystemEntry is one record of the extended index variant
type SystemEntry struct {
	System  string      `json:"system"`
	Pname   string      `json:"pname"`
	Version string      `json:"version"`
	Meta    PackageMeta `json:"meta"`
}

// PlainEntry is one record of the plain index variant
type PlainEntry struct {
	Pname   string `json:"pname"`
	Version string `json:"version"`
}

// SystemIndex is the decoded extended index document. The upstream
// document wraps the attribute mapping in a "packages" member.
type SystemIndex struct {
	Packages map[string]SystemEntry `json:"packages"`
}

// PlainIndex is the decoded plain index document
type PlainIndex struct {
	Packages map[string]PlainEntry `json:"packages"`
}

// DeclaredSet is a set of declared package attributes. Duplicates
// collapse; insertion order is irrelevant.
type DeclaredSet map[string]struct{}

// NewDeclaredSet returns a set holding the given attributes
func NewDeclaredSet(attrs ...string) DeclaredSet {
	s := make(DeclaredSet, len(attrs))
	for _, a := range attrs {
		s.Add(a)
	}
	return s
}

// Add inserts an attribute into the set
func (s DeclaredSet) Add(attr string) {
	s[attr] = struct{}{}
}

// Has reports whether the set contains the attribute
func (s DeclaredSet) Has(attr string) bool {
	_, ok := s[attr]
	return ok
}

// Sorted returns the attributes in lexical order for deterministic
// iteration.
func (s DeclaredSet) Sorted() []string {
	attrs := make([]string, 0, len(s))
	for a := range s {
		attrs = append(attrs, a)
	}
	sort.Strings(attrs)
	return attrs
}
