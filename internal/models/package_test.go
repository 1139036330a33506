package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestHomepageDecode(t *testing.T) {
	// Single URL string
	var h Homepage
	if err := json.Unmarshal([]byte(`"https://example.org"`), &h); err != nil {
		t.Fatalf("Failed to decode string homepage: %v", err)
	}
	if h.First() != "https://example.org" {
		t.Errorf("First() = %q, want https://example.org", h.First())
	}
	if h.IsList() {
		t.Error("String homepage should not report as list")
	}

	// List of URLs resolves to its first element
	if err := json.Unmarshal([]byte(`["https://a.org","https://b.org"]`), &h); err != nil {
		t.Fatalf("Failed to decode list homepage: %v", err)
	}
	if h.First() != "https://a.org" {
		t.Errorf("First() = %q, want https://a.org", h.First())
	}
	if !h.IsList() {
		t.Error("List homepage should report as list")
	}

	// Empty list
	if err := json.Unmarshal([]byte(`[]`), &h); err != nil {
		t.Fatalf("Failed to decode empty list homepage: %v", err)
	}
	if h.First() != "" {
		t.Errorf("First() of empty list = %q, want empty", h.First())
	}

	// Null
	if err := json.Unmarshal([]byte(`null`), &h); err != nil {
		t.Fatalf("Failed to decode null homepage: %v", err)
	}
	if h.First() != "" {
		t.Errorf("First() of null = %q, want empty", h.First())
	}

	// Any other shape is an error
	if err := json.Unmarshal([]byte(`{"url":"x"}`), &h); err == nil {
		t.Error("Object homepage should fail to decode")
	}
}

func TestHomepageEncodeKeepsShape(t *testing.T) {
	single, err := json.Marshal(HomepageSingle("https://example.org"))
	if err != nil {
		t.Fatalf("Failed to encode single homepage: %v", err)
	}
	if string(single) != `"https://example.org"` {
		t.Errorf("Single homepage encoded as %s", single)
	}

	list, err := json.Marshal(HomepageList("https://a.org", "https://b.org"))
	if err != nil {
		t.Fatalf("Failed to encode list homepage: %v", err)
	}
	if string(list) != `["https://a.org","https://b.org"]` {
		t.Errorf("List homepage encoded as %s", list)
	}
}

func TestMetaFlagsDefaultFalse(t *testing.T) {
	// Absent flags decode to false
	var m PackageMeta
	if err := json.Unmarshal([]byte(`{"description":"a tool"}`), &m); err != nil {
		t.Fatalf("Failed to decode meta: %v", err)
	}
	if m.Broken || m.Insecure || m.Unsupported || m.Unfree {
		t.Errorf("Absent flags should decode false, got %+v", m)
	}

	// Null flags also decode to false
	m = PackageMeta{}
	if err := json.Unmarshal([]byte(`{"broken":null,"unfree":null}`), &m); err != nil {
		t.Fatalf("Failed to decode meta with null flags: %v", err)
	}
	if m.Broken || m.Unfree {
		t.Errorf("Null flags should decode false, got %+v", m)
	}

	// Explicit true is preserved
	m = PackageMeta{}
	if err := json.Unmarshal([]byte(`{"broken":true}`), &m); err != nil {
		t.Fatalf("Failed to decode meta with true flag: %v", err)
	}
	if !m.Broken {
		t.Error("Explicit broken=true should decode true")
	}
	if m.Insecure || m.Unsupported || m.Unfree {
		t.Errorf("Other flags should stay false, got %+v", m)
	}
}

func TestDeclaredSet(t *testing.T) {
	set := NewDeclaredSet("vim", "git", "vim")

	if len(set) != 2 {
		t.Errorf("Duplicates should collapse, got %d entries", len(set))
	}
	if !set.Has("vim") || !set.Has("git") {
		t.Error("Set should contain both declared attributes")
	}
	if set.Has("emacs") {
		t.Error("Set should not contain undeclared attribute")
	}

	set.Add("emacs")
	sorted := set.Sorted()
	want := []string{"emacs", "git", "vim"}
	if len(sorted) != len(want) {
		t.Fatalf("Sorted() returned %d attributes, want %d", len(sorted), len(want))
	}
	for i, attr := range want {
		if sorted[i] != attr {
			t.Errorf("Sorted()[%d] = %q, want %q", i, sorted[i], attr)
		}
	}
}

func TestIndexErrorFormat(t *testing.T) {
	inner := errors.New("connection refused")
	err := &IndexError{Type: ErrFetch, Source: "nixospkgs", Err: inner}

	want := "[Fetch] nixospkgs: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, inner) {
		t.Error("Wrapped error should be reachable through Unwrap")
	}

	// Source is optional
	bare := &IndexError{Type: ErrStore, Err: inner}
	if bare.Error() != "[Store] connection refused" {
		t.Errorf("Error() without source = %q", bare.Error())
	}
}

func TestIsErrType(t *testing.T) {
	inner := &IndexError{Type: ErrDecode, Err: errors.New("bad json")}
	outer := &IndexError{Type: ErrFetch, Source: "flakepkgs", Err: inner}
	wrapped := fmt.Errorf("sync failed: %w", outer)

	if !IsErrType(wrapped, ErrFetch) {
		t.Error("IsErrType should find the outer type")
	}
	if !IsErrType(wrapped, ErrDecode) {
		t.Error("IsErrType should find the inner type through the chain")
	}
	if IsErrType(wrapped, ErrSubprocess) {
		t.Error("IsErrType should not match an absent type")
	}
}
