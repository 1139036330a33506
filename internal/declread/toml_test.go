package declread

import (
	"reflect"
	"testing"
)

func TestTOMLReader(t *testing.T) {
	content := []byte(`[environment]
systemPackages = ["vim", "git"]
`)
	vals, err := TOMLReader{}.Values(content, "environment.systemPackages")
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	want := []string{"vim", "git"}
	if !reflect.DeepEqual(vals, want) {
		t.Errorf("Values = %v, want %v", vals, want)
	}
}

func TestTOMLReaderErrors(t *testing.T) {
	// Key not present
	if _, err := (TOMLReader{}).Values([]byte(`[environment]`), "environment.systemPackages"); err == nil {
		t.Error("Missing key should fail")
	}

	// Value is not a list
	if _, err := (TOMLReader{}).Values([]byte("[environment]\nsystemPackages = \"vim\"\n"), "environment.systemPackages"); err == nil {
		t.Error("Non-list value should fail")
	}

	// Non-string element
	if _, err := (TOMLReader{}).Values([]byte("[environment]\nsystemPackages = [1, 2]\n"), "environment.systemPackages"); err == nil {
		t.Error("Non-string element should fail")
	}

	// Malformed document
	if _, err := (TOMLReader{}).Values([]byte(`[environment`), "environment.systemPackages"); err == nil {
		t.Error("Malformed document should fail")
	}
}
