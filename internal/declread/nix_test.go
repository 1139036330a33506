package declread

import (
	"reflect"
	"testing"
)

func TestNixReaderPlainList(t *testing.T) {
	content := []byte(`{ config, pkgs, ... }:
{
  imports = [ ./hardware-configuration.nix ];
  environment.systemPackages = [ pkgs.vim pkgs.git ];
}
`)
	vals, err := NixReader{}.Values(content, "environment.systemPackages")
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	want := []string{"pkgs.vim", "pkgs.git"}
	if !reflect.DeepEqual(vals, want) {
		t.Errorf("Values = %v, want %v", vals, want)
	}
}

func TestNixReaderWithClause(t *testing.T) {
	content := []byte(`environment.systemPackages = with pkgs; [
  vim
  git
  wget
];
`)
	vals, err := NixReader{}.Values(content, "environment.systemPackages")
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	want := []string{"vim", "git", "wget"}
	if !reflect.DeepEqual(vals, want) {
		t.Errorf("Values = %v, want %v", vals, want)
	}
}

func TestNixReaderComments(t *testing.T) {
	content := []byte(`environment.systemPackages = with pkgs; [
  vim # the editor
  /* temporarily disabled:
     emacs */
  git
];
`)
	vals, err := NixReader{}.Values(content, "environment.systemPackages")
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	want := []string{"vim", "git"}
	if !reflect.DeepEqual(vals, want) {
		t.Errorf("Values = %v, want %v", vals, want)
	}
}

func TestNixReaderParenthesizedElement(t *testing.T) {
	content := []byte(`environment.systemPackages = with pkgs; [
  (python3.withPackages (ps: [ ps.requests ]))
  git
];
`)
	vals, err := NixReader{}.Values(content, "environment.systemPackages")
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if len(vals) != 2 {
		t.Fatalf("Values = %v, want 2 elements", vals)
	}
	if vals[0] != "(python3.withPackages (ps: [ ps.requests ]))" {
		t.Errorf("Parenthesized element = %q", vals[0])
	}
	if vals[1] != "git" {
		t.Errorf("Second element = %q, want git", vals[1])
	}
}

func TestNixReaderIgnoresLookalikeKeys(t *testing.T) {
	// Neither the prefixed identifier nor the longer attribute path may
	// match; only the exact key counts.
	content := []byte(`myenvironment.systemPackages = [ foo ];
environment.systemPackagesExtra = [ bar ];
environment.systemPackages = [ vim ];
`)
	vals, err := NixReader{}.Values(content, "environment.systemPackages")
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	want := []string{"vim"}
	if !reflect.DeepEqual(vals, want) {
		t.Errorf("Values = %v, want %v", vals, want)
	}
}

func TestNixReaderErrors(t *testing.T) {
	// Key not present
	if _, err := (NixReader{}).Values([]byte(`{ boot.loader.grub.enable = true; }`), "environment.systemPackages"); err == nil {
		t.Error("Missing key should fail")
	}

	// Value is not a list
	if _, err := (NixReader{}).Values([]byte(`environment.systemPackages = pkgs.vim;`), "environment.systemPackages"); err == nil {
		t.Error("Non-list value should fail")
	}

	// List never closes
	if _, err := (NixReader{}).Values([]byte(`environment.systemPackages = [ vim`), "environment.systemPackages"); err == nil {
		t.Error("Unterminated list should fail")
	}
}
