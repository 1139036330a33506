package index

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// fakeNixosVersion puts a stub nixos-version script at the front of PATH.
func fakeNixosVersion(t *testing.T, script string) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available, skipping")
	}

	dir := t.TempDir()
	stub := filepath.Join(dir, "nixos-version")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("Failed to write stub: %v", err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestDetectRelease(t *testing.T) {
	fakeNixosVersion(t, `echo "23.05.20230601.abcdefg (Stoat)"`)

	release, err := DetectRelease(context.Background())
	if err != nil {
		t.Fatalf("DetectRelease failed: %v", err)
	}
	if release != "23.05.20230601.abcdefg (Stoat)" {
		t.Errorf("release = %q, want the trimmed version line", release)
	}
}

func TestDetectReleaseFailure(t *testing.T) {
	fakeNixosVersion(t, `echo "not a NixOS host" >&2; exit 1`)

	_, err := DetectRelease(context.Background())
	if err == nil {
		t.Fatal("DetectRelease should fail when nixos-version exits nonzero")
	}
	if !strings.Contains(err.Error(), "not a NixOS host") {
		t.Errorf("Error does not carry the binary's stderr: %v", err)
	}
}
