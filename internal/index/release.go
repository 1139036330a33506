package index

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DetectRelease probes the running system's release identifier by running
// the nixos-version binary. Callers on non-NixOS hosts should configure a
// release explicitly instead.
func DetectRelease(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "nixos-version")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("nixos-version: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
