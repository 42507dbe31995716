//go:build integration

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// buildBinary builds the omxctl binary for integration testing
func buildBinary(t *testing.T) string {
	t.Helper()

	bin := filepath.Join(t.TempDir(), "omxctl_test")
	buildCmd := exec.Command("go", "build", "-o", bin, ".")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build binary: %v\n%s", err, out)
	}
	return bin
}

// TestPlayTestMode verifies that play --test prints the launch command
// without starting a player or touching D-Bus.
func TestPlayTestMode(t *testing.T) {
	bin := buildBinary(t)

	file := filepath.Join(t.TempDir(), "movie.mp4")
	if err := os.WriteFile(file, []byte("not really a movie"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	cmd := exec.Command(bin, "play", "--test", "--loop", "--layer", "2", file)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("play --test failed: %v", err)
	}

	command := strings.TrimSpace(string(out))
	if !strings.HasPrefix(command, "omxplayer ") {
		t.Errorf("expected omxplayer command, got %q", command)
	}
	if !strings.Contains(command, file) {
		t.Errorf("command %q does not contain file path %q", command, file)
	}
	if !strings.Contains(command, "--loop") {
		t.Errorf("command %q does not contain --loop", command)
	}
}

// TestPlayMissingFile verifies the file existence check fails fast.
func TestPlayMissingFile(t *testing.T) {
	bin := buildBinary(t)

	cmd := exec.Command(bin, "play", "--test", "/no/such/file.mp4")
	if err := cmd.Run(); err == nil {
		t.Error("expected non-zero exit for missing file")
	}
}
