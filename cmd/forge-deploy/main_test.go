package main

import (
	"os"
	"os/exec"
	"strings"
	"testing"
)

func buildBinary(t *testing.T) string {
	t.Helper()
	if os.Getenv("CI") != "" {
		t.Skip("Skipping integration test in CI environment")
	}

	cmd := exec.Command("go", "build", "-o", "forge-deploy-test", ".")
	if err := cmd.Run(); err != nil {
		t.Skipf("Could not build binary for testing: %v", err)
	}
	t.Cleanup(func() { os.Remove("forge-deploy-test") })
	return "./forge-deploy-test"
}

// TestVersion tests the -version flag by running the binary
func TestVersion(t *testing.T) {
	bin := buildBinary(t)

	cmd := exec.Command(bin, "-version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Failed to run -version: %v\nOutput: %s", err, output)
	}

	if !strings.Contains(string(output), "forge-deploy version") {
		t.Errorf("Expected version output to contain 'forge-deploy version', got: %s", output)
	}
}

// TestMissingConfiguration tests that a run without any configuration
// exits 1 and names every missing variable.
func TestMissingConfiguration(t *testing.T) {
	bin := buildBinary(t)

	cmd := exec.Command(bin)
	cmd.Env = []string{"PATH=" + os.Getenv("PATH")}
	output, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatal("Expected non-zero exit without configuration")
	}
	if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() != 1 {
		t.Errorf("exit code = %d, want 1", exitErr.ExitCode())
	}

	for _, name := range []string{"FORGE_API_TOKEN", "FORGE_ORG", "FORGE_SERVER", "FORGE_SITE"} {
		if !strings.Contains(string(output), name) {
			t.Errorf("output does not mention missing %s:\n%s", name, output)
		}
	}
}
