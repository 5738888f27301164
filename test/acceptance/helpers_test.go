//go:build acceptance

// Package acceptance contains black-box CLI acceptance tests (TestA_*).
// Run with: go test -tags=acceptance ./test/acceptance/...
package acceptance

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// rswaBinary is the path to the rswa binary.
// Set via RSWA_BINARY env var or default to ./bin/rswa in the repo root.
var rswaBinary string

func init() {
	if bin := os.Getenv("RSWA_BINARY"); bin != "" {
		rswaBinary = bin
	} else {
		rswaBinary = "../../bin/rswa"
	}
}

// runRSWA executes the rswa CLI with the given arguments and returns stdout.
// Fails the test if the command returns a non-zero exit code.
func runRSWA(t *testing.T, args ...string) string {
	t.Helper()
	cmd := exec.Command(rswaBinary, args...)
	cmd.Env = append(os.Environ(), "RSWA_AUDIT_LOG=")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.Fatalf("rswa %s failed: %v\nstderr: %s\nstdout: %s",
			strings.Join(args, " "), err, stderr.String(), stdout.String())
	}
	return stdout.String()
}

// runRSWAExpectError executes rswa and expects it to fail.
// Returns stdout and stderr separately.
func runRSWAExpectError(t *testing.T, args ...string) (string, string) {
	t.Helper()
	cmd := exec.Command(rswaBinary, args...)
	cmd.Env = append(os.Environ(), "RSWA_AUDIT_LOG=")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		t.Fatalf("rswa %s expected to fail but succeeded\nstdout: %s",
			strings.Join(args, " "), stdout.String())
	}
	return stdout.String(), stderr.String()
}

// decodeJWK parses a JWK document from CLI output.
func decodeJWK(t *testing.T, output string) map[string]interface{} {
	t.Helper()
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(output), &doc); err != nil {
		t.Fatalf("output is not a JSON object: %v\n%s", err, output)
	}
	return doc
}

// assertOutputContains fails if the output does not contain the expected substring.
func assertOutputContains(t *testing.T, output, expected string) {
	t.Helper()
	if !strings.Contains(output, expected) {
		t.Errorf("expected output to contain %q, got: %s", expected, output)
	}
}

// writeTestFile creates a temporary file with the given content.
func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}
