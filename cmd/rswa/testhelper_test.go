package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rswa-project/rswa/internal/audit"
)

// executeCommand executes a Cobra command with the given args and returns
// what it wrote to standard output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err = root.Execute()
	// Mirrors main: the audit log is closed even when the command failed.
	_ = audit.Close()
	return buf.String(), err
}

// resetFlags restores every flag to its default and clears Changed, since
// Cobra retains flag state between Execute calls.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Setenv("RSWA_AUDIT_LOG", "")

	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	for _, c := range []*cobra.Command{rootCmd, generateJWKCmd, generateCOSEKeyCmd, auditVerifyCmd, auditTailCmd} {
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
	}
	loadedConfig = nil
}

// writeFile writes content to a file in a fresh temp directory.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", name, err)
	}
	return path
}

// parseDocument decodes a JWK document printed by the CLI.
func parseDocument(t *testing.T, output string) map[string]interface{} {
	t.Helper()
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(output), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, output)
	}
	return doc
}

// assertNoError fails the test if err is not nil.
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertError fails the test if err is nil.
func assertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
