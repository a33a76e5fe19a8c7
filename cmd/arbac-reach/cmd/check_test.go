package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/goleak"
)

const reachablePolicyYAML = `
roles: [u, a, g]
users: [alice]
user_assignment:
  - {user: alice, role: a}
can_assign:
  - {admin: a, positive: [], negative: [], target: g}
goal: g
`

// runRootCmd executes the root command with args against a fresh
// stdout/stderr buffer, returning the combined output and the error
// Execute's caller would have received.
func runRootCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheckExitsFileNotFoundForMissingPath(t *testing.T) {
	_, err := runRootCmd(t, "check", filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing policy file")
	}
	if code := ExitCode(err); code != exitFileNotFound {
		t.Fatalf("ExitCode() = %d, want %d", code, exitFileNotFound)
	}
}

func TestCheckExitsParseErrorForMalformedPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("roles: [unterminated"), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	_, err := runRootCmd(t, "check", path)
	if err == nil {
		t.Fatal("expected an error for a malformed policy file")
	}
	if code := ExitCode(err); code != exitParseError {
		t.Fatalf("ExitCode() = %d, want %d", code, exitParseError)
	}
}

func TestCheckPrintsReachableForSatisfiablePolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reachable.yaml")
	if err := os.WriteFile(path, []byte(reachablePolicyYAML), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	out, err := runRootCmd(t, "check", path)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(out, "Reachable") {
		t.Fatalf("expected output to contain Reachable, got %q", out)
	}
}

// TestCheckMetricsServerShutsDownCleanly exercises the --metrics-addr
// listener goroutine started and stopped within a single run, guarding
// against a goroutine leak if the shutdown deadline were ever dropped.
func TestCheckMetricsServerShutsDownCleanly(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "reachable.yaml")
	if err := os.WriteFile(path, []byte(reachablePolicyYAML), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	out, err := runRootCmd(t, "check", "--metrics-addr", "127.0.0.1:0", path)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(out, "Reachable") {
		t.Fatalf("expected output to contain Reachable, got %q", out)
	}
}
