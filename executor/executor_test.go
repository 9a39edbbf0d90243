package executor

import (
	"context"
	"os/exec"
	"strings"
	"testing"
)

func TestExecuteReturnsStdout(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	out, err := New().Execute(context.Background(), "sh", "-c", "printf hello")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != "hello" {
		t.Fatalf("stdout = %q, want hello", out)
	}
}

func TestExecuteIncludesStderrOnFailure(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	_, err := New().Execute(context.Background(), "sh", "-c", "echo broken >&2; exit 3")
	if err == nil {
		t.Fatal("Execute() error = nil, want failure")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Fatalf("error %q does not include stderr", err)
	}
}

func TestTail(t *testing.T) {
	if got := tail("abcdef", 3); got != "...def" {
		t.Fatalf("tail() = %q", got)
	}
	if got := tail("abc", 3); got != "abc" {
		t.Fatalf("tail() = %q", got)
	}
}
