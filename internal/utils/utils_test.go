package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	oldOut, oldErr := stdout, stderr
	stdout, stderr = &out, &errOut
	t.Cleanup(func() { stdout, stderr = oldOut, oldErr })
	return &out, &errOut
}

func TestPrintStreams(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	out, errOut := capture(t)

	PrintSuccess("applied %d", 3)
	PrintError("failed: %s", "boom")

	if got := out.String(); got != "✓ applied 3\n" {
		t.Errorf("Unexpected stdout %q", got)
	}
	if got := errOut.String(); got != "✗ failed: boom\n" {
		t.Errorf("Unexpected stderr %q", got)
	}
}

func TestPrintColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	os.Unsetenv("NO_COLOR")
	out, _ := capture(t)

	PrintInfo("hello")
	if got := out.String(); got != colorCyan+"ℹ hello"+colorReset+"\n" {
		t.Errorf("Unexpected colored output %q", got)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	if !FileExists(dir) {
		t.Error("Expected temp dir to exist")
	}
	if FileExists(filepath.Join(dir, "missing.yml")) {
		t.Error("Expected missing file to not exist")
	}
}
