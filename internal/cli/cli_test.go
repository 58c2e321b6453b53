package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitConfig(t *testing.T) {
	first, err := initConfig()
	if err != nil {
		t.Fatalf("initConfig failed: %v", err)
	}
	second, err := initConfig()
	if err != nil {
		t.Fatalf("initConfig failed: %v", err)
	}

	if len(first.TokenSecret) != 64 {
		t.Errorf("Expected 64 hex chars, got %q", first.TokenSecret)
	}
	if first.TokenSecret == second.TokenSecret {
		t.Error("Expected a fresh secret on every call")
	}
	if err := first.Validate(); err != nil {
		t.Errorf("Expected generated config to be valid: %v", err)
	}
}

func TestPrintRoles(t *testing.T) {
	var buf bytes.Buffer
	printRoles(&buf)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 14 {
		t.Fatalf("Expected header and 13 permissions, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "SUPER_ADMIN") {
		t.Errorf("Expected role header, got %q", lines[0])
	}

	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) != 4 {
			t.Fatalf("Unexpected row %q", line)
		}
		// super admin holds every permission
		if fields[1] != "✓" {
			t.Errorf("Expected super admin to hold %s", fields[0])
		}
		switch fields[0] {
		case "delete_users":
			if fields[2] != "-" || fields[3] != "✓" {
				t.Errorf("Unexpected delete_users row %q", line)
			}
		case "edit_products":
			if fields[2] != "✓" || fields[3] != "-" {
				t.Errorf("Unexpected edit_products row %q", line)
			}
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"init", "serve", "migrate", "rollback", "show", "roles"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Expected %s command, got %v", name, err)
		}
	}
}
