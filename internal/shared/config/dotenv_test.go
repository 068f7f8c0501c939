package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseEnvLine(t *testing.T) {
	cases := []struct {
		line   string
		key    string
		val    string
		wantOK bool
	}{
		{line: "PORT=9000", key: "PORT", val: "9000", wantOK: true},
		{line: "export LLM_PROVIDER=openai", key: "LLM_PROVIDER", val: "openai", wantOK: true},
		{line: `DEFAULT_CITY="Hyderabad"`, key: "DEFAULT_CITY", val: "Hyderabad", wantOK: true},
		{line: "DEFAULT_STATE='Tamil Nadu'", key: "DEFAULT_STATE", val: "Tamil Nadu", wantOK: true},
		{line: "DATABASE_URL=postgres://u:p@h/db?sslmode=disable", key: "DATABASE_URL", val: "postgres://u:p@h/db?sslmode=disable", wantOK: true},
		{line: "# comment"},
		{line: "   "},
		{line: "NOVALUE"},
		{line: "=value"},
	}
	for _, tc := range cases {
		key, val, ok := parseEnvLine(tc.line)
		if ok != tc.wantOK || key != tc.key || val != tc.val {
			t.Fatalf("parseEnvLine(%q) = (%q, %q, %v), want (%q, %q, %v)", tc.line, key, val, ok, tc.key, tc.val, tc.wantOK)
		}
	}
}

func TestLoadEnvFilesDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("PATHFINDER_TEST_A=file\nPATHFINDER_TEST_B=file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PATHFINDER_TEST_A", "env")
	t.Setenv("PATHFINDER_TEST_B", "")
	os.Unsetenv("PATHFINDER_TEST_B")

	loadEnvFiles(path, filepath.Join(dir, "missing.env"))

	if got := os.Getenv("PATHFINDER_TEST_A"); got != "env" {
		t.Fatalf("expected environment to win, got %q", got)
	}
	if got := os.Getenv("PATHFINDER_TEST_B"); got != "file" {
		t.Fatalf("expected file value, got %q", got)
	}
}
