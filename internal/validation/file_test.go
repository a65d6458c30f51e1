package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()

	answer := filepath.Join(dir, "answer.txt")
	if err := os.WriteFile(answer, []byte("Drug: Rifampicin\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	big := filepath.Join(dir, "big.txt")
	if err := os.WriteFile(big, make([]byte, MaxInputFileBytes+1), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		input string
		err   string
	}{
		{name: "regular file", input: answer},
		{name: "empty", input: "  ", err: "path cannot be empty"},
		{name: "null byte", input: "a\x00b", err: "null bytes"},
		{name: "control character", input: "a\x01b", err: "control characters"},
		{name: "missing", input: filepath.Join(dir, "missing.txt"), err: "checking file"},
		{name: "directory", input: dir, err: "is a directory"},
		{name: "too large", input: big, err: "file too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateInputFile(tt.input)
			if tt.err != "" {
				if err == nil || !strings.Contains(err.Error(), tt.err) {
					t.Fatalf("Expected error containing %q, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !filepath.IsAbs(got) {
				t.Errorf("Expected absolute path, got %q", got)
			}
		})
	}
}

func TestValidateInputFileExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if err := os.WriteFile(filepath.Join(home, "answer.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := ValidateInputFile("~/answer.txt")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != filepath.Join(home, "answer.txt") {
		t.Errorf("Expected path under home, got %q", got)
	}
}
