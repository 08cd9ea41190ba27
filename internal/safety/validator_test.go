package safety

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestProtectedPathBlocking verifies protected paths are blocked
func TestProtectedPathBlocking(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"root slash", "/", true},
		{"etc", "/etc", true},
		{"etc subdir", "/etc/ssh", true},
		{"bin", "/bin", true},
		{"bin file", "/bin/bash", true},
		{"usr", "/usr", true},
		{"usr local", "/usr/local", true},
		{"boot", "/boot", true},
		{"lib", "/lib", true},
		{"sbin", "/sbin", true},
		{"tempkeeper config", "/etc/tempkeeper", true},
		{"tempkeeper config file", "/etc/tempkeeper/config.yaml", true},
		{"tempkeeper state", "/var/lib/tempkeeper", true},
		{"tempkeeper journal", "/var/lib/tempkeeper/journal.db", true},
		{"tmp allowed", "/tmp", false},
		{"tmp file", "/tmp/atmp_x.tmp", false},
		{"var tmp", "/var/tmp", false},
		{"home", "/home", false},
		{"home user", "/home/user", false},
	}

	protected := defaultProtected(nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsProtectedPath(tt.path, protected)
			if result != tt.expected {
				t.Errorf("IsProtectedPath(%s) = %v, expected %v", tt.path, result, tt.expected)
			}
		})
	}
}

// TestAllowedRootEnforcement verifies paths are restricted to allowed roots
func TestAllowedRootEnforcement(t *testing.T) {
	allowed := []string{"/tmp/allowed", "/var/scratch"}

	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"inside allowed tmp", "/tmp/allowed/atmp_a.tmp", true},
		{"inside allowed var", "/var/scratch/atmp_b", true},
		{"allowed root exact", "/tmp/allowed", true},
		{"outside allowed", "/tmp/notallowed/file.txt", false},
		{"parent of allowed", "/tmp", false},
		{"completely different", "/home/user/file.txt", false},
		{"root", "/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsWithinAllowedRoots(tt.path, allowed)
			if result != tt.expected {
				t.Errorf("IsWithinAllowedRoots(%s) = %v, expected %v", tt.path, result, tt.expected)
			}
		})
	}
}

// TestPathNormalization verifies paths are normalized correctly
func TestPathNormalization(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		expectError bool
	}{
		{"absolute path", "/tmp/file.txt", false},
		{"relative path", "file.txt", false}, // Gets normalized to absolute
		{"path with dots", "/tmp/./file.txt", false},
		{"empty path", "", true},
		{"whitespace only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NormalizePath(tt.path)
			if tt.expectError {
				if err == nil {
					t.Errorf("NormalizePath(%s) expected error, got nil", tt.path)
				}
				return
			}
			if err != nil {
				t.Errorf("NormalizePath(%s) unexpected error: %v", tt.path, err)
			}
			if !filepath.IsAbs(result) {
				t.Errorf("NormalizePath(%s) = %s, not absolute", tt.path, result)
			}
		})
	}
}

// TestTraversalDetection verifies ".." segments in raw input are blocked
func TestTraversalDetection(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected bool
	}{
		{"clean path", "/tmp/allowed/file.txt", false},
		{"single dotdot", "/tmp/allowed/../etc/passwd", true},
		{"leading dotdot", "../escape", true},
		{"dotdot only", "..", true},
		{"dot is fine", "/tmp/./file", false},
		{"name containing dots", "/tmp/file..txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectTraversal(tt.raw); got != tt.expected {
				t.Errorf("DetectTraversal(%s) = %v, expected %v", tt.raw, got, tt.expected)
			}
		})
	}
}

// TestSymlinkEscapeDetection verifies links out of the allowed roots are caught
func TestSymlinkEscapeDetection(t *testing.T) {
	tmpRoot := t.TempDir()
	allowed := filepath.Join(tmpRoot, "allowed")
	outside := filepath.Join(tmpRoot, "outside")

	if err := os.MkdirAll(allowed, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.MkdirAll(outside, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	target := filepath.Join(outside, "secret.txt")
	if err := os.WriteFile(target, []byte("keep"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	link := filepath.Join(allowed, "escape")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	v := NewValidator([]string{allowed}, nil)

	if err := v.ValidateRemoveTarget(link); !errors.Is(err, ErrSymlinkEscape) {
		t.Errorf("ValidateRemoveTarget(link) = %v, want ErrSymlinkEscape", err)
	}

	inside := filepath.Join(allowed, "plain.txt")
	if err := os.WriteFile(inside, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := v.ValidateRemoveTarget(inside); err != nil {
		t.Errorf("ValidateRemoveTarget(inside) = %v, want nil", err)
	}
}

// TestValidatorMissingTarget verifies a vanished path is allowed through
func TestValidatorMissingTarget(t *testing.T) {
	allowed := t.TempDir()
	v := NewValidator([]string{allowed}, nil)

	if err := v.ValidateRemoveTarget(filepath.Join(allowed, "gone.tmp")); err != nil {
		t.Errorf("ValidateRemoveTarget(missing) = %v, want nil", err)
	}
}
