package id

import (
	"regexp"
	"strings"
	"testing"
)

var reUUIDv4 = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-4[a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)

func TestNewLoanID_Format(t *testing.T) {
	got := NewLoanID()
	if len(got) != 36 {
		t.Fatalf("length = %d, want 36 (got=%q)", len(got), got)
	}
	if !reUUIDv4.MatchString(got) {
		t.Fatalf("not a lowercase v4 uuid: %q", got)
	}
	if !IsLoanID(got) {
		t.Fatalf("IsLoanID rejected generated id %q", got)
	}
}

func TestNewLoanID_Uniqueness(t *testing.T) {
	const n = 200
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := NewLoanID()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id after %d iterations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestIsLoanID_Rejects(t *testing.T) {
	for _, s := range []string{
		"",
		"not-a-uuid",
		strings.Repeat("a", 32),                   // hex without dashes
		"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c8",     // 35 chars
		"{3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88}",   // braces
		"urn:uuid:3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88",
	} {
		if IsLoanID(s) {
			t.Fatalf("IsLoanID(%q) = true, want false", s)
		}
	}
}
