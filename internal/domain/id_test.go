package domain

import (
	"strings"
	"testing"
	"time"
)

func TestNewID(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		id := NewID(now)
		if seen[id] {
			t.Fatalf("NewID() produced duplicate %s", id)
		}
		seen[id] = true
	}

	a := NewID(now)
	b := NewID(now.Add(time.Second))
	prefixA, _, _ := strings.Cut(a, "-")
	prefixB, _, _ := strings.Cut(b, "-")
	if prefixA >= prefixB {
		t.Errorf("time prefix not increasing: %s >= %s", prefixA, prefixB)
	}
}
