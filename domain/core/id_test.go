package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseParticipantID tests participant ID parsing
func TestParseParticipantID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ParticipantID
		wantErr bool
	}{
		{"valid", "P01", "P01", false},
		{"trimmed", "  P02\t", "P02", false},
		{"empty", "", "", true},
		{"whitespace", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParticipantID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseParticipantID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseParticipantID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDatasetHasher_OrderSensitive(t *testing.T) {
	a := NewDatasetHasher()
	a.Add("A", 1)
	a.Add("B", 2)

	b := NewDatasetHasher()
	b.Add("A", 1)
	b.Add("B", 2)

	c := NewDatasetHasher()
	c.Add("B", 2)
	c.Add("A", 1)

	if a.Sum() != b.Sum() {
		t.Fatalf("identical rows hashed differently: %s vs %s", a.Sum(), b.Sum())
	}
	if a.Sum() == c.Sum() {
		t.Fatal("reordered rows should change the fingerprint")
	}
}

func TestDatasetHasher_ParticipantBoundary(t *testing.T) {
	// "AB"+"C" must not collide with "A"+"BC"
	a := NewDatasetHasher()
	a.Add("AB", 1)
	a.Add("C", 1)

	b := NewDatasetHasher()
	b.Add("A", 1)
	b.Add("BC", 1)

	if a.Sum() == b.Sum() {
		t.Fatal("length-prefixed participant IDs should not collide")
	}
}
