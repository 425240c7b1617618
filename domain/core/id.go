package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	AnalysisID    ID
	ParticipantID ID
)

// String conversions for domain IDs
func (id AnalysisID) String() string    { return ID(id).String() }
func (id ParticipantID) String() string { return ID(id).String() }

// NewAnalysisID creates an identifier for a single agreement analysis
func NewAnalysisID() AnalysisID {
	return AnalysisID(NewID())
}

// ParseParticipantID parses a string into ParticipantID. Surrounding
// whitespace is not significant.
func ParseParticipantID(s string) (ParticipantID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("participant ID cannot be empty")
	}
	return ParticipantID(s), nil
}
