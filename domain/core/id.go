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
	RouteID      ID
	EvaluationID ID
	BatchID      ID
)

func (id RouteID) String() string      { return ID(id).String() }
func (id EvaluationID) String() string { return ID(id).String() }
func (id BatchID) String() string      { return ID(id).String() }

// NewEvaluationID issues a fresh evaluation identifier.
func NewEvaluationID() EvaluationID { return EvaluationID(NewID()) }

// NewBatchID issues a fresh batch identifier.
func NewBatchID() BatchID { return BatchID(NewID()) }

// ParseRouteID parses a string into RouteID
func ParseRouteID(s string) (RouteID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("route ID cannot be empty")
	}
	return RouteID(s), nil
}

// ParseEvaluationID parses a string into EvaluationID
func ParseEvaluationID(s string) (EvaluationID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("evaluation ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("evaluation ID is not a UUID: %w", err)
	}
	return EvaluationID(s), nil
}
