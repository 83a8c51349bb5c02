package types

import (
	"strings"
)

// --- Intersection Types ---

// IntersectionType represents an intersection of two or more member types
// (e.g. A & B). A value of intersection type must satisfy ALL members.
// Like unions, members keep their written order and are never deduplicated
// at construction.
type IntersectionType struct {
	Members []Type
	Reason  Reason
}

// NewIntersectionType wraps the given members as written.
func NewIntersectionType(reason Reason, members ...Type) *IntersectionType {
	return &IntersectionType{Members: members, Reason: reason}
}

func (it *IntersectionType) String() string {
	parts := make([]string, len(it.Members))
	for i, t := range it.Members {
		parts[i] = memberString(t)
	}
	return strings.Join(parts, " & ")
}
func (it *IntersectionType) typeNode() {}

// Equals is ordered and pairwise, mirroring UnionType.
func (it *IntersectionType) Equals(other Type) bool {
	o, ok := other.(*IntersectionType)
	if !ok {
		return false
	}
	return typeListsEqual(it.Members, o.Members)
}
