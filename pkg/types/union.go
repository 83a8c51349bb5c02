package types

import (
	"strings"
)

// --- Union Types ---

// UnionType represents a union of two or more member types (e.g. string | number).
// Members keep their written order: conversion never flattens nested unions and
// never deduplicates, because member order drives error message layout downstream.
// Normalization, if any, is the constraint engine's business.
type UnionType struct {
	Members []Type
	Reason  Reason
}

// NewUnionType wraps the given members as written. At least two members are
// expected; shorter inputs are the caller's bug and are preserved verbatim so
// the malformed shape stays visible in diagnostics.
func NewUnionType(reason Reason, members ...Type) *UnionType {
	return &UnionType{Members: members, Reason: reason}
}

func (ut *UnionType) String() string {
	parts := make([]string, len(ut.Members))
	for i, t := range ut.Members {
		parts[i] = memberString(t)
	}
	return strings.Join(parts, " | ")
}
func (ut *UnionType) typeNode() {}

// Equals is ordered and pairwise: (A | B) and (B | A) are distinct values
// here even though the engine treats them the same.
func (ut *UnionType) Equals(other Type) bool {
	o, ok := other.(*UnionType)
	if !ok {
		return false
	}
	return typeListsEqual(ut.Members, o.Members)
}

// Contains checks whether any member equals the target.
func (ut *UnionType) Contains(target Type) bool {
	for _, t := range ut.Members {
		if t.Equals(target) {
			return true
		}
	}
	return false
}

// memberString parenthesizes members whose own display form would read
// ambiguously inside a union or intersection.
func memberString(t Type) string {
	switch t.(type) {
	case *UnionType, *IntersectionType, *FunctionType:
		return "(" + t.String() + ")"
	default:
		return t.String()
	}
}
