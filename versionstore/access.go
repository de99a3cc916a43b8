package versionstore

import (
	"errors"
)

// ErrAccessDenied is returned when access-control evaluation denied the
// operation outright and no override was requested.
var ErrAccessDenied = errors.New("access denied for this operation")

// AccessResult is the outcome of access-control evaluation for one request:
// unrestricted, fully denied, or constrained by a predicate over entity
// fields. It is produced by the access evaluator before a resolution starts.
//
// While a fully denied result is normally rejected upstream, BuildAccessQuery
// still refuses it so a missed upstream check cannot widen into an
// unconstrained query.
type AccessResult struct {
	denied     bool
	constraint *Where
}

// AllowAll returns an unrestricted AccessResult.
func AllowAll() AccessResult {
	return AccessResult{}
}

// DenyAll returns a fully denied AccessResult.
func DenyAll() AccessResult {
	return AccessResult{denied: true}
}

// AllowWhere returns an AccessResult restricting results to rows matching
// the given constraint. A nil constraint is equivalent to AllowAll.
func AllowWhere(constraint *Where) AccessResult {
	return AccessResult{constraint: constraint}
}

// Denied reports whether access was denied outright.
func (a AccessResult) Denied() bool {
	return a.denied
}

// Unrestricted reports whether access carries no constraint at all.
func (a AccessResult) Unrestricted() bool {
	return !a.denied && a.constraint == nil
}

// Constraint returns the access predicate, or nil when unrestricted or denied.
func (a AccessResult) Constraint() *Where {
	return a.constraint
}

// BuildAccessQuery translates the caller's where plus the access-control
// outcome into the one predicate a resolution strategy executes.
//
// With overrideAccess the caller's where passes through untouched. A denied
// result yields ErrAccessDenied. Otherwise the access constraint is ANDed
// with the caller's where; either side being absent leaves the other
// unchanged.
//
// Both strategies must route every query through this boundary; it is the
// only place where access control meets user input.
func BuildAccessQuery(where *Where, access AccessResult, overrideAccess bool) (*Where, error) {
	if overrideAccess {
		return where, nil
	}

	if access.Denied() {
		return nil, ErrAccessDenied
	}

	return And(where, access.constraint), nil
}
