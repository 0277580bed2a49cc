// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Error kinds shared by every stage. Callers wrap them with fmt.Errorf("...: %w")
// and test with errors.Is.
var (
	// ErrUpstream reports a failed or malformed response from an external service.
	ErrUpstream = errors.New("upstream error")

	// ErrParse reports a model reply that did not contain the expected structure.
	ErrParse = errors.New("parse error")

	// ErrNotFound reports a missing session or collection.
	ErrNotFound = errors.New("not found")

	// ErrNoResults reports a workflow that halted before producing a collection or plan.
	ErrNoResults = errors.New("no results")
)
