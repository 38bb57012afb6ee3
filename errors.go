// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package iprib

import "github.com/pkg/errors"

// Sentinel error kinds (spec §7). All are wrapped with contextual detail
// via github.com/pkg/errors before returning, following the wrapping
// style of stamp-routesum's routesum.go; callers distinguish kinds with
// errors.Is.
var (
	// ErrInvalidPrefix is returned when a textual prefix or address fails
	// to parse.
	ErrInvalidPrefix = errors.New("invalid prefix")

	// ErrFamilyMismatch is returned when an IPv4 value is given to an
	// IPv6 tree, or vice versa.
	ErrFamilyMismatch = errors.New("address family mismatch")

	// ErrUnknownPrefix is returned by Delete when the given prefix has no
	// matching route. Every other query or mutation on an absent or
	// routeless prefix returns an empty result instead of an error.
	ErrUnknownPrefix = errors.New("unknown prefix")

	// ErrImmutableAttribute is returned when code attempts to change a
	// Route's prefix after construction.
	ErrImmutableAttribute = errors.New("route prefix is immutable after construction")
)
