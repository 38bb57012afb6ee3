// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package iprib

import (
	"sort"

	"github.com/gaissmai-student/iprib/internal/bitops"
)

// sortAscending orders routes by family, then network address numerically
// ascending, then prefix length ascending, then insertion order — the
// sort spec §4.2 mandates for every named query method.
func sortAscending(routes []*Route) {
	sort.SliceStable(routes, func(i, j int) bool {
		a, b := routes[i], routes[j]
		if a.family != b.family {
			return a.family < b.family
		}
		if c := bitops.Compare(a.bits, b.bits); c != 0 {
			return c < 0
		}
		if a.prefixLen != b.prefixLen {
			return a.prefixLen < b.prefixLen
		}
		return a.seq < b.seq
	})
}

// sortDescendingByLength orders routes most-specific (longest prefix)
// first, with insertion order breaking ties — the order the container
// iteration protocol (`for route in tree`) uses, per spec §4.2.
func sortDescendingByLength(routes []*Route) {
	sort.SliceStable(routes, func(i, j int) bool {
		a, b := routes[i], routes[j]
		if a.prefixLen != b.prefixLen {
			return a.prefixLen > b.prefixLen
		}
		return a.seq < b.seq
	})
}
