// Package attrfilter implements the attribute subset-match used by every
// filtered query and mutation (get, show, parent, children, match, wcmatch,
// delete, flush): a query attribute map matches a route's attribute map
// iff every (name, value) pair in the query is also present, with an
// equal value, in the route. Extra route attributes are irrelevant. An
// empty query matches everything (spec §4.6).
package attrfilter

import "reflect"

// Pair is a single attribute name/value pair.
type Pair struct {
	Name  string
	Value any
}

// Lookup resolves an attribute name to its value on some route.
type Lookup func(name string) (value any, ok bool)

// Match reports whether every pair in filter is present, with an equal
// value, according to lookup.
func Match(filter []Pair, lookup Lookup) bool {
	for _, want := range filter {
		got, ok := lookup(want.Name)
		if !ok || !reflect.DeepEqual(got, want.Value) {
			return false
		}
	}
	return true
}
