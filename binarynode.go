// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package iprib

import "github.com/gaissmai-student/iprib/internal/bitops"

// binaryNode is one level of the full binary prefix trie: two child
// slots, indexed by bit value, and the Routes attached at this exact
// depth. A node is retained iff it carries routes or has a descendant
// that does (spec §3); pruneUpward restores that invariant after delete.
type binaryNode struct {
	children [2]*binaryNode
	routes   []*Route
}

func (n *binaryNode) isEmpty() bool {
	return n != nil && len(n.routes) == 0 && n.children[0] == nil && n.children[1] == nil
}

// descendWithBits walks from root along the bits of pfx for prefixLen
// steps, returning every node visited (path[0] is root) and the bit
// taken at each step. found is true iff the full depth was reached.
func descendWithBits(root *binaryNode, pfx bitops.Bits, prefixLen int) (path []*binaryNode, bitsTaken []int, found bool) {
	path = make([]*binaryNode, 1, prefixLen+1)
	path[0] = root
	bitsTaken = make([]int, 0, prefixLen)

	n := root
	for i := 0; i < prefixLen; i++ {
		bit := bitops.BitAt(pfx, i)
		if n.children[bit] == nil {
			return path, bitsTaken, false
		}
		n = n.children[bit]
		path = append(path, n)
		bitsTaken = append(bitsTaken, bit)
	}
	return path, bitsTaken, true
}

func descend(root *binaryNode, pfx bitops.Bits, prefixLen int) (path []*binaryNode, found bool) {
	path, _, found = descendWithBits(root, pfx, prefixLen)
	return path, found
}

// pruneUpward removes nodes along path, starting from the deepest, as
// long as they carry no routes and have no children, stopping at the
// first node still needed. The root (path[0]) is never removed.
func pruneUpward(path []*binaryNode, bitsTaken []int) {
	for i := len(path) - 1; i >= 1; i-- {
		n := path[i]
		if len(n.routes) != 0 || n.children[0] != nil || n.children[1] != nil {
			return
		}
		parent := path[i-1]
		parent.children[bitsTaken[i-1]] = nil
	}
}

func collectFiltered(routes []*Route, filter []Attr, out *[]*Route) {
	for _, r := range routes {
		if routeMatches(r, filter) {
			*out = append(*out, r)
		}
	}
}

// collectBinarySubtree appends every route at n and its descendants,
// pre-order, filtered.
func collectBinarySubtree(n *binaryNode, filter []Attr, out *[]*Route) {
	if n == nil {
		return
	}
	collectFiltered(n.routes, filter, out)
	collectBinarySubtree(n.children[0], filter, out)
	collectBinarySubtree(n.children[1], filter, out)
}

// flushBinary removes every route matching filter (all routes, if filter
// is empty) from n and its descendants, pruning now-empty children, and
// returns the number removed.
func flushBinary(n *binaryNode, filter []Attr) int {
	if n == nil {
		return 0
	}

	removed := 0
	if len(filter) == 0 {
		removed += len(n.routes)
		n.routes = nil
	} else {
		kept := n.routes[:0]
		for _, r := range n.routes {
			if routeMatches(r, filter) {
				removed++
			} else {
				kept = append(kept, r)
			}
		}
		n.routes = kept
	}

	removed += flushBinary(n.children[0], filter)
	removed += flushBinary(n.children[1], filter)

	if n.children[0].isEmpty() {
		n.children[0] = nil
	}
	if n.children[1].isEmpty() {
		n.children[1] = nil
	}

	return removed
}
