// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package iprib

import "github.com/gaissmai-student/iprib/internal/bitops"

// patriciaNode is one node of the path-compressed PATRICIA trie. label
// holds the skip label (spec §3) re-based so its own bit 0 is the bit
// immediately following the parent's branching decision; labelLen is its
// length. The branching bit itself is never stored: it is implicit in
// which child slot (0 or 1) a child occupies, and consumes exactly one
// bit of depth between a node's label and its child's label.
//
// Invariant (spec §3): every internal node has either routes attached or
// two non-nil children; a node with one child and no routes must be
// collapsed into that child. The tree root is exempt — it always exists,
// even with zero children and zero routes, as the tree's anchor.
type patriciaNode struct {
	label    bitops.Bits
	labelLen int
	children [2]*patriciaNode
	routes   []*Route
}

// insertPatricia inserts route's bits (queryBits, queryLen), matching
// from depth (the cumulative bit offset at which node's own label
// begins), and returns the node that should occupy this position in the
// parent (either node itself, unchanged structurally, or a new
// intermediate node if a split occurred) — spec §4.3.
func insertPatricia(node *patriciaNode, depth int, queryBits bitops.Bits, queryLen int, route *Route) *patriciaNode {
	remaining := queryLen - depth
	common := bitops.CommonPrefixLen(queryBits, node.label, depth, 0, min(remaining, node.labelLen))

	switch {
	case common == node.labelLen && common == remaining:
		// Full match, and the query ends exactly here: attach the route.
		node.routes = append(node.routes, route)
		return node

	case common == node.labelLen:
		// Full match, query continues: descend via the branching bit.
		afterLabel := depth + node.labelLen
		bit := bitops.BitAt(queryBits, afterLabel)
		if node.children[bit] == nil {
			leafLen := queryLen - (afterLabel + 1)
			node.children[bit] = &patriciaNode{
				label:    bitops.Slice(queryBits, afterLabel+1, leafLen),
				labelLen: leafLen,
				routes:   []*Route{route},
			}
			return node
		}
		node.children[bit] = insertPatricia(node.children[bit], afterLabel+1, queryBits, queryLen, route)
		return node

	default:
		// Partial match: the label and the query diverge at local offset
		// `common`. Split node into an intermediate node holding the
		// common prefix, with the shrunk original node as one child.
		splitDepth := depth + common
		oldBranchBit := bitops.BitAt(node.label, common)
		oldSuffixLen := node.labelLen - common - 1
		node.label = bitops.Slice(node.label, common+1, oldSuffixLen)
		node.labelLen = oldSuffixLen

		intermediate := &patriciaNode{
			label:    bitops.Slice(queryBits, depth, common),
			labelLen: common,
		}
		intermediate.children[oldBranchBit] = node

		if common == remaining {
			// The query itself ends at the divergence point: the
			// intermediate node is terminal and holds the route; no
			// sibling leaf is created.
			intermediate.routes = []*Route{route}
			return intermediate
		}

		newBranchBit := bitops.BitAt(queryBits, splitDepth)
		newLeafLen := queryLen - (splitDepth + 1)
		intermediate.children[newBranchBit] = &patriciaNode{
			label:    bitops.Slice(queryBits, splitDepth+1, newLeafLen),
			labelLen: newLeafLen,
			routes:   []*Route{route},
		}
		return intermediate
	}
}

// descendExactPatricia walks from root along bits for prefixLen bits,
// returning every node whose label fully matched (path[0] is root).
// found is true iff the walk lands exactly on a node boundary at
// prefixLen; it is false if the query diverges from a label, runs out
// inside a label, or a required child is missing.
func descendExactPatricia(root *patriciaNode, bits bitops.Bits, prefixLen int) (path []*patriciaNode, found bool) {
	path = []*patriciaNode{}
	n := root
	depth := 0
	for {
		remaining := prefixLen - depth
		common := bitops.CommonPrefixLen(bits, n.label, depth, 0, min(remaining, n.labelLen))
		if common != n.labelLen {
			return path, false
		}

		path = append(path, n)
		depth += n.labelLen
		if depth == prefixLen {
			return path, true
		}

		bit := bitops.BitAt(bits, depth)
		child := n.children[bit]
		if child == nil {
			return path, false
		}
		depth++
		n = child
	}
}

// collapseNode applies the PATRICIA delete rule to n (spec §4.3): keep it
// if it has routes or two children; drop it if it has neither routes nor
// children; otherwise merge it into its single surviving child. changed
// reports whether n should be replaced in its parent's child slot.
func collapseNode(n *patriciaNode) (replacement *patriciaNode, changed bool) {
	if len(n.routes) > 0 {
		return n, false
	}

	c0, c1 := n.children[0], n.children[1]
	switch {
	case c0 != nil && c1 != nil:
		return n, false
	case c0 == nil && c1 == nil:
		return nil, true
	case c0 != nil:
		return mergeIntoChild(n, 0, c0), true
	default:
		return mergeIntoChild(n, 1, c1), true
	}
}

// mergeIntoChild absorbs n's label and its branching bit toward bit into
// child's label, and returns child as n's replacement.
func mergeIntoChild(n *patriciaNode, bit int, child *patriciaNode) *patriciaNode {
	withBranchBit := bitops.Concat(n.label, n.labelLen, bitops.SingleBit(bit), 1)
	withBranchBitLen := n.labelLen + 1
	child.label = bitops.Concat(withBranchBit, withBranchBitLen, child.label, child.labelLen)
	child.labelLen = withBranchBitLen + child.labelLen
	return child
}

// collapseUpward re-applies collapseNode to every node in path, deepest
// first, stopping as soon as a node needs no change, and returns the
// (possibly new) tree root. A fully emptied root is replaced by a fresh
// empty sentinel rather than removed, matching the binary tree's root
// handling.
func collapseUpward(root *patriciaNode, path []*patriciaNode) *patriciaNode {
	for i := len(path) - 1; i >= 0; i-- {
		n := path[i]
		replacement, changed := collapseNode(n)
		if !changed {
			return root
		}

		if i == 0 {
			if replacement == nil {
				replacement = &patriciaNode{}
			}
			return replacement
		}

		parent := path[i-1]
		if parent.children[0] == n {
			parent.children[0] = replacement
		} else {
			parent.children[1] = replacement
		}
	}
	return root
}

// collectPatriciaSubtree appends every route at n and its descendants,
// pre-order, filtered.
func collectPatriciaSubtree(n *patriciaNode, filter []Attr, out *[]*Route) {
	if n == nil {
		return
	}
	collectFiltered(n.routes, filter, out)
	collectPatriciaSubtree(n.children[0], filter, out)
	collectPatriciaSubtree(n.children[1], filter, out)
}

// flushPatricia removes every route matching filter (all routes, if
// filter is empty) from n and its descendants, post-order collapsing the
// result, and returns the replacement node (nil if n collapsed away
// entirely) and the number of routes removed.
func flushPatricia(n *patriciaNode, filter []Attr) (*patriciaNode, int) {
	if n == nil {
		return nil, 0
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

	c0, rem0 := flushPatricia(n.children[0], filter)
	removed += rem0
	n.children[0] = c0

	c1, rem1 := flushPatricia(n.children[1], filter)
	removed += rem1
	n.children[1] = c1

	if replacement, changed := collapseNode(n); changed {
		return replacement, removed
	}
	return n, removed
}
