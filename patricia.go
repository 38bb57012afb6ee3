// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package iprib

import (
	"iter"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"

	"github.com/gaissmai-student/iprib/internal/addrcodec"
	"github.com/gaissmai-student/iprib/internal/bitops"
)

// IPRadixTree is the PATRICIA Radix Trie of spec §4.3: a path-compressed
// IPv6 trie where every node's skip label and branching bit are derived,
// never stored redundantly. It exposes the same operational surface as
// IPPrefixTree, and spec invariant 4 requires the two to agree bit for
// bit on identical input. The zero value is not ready to use; construct
// with NewIPRadixTree.
type IPRadixTree struct {
	root *patriciaNode
	size int
	seq  uint64
}

// NewIPRadixTree returns an empty, ready-to-use IPv6 routing table.
func NewIPRadixTree() *IPRadixTree {
	return &IPRadixTree{root: &patriciaNode{}}
}

func (t *IPRadixTree) parse(text string) (bitops.Bits, int, error) {
	family, bits, prefixLen, err := addrcodec.Parse(text)
	if err != nil {
		return bitops.Bits{}, 0, errors.Wrapf(ErrInvalidPrefix, "%v", err)
	}
	if family != addrcodec.FamilyV6 {
		return bitops.Bits{}, 0, errors.Wrapf(ErrFamilyMismatch, "IPRadixTree: %q is %s", text, family)
	}
	return bitops.MaskToLen(bits, prefixLen, 128), prefixLen, nil
}

// Add inserts a new Route for prefixText with the given attributes. No
// deduplication is performed: calling Add twice with the same prefix and
// attributes yields two distinct, coexisting Routes (spec §4.3).
func (t *IPRadixTree) Add(prefixText string, attrs ...Attr) (*Route, error) {
	route, err := NewRoute(prefixText, attrs...)
	if err != nil {
		return nil, err
	}
	if route.family != addrcodec.FamilyV6 {
		return nil, errors.Wrapf(ErrFamilyMismatch, "IPRadixTree.Add: %q is %s", prefixText, route.family)
	}

	t.seq++
	route.seq = t.seq
	t.root = insertPatricia(t.root, 0, route.bits, route.prefixLen, route)
	t.size++
	return route, nil
}

// Get performs a longest-prefix-match lookup for addrText (a bare address
// or a CIDR; a bare address is treated as /128), returning the
// attribute-filtered routes of the deepest fully-matched route-bearing
// node, or an empty slice if none match.
func (t *IPRadixTree) Get(addrText string, filter ...Attr) ([]*Route, error) {
	bits, prefixLen, err := t.parse(addrText)
	if err != nil {
		return nil, err
	}

	n := t.root
	depth := 0
	var best *patriciaNode
	for {
		remaining := prefixLen - depth
		common := bitops.CommonPrefixLen(bits, n.label, depth, 0, min(remaining, n.labelLen))
		if common != n.labelLen {
			break
		}
		if len(n.routes) > 0 {
			best = n
		}
		depth += n.labelLen
		if depth >= prefixLen {
			break
		}
		child := n.children[bitops.BitAt(bits, depth)]
		if child == nil {
			break
		}
		depth++
		n = child
	}

	out := []*Route{}
	if best != nil {
		collectFiltered(best.routes, filter, &out)
	}
	sortAscending(out)
	return out, nil
}

// ShowAll returns every route in the tree, attribute-filtered and sorted.
// This is spec's show(prefix=None).
func (t *IPRadixTree) ShowAll(filter ...Attr) []*Route {
	out := []*Route{}
	collectPatriciaSubtree(t.root, filter, &out)
	sortAscending(out)
	return out
}

// ShowExact returns the attribute-filtered routes attached exactly at
// prefixText, or an empty slice if no such node exists or it carries no
// routes. This is spec's show(prefix, as_root=False).
func (t *IPRadixTree) ShowExact(prefixText string, filter ...Attr) ([]*Route, error) {
	bits, prefixLen, err := t.parse(prefixText)
	if err != nil {
		return nil, err
	}

	path, found := descendExactPatricia(t.root, bits, prefixLen)
	out := []*Route{}
	if found {
		collectFiltered(path[len(path)-1].routes, filter, &out)
	}
	sortAscending(out)
	return out, nil
}

// ShowSubtree returns every attribute-filtered route in the subtree
// rooted at prefixText's exact node, including the node's own routes, or
// an empty slice if no such node exists. This is spec's
// show(prefix, as_root=True).
func (t *IPRadixTree) ShowSubtree(prefixText string, filter ...Attr) ([]*Route, error) {
	bits, prefixLen, err := t.parse(prefixText)
	if err != nil {
		return nil, err
	}

	path, found := descendExactPatricia(t.root, bits, prefixLen)
	out := []*Route{}
	if found {
		collectPatriciaSubtree(path[len(path)-1], filter, &out)
	}
	sortAscending(out)
	return out, nil
}

// Parent returns the attribute-filtered routes of the first strictly
// less-specific ancestor of prefixText that carries routes, or an empty
// slice if prefixText itself has no routes or no such ancestor exists.
func (t *IPRadixTree) Parent(prefixText string, filter ...Attr) ([]*Route, error) {
	bits, prefixLen, err := t.parse(prefixText)
	if err != nil {
		return nil, err
	}

	path, found := descendExactPatricia(t.root, bits, prefixLen)
	out := []*Route{}
	if !found || len(path[len(path)-1].routes) == 0 {
		return out, nil
	}

	for i := len(path) - 2; i >= 0; i-- {
		if len(path[i].routes) > 0 {
			collectFiltered(path[i].routes, filter, &out)
			sortAscending(out)
			return out, nil
		}
	}
	return out, nil
}

// Children returns the attribute-filtered routes of every strict
// descendant of prefixText's exact node that carries routes, excluding
// the node itself.
func (t *IPRadixTree) Children(prefixText string, filter ...Attr) ([]*Route, error) {
	bits, prefixLen, err := t.parse(prefixText)
	if err != nil {
		return nil, err
	}

	path, found := descendExactPatricia(t.root, bits, prefixLen)
	out := []*Route{}
	if found {
		n := path[len(path)-1]
		collectPatriciaSubtree(n.children[0], filter, &out)
		collectPatriciaSubtree(n.children[1], filter, &out)
	}
	sortAscending(out)
	return out, nil
}

// Match walks prefixText and collects the attribute-filtered routes of
// every fully-matched node visited, including the terminal one: every
// route whose prefix is a proper prefix of, or equal to, the query.
func (t *IPRadixTree) Match(prefixText string, filter ...Attr) ([]*Route, error) {
	bits, prefixLen, err := t.parse(prefixText)
	if err != nil {
		return nil, err
	}

	out := []*Route{}
	n := t.root
	depth := 0
	for {
		remaining := prefixLen - depth
		common := bitops.CommonPrefixLen(bits, n.label, depth, 0, min(remaining, n.labelLen))
		if common != n.labelLen {
			break
		}
		collectFiltered(n.routes, filter, &out)
		depth += n.labelLen
		if depth >= prefixLen {
			break
		}
		child := n.children[bitops.BitAt(bits, depth)]
		if child == nil {
			break
		}
		depth++
		n = child
	}
	sortAscending(out)
	return out, nil
}

// WCMatch walks from the root, descending into both children wherever
// wildcard has a don't-care (set) bit and into only the address's child
// otherwise, collecting attribute-filtered routes at every node reachable
// under that wildcard. A fixed (non-don't-care) bit inside a node's skip
// label that disagrees with addrText makes the whole node, and everything
// beneath it, unreachable. The walk depth is the family's full bit width
// (spec §9).
func (t *IPRadixTree) WCMatch(addrText, wildcardText string, filter ...Attr) ([]*Route, error) {
	addrFamily, addrBits, _, err := addrcodec.Parse(addrText)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidPrefix, "%v", err)
	}
	if addrFamily != addrcodec.FamilyV6 {
		return nil, errors.Wrapf(ErrFamilyMismatch, "IPRadixTree.WCMatch: %q is %s", addrText, addrFamily)
	}

	wildFamily, wildBits, _, err := addrcodec.Parse(wildcardText)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidPrefix, "%v", err)
	}
	if wildFamily != addrcodec.FamilyV6 {
		return nil, errors.Wrapf(ErrFamilyMismatch, "IPRadixTree.WCMatch wildcard: %q is %s", wildcardText, wildFamily)
	}

	limit := addrcodec.FamilyV6.Width()
	wild := bitset.New(uint(limit))
	for i := 0; i < limit; i++ {
		if bitops.BitAt(wildBits, i) == 1 {
			wild.Set(uint(i))
		}
	}

	out := []*Route{}
	var walk func(n *patriciaNode, depth int)
	walk = func(n *patriciaNode, depth int) {
		if n == nil {
			return
		}
		for i := 0; i < n.labelLen; i++ {
			pos := depth + i
			if wild.Test(uint(pos)) {
				continue
			}
			if bitops.BitAt(n.label, i) != bitops.BitAt(addrBits, pos) {
				return
			}
		}
		collectFiltered(n.routes, filter, &out)

		afterLabel := depth + n.labelLen
		if afterLabel >= limit {
			return
		}
		if wild.Test(uint(afterLabel)) {
			walk(n.children[0], afterLabel+1)
			walk(n.children[1], afterLabel+1)
			return
		}
		walk(n.children[bitops.BitAt(addrBits, afterLabel)], afterLabel+1)
	}
	walk(t.root, 0)
	sortAscending(out)
	return out, nil
}

// Delete removes the routes attached exactly at prefixText (all of them
// if filter is empty, otherwise only those matching filter), collapsing
// now-redundant ancestors. Returns ErrUnknownPrefix if prefixText is not
// a present route.
func (t *IPRadixTree) Delete(prefixText string, filter ...Attr) error {
	bits, prefixLen, err := t.parse(prefixText)
	if err != nil {
		return err
	}

	path, found := descendExactPatricia(t.root, bits, prefixLen)
	if !found || len(path[len(path)-1].routes) == 0 {
		return errors.Wrapf(ErrUnknownPrefix, "%q", prefixText)
	}

	n := path[len(path)-1]
	if len(filter) == 0 {
		t.size -= len(n.routes)
		n.routes = nil
	} else {
		kept := n.routes[:0]
		for _, r := range n.routes {
			if routeMatches(r, filter) {
				t.size--
			} else {
				kept = append(kept, r)
			}
		}
		n.routes = kept
	}

	t.root = collapseUpward(t.root, path)
	return nil
}

// Flush removes every route matching filter (the entire tree, if filter
// is empty) and collapses the result.
func (t *IPRadixTree) Flush(filter ...Attr) error {
	if len(filter) == 0 {
		t.root = &patriciaNode{}
		t.size = 0
		return nil
	}

	newRoot, removed := flushPatricia(t.root, filter)
	if newRoot == nil {
		newRoot = &patriciaNode{}
	}
	t.root = newRoot
	t.size -= removed
	return nil
}

// FlushSubtree applies Flush's filtered removal to the subtree rooted at
// prefixText's exact node, including that node, then collapses upward. A
// missing node is a no-op.
func (t *IPRadixTree) FlushSubtree(prefixText string, filter ...Attr) error {
	bits, prefixLen, err := t.parse(prefixText)
	if err != nil {
		return err
	}

	path, found := descendExactPatricia(t.root, bits, prefixLen)
	if !found {
		return nil
	}

	target := path[len(path)-1]
	newTarget, removed := flushPatricia(target, filter)
	t.size -= removed

	if len(path) == 1 {
		if newTarget == nil {
			newTarget = &patriciaNode{}
		}
		t.root = newTarget
		return nil
	}

	parent := path[len(path)-2]
	if parent.children[0] == target {
		parent.children[0] = newTarget
	} else {
		parent.children[1] = newTarget
	}
	t.root = collapseUpward(t.root, path[:len(path)-1])
	return nil
}

// Contains reports whether addrText resolves to at least one route via
// Get (the container "in" protocol, spec §4.3 invariant 1).
func (t *IPRadixTree) Contains(addrText string) bool {
	routes, err := t.Get(addrText)
	return err == nil && len(routes) > 0
}

// Len returns the total number of Route records in the tree.
func (t *IPRadixTree) Len() int {
	return t.size
}

// IsEmpty reports whether the tree holds no Route records.
func (t *IPRadixTree) IsEmpty() bool {
	return t.size == 0
}

// All iterates every route in the tree in descending prefix-length order
// (most specific first), with insertion order breaking ties — the
// container iteration protocol of spec §4.3.
func (t *IPRadixTree) All() iter.Seq[*Route] {
	return func(yield func(*Route) bool) {
		all := []*Route{}
		collectPatriciaSubtree(t.root, nil, &all)
		sortDescendingByLength(all)
		for _, r := range all {
			if !yield(r) {
				return
			}
		}
	}
}
