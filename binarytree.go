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

// IPPrefixTree is the Binary Prefix Tree of spec §4.2: a full binary trie
// over IPv4 prefixes, one edge per prefix bit. The zero value is not
// ready to use; construct with NewIPPrefixTree.
type IPPrefixTree struct {
	root *binaryNode
	size int
	seq  uint64
}

// NewIPPrefixTree returns an empty, ready-to-use IPv4 routing table.
func NewIPPrefixTree() *IPPrefixTree {
	return &IPPrefixTree{root: &binaryNode{}}
}

func (t *IPPrefixTree) parse(text string) (bitops.Bits, int, error) {
	family, bits, prefixLen, err := addrcodec.Parse(text)
	if err != nil {
		return bitops.Bits{}, 0, errors.Wrapf(ErrInvalidPrefix, "%v", err)
	}
	if family != addrcodec.FamilyV4 {
		return bitops.Bits{}, 0, errors.Wrapf(ErrFamilyMismatch, "IPPrefixTree: %q is %s", text, family)
	}
	return bitops.MaskToLen(bits, prefixLen, 32), prefixLen, nil
}

// Add inserts a new Route for prefixText with the given attributes. No
// deduplication is performed: calling Add twice with the same prefix and
// attributes yields two distinct, coexisting Routes (spec §4.2).
func (t *IPPrefixTree) Add(prefixText string, attrs ...Attr) (*Route, error) {
	route, err := NewRoute(prefixText, attrs...)
	if err != nil {
		return nil, err
	}
	if route.family != addrcodec.FamilyV4 {
		return nil, errors.Wrapf(ErrFamilyMismatch, "IPPrefixTree.Add: %q is %s", prefixText, route.family)
	}

	n := t.root
	for i := 0; i < route.prefixLen; i++ {
		bit := bitops.BitAt(route.bits, i)
		if n.children[bit] == nil {
			n.children[bit] = &binaryNode{}
		}
		n = n.children[bit]
	}

	t.seq++
	route.seq = t.seq
	n.routes = append(n.routes, route)
	t.size++
	return route, nil
}

// Get performs a longest-prefix-match lookup for addrText (a bare address
// or a CIDR; a bare address is treated as /32), returning the
// attribute-filtered routes of the deepest route-bearing node on the walk,
// or an empty slice if none match.
func (t *IPPrefixTree) Get(addrText string, filter ...Attr) ([]*Route, error) {
	bits, prefixLen, err := t.parse(addrText)
	if err != nil {
		return nil, err
	}

	n := t.root
	var best *binaryNode
	if len(n.routes) > 0 {
		best = n
	}
	for i := 0; i < prefixLen; i++ {
		bit := bitops.BitAt(bits, i)
		if n.children[bit] == nil {
			break
		}
		n = n.children[bit]
		if len(n.routes) > 0 {
			best = n
		}
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
func (t *IPPrefixTree) ShowAll(filter ...Attr) []*Route {
	out := []*Route{}
	collectBinarySubtree(t.root, filter, &out)
	sortAscending(out)
	return out
}

// ShowExact returns the attribute-filtered routes attached exactly at
// prefixText, or an empty slice if no such node exists or it carries no
// routes. This is spec's show(prefix, as_root=False).
func (t *IPPrefixTree) ShowExact(prefixText string, filter ...Attr) ([]*Route, error) {
	bits, prefixLen, err := t.parse(prefixText)
	if err != nil {
		return nil, err
	}

	path, found := descend(t.root, bits, prefixLen)
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
func (t *IPPrefixTree) ShowSubtree(prefixText string, filter ...Attr) ([]*Route, error) {
	bits, prefixLen, err := t.parse(prefixText)
	if err != nil {
		return nil, err
	}

	path, found := descend(t.root, bits, prefixLen)
	out := []*Route{}
	if found {
		collectBinarySubtree(path[len(path)-1], filter, &out)
	}
	sortAscending(out)
	return out, nil
}

// Parent returns the attribute-filtered routes of the first strictly
// less-specific ancestor of prefixText that carries routes, or an empty
// slice if prefixText itself has no routes or no such ancestor exists.
func (t *IPPrefixTree) Parent(prefixText string, filter ...Attr) ([]*Route, error) {
	bits, prefixLen, err := t.parse(prefixText)
	if err != nil {
		return nil, err
	}

	path, found := descend(t.root, bits, prefixLen)
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
func (t *IPPrefixTree) Children(prefixText string, filter ...Attr) ([]*Route, error) {
	bits, prefixLen, err := t.parse(prefixText)
	if err != nil {
		return nil, err
	}

	path, found := descend(t.root, bits, prefixLen)
	out := []*Route{}
	if found {
		n := path[len(path)-1]
		collectBinarySubtree(n.children[0], filter, &out)
		collectBinarySubtree(n.children[1], filter, &out)
	}
	sortAscending(out)
	return out, nil
}

// Match walks prefixText bit by bit and collects the attribute-filtered
// routes of every node visited, including the terminal one: every route
// whose prefix is a proper prefix of, or equal to, the query.
func (t *IPPrefixTree) Match(prefixText string, filter ...Attr) ([]*Route, error) {
	bits, prefixLen, err := t.parse(prefixText)
	if err != nil {
		return nil, err
	}

	out := []*Route{}
	n := t.root
	collectFiltered(n.routes, filter, &out)
	for i := 0; i < prefixLen; i++ {
		bit := bitops.BitAt(bits, i)
		if n.children[bit] == nil {
			break
		}
		n = n.children[bit]
		collectFiltered(n.routes, filter, &out)
	}
	sortAscending(out)
	return out, nil
}

// WCMatch walks from the root, descending into both children wherever
// wildcard has a don't-care (set) bit and into only the address's child
// otherwise, collecting attribute-filtered routes at every node visited.
// The walk depth is the family's full bit width (spec §9).
func (t *IPPrefixTree) WCMatch(addrText, wildcardText string, filter ...Attr) ([]*Route, error) {
	addrFamily, addrBits, _, err := addrcodec.Parse(addrText)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidPrefix, "%v", err)
	}
	if addrFamily != addrcodec.FamilyV4 {
		return nil, errors.Wrapf(ErrFamilyMismatch, "IPPrefixTree.WCMatch: %q is %s", addrText, addrFamily)
	}

	wildFamily, wildBits, _, err := addrcodec.Parse(wildcardText)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidPrefix, "%v", err)
	}
	if wildFamily != addrcodec.FamilyV4 {
		return nil, errors.Wrapf(ErrFamilyMismatch, "IPPrefixTree.WCMatch wildcard: %q is %s", wildcardText, wildFamily)
	}

	depth := addrcodec.FamilyV4.Width()
	wild := bitset.New(uint(depth))
	for i := 0; i < depth; i++ {
		if bitops.BitAt(wildBits, i) == 1 {
			wild.Set(uint(i))
		}
	}

	out := []*Route{}
	var walk func(n *binaryNode, i int)
	walk = func(n *binaryNode, i int) {
		if n == nil {
			return
		}
		collectFiltered(n.routes, filter, &out)
		if i >= depth {
			return
		}
		if wild.Test(uint(i)) {
			walk(n.children[0], i+1)
			walk(n.children[1], i+1)
			return
		}
		walk(n.children[bitops.BitAt(addrBits, i)], i+1)
	}
	walk(t.root, 0)
	sortAscending(out)
	return out, nil
}

// Delete removes the routes attached exactly at prefixText (all of them
// if filter is empty, otherwise only those matching filter), pruning
// now-empty ancestors. Returns ErrUnknownPrefix if prefixText is not a
// present route.
func (t *IPPrefixTree) Delete(prefixText string, filter ...Attr) error {
	bits, prefixLen, err := t.parse(prefixText)
	if err != nil {
		return err
	}

	path, bitsTaken, found := descendWithBits(t.root, bits, prefixLen)
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

	pruneUpward(path, bitsTaken)
	return nil
}

// Flush removes every route matching filter (the entire tree, if filter
// is empty) and prunes empty subtrees.
func (t *IPPrefixTree) Flush(filter ...Attr) error {
	if len(filter) == 0 {
		t.root = &binaryNode{}
		t.size = 0
		return nil
	}
	t.size -= flushBinary(t.root, filter)
	return nil
}

// FlushSubtree applies Flush's filtered removal to the subtree rooted at
// prefixText's exact node, including that node, then prunes upward. A
// missing node is a no-op.
func (t *IPPrefixTree) FlushSubtree(prefixText string, filter ...Attr) error {
	bits, prefixLen, err := t.parse(prefixText)
	if err != nil {
		return err
	}

	path, bitsTaken, found := descendWithBits(t.root, bits, prefixLen)
	if !found {
		return nil
	}

	t.size -= flushBinary(path[len(path)-1], filter)
	pruneUpward(path, bitsTaken)
	return nil
}

// Contains reports whether addrText resolves to at least one route via
// Get (the container "in" protocol, spec §4.2 invariant 1).
func (t *IPPrefixTree) Contains(addrText string) bool {
	routes, err := t.Get(addrText)
	return err == nil && len(routes) > 0
}

// Len returns the total number of Route records in the tree.
func (t *IPPrefixTree) Len() int {
	return t.size
}

// IsEmpty reports whether the tree holds no Route records.
func (t *IPPrefixTree) IsEmpty() bool {
	return t.size == 0
}

// All iterates every route in the tree in descending prefix-length order
// (most specific first), with insertion order breaking ties — the
// container iteration protocol of spec §4.2.
func (t *IPPrefixTree) All() iter.Seq[*Route] {
	return func(yield func(*Route) bool) {
		all := []*Route{}
		collectBinarySubtree(t.root, nil, &all)
		sortDescendingByLength(all)
		for _, r := range all {
			if !yield(r) {
				return
			}
		}
	}
}
