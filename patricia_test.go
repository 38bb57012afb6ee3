// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package iprib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPRadixTreeEmpty(t *testing.T) {
	t.Parallel()

	rib := NewIPRadixTree()
	routes, err := rib.Get("::1")
	require.NoError(t, err)
	assert.Empty(t, routes)
	assert.Equal(t, 0, rib.Len())
}

func TestIPRadixTreeRejectsWrongFamily(t *testing.T) {
	t.Parallel()

	rib := NewIPRadixTree()
	_, err := rib.Add("10.0.0.0/8")
	assert.ErrorIs(t, err, ErrFamilyMismatch)
}

func TestIPRadixTreeSplitAtDivergingBit(t *testing.T) {
	t.Parallel()

	rib := NewIPRadixTree()
	_, err := rib.Add("2a01:db8::/32", Attr{Name: "via", Value: "A"})
	require.NoError(t, err)
	_, err = rib.Add("2a01:db8:acad::/48", Attr{Name: "via", Value: "B"})
	require.NoError(t, err)
	_, err = rib.Add("2a01::/16", Attr{Name: "via", Value: "C"})
	require.NoError(t, err)

	all := rib.ShowAll()
	assert.Equal(t, []string{"2a01::/16", "2a01:db8::/32", "2a01:db8:acad::/48"}, prefixesOf(t, all))

	routes, err := rib.Get("2a01:db8:acad::1")
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "2a01:db8:acad::/48", routes[0].Prefix())
}

func TestIPRadixTreeLongestMatch(t *testing.T) {
	t.Parallel()

	rib := NewIPRadixTree()
	_, err := rib.Add("2001:db8::/32")
	require.NoError(t, err)
	_, err = rib.Add("2001:db8::/48")
	require.NoError(t, err)

	routes, err := rib.Get("2001:db8::1")
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "2001:db8::/48", routes[0].Prefix())

	routes, err = rib.Get("2001:db8:ffff::1")
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "2001:db8::/32", routes[0].Prefix())
}

func TestIPRadixTreeDefaultRoute(t *testing.T) {
	t.Parallel()

	rib := NewIPRadixTree()
	_, err := rib.Add("::/0", Attr{Name: "via", Value: "default"})
	require.NoError(t, err)

	routes, err := rib.Get("2001:db8::1")
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "::/0", routes[0].Prefix())
}

func TestIPRadixTreeDeletePrunesAndCollapses(t *testing.T) {
	t.Parallel()

	rib := NewIPRadixTree()
	_, err := rib.Add("2001:db8::/32")
	require.NoError(t, err)
	_, err = rib.Add("2001:db8:acad::/48")
	require.NoError(t, err)

	require.NoError(t, rib.Delete("2001:db8::/32"))
	routes := rib.ShowAll()
	assert.Equal(t, []string{"2001:db8:acad::/48"}, prefixesOf(t, routes))
	assert.Equal(t, 1, rib.Len())

	require.NoError(t, rib.Delete("2001:db8:acad::/48"))
	assert.Equal(t, 0, rib.Len())
	assert.Empty(t, rib.ShowAll())
}

func TestIPRadixTreeDeleteUnknownPrefix(t *testing.T) {
	t.Parallel()

	rib := NewIPRadixTree()
	_, err := rib.Add("2001:db8::/32")
	require.NoError(t, err)

	err = rib.Delete("2001:db9::/32")
	assert.ErrorIs(t, err, ErrUnknownPrefix)

	// A longer prefix below a leaf, with no node at its depth, is also unknown.
	err = rib.Delete("2001:db8::/40")
	assert.ErrorIs(t, err, ErrUnknownPrefix)
}

func TestIPRadixTreeParentChildren(t *testing.T) {
	t.Parallel()

	rib := NewIPRadixTree()
	for _, p := range []string{"2001:db8::/32", "2001:db8::/40", "2001:db8::/48"} {
		_, err := rib.Add(p)
		require.NoError(t, err)
	}

	parent, err := rib.Parent("2001:db8::/48")
	require.NoError(t, err)
	assert.Equal(t, []string{"2001:db8::/40"}, prefixesOf(t, parent))

	children, err := rib.Children("2001:db8::/32")
	require.NoError(t, err)
	assert.Equal(t, []string{"2001:db8::/40", "2001:db8::/48"}, prefixesOf(t, children))
}

func TestIPRadixTreeWCMatch(t *testing.T) {
	t.Parallel()

	rib := NewIPRadixTree()
	_, err := rib.Add("2001:db8::/32")
	require.NoError(t, err)
	_, err = rib.Add("2001:db9::/32")
	require.NoError(t, err)

	// wildcard covers bit 31, the single bit distinguishing db8 from db9
	routes, err := rib.WCMatch("2001:db8::", "0:1::")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2001:db8::/32", "2001:db9::/32"}, prefixesOf(t, routes))
}

func TestIPRadixTreeFlushSubtree(t *testing.T) {
	t.Parallel()

	rib := NewIPRadixTree()
	for _, p := range []string{"2001:db8::/32", "2001:db8::/40", "2001:db8::/48", "2001:db9::/32"} {
		_, err := rib.Add(p)
		require.NoError(t, err)
	}

	require.NoError(t, rib.FlushSubtree("2001:db8::/32"))
	routes := rib.ShowAll()
	assert.Equal(t, []string{"2001:db9::/32"}, prefixesOf(t, routes))
}

func TestIPRadixTreeIsEmpty(t *testing.T) {
	t.Parallel()

	rib := NewIPRadixTree()
	assert.True(t, rib.IsEmpty())

	_, err := rib.Add("2001:db8::/32")
	require.NoError(t, err)
	assert.False(t, rib.IsEmpty())

	require.NoError(t, rib.Delete("2001:db8::/32"))
	assert.True(t, rib.IsEmpty())
}

func TestIPRadixTreeAllDescendingByLength(t *testing.T) {
	t.Parallel()

	rib := NewIPRadixTree()
	for _, p := range []string{"2001:db8::/32", "2001:db8::/48", "2001:db8::/40"} {
		_, err := rib.Add(p)
		require.NoError(t, err)
	}

	var got []string
	for r := range rib.All() {
		got = append(got, r.Prefix())
	}
	assert.Equal(t, []string{"2001:db8::/48", "2001:db8::/40", "2001:db8::/32"}, got)
}
