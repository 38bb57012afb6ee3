// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package iprib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests exercise the worked scenarios the rest of the suite is
// built around, end to end, each as a single self-contained case.

func TestScenarioEmptyTree(t *testing.T) {
	t.Parallel()

	rib := NewIPPrefixTree()
	routes, err := rib.Get("1.2.3.4")
	require.NoError(t, err)
	assert.Empty(t, routes)
	assert.Equal(t, 0, rib.Len())
	assert.False(t, rib.Contains("1.2.3.4"))
}

func TestScenarioLongestMatchPrefersMoreSpecific(t *testing.T) {
	t.Parallel()

	rib := NewIPPrefixTree()
	_, err := rib.Add("192.168.1.0/24", Attr{Name: "via", Value: "10.0.0.1"})
	require.NoError(t, err)
	_, err = rib.Add("192.168.1.0/25")
	require.NoError(t, err)

	routes, err := rib.Get("192.168.1.1")
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "192.168.1.0/25", routes[0].Prefix())

	routes, err = rib.Get("192.168.1.128")
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "192.168.1.0/24", routes[0].Prefix())
	via, _ := routes[0].Attr("via")
	assert.Equal(t, "10.0.0.1", via)
}

func TestScenarioMultipleRoutesAtOnePrefix(t *testing.T) {
	t.Parallel()

	rib := NewIPPrefixTree()
	_, err := rib.Add("192.168.1.0/24", Attr{Name: "via", Value: "10.0.0.1"})
	require.NoError(t, err)
	_, err = rib.Add("192.168.1.0/24", Attr{Name: "via", Value: "10.0.0.2"})
	require.NoError(t, err)

	routes, err := rib.Get("192.168.1.128")
	require.NoError(t, err)
	assert.Len(t, routes, 2)

	routes, err = rib.Get("192.168.1.128", Attr{Name: "via", Value: "10.0.0.2"})
	require.NoError(t, err)
	require.Len(t, routes, 1)
	via, _ := routes[0].Attr("via")
	assert.Equal(t, "10.0.0.2", via)
}

func TestScenarioSubtreeShowAscendingOrder(t *testing.T) {
	t.Parallel()

	rib := NewIPPrefixTree()
	for _, p := range []string{"192.168.1.0/24", "192.168.1.0/25", "192.168.1.0/26", "192.168.1.0/27"} {
		_, err := rib.Add(p)
		require.NoError(t, err)
	}

	routes, err := rib.ShowSubtree("192.168.1.0/25")
	require.NoError(t, err)
	assert.Equal(t, []string{"192.168.1.0/25", "192.168.1.0/26", "192.168.1.0/27"}, prefixesOf(t, routes))
}

func TestScenarioWildcardMatch(t *testing.T) {
	t.Parallel()

	rib := NewIPPrefixTree()
	for _, p := range []string{
		"192.168.0.0/23",
		"192.168.1.0/24",
		"192.168.2.0/25",
		"192.168.3.0/26",
		"192.168.4.0/27",
	} {
		_, err := rib.Add(p)
		require.NoError(t, err)
	}

	routes, err := rib.WCMatch("192.168.0.10", "0.0.3.0")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"192.168.0.0/23", "192.168.1.0/24", "192.168.2.0/25", "192.168.3.0/26",
	}, prefixesOf(t, routes))
}

func TestScenarioAttributeFilteredFlush(t *testing.T) {
	t.Parallel()

	rib := NewIPPrefixTree()
	_, err := rib.Add("10.0.0.0/24", Attr{Name: "proto", Value: "bgp"})
	require.NoError(t, err)
	_, err = rib.Add("10.0.1.0/24", Attr{Name: "proto", Value: "bgp"})
	require.NoError(t, err)
	_, err = rib.Add("10.0.2.0/24", Attr{Name: "proto", Value: "ospf"})
	require.NoError(t, err)

	require.NoError(t, rib.Flush(Attr{Name: "proto", Value: "bgp"}))
	remaining := rib.ShowAll()
	require.Len(t, remaining, 1)
	proto, _ := remaining[0].Attr("proto")
	assert.Equal(t, "ospf", proto)

	require.NoError(t, rib.Flush())
	assert.Equal(t, 0, rib.Len())
}

func TestScenarioPatriciaSplitForcesBranchAtDivergingBit(t *testing.T) {
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

func TestScenarioParentAndChildren(t *testing.T) {
	t.Parallel()

	rib := NewIPPrefixTree()
	for _, p := range []string{"192.168.1.0/24", "192.168.1.0/25", "192.168.1.0/26"} {
		_, err := rib.Add(p)
		require.NoError(t, err)
	}

	parent, err := rib.Parent("192.168.1.0/26")
	require.NoError(t, err)
	assert.Equal(t, []string{"192.168.1.0/25"}, prefixesOf(t, parent))

	children, err := rib.Children("192.168.1.0/24")
	require.NoError(t, err)
	assert.Equal(t, []string{"192.168.1.0/25", "192.168.1.0/26"}, prefixesOf(t, children))

	children, err = rib.Children("192.168.1.0/26")
	require.NoError(t, err)
	assert.Empty(t, children)
}
