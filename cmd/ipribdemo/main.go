// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Command ipribdemo exercises both tree kinds with a handful of inserts,
// lookups, and deletes, logging elapsed time around each phase.
package main

import (
	"log"
	"time"

	"github.com/gaissmai-student/iprib"
)

func main() {
	log.SetFlags(log.Lmicroseconds)

	v4 := iprib.NewIPPrefixTree()
	ts := time.Now()
	for _, pfx := range v4TestPrefixes() {
		if _, err := v4.Add(pfx, iprib.Attr{Name: "source", Value: "demo"}); err != nil {
			log.Fatalf("IPPrefixTree.Add(%s): %v", pfx, err)
		}
	}
	log.Printf("IPPrefixTree: inserted %d prefixes in %v, len=%d", len(v4TestPrefixes()), time.Since(ts), v4.Len())

	ts = time.Now()
	routes, err := v4.Get("10.0.1.37")
	if err != nil {
		log.Fatalf("IPPrefixTree.Get: %v", err)
	}
	log.Printf("IPPrefixTree.Get(10.0.1.37): %d route(s) in %v", len(routes), time.Since(ts))
	for _, r := range routes {
		log.Printf("  %s", r)
	}

	ts = time.Now()
	for _, pfx := range v4TestPrefixes()[:len(v4TestPrefixes())/2] {
		if err := v4.Delete(pfx); err != nil {
			log.Fatalf("IPPrefixTree.Delete(%s): %v", pfx, err)
		}
	}
	log.Printf("IPPrefixTree: deleted half the table in %v, len=%d", time.Since(ts), v4.Len())

	v6 := iprib.NewIPRadixTree()
	ts = time.Now()
	for _, pfx := range v6TestPrefixes() {
		if _, err := v6.Add(pfx, iprib.Attr{Name: "source", Value: "demo"}); err != nil {
			log.Fatalf("IPRadixTree.Add(%s): %v", pfx, err)
		}
	}
	log.Printf("IPRadixTree: inserted %d prefixes in %v, len=%d", len(v6TestPrefixes()), time.Since(ts), v6.Len())

	ts = time.Now()
	routes, err = v6.Get("2001:db8:1::1")
	if err != nil {
		log.Fatalf("IPRadixTree.Get: %v", err)
	}
	log.Printf("IPRadixTree.Get(2001:db8:1::1): %d route(s) in %v", len(routes), time.Since(ts))
	for _, r := range routes {
		log.Printf("  %s", r)
	}

	for route := range v6.All() {
		log.Printf("v6 route: %s", route)
	}
}

func v4TestPrefixes() []string {
	return []string{
		"10.0.0.0/8",
		"10.0.1.0/24",
		"10.0.1.0/25",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"192.168.1.0/24",
		"0.0.0.0/0",
	}
}

func v6TestPrefixes() []string {
	return []string{
		"2001:db8::/32",
		"2001:db8:1::/48",
		"2001:db8:1::/56",
		"fc00::/7",
		"::/0",
	}
}
