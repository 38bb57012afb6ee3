// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package iprib

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/gaissmai-student/iprib/internal/addrcodec"
	"github.com/gaissmai-student/iprib/internal/attrfilter"
	"github.com/gaissmai-student/iprib/internal/bitops"
)

// Attr is a single route attribute name/value pair, supplied in call order
// to NewRoute / a tree's Add, and used as a query filter by every
// attribute-aware operation. Values are any scalar comparable by
// reflect.DeepEqual (spec §4.6).
type Attr = attrfilter.Pair

// Route is an attribute record attached to a stored prefix. prefix is
// fixed at construction; attributes may be added, replaced, or removed
// afterward. Two Routes are == only if they are the same allocation
// (reference identity, spec §3): NewRoute("10.0.0.0/8") called twice
// yields two distinct, coexisting Routes even with identical input.
type Route struct {
	prefix string
	order  []string
	attrs  map[string]any

	bits      bitops.Bits
	prefixLen int
	family    addrcodec.Family
	seq       uint64
}

// NewRoute constructs a Route for prefixText ("A.B.C.D/N", a bare address
// treated as /32, or the IPv6 equivalents), with attrs attached in the
// order given. Returns ErrInvalidPrefix if prefixText does not parse.
func NewRoute(prefixText string, attrs ...Attr) (*Route, error) {
	family, bits, prefixLen, err := addrcodec.Parse(prefixText)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidPrefix, "%v", err)
	}

	masked := bitops.MaskToLen(bits, prefixLen, family.Width())
	r := &Route{
		prefix:    addrcodec.Format(family, masked, prefixLen),
		attrs:     make(map[string]any, len(attrs)),
		bits:      masked,
		prefixLen: prefixLen,
		family:    family,
	}
	for _, a := range attrs {
		r.SetAttr(a.Name, a.Value)
	}
	return r, nil
}

// Prefix returns the canonical CIDR text the Route was constructed with.
func (r *Route) Prefix() string {
	return r.prefix
}

// SetPrefix always fails: prefix is write-locked after construction.
func (r *Route) SetPrefix(string) error {
	return errors.Wrap(ErrImmutableAttribute, "Route.Prefix")
}

// Attr returns the value of attribute name and whether it is present.
func (r *Route) Attr(name string) (value any, ok bool) {
	value, ok = r.attrs[name]
	return value, ok
}

// SetAttr adds or replaces attribute name. A new name is appended after
// the existing attributes; replacing an existing name keeps its original
// position, matching the ordered-dict semantics the rendering contract
// relies on.
func (r *Route) SetAttr(name string, value any) {
	if _, exists := r.attrs[name]; !exists {
		r.order = append(r.order, name)
	}
	r.attrs[name] = value
}

// DeleteAttr removes attribute name, if present.
func (r *Route) DeleteAttr(name string) {
	if _, exists := r.attrs[name]; !exists {
		return
	}
	delete(r.attrs, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Attrs returns the route's attributes as ordered (name, value) pairs, in
// the order they were first set.
func (r *Route) Attrs() []Attr {
	out := make([]Attr, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, Attr{Name: name, Value: r.attrs[name]})
	}
	return out
}

// Pairs returns the mapping form of the route: prefix first, then
// attributes in insertion order (spec §4.1/§6).
func (r *Route) Pairs() []Attr {
	out := make([]Attr, 0, len(r.order)+1)
	out = append(out, Attr{Name: "prefix", Value: r.prefix})
	out = append(out, r.Attrs()...)
	return out
}

// Equal reports whether r and other are the same Route (reference
// identity, not structural equality, per spec §3).
func (r *Route) Equal(other *Route) bool {
	return r == other
}

// String renders the route as "Route(prefix=<cidr>[, k=v]*)".
func (r *Route) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Route(prefix=%s", r.prefix)
	for _, name := range r.order {
		fmt.Fprintf(&b, ", %s=%v", name, r.attrs[name])
	}
	b.WriteByte(')')
	return b.String()
}

func (r *Route) attrLookup(name string) (any, bool) {
	return r.Attr(name)
}

func routeMatches(r *Route, filter []Attr) bool {
	return attrfilter.Match(filter, r.attrLookup)
}
