// Package addrcodec is the address-parsing/formatting collaborator spec'd
// as external to the tree implementations themselves (spec §1, §4.5): it
// turns CIDR/bare-address text into (family, bits, prefixLen) and back,
// and validates address text against an expected family. Concrete parsing
// is backed by inet.af/netaddr, following the parse-then-mask pattern of
// stamp-routesum's routesum.go (InsertFromString / ipBitsForIPPrefix).
package addrcodec

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"inet.af/netaddr"

	"github.com/gaissmai-student/iprib/internal/bitops"
)

// Family identifies which IP protocol a tree or a parsed value belongs to.
type Family int

const (
	// FamilyV4 is IPv4, a 32-bit address family.
	FamilyV4 Family = iota
	// FamilyV6 is IPv6, a 128-bit address family.
	FamilyV6
)

// Width returns the bit width of the family: 32 for IPv4, 128 for IPv6.
func (f Family) Width() int {
	if f == FamilyV4 {
		return 32
	}
	return 128
}

func (f Family) String() string {
	if f == FamilyV4 {
		return "IPv4"
	}
	return "IPv6"
}

// Parse decodes a textual CIDR ("A.B.C.D/N", "hex::colon/N") or bare
// address ("A.B.C.D", bare IPv6) into its family, its bits (unmasked to
// prefixLen; callers mask via bitops.MaskToLen), and its prefix length. A
// bare address is treated as a full-width prefix (/32 or /128), per
// spec §9's resolved open question.
func Parse(text string) (Family, bitops.Bits, int, error) {
	if strings.Contains(text, "/") {
		pfx, err := netaddr.ParseIPPrefix(text)
		if err != nil {
			return 0, bitops.Bits{}, 0, errors.Wrapf(err, "parse prefix %q", text)
		}
		family := familyOf(pfx.IP())
		return family, bitsOf(pfx.IP()), int(pfx.Bits()), nil
	}

	ip, err := netaddr.ParseIP(text)
	if err != nil {
		return 0, bitops.Bits{}, 0, errors.Wrapf(err, "parse address %q", text)
	}
	family := familyOf(ip)
	return family, bitsOf(ip), family.Width(), nil
}

// IsValidAddress reports whether text parses as a valid address (CIDR or
// bare) of the given family.
func IsValidAddress(text string, family Family) bool {
	f, _, _, err := Parse(text)
	if err != nil {
		return false
	}
	return f == family
}

// Format renders the canonical CIDR text for (family, bits, prefixLen):
// the masked network address followed by "/len", per spec §4.5.
func Format(family Family, bits bitops.Bits, prefixLen int) string {
	masked := bitops.MaskToLen(bits, prefixLen, family.Width())
	ip := ipOf(family, masked)
	return ip.String() + "/" + strconv.Itoa(prefixLen)
}

func familyOf(ip netaddr.IP) Family {
	if ip.Is4() {
		return FamilyV4
	}
	return FamilyV6
}

func bitsOf(ip netaddr.IP) bitops.Bits {
	if ip.Is4() {
		a := ip.As4()
		v := uint64(a[0])<<24 | uint64(a[1])<<16 | uint64(a[2])<<8 | uint64(a[3])
		return bitops.Bits{Hi: v << 32}
	}

	a := ip.As16()
	hi := beUint64(a[0:8])
	lo := beUint64(a[8:16])
	return bitops.Bits{Hi: hi, Lo: lo}
}

func ipOf(family Family, bits bitops.Bits) netaddr.IP {
	if family == FamilyV4 {
		v := uint32(bits.Hi >> 32)
		return netaddr.IPv4(byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}

	var a [16]byte
	putBeUint64(a[0:8], bits.Hi)
	putBeUint64(a[8:16], bits.Lo)
	return netaddr.IPFrom16(a)
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

func putBeUint64(b []byte, v uint64) {
	for i := len(b) - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}

