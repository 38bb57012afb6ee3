// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package addrcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaissmai-student/iprib/internal/bitops"
)

func TestParseCIDR(t *testing.T) {
	t.Parallel()

	family, bits, prefixLen, err := Parse("10.0.0.0/8")
	require.NoError(t, err)
	assert.Equal(t, FamilyV4, family)
	assert.Equal(t, 8, prefixLen)
	assert.Equal(t, 10, int(bits.Hi>>56))
}

func TestParseBareAddressDefaultsToFullWidth(t *testing.T) {
	t.Parallel()

	family, _, prefixLen, err := Parse("192.168.1.1")
	require.NoError(t, err)
	assert.Equal(t, FamilyV4, family)
	assert.Equal(t, 32, prefixLen)

	family, _, prefixLen, err = Parse("2001:db8::1")
	require.NoError(t, err)
	assert.Equal(t, FamilyV6, family)
	assert.Equal(t, 128, prefixLen)
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	_, _, _, err := Parse("not-an-address")
	assert.Error(t, err)
}

func TestFormatRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []string{"10.0.0.0/8", "0.0.0.0/0", "2001:db8::/32", "::/0"}
	for _, text := range cases {
		t.Run(text, func(t *testing.T) {
			t.Parallel()
			family, bits, prefixLen, err := Parse(text)
			require.NoError(t, err)
			assert.Equal(t, text, Format(family, bits, prefixLen))
		})
	}
}

func TestIsValidAddress(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidAddress("10.0.0.1", FamilyV4))
	assert.False(t, IsValidAddress("10.0.0.1", FamilyV6))
	assert.False(t, IsValidAddress("garbage", FamilyV4))
}

func TestWidth(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 32, FamilyV4.Width())
	assert.Equal(t, 128, FamilyV6.Width())
}

func TestFamilyString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "IPv4", FamilyV4.String())
	assert.Equal(t, "IPv6", FamilyV6.String())
}

func TestParseMaskedBitsSurviveRoundTripThroughBitops(t *testing.T) {
	t.Parallel()

	_, bits, prefixLen, err := Parse("10.1.2.3/24")
	require.NoError(t, err)
	masked := bitops.MaskToLen(bits, prefixLen, 32)
	assert.Equal(t, "10.1.2.0/24", Format(FamilyV4, masked, prefixLen))
}
