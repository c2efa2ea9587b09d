package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpaceFromUint64AndHex(t *testing.T) {
	sp, err := NewSpace(8, 2)
	require.NoError(t, err)

	id := sp.FromUint64(250)
	assert.Equal(t, "fa", id.ToHexString(false))

	parsed, err := sp.FromHexString("0xfa")
	require.NoError(t, err)
	assert.True(t, id.Equal(parsed))

	_, err = sp.FromHexString("01fa")
	assert.Error(t, err, "value wider than the space must be rejected")
}

func TestBetweenLinearAndWrap(t *testing.T) {
	sp, err := NewSpace(8, 2)
	require.NoError(t, err)

	lower := sp.FromUint64(10)
	upper := sp.FromUint64(20)

	assert.True(t, sp.FromUint64(15).Between(lower, upper))
	assert.False(t, sp.FromUint64(10).Between(lower, upper), "lower bound is exclusive")
	assert.True(t, sp.FromUint64(20).Between(lower, upper), "upper bound is inclusive")
	assert.False(t, sp.FromUint64(25).Between(lower, upper))

	// Wrap-around case: lower > upper.
	wrapLower := sp.FromUint64(250)
	wrapUpper := sp.FromUint64(5)
	assert.True(t, sp.FromUint64(252).Between(wrapLower, wrapUpper), "wraps past the top of the ring")
	assert.True(t, sp.FromUint64(5).Between(wrapLower, wrapUpper))
	assert.False(t, sp.FromUint64(100).Between(wrapLower, wrapUpper))

	// Degenerate case: lower == upper covers the whole ring.
	same := sp.FromUint64(42)
	assert.True(t, sp.FromUint64(0).Between(same, same))
}

func TestShiftIsCanonicalFingerOffset(t *testing.T) {
	sp, err := NewSpace(8, 2)
	require.NoError(t, err)

	self := sp.FromUint64(5)
	for i := 0; i < 8; i++ {
		got := sp.Shift(self, i)
		want := sp.FromUint64((5 + (uint64(1) << uint(i))) % 256)
		assert.True(t, got.Equal(want), "shift(%d): got %s want %s", i, got, want)
	}
}

func TestKeyWrapAcrossRing(t *testing.T) {
	// Property P4/wrap scenario from spec.md §8 scenario 6: m=8, 252 wraps
	// to the node at key 5 when the only other node is at key 250.
	sp, err := NewSpace(8, 2)
	require.NoError(t, err)

	n5 := sp.FromUint64(5)
	n250 := sp.FromUint64(250)
	target := sp.FromUint64(252)

	assert.True(t, target.Between(n250, n5), "252 should wrap past 255 to land in (250, 5]")
}

func TestIsValidRejectsWrongLengthAndPadding(t *testing.T) {
	sp, err := NewSpace(4, 2)
	require.NoError(t, err)

	assert.NoError(t, sp.IsValid([]byte{0x0F}))
	assert.Error(t, sp.IsValid([]byte{0x1F}), "top nibble must stay zero for a 4-bit space")
	assert.Error(t, sp.IsValid([]byte{0x00, 0x00}), "wrong length")
}

func TestParseHostDefaults(t *testing.T) {
	h, err := ParseHost("example.org")
	require.NoError(t, err)
	assert.Equal(t, "example.org", h.Address)
	assert.Equal(t, DefaultPort, h.Port)

	h, err = ParseHost(":80")
	require.NoError(t, err)
	assert.Equal(t, "localhost", h.Address)
	assert.True(t, h.IsPrivileged())

	_, err = ParseHost("")
	assert.Error(t, err)
}

func TestSpaceKeyDerivation(t *testing.T) {
	sp, err := NewSpace(32, 2)
	require.NoError(t, err)

	h, err := ParseHost("node-a:4000")
	require.NoError(t, err)

	k1 := sp.Key(h)
	k2 := sp.Key(h)
	assert.True(t, k1.Equal(k2), "key derivation must be deterministic")

	other, err := ParseHost("node-b:4000")
	require.NoError(t, err)
	assert.False(t, k1.Equal(sp.Key(other)))
}
