package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrefix(t *testing.T) {
	id := MustFromHex("e69de29bb2d1d6434b8b29ae775ad8c2e48c5391")

	tests := []struct {
		in      string
		matches bool
	}{
		{"e", true},
		{"e6", true},
		{"E69", true},
		{"e69de29", true},
		{"e69de29bb2d1d6434b8b29ae775ad8c2e48c5391", true},
		{"e7", false},
		{"e69df", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := ParsePrefix(tt.in)
			require.NoError(t, err)
			assert.Equal(t, len(tt.in), p.Len())
			assert.Equal(t, tt.matches, p.Matches(id))
			if tt.matches {
				assert.Zero(t, p.Compare(id))
			}
		})
	}
}

func TestParsePrefix_Invalid(t *testing.T) {
	for _, bad := range []string{"", "xyz", "e69de29bb2d1d6434b8b29ae775ad8c2e48c53910"} {
		_, err := ParsePrefix(bad)
		assert.ErrorIs(t, err, ErrInvalidHash, bad)
	}
}

func TestPrefix_BytesAndString(t *testing.T) {
	p, err := ParsePrefix("abc")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xab, 0xc0}, p.Bytes())
	assert.Equal(t, "abc", p.String())

	first, exact := p.FirstByte()
	assert.Equal(t, byte(0xab), first)
	assert.True(t, exact)

	one, _ := ParsePrefix("a")
	_, exact = one.FirstByte()
	assert.False(t, exact)

	_, full := p.Full()
	assert.False(t, full)
}

func TestPrefix_CompareOrdering(t *testing.T) {
	p, _ := ParsePrefix("5a")
	assert.Negative(t, p.Compare(MustFromHex("59ffffffffffffffffffffffffffffffffffffff")))
	assert.Positive(t, p.Compare(MustFromHex("5b00000000000000000000000000000000000000")))

	odd, _ := ParsePrefix("5a3")
	assert.Negative(t, odd.Compare(MustFromHex("5a2fffffffffffffffffffffffffffffffffffff")))
	assert.Zero(t, odd.Compare(MustFromHex("5a3fffffffffffffffffffffffffffffffffffff")))
	assert.Positive(t, odd.Compare(MustFromHex("5a40000000000000000000000000000000000000")))
}

func TestPrefixOf(t *testing.T) {
	id := MustFromHex("e69de29bb2d1d6434b8b29ae775ad8c2e48c5391")
	p := PrefixOf(id, 7)
	assert.Equal(t, "e69de29", p.String())
	assert.True(t, p.Matches(id))

	full, ok := PrefixOf(id, 40).Full()
	assert.True(t, ok)
	assert.Equal(t, id, full)
}
