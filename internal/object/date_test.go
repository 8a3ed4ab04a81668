package object

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in     string
		secs   int64
		offset int
	}{
		{"1467471225 +0100", 1467471225, 60},
		{"1467471225 -0530", 1467471225, -330},
		{"0 +0000", 0, 0},
		{"1467471225 -0000", 1467471225, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.secs, d.Seconds)
			assert.Equal(t, tt.offset, d.Offset)
			assert.Equal(t, tt.in, d.String())
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "1467471225", "abc +0100", "1 0100", "1 +01", "1 +0160", "1 +xx00"} {
		_, err := ParseDate(in)
		assert.ErrorIs(t, err, ErrMalformed, in)
	}
}

func TestDateTime(t *testing.T) {
	d, err := ParseDate("1467471225 +0100")
	require.NoError(t, err)
	tm := d.Time()
	_, off := tm.Zone()
	assert.Equal(t, 3600, off)
	assert.Equal(t, int64(1467471225), tm.Unix())

	back := DateFromTime(time.Unix(1467471225, 0).In(time.FixedZone("X", -2*3600)))
	assert.Equal(t, "1467471225 -0200", back.String())
}

func TestParsePerson(t *testing.T) {
	p, err := ParsePerson("Nicolas Di Prima <nicolas@di-prima.fr> 1467471225 +0100")
	require.NoError(t, err)
	assert.Equal(t, "Nicolas Di Prima", p.Name)
	assert.Equal(t, "nicolas@di-prima.fr", p.Email)
	assert.Equal(t, int64(1467471225), p.When.Seconds)
	assert.Equal(t, "Nicolas Di Prima <nicolas@di-prima.fr> 1467471225 +0100", p.String())

	empty, err := ParsePerson(" <> 0 +0000")
	require.NoError(t, err)
	assert.Empty(t, empty.Name)
	assert.Empty(t, empty.Email)

	_, err = ParsePerson("no email 0 +0000")
	assert.ErrorIs(t, err, ErrMalformed)
}
