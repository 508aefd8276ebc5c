package gradebook

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain number", in: "4.5", want: "4.5"},
		{name: "comma as separator", in: "4,5", want: "4.5"},
		{name: "strips letters", in: "4a.5b", want: "4.5"},
		{name: "second separator dropped", in: "4.5.6", want: "4.56"},
		{name: "comma after point dropped", in: "4.5,6", want: "4.56"},
		{name: "whitespace", in: " 4 . 5 ", want: "4.5"},
		{name: "empty", in: "", want: ""},
		{name: "only junk", in: "abc", want: ""},
		{name: "bare point", in: ".", want: "."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	for _, in := range []string{"4,5", "a4.5.6", "..", "  3,14abc"} {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
	}
}

func TestPartial(t *testing.T) {
	assert.True(t, Partial("."))
	assert.True(t, Partial("4."))
	assert.False(t, Partial(""))
	assert.False(t, Partial("4"))
	assert.False(t, Partial("4.5"))
}

func TestClampToRange(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "in range untouched", in: "3.5", want: "3.5"},
		{name: "below min", in: "0.5", want: "1"},
		{name: "above max", in: "7", want: "5"},
		{name: "at min", in: "1", want: "1"},
		{name: "at max", in: "5", want: "5"},
		{name: "empty passes", in: "", want: ""},
		{name: "partial passes", in: "4.", want: "4."},
		{name: "bare point passes", in: ".", want: "."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampToRange(tt.in, 1, 5))
		})
	}
}

func TestParseOrNull(t *testing.T) {
	assert.Nil(t, ParseOrNull(""))

	v := ParseOrNull("4.5")
	require.NotNil(t, v)
	assert.InDelta(t, 4.5, *v, 1e-9)

	nan := ParseOrNull("4.")
	require.NotNil(t, nan)
	assert.True(t, math.IsNaN(*nan))
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "4.5", FormatScore(4.5))
	assert.Equal(t, "5", FormatScore(5))
	assert.Equal(t, "3.33", FormatScore(3.33))
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 4.67, Round2(4.666666), 1e-9)
	assert.InDelta(t, 3.33, Round2(10.0/3.0), 1e-9)
	assert.InDelta(t, 4.5, Round2(4.5), 1e-9)
}
