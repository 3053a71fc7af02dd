package pretty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectFormatDefaultsToMedium(t *testing.T) {
	sel, err := SelectFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatMedium, sel.Format)
}

func TestSelectFormatPrefixMatching(t *testing.T) {
	cases := map[string]Format{
		"raw":     FormatRaw,
		"r":       FormatRaw,
		"medium":  FormatMedium,
		"short":   FormatShort,
		"email":   FormatEmail,
		"full":    FormatFull,
		"fuller":  FormatFuller,
		"oneline": FormatOneline,
		"o":       FormatOneline,
	}
	for arg, want := range cases {
		sel, err := SelectFormat(arg)
		require.NoError(t, err, arg)
		assert.Equal(t, want, sel.Format, arg)
	}
}

func TestSelectFormatFulDoesNotMatchFullOrFuller(t *testing.T) {
	_, err := SelectFormat("ful")
	assert.ErrorIs(t, err, ErrBadFormat)
}

func TestSelectFormatFullDoesNotMatchFuller(t *testing.T) {
	sel, err := SelectFormat("full")
	require.NoError(t, err)
	assert.Equal(t, FormatFull, sel.Format)
}

func TestSelectFormatUserTemplate(t *testing.T) {
	sel, err := SelectFormat("format:%H %s")
	require.NoError(t, err)
	assert.Equal(t, FormatUserFormat, sel.Format)
	assert.Equal(t, "%H %s", sel.Template)
}

func TestSelectFormatLeadingEquals(t *testing.T) {
	sel, err := SelectFormat("=short")
	require.NoError(t, err)
	assert.Equal(t, FormatShort, sel.Format)
}

func TestSelectFormatUnknown(t *testing.T) {
	_, err := SelectFormat("bogus")
	assert.ErrorIs(t, err, ErrBadFormat)
}
