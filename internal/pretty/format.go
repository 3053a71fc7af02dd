// Package pretty renders parsed commits into the output formats git's
// pretty-printer supports (raw, medium, short, email, full, fuller,
// oneline, and a user "format:" template), plus the lower-level pieces
// those formats share: RFC 2047 header quoting, commit-message
// re-encoding, and the %-token interpolator a custom format string
// drives.
package pretty

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadFormat reports a format selector that matches nothing in the
// catalogue, or a "format:" template this package otherwise rejects.
var ErrBadFormat = errors.New("pretty: invalid format selector")

// ErrMalformedEncodingHeader reports a commit whose "encoding" header
// line has no trailing newline before whatever follows, so its extent
// can't be located.
var ErrMalformedEncodingHeader = errors.New("pretty: encoding header missing trailing newline")

// Format names one of the rendering modes.
type Format int

const (
	FormatRaw Format = iota
	FormatMedium
	FormatShort
	FormatEmail
	FormatFull
	FormatFuller
	FormatOneline
	FormatUserFormat
)

type catalogueEntry struct {
	name   string
	cmpLen int
	format Format
}

// catalogue lists every selectable format with the minimum prefix
// length get_commit_format requires before treating an arg as that
// entry (cmp_len in commit.c).
var catalogue = []catalogueEntry{
	{"raw", 1, FormatRaw},
	{"medium", 1, FormatMedium},
	{"short", 1, FormatShort},
	{"email", 1, FormatEmail},
	{"full", 5, FormatFull},
	{"fuller", 5, FormatFuller},
	{"oneline", 1, FormatOneline},
}

// Selection is the result of parsing a --pretty-style selector string.
type Selection struct {
	Format   Format
	Template string // set only when Format == FormatUserFormat
}

// SelectFormat parses a format selector the way get_commit_format does.
// An optional leading '=' is stripped. "format:..." always enters
// user-format mode with the remainder as the template. Anything else is
// matched against catalogue using each entry's cmpLen: arg must either
// be at least cmpLen bytes long, or equal the candidate's full name
// outright (the exact-match escape hatch strncmp gets for free by
// comparing through both strings' NUL terminators), and arg must be a
// prefix of the candidate's full name. The length rule is why "ful"
// fails to match "full" even though "ful" is a prefix of "full":
// cmpLen(full) is 5, longer than "ful", and "ful" isn't "full"'s full
// name either.
func SelectFormat(arg string) (Selection, error) {
	if arg == "" {
		return Selection{Format: FormatMedium}, nil
	}
	if arg[0] == '=' {
		arg = arg[1:]
	}
	if strings.HasPrefix(arg, "format:") {
		return Selection{Format: FormatUserFormat, Template: arg[len("format:"):]}, nil
	}
	for _, e := range catalogue {
		if (len(arg) >= e.cmpLen || len(arg) == len(e.name)) && strings.HasPrefix(e.name, arg) {
			return Selection{Format: e.format}, nil
		}
	}
	return Selection{}, fmt.Errorf("%w: %q", ErrBadFormat, arg)
}
