package pretty

import (
	"bytes"

	"github.com/go-git/go-git/v5/plumbing"
)

// nextLine splits buf at the first '\n', returning the consumed line
// (including its trailing newline) and the remainder. A final line with
// no trailing newline is returned whole, with rest == nil, matching
// get_one_line's treatment of a NUL-terminated tail.
func nextLine(buf []byte) (line, rest []byte) {
	i := bytes.IndexByte(buf, '\n')
	if i < 0 {
		return buf, nil
	}
	return buf[:i+1], buf[i+1:]
}

// trimTrailingSpace strips trailing whitespace from line (is_empty_line
// in commit.c), reporting whether the trimmed line is now empty.
func trimTrailingSpace(line []byte) (trimmed []byte, empty bool) {
	n := len(line)
	for n > 0 && isSpaceByte(line[n-1]) {
		n--
	}
	return line[:n], n == 0
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// rtrim strips trailing whitespace from buf's current contents in
// place (strbuf_rtrim).
func rtrim(buf *bytes.Buffer) {
	trimmed, _ := trimTrailingSpace(buf.Bytes())
	b := append([]byte(nil), trimmed...)
	buf.Reset()
	buf.Write(b)
}

// abbreviate truncates hash's hex form to length characters. This
// module does not perform find_unique_abbrev's uniqueness search — see
// DESIGN.md — so a non-zero length always truncates, never lengthens to
// disambiguate.
func abbreviate(hash plumbing.Hash, length int) string {
	full := hash.String()
	if length <= 0 || length >= len(full) {
		return full
	}
	return full[:length]
}

func nonASCII(ch byte) bool {
	return ch&0x80 != 0 || ch == 0x1B
}
