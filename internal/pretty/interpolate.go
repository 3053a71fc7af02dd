package pretty

import (
	"bytes"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kurobon/gitgraph/internal/dateutil"
	"github.com/kurobon/gitgraph/internal/objstore"
)

const unknownValue = "<unknown>"
const parentsBufCap = 1024

// FlagBoundary and FlagSymmetricLeft are caller-owned presentation bits
// (Node.Flags bits 0-15) that %m consults; neither is set by anything
// in this module, a revision walker sets them.
const (
	FlagBoundary      uint32 = 1 << 0
	FlagSymmetricLeft uint32 = 1 << 1
)

var allTokens = []string{
	"%H", "%h", "%T", "%t", "%P", "%p",
	"%an", "%ae", "%ad", "%aD", "%ar", "%at", "%ai",
	"%cn", "%ce", "%cd", "%cD", "%cr", "%ct", "%ci",
	"%e", "%s", "%b",
	"%Cred", "%Cgreen", "%Cblue", "%Creset",
	"%n", "%m",
}

var orderedTokens = sortedByLengthDesc(allTokens)

func sortedByLengthDesc(keys []string) []string {
	out := append([]string(nil), keys...)
	sort.Slice(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

// Interpolate substitutes %-tokens in template with per-commit values,
// the way format_commit_message does. commit.Buffer must be populated.
// An unrecognized token beginning with '%' is left untouched, and a
// token whose source data is missing or malformed renders as
// "<unknown>".
func Interpolate(commit *objstore.Node, template string, abbrev int, now time.Time) string {
	tokens := buildTokenTable(commit, abbrev, now)

	var out strings.Builder
	i := 0
	for i < len(template) {
		if template[i] != '%' {
			out.WriteByte(template[i])
			i++
			continue
		}
		matched := false
		for _, tok := range orderedTokens {
			if strings.HasPrefix(template[i:], tok) {
				out.WriteString(tokens[tok])
				i += len(tok)
				matched = true
				break
			}
		}
		if !matched {
			out.WriteByte(template[i])
			i++
		}
	}
	return out.String()
}

func buildTokenTable(commit *objstore.Node, abbrev int, now time.Time) map[string]string {
	t := map[string]string{
		"%H":      commit.Hash.String(),
		"%h":      abbreviate(commit.Hash, abbrev),
		"%T":      commit.Tree.String(),
		"%t":      abbreviate(commit.Tree, abbrev),
		"%P":      joinParents(commit.Parents, -1),
		"%p":      joinParents(commit.Parents, abbrev),
		"%Cred":   "\x1b[31m",
		"%Cgreen": "\x1b[32m",
		"%Cblue":  "\x1b[34m",
		"%Creset": "\x1b[m",
		"%n":      "\n",
		"%m":      leftRightMarker(commit.Flags),
	}
	fillPerson(t, "a", commit.Buffer, "author ", now)
	fillPerson(t, "c", commit.Buffer, "committer ", now)
	fillHeaderFields(t, commit.Buffer)

	for _, k := range allTokens {
		if _, ok := t[k]; !ok {
			t[k] = unknownValue
		}
	}
	return t
}

func joinParents(parents []*objstore.Node, abbrev int) string {
	var buf bytes.Buffer
	for _, p := range parents {
		var hex string
		if abbrev >= 0 {
			hex = abbreviate(p.Hash, abbrev)
		} else {
			hex = p.Hash.String()
		}
		chunk := " " + hex
		if buf.Len()+len(chunk) > parentsBufCap-1 {
			break
		}
		buf.WriteString(chunk)
	}
	return strings.TrimPrefix(buf.String(), " ")
}

func leftRightMarker(flags uint32) string {
	switch {
	case flags&FlagBoundary != 0:
		return "-"
	case flags&FlagSymmetricLeft != 0:
		return "<"
	default:
		return ">"
	}
}

// fillPerson populates "%an"/"%ae"/"%ad"/"%aD"/"%ar"/"%at"/"%ai" (or
// their "c" equivalents) from the named header line in buf. Each stage
// degrades independently: a missing '<' leaves only the name filled, a
// missing '>' leaves email and date unfilled too, and so on, mirroring
// fill_person's early returns rather than failing the whole commit.
func fillPerson(t map[string]string, prefix string, buf []byte, headerKey string, now time.Time) {
	line := findHeaderLine(buf, headerKey)
	if line == nil {
		return
	}
	content := bytes.TrimSuffix(line[len(headerKey):], []byte("\n"))

	ltIdx := bytes.IndexByte(content, '<')
	nameEnd := len(content)
	if ltIdx >= 0 {
		nameEnd = ltIdx
	}
	t["%"+prefix+"n"] = string(bytes.TrimRight(content[:nameEnd], " "))
	if ltIdx < 0 {
		return
	}

	rest := content[ltIdx+1:]
	gt := bytes.IndexByte(rest, '>')
	if gt < 0 {
		return
	}
	t["%"+prefix+"e"] = string(rest[:gt])

	tail := bytes.TrimLeft(rest[gt+1:], " ")
	secEnd := 0
	for secEnd < len(tail) && tail[secEnd] >= '0' && tail[secEnd] <= '9' {
		secEnd++
	}
	if secEnd == 0 {
		return
	}
	secs, err := strconv.ParseInt(string(tail[:secEnd]), 10, 64)
	if err != nil {
		return
	}

	tz := 0
	tzField := bytes.TrimLeft(tail[secEnd:], " ")
	if len(tzField) > 0 {
		neg := false
		j := 0
		if tzField[j] == '+' || tzField[j] == '-' {
			neg = tzField[j] == '-'
			j++
		}
		k := j
		for k < len(tzField) && tzField[k] >= '0' && tzField[k] <= '9' {
			k++
		}
		if k > j {
			v, _ := strconv.Atoi(string(tzField[j:k]))
			if neg {
				v = -v
			}
			tz = v
		}
	}

	t["%"+prefix+"d"] = dateutil.Format(secs, tz, dateutil.Normal, now)
	t["%"+prefix+"D"] = dateutil.Format(secs, tz, dateutil.RFC2822, now)
	t["%"+prefix+"r"] = dateutil.Format(secs, tz, dateutil.Relative, now)
	t["%"+prefix+"t"] = strconv.FormatInt(secs, 10)
	t["%"+prefix+"i"] = dateutil.Format(secs, tz, dateutil.ISO8601, now)
}

func findHeaderLine(buf []byte, key string) []byte {
	keyBytes := []byte(key)
	for len(buf) > 0 {
		line, rest := nextLine(buf)
		if len(line) <= 1 {
			return nil
		}
		if bytes.HasPrefix(line, keyBytes) {
			return line
		}
		buf = rest
	}
	return nil
}

// fillHeaderFields populates "%e" (declared encoding header, if any),
// "%s" (the first physical line after the header), and "%b" (the
// remainder of the message after that line and any blank lines
// immediately following it). Unlike ppTitleLine's oneline/email
// folding, this does not fold a wrapped subject paragraph onto one
// line — format_commit_message captures exactly one line for %s and
// lets the rest of that paragraph fall into %b.
func fillHeaderFields(t map[string]string, buf []byte) {
	rest := buf
	for {
		line, next := nextLine(rest)
		if len(line) == 0 {
			return
		}
		rest = next
		trimmed := bytes.TrimSuffix(line, []byte("\n"))
		if len(trimmed) == 0 {
			break
		}
		if bytes.HasPrefix(trimmed, []byte("encoding ")) {
			t["%e"] = string(trimmed[len("encoding "):])
		}
	}

	rest = skipLeadingBlankLines(rest)

	line, next := nextLine(rest)
	if len(line) == 0 {
		return
	}
	t["%s"] = string(bytes.TrimSuffix(line, []byte("\n")))

	rest = skipLeadingBlankLines(next)
	if len(rest) > 0 {
		t["%b"] = string(rest)
	}
}
