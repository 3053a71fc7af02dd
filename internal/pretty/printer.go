package pretty

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kurobon/gitgraph/internal/dateutil"
	"github.com/kurobon/gitgraph/internal/objstore"
)

// DateMode re-exports dateutil's modes so callers of this package don't
// need a second import for Options.DateMode.
type DateMode = dateutil.Mode

const (
	DateNormal  = dateutil.Normal
	DateRFC2822 = dateutil.RFC2822
	DateRelative = dateutil.Relative
	DateISO8601 = dateutil.ISO8601
)

// Options controls PrettyPrint's rendering.
type Options struct {
	Format Format
	Abbrev int

	// Subject and AfterSubject are pp_title_line's "[PATCH] "-style
	// prefix and a trailer inserted right after the subject line; both
	// default to empty.
	Subject      string
	AfterSubject string

	DateMode DateMode
	Encoding string // desired output encoding; "" defaults to utf-8
	Now      time.Time
}

// PrettyPrint renders commit per opts. commit.Buffer must already be
// populated (ParseCommit with SaveCommitBuffer set, or a caller that
// filled it directly); FormatUserFormat is rejected here, use
// Interpolate for that mode instead.
func PrettyPrint(commit *objstore.Node, opts Options) (string, error) {
	if opts.Format == FormatUserFormat {
		return "", fmt.Errorf("%w: use Interpolate for format:", ErrBadFormat)
	}
	if commit.Buffer == nil {
		return "", fmt.Errorf("pretty: commit %s has no retained buffer", commit.Hash)
	}

	encoding := opts.Encoding
	if encoding == "" {
		encoding = "utf-8"
	}
	msg := commit.Buffer
	if reencoded, err := Reencode(commit, encoding); err != nil {
		return "", err
	} else if reencoded != nil {
		msg = reencoded
	}

	plainNonASCII := false
	if opts.Format == FormatEmail && opts.AfterSubject == "" {
		plainNonASCII = hasNonASCIIBody(msg)
	}

	var buf bytes.Buffer
	rest, err := ppHeader(&buf, opts.Format, opts.Abbrev, opts.DateMode, encoding, commit, msg, opts.Now)
	if err != nil {
		return "", err
	}
	if opts.Format != FormatOneline && opts.Subject == "" {
		buf.WriteByte('\n')
	}

	rest = skipLeadingBlankLines(rest)

	indent := 4
	if opts.Format == FormatOneline || opts.Format == FormatEmail {
		indent = 0
	}

	if opts.Format == FormatOneline || opts.Format == FormatEmail {
		rest = ppTitleLine(&buf, opts.Format, rest, opts.Subject, opts.AfterSubject, encoding, plainNonASCII)
	}

	beginningOfBody := buf.Len()
	if opts.Format != FormatOneline {
		ppRemainder(&buf, opts.Format, rest, indent)
	}
	rtrim(&buf)
	if opts.Format != FormatOneline {
		buf.WriteByte('\n')
	}
	if opts.Format == FormatEmail && buf.Len() <= beginningOfBody {
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}

func skipLeadingBlankLines(msg []byte) []byte {
	for {
		line, rest := nextLine(msg)
		if len(line) == 0 {
			return msg
		}
		if _, empty := trimTrailingSpace(line); !empty {
			return msg
		}
		msg = rest
	}
}

// ppHeader renders the header block (tree/parent/author/committer) and
// returns the remainder of msg (the blank separator line consumed).
// RAW mode copies every header line verbatim, including parent lines;
// every other mode suppresses "tree "/"parent " lines and instead
// renders a "Merge:" summary plus "Author"/"Commit" lines.
func ppHeader(buf *bytes.Buffer, format Format, abbrev int, dmode DateMode, encoding string, commit *objstore.Node, msg []byte, now time.Time) ([]byte, error) {
	parentsShown := false
	for {
		line, rest := nextLine(msg)
		if len(line) == 0 {
			return rest, nil
		}
		if len(line) == 1 { // bare "\n": end of header
			return rest, nil
		}
		msg = rest

		if format == FormatRaw {
			buf.Write(line)
			continue
		}
		if bytes.HasPrefix(line, []byte("tree ")) {
			continue
		}
		if bytes.HasPrefix(line, []byte("parent ")) {
			if len(line) != parentHeaderLineLen {
				return nil, fmt.Errorf("%w: bad parent line", ErrBadFormat)
			}
			continue
		}
		if !parentsShown {
			addMergeInfo(buf, format, commit, abbrev)
			parentsShown = true
		}
		if bytes.HasPrefix(line, []byte("author ")) {
			addUserInfo(buf, "Author", format, line[len("author "):len(line)-1], dmode, encoding, now)
		}
		if bytes.HasPrefix(line, []byte("committer ")) && (format == FormatFull || format == FormatFuller) {
			addUserInfo(buf, "Commit", format, line[len("committer "):len(line)-1], dmode, encoding, now)
		}
	}
}

const parentHeaderLineLen = 48 // "parent " + 40 hex + "\n"

func addMergeInfo(buf *bytes.Buffer, format Format, commit *objstore.Node, abbrev int) {
	if format == FormatOneline || format == FormatEmail || len(commit.Parents) < 2 {
		return
	}
	buf.WriteString("Merge:")
	for _, p := range commit.Parents {
		hex := p.Hash.String()
		dots := ""
		if abbrev > 0 && abbrev < 40 {
			hex, dots = abbreviate(p.Hash, abbrev), "..."
		}
		fmt.Fprintf(buf, " %s%s", hex, dots)
	}
	buf.WriteByte('\n')
}

func addUserInfo(buf *bytes.Buffer, label string, format Format, line []byte, dmode DateMode, encoding string, now time.Time) {
	if format == FormatOneline {
		return
	}
	nameEmail, secs, tz, ok := parseUserLine(line)
	if !ok {
		return
	}

	if format == FormatEmail {
		ltIdx := bytes.IndexByte(nameEmail, '<')
		if ltIdx < 0 {
			return
		}
		name := bytes.TrimRight(nameEmail[:ltIdx], " ")
		buf.WriteString("From: ")
		addRFC2047(buf, name, encoding)
		buf.Write(nameEmail[ltIdx:])
		buf.WriteByte('\n')
	} else {
		filler := ""
		if format == FormatFuller {
			filler = "    "
		}
		fmt.Fprintf(buf, "%s: %s%s\n", label, filler, nameEmail)
	}

	switch format {
	case FormatMedium:
		fmt.Fprintf(buf, "Date:   %s\n", dateutil.Format(secs, tz, dmode, now))
	case FormatEmail:
		fmt.Fprintf(buf, "Date: %s\n", dateutil.Format(secs, tz, dateutil.RFC2822, now))
	case FormatFuller:
		fmt.Fprintf(buf, "%sDate: %s\n", label, dateutil.Format(secs, tz, dmode, now))
	}
}

// parseUserLine splits a raw "Name <email> secs tz" signature line
// (without its trailing newline) into the "Name <email>" substring and
// the numeric date fields.
func parseUserLine(line []byte) (nameEmail []byte, secs int64, tz int, ok bool) {
	gt := bytes.IndexByte(line, '>')
	if gt < 0 {
		return nil, 0, 0, false
	}
	nameEmail = line[:gt+1]
	rest := bytes.TrimLeft(line[gt+1:], " ")

	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i == 0 {
		return nameEmail, 0, 0, true
	}
	secs, _ = strconv.ParseInt(string(rest[:i]), 10, 64)

	tzField := bytes.TrimLeft(rest[i:], " ")
	neg := false
	j := 0
	if j < len(tzField) && (tzField[j] == '+' || tzField[j] == '-') {
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
	return nameEmail, secs, tz, true
}

// ppTitleLine folds the wrapped subject-line paragraph at the start of
// msg into a single line, writes it (optionally RFC 2047-quoted behind
// Subject), and returns the remainder.
func ppTitleLine(buf *bytes.Buffer, format Format, msg []byte, subject, afterSubject, encoding string, plainNonASCII bool) []byte {
	var title bytes.Buffer
	for {
		line, rest := nextLine(msg)
		if len(line) == 0 {
			break
		}
		trimmed, empty := trimTrailingSpace(line)
		if empty {
			msg = rest
			break
		}
		msg = rest
		if title.Len() > 0 {
			if format == FormatEmail {
				title.WriteByte('\n')
			}
			title.WriteByte(' ')
		}
		title.Write(trimmed)
	}

	if subject != "" {
		buf.WriteString(subject)
		addRFC2047(buf, title.Bytes(), encoding)
	} else {
		buf.Write(title.Bytes())
	}
	buf.WriteByte('\n')

	if plainNonASCII {
		fmt.Fprintf(buf, "MIME-Version: 1.0\nContent-Type: text/plain; charset=%s\nContent-Transfer-Encoding: 8bit\n", encoding)
	}
	if afterSubject != "" {
		buf.WriteString(afterSubject)
	}
	if format == FormatEmail {
		buf.WriteByte('\n')
	}
	return msg
}

// ppRemainder writes the body of msg, indenting every emitted line
// (blank ones included) by indent spaces. Leading blank lines are
// dropped; for FormatShort, the first blank line reached after some
// content has been emitted ends the body early, so the "short" format
// shows only the first paragraph of the message.
func ppRemainder(buf *bytes.Buffer, format Format, msg []byte, indent int) []byte {
	first := true
	padding := strings.Repeat(" ", indent)
	for {
		line, rest := nextLine(msg)
		if len(line) == 0 {
			return rest
		}
		msg = rest
		trimmed, empty := trimTrailingSpace(line)
		if empty {
			if first {
				continue
			}
			if format == FormatShort {
				return rest
			}
		}
		first = false
		if indent > 0 {
			buf.WriteString(padding)
		}
		buf.Write(trimmed)
		buf.WriteByte('\n')
	}
}

func hasNonASCIIBody(msg []byte) bool {
	inBody := false
	for i := 0; i < len(msg); i++ {
		if !inBody {
			if msg[i] == '\n' && i+1 < len(msg) && msg[i+1] == '\n' {
				inBody = true
			}
			continue
		}
		if nonASCII(msg[i]) {
			return true
		}
	}
	return false
}
