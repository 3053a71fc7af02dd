// Package graft implements a graft table: an override of a commit's
// parent list keyed by hash, read from a simple text file and kept
// sorted for binary-search lookup the way commit.c's commit_graft
// array is.
package graft

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/pktline"
)

// ErrBadGraft reports a malformed line in a graft file.
var ErrBadGraft = errors.New("graft: malformed line")

// ErrIOTruncate reports that writing shallow records stopped early
// because of an I/O error.
var ErrIOTruncate = errors.New("graft: write truncated")

const maxLineLen = 1024

// Entry overrides the parent set of Hash. Shallow is true for a
// zero-parent graft, which marks Hash a history boundary.
type Entry struct {
	Hash    plumbing.Hash
	Parents []plumbing.Hash
	Shallow bool
}

// Table is a graft table kept sorted by Hash so lookups are a binary
// search.
type Table struct {
	entries []Entry
}

// pos returns the index of hash's entry if present, or -(insertion
// point)-1 if absent, matching commit_graft_pos's convention.
func (t *Table) pos(hash plumbing.Hash) int {
	lo, hi := 0, len(t.entries)
	for lo < hi {
		mid := (lo + hi) / 2
		switch bytes.Compare(hash[:], t.entries[mid].Hash[:]) {
		case 0:
			return mid
		case -1:
			hi = mid
		default:
			lo = mid + 1
		}
	}
	return -lo - 1
}

// Lookup returns the graft registered for hash, if any.
func (t *Table) Lookup(hash plumbing.Hash) (*Entry, bool) {
	if t == nil {
		return nil, false
	}
	p := t.pos(hash)
	if p < 0 {
		return nil, false
	}
	return &t.entries[p], true
}

// Register inserts entry at its sorted position. On collision with an
// existing entry, it replaces the entry unless ignoreDups is set, in
// which case the new entry is discarded. Either way duplicate reports
// whether entry.Hash was already registered.
func (t *Table) Register(entry Entry, ignoreDups bool) (duplicate bool) {
	p := t.pos(entry.Hash)
	if p >= 0 {
		if !ignoreDups {
			t.entries[p] = entry
		}
		return true
	}
	at := -p - 1
	t.entries = append(t.entries, Entry{})
	copy(t.entries[at+1:], t.entries[at:])
	t.entries[at] = entry
	return false
}

// Unregister removes the graft for hash, if any, reporting whether one
// was removed.
func (t *Table) Unregister(hash plumbing.Hash) bool {
	p := t.pos(hash)
	if p < 0 {
		return false
	}
	t.entries = append(t.entries[:p], t.entries[p+1:]...)
	return true
}

// LoadFile reads a graft file from fs at path, registering every
// well-formed line (ignoring duplicates within the file, first line
// wins). Blank lines and lines starting with '#' are skipped. Malformed
// lines are collected and returned alongside any I/O error; a load is
// partial, not atomic, matching commit.c's read_graft_file behavior of
// warning per bad line rather than aborting.
func (t *Table) LoadFile(fs billy.Filesystem, path string) ([]error, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var parseErrs []error
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, maxLineLen), maxLineLen)
	for scanner.Scan() {
		entry, ok, err := parseGraftLine(scanner.Text())
		if err != nil {
			parseErrs = append(parseErrs, err)
			continue
		}
		if !ok {
			continue
		}
		t.Register(entry, true)
	}
	if err := scanner.Err(); err != nil {
		return parseErrs, err
	}
	return parseErrs, nil
}

func parseGraftLine(line string) (Entry, bool, error) {
	if line == "" || line[0] == '#' {
		return Entry{}, false, nil
	}
	if (len(line)+1)%41 != 0 {
		return Entry{}, false, fmt.Errorf("%w: %q", ErrBadGraft, line)
	}
	fields := bytes.Fields([]byte(line))
	if len(fields) == 0 {
		return Entry{}, false, fmt.Errorf("%w: %q", ErrBadGraft, line)
	}
	hashes := make([]plumbing.Hash, len(fields))
	for i, f := range fields {
		if len(f) != 40 || !isHex(f) {
			return Entry{}, false, fmt.Errorf("%w: %q", ErrBadGraft, line)
		}
		hashes[i] = plumbing.NewHash(string(f))
	}
	entry := Entry{Hash: hashes[0], Parents: hashes[1:]}
	entry.Shallow = len(entry.Parents) == 0
	return entry, true, nil
}

func isHex(b []byte) bool {
	for _, c := range b {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// WriteShallow writes every shallow entry to w: a plain "<hex>\n" line
// per record when framed is false, or a pkt-line-framed "shallow <hex>"
// record when framed is true (the format git sends over the smart-HTTP
// / ssh transport). It returns the number of records written.
func (t *Table) WriteShallow(w io.Writer, framed bool) (int, error) {
	var enc *pktline.Encoder
	if framed {
		enc = pktline.NewEncoder(w)
	}
	count := 0
	for _, e := range t.entries {
		if !e.Shallow {
			continue
		}
		var err error
		if framed {
			err = enc.Encodef("shallow %s\n", e.Hash.String())
		} else {
			_, err = io.WriteString(w, e.Hash.String()+"\n")
		}
		if err != nil {
			return count, fmt.Errorf("%w: %v", ErrIOTruncate, err)
		}
		count++
	}
	return count, nil
}
