package graphcore

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/kurobon/gitgraph/internal/config"
	"github.com/kurobon/gitgraph/internal/graft"
	"github.com/kurobon/gitgraph/internal/objstore"
)

// parentLineLen is "parent " (7 bytes) + 40 hex digits + "\n" (1 byte),
// hard-coded to 20-byte hashes the way commit.c hard-codes it.
const parentLineLen = 48

// ParseCommitBuffer parses buf, the raw commit object for item,
// populating item.Tree, item.Parents, and item.Date. If a graft is
// registered for item.Hash, the graft's parent list overrides whatever
// parent lines the buffer contains, though the parser still advances
// past every parent line in the buffer either way. Calling this on an
// already-parsed Node is a no-op.
func ParseCommitBuffer(item *objstore.Node, buf []byte, grafts *graft.Table, interner *objstore.Interner) error {
	if item.Parsed {
		return nil
	}

	if len(buf) < 46 || !bytes.HasPrefix(buf, []byte("tree ")) || buf[45] != '\n' {
		return fmt.Errorf("%w: %s: missing or malformed tree header", ErrBadCommit, item.Hash)
	}
	treeHash, err := parseHexHash(buf[5:45])
	if err != nil {
		return fmt.Errorf("%w: %s: bad tree pointer", ErrBadCommit, item.Hash)
	}
	item.Tree = treeHash

	pos := 46
	entry, hasGraft := grafts.Lookup(item.Hash)
	for pos+parentLineLen <= len(buf) && bytes.HasPrefix(buf[pos:], []byte("parent ")) {
		if buf[pos+47] != '\n' {
			return fmt.Errorf("%w: %s: bad parent line", ErrBadCommit, item.Hash)
		}
		parentHash, err := parseHexHash(buf[pos+7 : pos+47])
		if err != nil {
			return fmt.Errorf("%w: %s: bad parent line", ErrBadCommit, item.Hash)
		}
		pos += parentLineLen
		if !hasGraft {
			if parent, err := interner.LookupCommit(parentHash); err == nil {
				item.Parents = append(item.Parents, parent)
			}
		}
	}
	if hasGraft {
		for _, parentHash := range entry.Parents {
			if parent, err := interner.LookupCommit(parentHash); err == nil {
				item.Parents = append(item.Parents, parent)
			}
		}
	}

	if hasTruncatedEncodingHeader(buf[pos:]) {
		return fmt.Errorf("%w: %s: malformed encoding header", ErrBadCommit, item.Hash)
	}

	item.Date = parseCommitDate(buf[pos:])
	item.Parsed = true
	return nil
}

// hasTruncatedEncodingHeader scans buf, the header block remaining
// after the tree and parent lines, for an "encoding" line with no
// trailing newline before the header's blank terminator.
// replace_encoding_header locates that line's extent by searching for
// its terminating '\n'; a line that runs off the end of the buffer
// instead would make it under-copy, so this is rejected at parse time
// rather than left for logmsg_reencode to stumble over later.
func hasTruncatedEncodingHeader(buf []byte) bool {
	for len(buf) > 0 {
		nl := bytes.IndexByte(buf, '\n')
		if nl < 0 {
			return bytes.HasPrefix(buf, []byte("encoding "))
		}
		line := buf[:nl]
		buf = buf[nl+1:]
		if len(line) == 0 {
			return false
		}
	}
	return false
}

func parseHexHash(b []byte) (plumbing.Hash, error) {
	var raw [20]byte
	if _, err := hex.Decode(raw[:], b); err != nil {
		return plumbing.ZeroHash, err
	}
	return plumbing.Hash(raw), nil
}

// parseCommitDate extracts the committer timestamp from the remainder
// of the header block: it requires an "author" line immediately
// followed by a "committer" line, and reads the decimal run right after
// that line's '>'. Anything that doesn't match this shape yields 0,
// including an overflowing timestamp.
func parseCommitDate(buf []byte) uint64 {
	if !bytes.HasPrefix(buf, []byte("author")) {
		return 0
	}
	nl := bytes.IndexByte(buf, '\n')
	if nl < 0 {
		return 0
	}
	rest := buf[nl+1:]
	if !bytes.HasPrefix(rest, []byte("committer")) {
		return 0
	}
	gt := bytes.IndexByte(rest, '>')
	if gt < 0 {
		return 0
	}
	after := rest[gt+1:]
	i := 0
	for i < len(after) && after[i] == ' ' {
		i++
	}
	j := i
	for j < len(after) && after[j] >= '0' && after[j] <= '9' {
		j++
	}
	if j == i {
		return 0
	}
	date, err := strconv.ParseUint(string(after[i:j]), 10, 64)
	if err != nil {
		return 0
	}
	return date
}

// ParseCommit fetches item's raw bytes through interner, verifies it is
// a commit, and parses it. The raw buffer is retained on item when
// cfg.SaveCommitBuffer is set; otherwise the caller can never see the
// message body again, matching save_commit_buffer's effect on
// commit->buffer.
func ParseCommit(item *objstore.Node, interner *objstore.Interner, grafts *graft.Table, cfg *config.Config) error {
	if item.Parsed {
		return nil
	}
	kind, data, err := interner.Read(item.Hash)
	if err != nil {
		return err
	}
	if kind != plumbing.CommitObject {
		return fmt.Errorf("%w: %s", objstore.ErrWrongKind, item.Hash)
	}
	if err := ParseCommitBuffer(item, data, grafts, interner); err != nil {
		return err
	}
	if cfg.SaveCommitBuffer {
		item.Buffer = data
	}
	return nil
}
