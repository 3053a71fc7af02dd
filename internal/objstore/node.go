// Package objstore interns commits by hash and fetches their raw bytes
// through a go-git object store, giving the rest of the module a single
// canonical *Node per hash the way commit.c's global lookup_commit
// table gives a single struct commit per sha1.
package objstore

import "github.com/go-git/go-git/v5/plumbing"

// Kind is the coarse object type a Node has been resolved to.
type Kind int

const (
	KindUnknown Kind = iota
	KindCommit
	KindTree
	KindBlob
	KindTag
)

// Node is a commit in the interned graph. Hash is fixed at creation;
// Tree, Parents, Date, and Buffer are only meaningful once Parsed is
// true.
type Node struct {
	Hash   plumbing.Hash
	Kind   Kind
	Parsed bool

	Tree    plumbing.Hash
	Parents []*Node
	Date    uint64
	Buffer  []byte

	// Flags is a caller- and algorithm-shared bitset. Bits 0-15 are
	// reserved for callers (revision-walker style markers); bits 16-19
	// are used internally by the merge-base engine (see
	// internal/graphcore's FlagParent1/FlagParent2/FlagStale/FlagResult
	// constants).
	Flags uint32

	// Util is scratch storage for algorithms that need to attach
	// transient per-node state (the topological sort's default
	// setter/getter pair uses it). Callers that stash something here
	// are responsible for clearing it when done.
	Util interface{}
}
