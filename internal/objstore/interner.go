package objstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// ErrWrongKind reports that a hash is already known to name an object
// of a type other than the one requested.
var ErrWrongKind = errors.New("objstore: wrong kind")

// ErrReadFail reports a failure reading an object's bytes out of the
// backing store.
var ErrReadFail = errors.New("objstore: read failed")

// Interner canonicalizes Nodes by hash, so repeated lookups of the same
// commit yield the same pointer, and fetches raw object bytes through a
// go-git object store.
type Interner struct {
	store storer.EncodedObjectStorer
	nodes map[plumbing.Hash]*Node
}

// New wraps store in an Interner. store is typically a
// storage/memory.Storage for tests or a storage/filesystem.Storage
// opened against a real .git directory.
func New(store storer.EncodedObjectStorer) *Interner {
	return &Interner{store: store, nodes: make(map[plumbing.Hash]*Node)}
}

// Lookup returns the already-interned Node for hash, or nil if hash has
// never been seen.
func (in *Interner) Lookup(hash plumbing.Hash) *Node {
	return in.nodes[hash]
}

// Create returns the interned Node for hash, allocating an empty one
// (Kind unset, Parsed false) the first time hash is seen.
func (in *Interner) Create(hash plumbing.Hash) *Node {
	if n, ok := in.nodes[hash]; ok {
		return n
	}
	n := &Node{Hash: hash}
	in.nodes[hash] = n
	return n
}

// Read fetches the declared object type and raw bytes for hash from the
// backing store.
func (in *Interner) Read(hash plumbing.Hash) (plumbing.ObjectType, []byte, error) {
	obj, err := in.store.EncodedObject(plumbing.AnyObject, hash)
	if err != nil {
		return plumbing.InvalidObject, nil, fmt.Errorf("%w: %s: %v", ErrReadFail, hash, err)
	}
	r, err := obj.Reader()
	if err != nil {
		return plumbing.InvalidObject, nil, fmt.Errorf("%w: %s: %v", ErrReadFail, hash, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return plumbing.InvalidObject, nil, fmt.Errorf("%w: %s: %v", ErrReadFail, hash, err)
	}
	return obj.Type(), data, nil
}

// DerefTag follows tag indirection zero or more times starting at hash,
// returning the final hash and its declared object type.
func (in *Interner) DerefTag(hash plumbing.Hash) (plumbing.Hash, plumbing.ObjectType, error) {
	kind, data, err := in.Read(hash)
	if err != nil {
		return hash, plumbing.InvalidObject, err
	}
	for kind == plumbing.TagObject {
		target, targetKind, ok := parseTagTarget(data)
		if !ok {
			return hash, kind, nil
		}
		hash = target
		kind, data, err = in.Read(hash)
		if err != nil {
			return hash, plumbing.InvalidObject, err
		}
		_ = targetKind
	}
	return hash, kind, nil
}

// LookupCommit returns the interned Node for hash, creating it if
// necessary. It fails with ErrWrongKind if hash is already known to be
// something other than a commit.
func (in *Interner) LookupCommit(hash plumbing.Hash) (*Node, error) {
	n := in.Create(hash)
	switch n.Kind {
	case KindUnknown:
		n.Kind = KindCommit
	case KindCommit:
	default:
		return nil, fmt.Errorf("%w: %s", ErrWrongKind, hash)
	}
	return n, nil
}

// LookupCommitReference dereferences tag indirection and resolves hash
// to a commit Node. When gently is true, any failure (read error, or
// the dereferenced object not being a commit) yields (nil, nil) instead
// of an error.
func (in *Interner) LookupCommitReference(hash plumbing.Hash, gently bool) (*Node, error) {
	target, kind, err := in.DerefTag(hash)
	if err != nil {
		if gently {
			return nil, nil
		}
		return nil, err
	}
	if kind != plumbing.CommitObject {
		if gently {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s is a %s, not a commit", ErrWrongKind, target, kind)
	}
	return in.LookupCommit(target)
}

// parseTagTarget extracts the "object <hash>" / "type <type>" header
// pair from a tag object's raw bytes.
func parseTagTarget(data []byte) (plumbing.Hash, plumbing.ObjectType, bool) {
	lines := bytes.SplitN(data, []byte("\n"), 3)
	if len(lines) < 2 {
		return plumbing.ZeroHash, plumbing.InvalidObject, false
	}
	objLine, typeLine := lines[0], lines[1]
	if !bytes.HasPrefix(objLine, []byte("object ")) || !bytes.HasPrefix(typeLine, []byte("type ")) {
		return plumbing.ZeroHash, plumbing.InvalidObject, false
	}
	hash := plumbing.NewHash(string(bytes.TrimSpace(objLine[len("object "):])))
	kind, err := plumbing.ParseObjectType(string(bytes.TrimSpace(typeLine[len("type "):])))
	if err != nil {
		return plumbing.ZeroHash, plumbing.InvalidObject, false
	}
	return hash, kind, true
}
