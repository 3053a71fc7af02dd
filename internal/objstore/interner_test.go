package objstore_test

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurobon/gitgraph/internal/objstore"
)

func putCommit(t *testing.T, store *memory.Storage, body []byte) plumbing.Hash {
	t.Helper()
	obj := &plumbing.MemoryObject{}
	obj.SetType(plumbing.CommitObject)
	w, err := obj.Writer()
	require.NoError(t, err)
	_, err = w.Write(body)
	require.NoError(t, err)
	hash := plumbing.ComputeHash(plumbing.CommitObject, body)
	_, err = store.SetEncodedObject(obj)
	require.NoError(t, err)
	return hash
}

func TestInternerCreateReturnsSamePointer(t *testing.T) {
	in := objstore.New(memory.NewStorage())
	h := plumbing.NewHash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	a := in.Create(h)
	b := in.Create(h)
	assert.Same(t, a, b)
	assert.Same(t, a, in.Lookup(h))
}

func TestInternerLookupCommitRejectsKindChange(t *testing.T) {
	in := objstore.New(memory.NewStorage())
	h := plumbing.NewHash("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	n := in.Create(h)
	n.Kind = objstore.KindTree

	_, err := in.LookupCommit(h)
	assert.ErrorIs(t, err, objstore.ErrWrongKind)
}

func TestInternerReadRoundTrips(t *testing.T) {
	store := memory.NewStorage()
	body := []byte("tree " + "0000000000000000000000000000000000000000" + "\nauthor a <a@example.com> 1000 +0000\ncommitter a <a@example.com> 1000 +0000\n\nmsg\n")
	h := putCommit(t, store, body)

	in := objstore.New(store)
	kind, data, err := in.Read(h)
	require.NoError(t, err)
	assert.Equal(t, plumbing.CommitObject, kind)
	assert.Equal(t, body, data)
}

func TestInternerReadMissingObjectFails(t *testing.T) {
	in := objstore.New(memory.NewStorage())
	_, _, err := in.Read(plumbing.NewHash("cccccccccccccccccccccccccccccccccccccccc"))
	assert.ErrorIs(t, err, objstore.ErrReadFail)
}

func TestInternerDerefTagFollowsIndirection(t *testing.T) {
	store := memory.NewStorage()
	commitBody := []byte("tree " + "0000000000000000000000000000000000000000" + "\nauthor a <a@example.com> 1000 +0000\ncommitter a <a@example.com> 1000 +0000\n\nmsg\n")
	commitHash := putCommit(t, store, commitBody)

	tagObj := &plumbing.MemoryObject{}
	tagObj.SetType(plumbing.TagObject)
	tagBody := []byte("object " + commitHash.String() + "\ntype commit\ntag v1\ntagger a <a@example.com> 1000 +0000\n\nrelease\n")
	w, err := tagObj.Writer()
	require.NoError(t, err)
	_, err = w.Write(tagBody)
	require.NoError(t, err)
	tagHash := plumbing.ComputeHash(plumbing.TagObject, tagBody)
	_, err = store.SetEncodedObject(tagObj)
	require.NoError(t, err)

	in := objstore.New(store)
	resolved, kind, err := in.DerefTag(tagHash)
	require.NoError(t, err)
	assert.Equal(t, plumbing.CommitObject, kind)
	assert.Equal(t, commitHash, resolved)

	n, err := in.LookupCommitReference(tagHash, false)
	require.NoError(t, err)
	assert.Equal(t, commitHash, n.Hash)
}

func TestInternerLookupCommitReferenceGentlyOnBlob(t *testing.T) {
	store := memory.NewStorage()
	blob := &plumbing.MemoryObject{}
	blob.SetType(plumbing.BlobObject)
	w, err := blob.Writer()
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	h := plumbing.ComputeHash(plumbing.BlobObject, []byte("hello"))
	_, err = store.SetEncodedObject(blob)
	require.NoError(t, err)

	in := objstore.New(store)
	n, err := in.LookupCommitReference(h, true)
	require.NoError(t, err)
	assert.Nil(t, n)

	_, err = in.LookupCommitReference(h, false)
	assert.ErrorIs(t, err, objstore.ErrWrongKind)
}
