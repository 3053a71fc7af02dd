package graft_test

import (
	"bytes"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurobon/gitgraph/internal/graft"
)

func hash(s string) plumbing.Hash { return plumbing.NewHash(s) }

func TestRegisterAndLookup(t *testing.T) {
	var tbl graft.Table
	h1 := hash("1111111111111111111111111111111111111111")
	h2 := hash("2222222222222222222222222222222222222222")
	dup := tbl.Register(graft.Entry{Hash: h2}, false)
	assert.False(t, dup)
	dup = tbl.Register(graft.Entry{Hash: h1, Parents: []plumbing.Hash{h2}}, false)
	assert.False(t, dup)

	entry, ok := tbl.Lookup(h1)
	require.True(t, ok)
	assert.Equal(t, []plumbing.Hash{h2}, entry.Parents)

	_, ok = tbl.Lookup(hash("3333333333333333333333333333333333333333"))
	assert.False(t, ok)
}

func TestRegisterDuplicateIgnored(t *testing.T) {
	var tbl graft.Table
	h := hash("4444444444444444444444444444444444444444")
	tbl.Register(graft.Entry{Hash: h, Shallow: true}, false)
	dup := tbl.Register(graft.Entry{Hash: h, Parents: []plumbing.Hash{h}}, true)
	assert.True(t, dup)

	entry, _ := tbl.Lookup(h)
	assert.True(t, entry.Shallow, "first registration should survive when ignoreDups is set")
}

func TestUnregister(t *testing.T) {
	var tbl graft.Table
	h := hash("5555555555555555555555555555555555555555")
	tbl.Register(graft.Entry{Hash: h}, false)
	assert.True(t, tbl.Unregister(h))
	assert.False(t, tbl.Unregister(h))
	_, ok := tbl.Lookup(h)
	assert.False(t, ok)
}

func TestLoadFileParsesShallowAndGraftLines(t *testing.T) {
	fs := memfs.New()
	f, err := fs.Create("grafts")
	require.NoError(t, err)
	h1 := "1111111111111111111111111111111111111111"
	h2 := "2222222222222222222222222222222222222222"
	h3 := "3333333333333333333333333333333333333333"
	content := "# comment\n\n" + h1 + "\n" + h2 + " " + h3 + "\n"
	_, err = f.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var tbl graft.Table
	parseErrs, err := tbl.LoadFile(fs, "grafts")
	require.NoError(t, err)
	assert.Empty(t, parseErrs)

	e1, ok := tbl.Lookup(hash(h1))
	require.True(t, ok)
	assert.True(t, e1.Shallow)

	e2, ok := tbl.Lookup(hash(h2))
	require.True(t, ok)
	assert.Equal(t, []plumbing.Hash{hash(h3)}, e2.Parents)
	assert.False(t, e2.Shallow)
}

func TestLoadFileReportsMalformedLines(t *testing.T) {
	fs := memfs.New()
	f, err := fs.Create("grafts")
	require.NoError(t, err)
	_, err = f.Write([]byte("not-a-hash\n"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var tbl graft.Table
	parseErrs, err := tbl.LoadFile(fs, "grafts")
	require.NoError(t, err)
	require.Len(t, parseErrs, 1)
	assert.ErrorIs(t, parseErrs[0], graft.ErrBadGraft)
}

func TestWriteShallowPlain(t *testing.T) {
	var tbl graft.Table
	h1 := hash("6666666666666666666666666666666666666666")
	h2 := hash("7777777777777777777777777777777777777777")
	tbl.Register(graft.Entry{Hash: h1, Shallow: true}, false)
	tbl.Register(graft.Entry{Hash: h2, Parents: []plumbing.Hash{h1}}, false)

	var buf bytes.Buffer
	n, err := tbl.WriteShallow(&buf, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, h1.String()+"\n", buf.String())
}

func TestWriteShallowFramed(t *testing.T) {
	var tbl graft.Table
	h1 := hash("8888888888888888888888888888888888888888")
	tbl.Register(graft.Entry{Hash: h1, Shallow: true}, false)

	var buf bytes.Buffer
	n, err := tbl.WriteShallow(&buf, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, buf.String(), "shallow "+h1.String())
}
