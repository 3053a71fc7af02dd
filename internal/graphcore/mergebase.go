package graphcore

import (
	"github.com/kurobon/gitgraph/internal/config"
	"github.com/kurobon/gitgraph/internal/graft"
	"github.com/kurobon/gitgraph/internal/objstore"
)

// Flag bits used internally by the merge-base engine. Bits 0-15 of
// Node.Flags are reserved for callers; these occupy 16-19.
const (
	FlagParent1 uint32 = 1 << 16
	FlagParent2 uint32 = 1 << 17
	FlagStale   uint32 = 1 << 18
	FlagResult  uint32 = 1 << 19

	// AllMergeBaseFlags is the mask ClearMarks needs to fully reset a
	// commit touched by MergeBases or GetMergeBases.
	AllMergeBaseFlags = FlagParent1 | FlagParent2 | FlagStale | FlagResult
)

func interesting(list *CommitCell) bool {
	for c := list; c != nil; c = c.Next {
		if c.Item.Flags&FlagStale == 0 {
			return true
		}
	}
	return false
}

// MergeBases computes the best common ancestors of a and b by painting
// ancestry with FlagParent1/FlagParent2 during a date-descending BFS
// and collecting every commit that is reachable from both once it
// stops being reachable from only one (the STALE propagation prunes
// ancestors of an already-found best common ancestor). Callers should
// ClearMarks(a, AllMergeBaseFlags) and the same for b once done with the
// result, since the flags are left painted on the walked commits.
func MergeBases(a, b *objstore.Node, interner *objstore.Interner, grafts *graft.Table, cfg *config.Config) (*CommitCell, error) {
	if a == b {
		return &CommitCell{Item: a}, nil
	}
	if err := ParseCommit(a, interner, grafts, cfg); err != nil {
		return nil, err
	}
	if err := ParseCommit(b, interner, grafts, cfg); err != nil {
		return nil, err
	}

	a.Flags |= FlagParent1
	b.Flags |= FlagParent2
	var list *CommitCell
	list = InsertByDate(a, list)
	list = InsertByDate(b, list)

	var result *CommitCell
	for interesting(list) {
		commit := list.Item
		list = list.Next

		flags := commit.Flags & (FlagParent1 | FlagParent2 | FlagStale)
		if flags == FlagParent1|FlagParent2 {
			if commit.Flags&FlagResult == 0 {
				commit.Flags |= FlagResult
				result = InsertByDate(commit, result)
			}
			flags |= FlagStale
		}
		for _, parent := range commit.Parents {
			if parent.Flags&flags == flags {
				continue
			}
			if err := ParseCommit(parent, interner, grafts, cfg); err != nil {
				return nil, err
			}
			parent.Flags |= flags
			list = InsertByDate(parent, list)
		}
	}
	FreeList(list) // whatever's left is all STALE; matches commit.c's cleanup, no-op under GC

	var survivors *CommitCell
	for c := result; c != nil; c = c.Next {
		if c.Item.Flags&FlagStale == 0 {
			survivors = InsertByDate(c.Item, survivors)
		}
	}
	return survivors, nil
}

// GetMergeBases reduces MergeBases' raw result to an independent set:
// no surviving base may be an ancestor of another surviving base. When
// a and b are the same commit, or the raw result already has at most
// one member, it is returned unchanged (after clearing flags when
// cleanup is set).
func GetMergeBases(a, b *objstore.Node, cleanup bool, interner *objstore.Interner, grafts *graft.Table, cfg *config.Config) (*CommitCell, error) {
	result, err := MergeBases(a, b, interner, grafts, cfg)
	if err != nil {
		return nil, err
	}
	if a == b {
		return result, nil
	}
	if result == nil || result.Next == nil {
		if cleanup {
			ClearMarks(a, AllMergeBaseFlags)
			ClearMarks(b, AllMergeBaseFlags)
		}
		return result, nil
	}

	var candidates []*objstore.Node
	for c := result; c != nil; c = c.Next {
		candidates = append(candidates, c.Item)
	}

	ClearMarks(a, AllMergeBaseFlags)
	ClearMarks(b, AllMergeBaseFlags)

	for i := 0; i < len(candidates)-1; i++ {
		if candidates[i] == nil {
			continue
		}
		for j := i + 1; j < len(candidates); j++ {
			if candidates[j] == nil {
				continue
			}
			pair, err := MergeBases(candidates[i], candidates[j], interner, grafts, cfg)
			if err != nil {
				return nil, err
			}
			ClearMarks(candidates[i], AllMergeBaseFlags)
			ClearMarks(candidates[j], AllMergeBaseFlags)
			for c := pair; c != nil; c = c.Next {
				if candidates[i] == c.Item {
					candidates[i] = nil
				}
				if candidates[j] == c.Item {
					candidates[j] = nil
				}
			}
			if candidates[i] == nil {
				break
			}
		}
	}

	var out *CommitCell
	for _, n := range candidates {
		if n != nil {
			out = InsertByDate(n, out)
		}
	}
	return out, nil
}

// InMergeBases reports whether commit is one of the merge bases of
// commit and refs[0]. Only a single reference is supported; a longer
// refs slice is an ErrNotImplemented multi-reference query, left to a
// caller that wants to generalize this.
func InMergeBases(commit *objstore.Node, refs []*objstore.Node, interner *objstore.Interner, grafts *graft.Table, cfg *config.Config) (bool, error) {
	if len(refs) != 1 {
		return false, ErrNotImplemented
	}
	bases, err := GetMergeBases(commit, refs[0], true, interner, grafts, cfg)
	if err != nil {
		return false, err
	}
	for c := bases; c != nil; c = c.Next {
		if c.Item.Hash == commit.Hash {
			return true, nil
		}
	}
	return false, nil
}
