package graphcore

import (
	"github.com/kurobon/gitgraph/internal/config"
	"github.com/kurobon/gitgraph/internal/graft"
	"github.com/kurobon/gitgraph/internal/objstore"
)

// PopMostRecent pops the most recent commit off frontier (the head,
// since frontier is kept date-descending), parses each of its parents,
// marks and inserts by date those not yet marked with mark, and returns the popped commit along with the updated frontier. mark
// is caller-owned (bits 0-15 of Node.Flags); it is how a caller avoids
// revisiting the same ancestor from two different branches.
func PopMostRecent(frontier *CommitCell, mark uint32, interner *objstore.Interner, grafts *graft.Table, cfg *config.Config) (*objstore.Node, *CommitCell, error) {
	if frontier == nil {
		return nil, nil, nil
	}
	commit, rest := frontier.Item, frontier.Next
	for _, parent := range commit.Parents {
		if err := ParseCommit(parent, interner, grafts, cfg); err != nil {
			return nil, nil, err
		}
		if parent.Flags&mark == 0 {
			parent.Flags |= mark
			rest = InsertByDate(parent, rest)
		}
	}
	return commit, rest, nil
}

// ClearMarks clears mask from commit and recursively from every
// ancestor that currently has any bit of mask set, stopping the
// recursion at commits that are already clear.
func ClearMarks(commit *objstore.Node, mask uint32) {
	if commit.Flags&mask == 0 {
		return
	}
	commit.Flags &^= mask
	for _, parent := range commit.Parents {
		ClearMarks(parent, mask)
	}
}
