package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/kurobon/gitgraph/internal/config"
	"github.com/kurobon/gitgraph/internal/graft"
	"github.com/kurobon/gitgraph/internal/graphcore"
	"github.com/kurobon/gitgraph/internal/objstore"
	"github.com/kurobon/gitgraph/internal/pretty"
)

// mark is the caller-owned traversal bit this tool uses to avoid
// revisiting the same ancestor twice when walking history. It stays
// clear of bits 0 and 1, which %m reads as boundary/left markers.
const mark uint32 = 1 << 2

func main() {
	repoPath := flag.String("repo", ".", "path to the repository")
	prettyArg := flag.String("pretty", "medium", "output format: raw, medium, short, email, full, fuller, oneline, or format:<template>")
	abbrev := flag.Int("abbrev", config.Global.Abbrev, "hash abbreviation length, 0 for full hashes")
	graftsPath := flag.String("grafts", "", "path to a grafts file overriding parent history")
	max := flag.Int("max", 0, "stop after printing this many commits, 0 for unlimited")
	mergeBaseWith := flag.String("merge-base", "", "print the merge base(s) of <rev> and this revision instead of walking history")
	flag.Parse()

	rev := "HEAD"
	if flag.NArg() > 0 {
		rev = flag.Arg(0)
	}

	if err := run(*repoPath, rev, *prettyArg, *abbrev, *graftsPath, *max, *mergeBaseWith); err != nil {
		fmt.Fprintln(os.Stderr, "commitlog:", err)
		os.Exit(1)
	}
}

func run(repoPath, rev, prettyArg string, abbrev int, graftsPath string, max int, mergeBaseWith string) error {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return fmt.Errorf("open repo: %w", err)
	}
	store, ok := repo.Storer.(*filesystem.Storage)
	if !ok {
		return fmt.Errorf("repo storer is not filesystem-backed")
	}
	interner := objstore.New(store)

	var grafts graft.Table
	if graftsPath != "" {
		fs := osfs.New(".")
		if parseErrs, err := grafts.LoadFile(fs, graftsPath); err != nil {
			return fmt.Errorf("load grafts: %w", err)
		} else {
			for _, e := range parseErrs {
				fmt.Fprintln(os.Stderr, "commitlog: grafts:", e)
			}
		}
	}

	cfg := config.Global

	start, err := resolveCommit(repo, interner, rev)
	if err != nil {
		return err
	}
	if err := graphcore.ParseCommit(start, interner, &grafts, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", rev, err)
	}

	if mergeBaseWith != "" {
		return runMergeBase(repo, interner, &grafts, cfg, start, mergeBaseWith, abbrev)
	}
	return runLog(interner, &grafts, cfg, start, prettyArg, abbrev, max)
}

func resolveCommit(repo *git.Repository, interner *objstore.Interner, rev string) (*objstore.Node, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", rev, err)
	}
	return interner.LookupCommitReference(*hash, false)
}

func runMergeBase(repo *git.Repository, interner *objstore.Interner, grafts *graft.Table, cfg *config.Config, start *objstore.Node, other string, abbrev int) error {
	otherNode, err := resolveCommit(repo, interner, other)
	if err != nil {
		return err
	}
	if err := graphcore.ParseCommit(otherNode, interner, grafts, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", other, err)
	}

	bases, err := graphcore.GetMergeBases(start, otherNode, true, interner, grafts, cfg)
	if err != nil {
		return fmt.Errorf("merge-base: %w", err)
	}
	for c := bases; c != nil; c = c.Next {
		fmt.Println(abbrevHash(c.Item.Hash, abbrev))
	}
	return nil
}

func runLog(interner *objstore.Interner, grafts *graft.Table, cfg *config.Config, start *objstore.Node, prettyArg string, abbrev, max int) error {
	sel, err := pretty.SelectFormat(prettyArg)
	if err != nil {
		return err
	}

	start.Flags |= mark
	frontier := &graphcore.CommitCell{Item: start}

	now := time.Now()
	printed := 0
	for frontier != nil {
		var commit *objstore.Node
		commit, frontier, err = graphcore.PopMostRecent(frontier, mark, interner, grafts, cfg)
		if err != nil {
			return fmt.Errorf("walk history: %w", err)
		}
		if commit == nil {
			break
		}
		if err := printCommit(commit, sel, abbrev, now); err != nil {
			return err
		}
		printed++
		if max > 0 && printed >= max {
			break
		}
	}
	return nil
}

func printCommit(commit *objstore.Node, sel pretty.Selection, abbrev int, now time.Time) error {
	if sel.Format == pretty.FormatUserFormat {
		fmt.Println(pretty.Interpolate(commit, sel.Template, abbrev, now))
		return nil
	}
	if sel.Format != pretty.FormatOneline {
		fmt.Printf("commit %s\n", commit.Hash)
	}
	out, err := pretty.PrettyPrint(commit, pretty.Options{
		Format:   sel.Format,
		Abbrev:   abbrev,
		DateMode: pretty.DateNormal,
		Now:      now,
	})
	if err != nil {
		return err
	}
	if sel.Format == pretty.FormatOneline {
		fmt.Printf("%s %s\n", abbrevHash(commit.Hash, abbrev), out)
	} else {
		fmt.Println(out)
	}
	return nil
}

func abbrevHash(hash plumbing.Hash, abbrev int) string {
	full := hash.String()
	if abbrev <= 0 || abbrev >= len(full) {
		return full
	}
	return full[:abbrev]
}
