package graphcore

import "github.com/kurobon/gitgraph/internal/objstore"

// CommitCell is one link of a singly linked commit list, the core's
// frontier/result representation throughout traversal, topological
// sort, and merge-base computation.
type CommitCell struct {
	Item *objstore.Node
	Next *CommitCell
}

// Insert prepends item to the front of list, returning the new head.
func Insert(item *objstore.Node, list *CommitCell) *CommitCell {
	return &CommitCell{Item: item, Next: list}
}

// InsertByDate inserts item into list, a list already kept in
// date-descending order, returning the new head. Ties are broken
// stably: item is placed after any existing cells with the same date.
func InsertByDate(item *objstore.Node, list *CommitCell) *CommitCell {
	if list == nil || list.Item.Date < item.Date {
		return &CommitCell{Item: item, Next: list}
	}
	prev := list
	for prev.Next != nil && !(prev.Next.Item.Date < item.Date) {
		prev = prev.Next
	}
	prev.Next = &CommitCell{Item: item, Next: prev.Next}
	return list
}

// SortByDate rebuilds list in date-descending order.
func SortByDate(list *CommitCell) *CommitCell {
	var result *CommitCell
	for c := list; c != nil; c = c.Next {
		result = InsertByDate(c.Item, result)
	}
	return result
}

// Pop detaches and returns the head item of stack along with the
// remaining list.
func Pop(stack *CommitCell) (*objstore.Node, *CommitCell) {
	if stack == nil {
		return nil, nil
	}
	return stack.Item, stack.Next
}

// FreeList breaks every link in list. Go's garbage collector makes this
// unnecessary for memory reclamation, but it is kept for parity with
// the reference implementation's explicit list lifecycle and to make
// use-after-free-shaped bugs (holding a stale *CommitCell) visible.
func FreeList(list *CommitCell) {
	for list != nil {
		next := list.Next
		list.Next = nil
		list.Item = nil
		list = next
	}
}
