package graphcore

import "github.com/kurobon/gitgraph/internal/objstore"

// Setter and Getter let a caller supply its own scratch-slot storage for
// the per-commit sort state SortInTopologicalOrder needs, instead of
// using Node.Util. Passing nil for either defaults to Node.Util.
type Setter func(n *objstore.Node, v interface{})
type Getter func(n *objstore.Node) interface{}

func defaultSetter(n *objstore.Node, v interface{}) { n.Util = v }
func defaultGetter(n *objstore.Node) interface{}    { return n.Util }

type sortState struct {
	node     *objstore.Node
	indegree int
}

// SortInTopologicalOrder reorders list so that every commit precedes
// its parents, Kahn's algorithm style: a commit is a "tip" (ready to
// emit) once nothing else remaining in list depends on it. When lifo is
// true, newly-readied tips are emitted before older queued ones (a
// stack); when false, they are merged back into a date-descending
// queue (the list's natural order).
func SortInTopologicalOrder(list *CommitCell, lifo bool, setter Setter, getter Getter) *CommitCell {
	if setter == nil {
		setter = defaultSetter
	}
	if getter == nil {
		getter = defaultGetter
	}

	var states []*sortState
	for c := list; c != nil; c = c.Next {
		s := &sortState{node: c.Item}
		states = append(states, s)
		setter(c.Item, s)
	}
	if len(states) == 0 {
		return nil
	}

	inList := func(n *objstore.Node) (*sortState, bool) {
		v := getter(n)
		if v == nil {
			return nil, false
		}
		s, ok := v.(*sortState)
		return s, ok
	}

	for _, s := range states {
		for _, parent := range s.node.Parents {
			if ps, ok := inList(parent); ok {
				ps.indegree++
			}
		}
	}

	var queue, queueTail *CommitCell
	for _, s := range states {
		if s.indegree == 0 {
			cell := &CommitCell{Item: s.node}
			if queue == nil {
				queue = cell
			} else {
				queueTail.Next = cell
			}
			queueTail = cell
		}
	}
	if !lifo {
		queue = SortByDate(queue)
	}

	var outHead, outTail *CommitCell
	appendOut := func(n *objstore.Node) {
		cell := &CommitCell{Item: n}
		if outHead == nil {
			outHead = cell
		} else {
			outTail.Next = cell
		}
		outTail = cell
	}

	for queue != nil {
		current := queue.Item
		queue = queue.Next
		for _, parent := range current.Parents {
			ps, ok := inList(parent)
			if !ok {
				continue
			}
			ps.indegree--
			if ps.indegree == 0 {
				if lifo {
					queue = &CommitCell{Item: parent, Next: queue}
				} else {
					queue = InsertByDate(parent, queue)
				}
			}
		}
		appendOut(current)
		setter(current, nil)
	}
	return outHead
}
