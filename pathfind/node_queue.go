package pathfind

import "container/heap"

type NodeQueueIndex interface {
	SetIndex(index int)
	GetIndex() int
}

// NodeQueue is a binary heap whose elements track their own slot so they can
// be fixed in place after a cost change.
type NodeQueue[T NodeQueueIndex] interface {
	Poll() T        // pops the top element
	Update(v T)     // restores heap order after v changed
	Offer(v T)      // inserts v
	Contains(v T) bool
	RemoveIf(pred func(T) bool) int
	Reset()
	Len() int
	Empty() bool
}

type nodeQueue[T NodeQueueIndex] struct {
	data []T
	less func(t1, t2 T) bool
}

func NewNodeQueue[T NodeQueueIndex](less func(t1, t2 T) bool) NodeQueue[T] {
	q := &nodeQueue[T]{less: less}
	heap.Init(q)
	return q
}

func (q *nodeQueue[T]) Reset() {
	for _, v := range q.data {
		v.SetIndex(-1)
	}
	q.data = q.data[:0]
}

func (q *nodeQueue[T]) Poll() T { return heap.Pop(q).(T) }

func (q *nodeQueue[T]) Update(v T) { heap.Fix(q, v.GetIndex()) }

func (q *nodeQueue[T]) Offer(v T) { heap.Push(q, v) }

func (q *nodeQueue[T]) Contains(v T) bool {
	i := v.GetIndex()
	return i >= 0 && i < len(q.data) && any(q.data[i]) == any(v)
}

// RemoveIf drops every element matching pred and returns how many went.
func (q *nodeQueue[T]) RemoveIf(pred func(T) bool) int {
	kept := q.data[:0]
	removed := 0
	for _, v := range q.data {
		if pred(v) {
			v.SetIndex(-1)
			removed++
			continue
		}
		v.SetIndex(len(kept))
		kept = append(kept, v)
	}
	var zero T
	for i := len(kept); i < len(q.data); i++ {
		q.data[i] = zero
	}
	q.data = kept
	if removed > 0 {
		heap.Init(q)
	}
	return removed
}

func (q *nodeQueue[T]) Push(x any) {
	v := x.(T)
	v.SetIndex(len(q.data))
	q.data = append(q.data, v)
}

func (q *nodeQueue[T]) Pop() any {
	n := len(q.data) - 1
	v := q.data[n]
	var zero T
	q.data[n] = zero
	q.data = q.data[:n]
	v.SetIndex(-1)
	return v
}

func (q *nodeQueue[T]) Len() int { return len(q.data) }

func (q *nodeQueue[T]) Empty() bool { return q.Len() == 0 }

func (q *nodeQueue[T]) Less(i, j int) bool { return q.less(q.data[i], q.data[j]) }

func (q *nodeQueue[T]) Swap(i, j int) {
	q.data[i], q.data[j] = q.data[j], q.data[i]
	q.data[i].SetIndex(i)
	q.data[j].SetIndex(j)
}
