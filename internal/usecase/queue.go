package usecase

// workQueue is a FIFO of pending work items.
type workQueue[T any] struct {
	items []T
}

func (q *workQueue[T]) Push(item T) {
	q.items = append(q.items, item)
}

func (q *workQueue[T]) Pop() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return item, true
}

func (q *workQueue[T]) Len() int {
	return len(q.items)
}
