package engine

import "slices"

// BuzzerQueue is the FIFO of connections that buzzed for the live question.
// A connection is admitted at most once until the queue is cleared, even
// after it has been popped.
type BuzzerQueue struct {
	order  []ConnID
	buzzed map[ConnID]bool
}

func (q *BuzzerQueue) Enqueue(conn ConnID) bool {
	if q.buzzed[conn] {
		return false
	}
	if q.buzzed == nil {
		q.buzzed = map[ConnID]bool{}
	}
	q.buzzed[conn] = true
	q.order = append(q.order, conn)
	return true
}

func (q *BuzzerQueue) Head() (ConnID, bool) {
	if len(q.order) == 0 {
		return "", false
	}
	return q.order[0], true
}

func (q *BuzzerQueue) DequeueHead() (ConnID, bool) {
	head, ok := q.Head()
	if !ok {
		return "", false
	}
	q.order = q.order[1:]
	return head, true
}

// Remove drops conn from the line, e.g. on disconnect.
func (q *BuzzerQueue) Remove(conn ConnID) bool {
	delete(q.buzzed, conn)
	i := slices.Index(q.order, conn)
	if i < 0 {
		return false
	}
	q.order = slices.Delete(q.order, i, i+1)
	return true
}

func (q *BuzzerQueue) Contains(conn ConnID) bool {
	return slices.Contains(q.order, conn)
}

// Position is 1-based; 0 means not queued.
func (q *BuzzerQueue) Position(conn ConnID) int {
	return slices.Index(q.order, conn) + 1
}

func (q *BuzzerQueue) Len() int { return len(q.order) }

func (q *BuzzerQueue) Entries() []ConnID { return slices.Clone(q.order) }

func (q *BuzzerQueue) Clear() {
	q.order = nil
	clear(q.buzzed)
}
