package engine

import (
	"cmp"
	"slices"
)

type PendingAnswer struct {
	Conn ConnID
	Text string
	seq  int
}

// AnswerBoard holds typed answers waiting for the host's ruling.
type AnswerBoard struct {
	pending map[ConnID]PendingAnswer
	seq     int
}

func NewAnswerBoard() *AnswerBoard {
	return &AnswerBoard{pending: map[ConnID]PendingAnswer{}}
}

// Submit stores text for conn. A resubmission replaces the text but keeps
// the original place in line.
func (b *AnswerBoard) Submit(conn ConnID, text string) {
	if prev, ok := b.pending[conn]; ok {
		prev.Text = text
		b.pending[conn] = prev
		return
	}
	b.seq++
	b.pending[conn] = PendingAnswer{Conn: conn, Text: text, seq: b.seq}
}

func (b *AnswerBoard) Get(conn ConnID) (string, bool) {
	a, ok := b.pending[conn]
	return a.Text, ok
}

// Take removes and returns conn's pending answer.
func (b *AnswerBoard) Take(conn ConnID) (string, bool) {
	a, ok := b.pending[conn]
	if ok {
		delete(b.pending, conn)
	}
	return a.Text, ok
}

func (b *AnswerBoard) Len() int { return len(b.pending) }

// Entries lists pending answers in submission order.
func (b *AnswerBoard) Entries() []PendingAnswer {
	out := make([]PendingAnswer, 0, len(b.pending))
	for _, a := range b.pending {
		out = append(out, a)
	}
	slices.SortFunc(out, func(x, y PendingAnswer) int { return cmp.Compare(x.seq, y.seq) })
	return out
}

func (b *AnswerBoard) Clear() { clear(b.pending) }
